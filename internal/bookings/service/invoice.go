package service

import (
	"bytes"
	"context"
	"fmt"

	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/model"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	invoiceDateLayout = "02 Jan 2006"
	qrSize            = 256
)

type Invoice struct {
	Filename string
	Content  []byte
}

// Invoice renders a PDF receipt for the booking with a QR code of its
// reference. The workspace name is best effort.
func (s *bookingService) Invoice(ctx context.Context, actorID, id string) (*Invoice, error) {
	booking, err := s.GetByID(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	workspaceName := booking.WorkspaceID
	if ws, err := s.workspaces.GetByID(ctx, booking.WorkspaceID); err == nil {
		workspaceName = ws.Name
	} else {
		s.cfg.Log.Warn("Rendering invoice without workspace details",
			"booking_id", booking.ID,
			"workspace_id", booking.WorkspaceID,
			"error", err,
		)
	}

	content, err := renderInvoice(booking, workspaceName)
	if err != nil {
		s.cfg.Log.Error("Failed to render invoice", "booking_id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to generate invoice", err)
	}

	name := booking.Reference
	if name == "" {
		name = booking.ID
	}

	return &Invoice{
		Filename: "invoice-" + name + ".pdf",
		Content:  content,
	}, nil
}

func renderInvoice(b *model.Booking, workspaceName string) ([]byte, error) {
	reference := b.Reference
	if reference == "" {
		reference = b.ID
	}

	qrPNG, err := qrcode.Encode(reference, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking invoice "+reference, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "BookMyWorkspace")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Booking invoice")
	pdf.Ln(14)

	rows := [][2]string{
		{"Booking ID", reference},
		{"Workspace", workspaceName},
		{"Plan", b.PlanName},
		{"Party size", fmt.Sprintf("%d", b.PartySize)},
		{"From", b.StartDate.Format(invoiceDateLayout)},
		{"To", b.EndDate.Format(invoiceDateLayout)},
		{"Payment method", b.PaymentMethod},
		{"Payment status", b.PaymentStatus},
		{"Status", b.Status},
		{"Total", fmt.Sprintf("INR %d", b.TotalAmount)},
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Package notifier turns booking events into guest emails.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bookmyworkspace/pkg/events"
	"bookmyworkspace/pkg/kafka"
	"bookmyworkspace/pkg/logger"
)

const (
	dateLayout     = "Mon, 02 Jan 2006"
	seenEventsSize = 1024
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers an email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, email Email) error {
	s.log.Info("Email queued",
		"to", email.To,
		"subject", email.Subject,
		"body", email.Body,
	)
	return nil
}

type Notifier struct {
	sender Sender
	log    *logger.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func New(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		log:    log,
		seen:   make(map[string]struct{}, seenEventsSize),
	}
}

// Handle is a kafka.MessageHandler for the bookings topic. Redelivered
// events are skipped by event id.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	if eventType != events.TypeBookingConfirmed && eventType != events.TypeBookingCancelled {
		n.log.Debug("Ignoring event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	if n.seenBefore(msg.GetEventID()) {
		n.log.Debug("Skipping duplicate event", "event_id", msg.GetEventID())
		return nil
	}

	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.UserEmail == "" {
		n.log.Warn("Booking event without recipient",
			"event_type", eventType,
			"booking_reference", event.Reference,
		)
		return nil
	}

	var email Email
	switch eventType {
	case events.TypeBookingConfirmed:
		email = ConfirmationEmail(event)
	case events.TypeBookingCancelled:
		email = CancellationEmail(event)
	}

	if err := n.sender.Send(ctx, email); err != nil {
		n.forget(msg.GetEventID())
		return kafka.NewTransientError("failed to send email", err)
	}
	return nil
}

func (n *Notifier) seenBefore(id string) bool {
	if id == "" {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.seen[id]; ok {
		return true
	}
	n.seen[id] = struct{}{}
	n.order = append(n.order, id)
	if len(n.order) > seenEventsSize {
		delete(n.seen, n.order[0])
		n.order = n.order[1:]
	}
	return false
}

func (n *Notifier) forget(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.seen, id)
}

func ConfirmationEmail(e events.BookingEvent) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Your booking %s is confirmed.\n\n", e.Reference)
	writeDetails(&b, e)
	if e.PaymentStatus == "pending" {
		b.WriteString("\nPlease pay at the workspace when you arrive.\n")
	} else {
		b.WriteString("\nPayment received. Thank you!\n")
	}
	return Email{
		To:      e.UserEmail,
		Subject: fmt.Sprintf("Booking confirmed: %s", e.Reference),
		Body:    b.String(),
	}
}

func CancellationEmail(e events.BookingEvent) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Your booking %s has been cancelled.\n\n", e.Reference)
	writeDetails(&b, e)
	return Email{
		To:      e.UserEmail,
		Subject: fmt.Sprintf("Booking cancelled: %s", e.Reference),
		Body:    b.String(),
	}
}

func writeDetails(b *strings.Builder, e events.BookingEvent) {
	if e.WorkspaceName != "" {
		fmt.Fprintf(b, "Workspace: %s\n", e.WorkspaceName)
	}
	if e.PlanName != "" {
		fmt.Fprintf(b, "Plan: %s\n", e.PlanName)
	}
	fmt.Fprintf(b, "From: %s\n", e.StartDate.Format(dateLayout))
	fmt.Fprintf(b, "To: %s\n", e.EndDate.Format(dateLayout))
	if e.PartySize > 0 {
		fmt.Fprintf(b, "People: %d\n", e.PartySize)
	}
	fmt.Fprintf(b, "Total: ₹%d\n", e.TotalAmount)
}

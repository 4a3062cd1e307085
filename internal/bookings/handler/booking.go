package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"bookmyworkspace/internal/bookings/service"
	"bookmyworkspace/pkg/auth"
	httputil "bookmyworkspace/pkg/http"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	auth    *auth.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, authenticator *auth.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

// Create stores a booking record for the authenticated user. Checkout
// confirmations are the usual source; this endpoint serves direct entries.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var booking model.Booking
	if err := httputil.DecodeJSON(r, &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	booking.ID = ""
	booking.UserID = userID

	if err := h.service.Create(r.Context(), &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}
	ctx, err := httputil.RefreshContext(r)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	bookings, totalCount, err := h.service.ListMine(ctx, userID, limit, offset)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Mine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	booking, err := h.service.GetByID(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var update model.BookingUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), userID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	booking, err := h.service.Cancel(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Invoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	invoice, err := h.service.Invoice(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Invoice", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(invoice.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(invoice.Content); err != nil {
		h.log.Error("failed to write invoice response", "handler", "Invoice", "operation", "Write", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.auth.Require(h.Create))
	router.GET("/api/v1/bookings/mine", h.auth.Require(h.Mine))
	router.GET("/api/v1/bookings/id/:id", h.auth.Require(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id/status", h.auth.Require(h.UpdateStatus))
	router.POST("/api/v1/bookings/id/:id/cancel", h.auth.Require(h.Cancel))
	router.GET("/api/v1/bookings/id/:id/invoice", h.auth.Require(h.Invoice))
}

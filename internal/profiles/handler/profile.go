package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"bookmyworkspace/internal/profiles/service"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/client"
	apperrors "bookmyworkspace/pkg/errors"
	httputil "bookmyworkspace/pkg/http"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"
)

// BookingLister reads the caller's bookings from the bookings service.
type BookingLister interface {
	ListMine(ctx context.Context, authorization string, limit int, offset int64) ([]*model.Booking, *client.Metadata, error)
}

type ProfileHandler struct {
	service  service.ProfileService
	bookings BookingLister
	auth     *auth.Authenticator
	log      *logger.Logger
}

func NewProfileHandler(service service.ProfileService, bookings BookingLister, authenticator *auth.Authenticator, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:  service,
		bookings: bookings,
		auth:     authenticator,
		log:      log,
	}
}

func (h *ProfileHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Signup", "operation", "WriteCreated", "error", err)
	}
}

func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	if err := h.service.Logout(r.Context(), claims); err != nil {
		h.writeError(w, "Logout", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var updates model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	profile, err := h.service.Update(r.Context(), userID, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

// Bookings lists the caller's bookings, newest first, by forwarding their
// credentials to the bookings service.
func (h *ProfileHandler) Bookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Bookings", err)
		return
	}
	ctx, err := httputil.RefreshContext(r)
	if err != nil {
		h.writeError(w, "Bookings", err)
		return
	}

	bookings, meta, err := h.bookings.ListMine(ctx, "Bearer "+auth.BearerToken(r), limit, offset)
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			h.writeError(w, "Bookings", apperrors.Unauthorized(statusErr.Message))
			return
		}
		h.log.Error("Failed to list bookings", "handler", "Bookings", "error", err)
		h.writeError(w, "Bookings", apperrors.Unavailable("bookings service"))
		return
	}

	if err := httputil.WritePaginated(w, bookings, meta.TotalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Bookings", "operation", "WritePaginated", "error", err)
	}
}

func (h *ProfileHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProfileHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/signup", h.Signup)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", h.auth.Require(h.Logout))
	router.GET("/api/v1/profile", h.auth.Require(h.Get))
	router.PATCH("/api/v1/profile", h.auth.Require(h.Update))
	router.GET("/api/v1/profile/bookings", h.auth.Require(h.Bookings))
}

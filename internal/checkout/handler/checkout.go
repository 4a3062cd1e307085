package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"bookmyworkspace/internal/checkout/service"
	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/checkout"
	httputil "bookmyworkspace/pkg/http"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

type CheckoutHandler struct {
	service  service.CheckoutService
	auth     *auth.Authenticator
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewCheckoutHandler(service service.CheckoutService, authenticator *auth.Authenticator, allowedOrigins []string, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		auth:    authenticator,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req model.CreateCheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Open", err)
		return
	}

	session, err := h.service.Open(r.Context(), claims.UserID, claims.Email, &req)
	if err != nil {
		h.writeError(w, "Open", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "Open", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	session, err := h.service.Get(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) UpdateSelection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req model.UpdateSelectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateSelection", err)
		return
	}

	session, err := h.service.UpdateSelection(r.Context(), userID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "UpdateSelection", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateSelection", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req model.PaymentMethodRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SelectPaymentMethod", err)
		return
	}

	session, err := h.service.SelectPaymentMethod(r.Context(), userID, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "SelectPaymentMethod", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "SelectPaymentMethod", "operation", "WriteSuccess", "error", err)
	}
}

// Confirm answers 202 while a gateway payment is processing; clients follow
// the outcome over the websocket or by polling Get.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	session, err := h.service.Confirm(r.Context(), userID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if session.Payment.State == checkout.Processing {
		if err := httputil.WriteAccepted(w, session); err != nil {
			h.log.Error("failed to write accepted response", "handler", "Confirm", "operation", "WriteAccepted", "error", err)
		}
		return
	}
	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.service.Close(r.Context(), userID, ps.ByName("id")); err != nil {
		h.writeError(w, "Close", err)
		return
	}
	httputil.WriteNoContent(w)
}

// Watch streams session snapshots over a websocket until the session is
// closed or the client goes away.
func (h *CheckoutHandler) Watch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := ps.ByName("id")

	updates, cancel, err := h.service.Watch(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, "Watch", err)
		return
	}
	defer cancel()

	current, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, "Watch", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "handler", "Watch", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	if !h.send(conn, id, current) {
		return
	}
	for {
		select {
		case session, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "checkout closed"))
				return
			}
			if !h.send(conn, id, session) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *CheckoutHandler) send(conn *websocket.Conn, id string, session *model.CheckoutSession) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(session); err != nil {
		h.log.Debug("websocket write failed", "handler", "Watch", "session_id", id, "error", err)
		return false
	}
	return true
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/checkout", h.auth.Require(h.Open))
	router.GET("/api/v1/checkout/:id", h.auth.Require(h.Get))
	router.PATCH("/api/v1/checkout/:id", h.auth.Require(h.UpdateSelection))
	router.DELETE("/api/v1/checkout/:id", h.auth.Require(h.Close))
	router.PUT("/api/v1/checkout/:id/payment-method", h.auth.Require(h.SelectPaymentMethod))
	router.POST("/api/v1/checkout/:id/confirm", h.auth.Require(h.Confirm))
	router.GET("/api/v1/checkout/:id/ws", h.auth.Require(h.Watch))
}

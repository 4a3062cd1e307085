package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"bookmyworkspace/internal/workspaces/service"
	"bookmyworkspace/pkg/auth"
	apperrors "bookmyworkspace/pkg/errors"
	httputil "bookmyworkspace/pkg/http"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

type WorkspaceHandler struct {
	service  service.WorkspaceService
	auth     *auth.Authenticator
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWorkspaceHandler(service service.WorkspaceService, authenticator *auth.Authenticator, allowedOrigins []string, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
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

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var ws model.Workspace
	if err := httputil.DecodeJSON(r, &ws); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), userID, &ws); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, ws); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkspaceHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	workspaces, totalCount, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, workspaces, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *WorkspaceHandler) Featured(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	workspaces, err := h.service.Featured(r.Context())
	if err != nil {
		h.writeError(w, "Featured", err)
		return
	}

	if err := httputil.WriteSuccess(w, workspaces); err != nil {
		h.log.Error("failed to write success response", "handler", "Featured", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkspaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ws, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, ws); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkspaceHandler) Plans(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plans, err := h.service.Plans(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Plans", err)
		return
	}

	if err := httputil.WriteSuccess(w, plans); err != nil {
		h.log.Error("failed to write success response", "handler", "Plans", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkspaceHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	ctx, err := httputil.RefreshContext(r)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	workspaces, err := h.service.ListMine(ctx, userID)
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}

	if err := httputil.WriteSuccess(w, workspaces); err != nil {
		h.log.Error("failed to write success response", "handler", "Mine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkspaceHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	ctx, err := httputil.RefreshContext(r)
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	dashboard, err := h.service.Dashboard(ctx, userID)
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	if err := httputil.WriteSuccess(w, dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "operation", "WriteSuccess", "error", err)
	}
}

// WatchDashboard streams the owner's dashboard over a websocket, pushing a
// new one whenever the owner's listings change.
func (h *WorkspaceHandler) WatchDashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	updates, stop, err := h.service.WatchDashboard(r.Context(), userID)
	if err != nil {
		h.writeError(w, "WatchDashboard", err)
		return
	}
	defer stop()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "handler", "WatchDashboard", "owner_id", userID, "error", err)
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

	for {
		select {
		case dashboard, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(dashboard); err != nil {
				h.log.Debug("websocket write failed", "handler", "WatchDashboard", "owner_id", userID, "error", err)
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

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var updates model.WorkspaceUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	ws, err := h.service.Update(r.Context(), userID, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, ws); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), userID, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WorkspaceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseFilter(r *http.Request) (model.WorkspaceFilter, error) {
	q := r.URL.Query()
	filter := model.WorkspaceFilter{
		Location:  q.Get("location"),
		Amenities: httputil.QueryList(r, "amenities"),
		Sort:      q.Get("sort"),
	}

	if v, ok, err := httputil.QueryInt64(r, "min_price"); err != nil {
		return filter, err
	} else if ok {
		filter.MinPrice = &v
	}
	if v, ok, err := httputil.QueryInt64(r, "max_price"); err != nil {
		return filter, err
	} else if ok {
		filter.MaxPrice = &v
	}
	if (filter.MinPrice != nil && *filter.MinPrice < 0) || (filter.MaxPrice != nil && *filter.MaxPrice < 0) {
		return filter, apperrors.InvalidInput("price bounds cannot be negative")
	}

	premium, err := httputil.QueryBool(r, "premium")
	if err != nil {
		return filter, err
	}
	filter.Premium = premium

	return filter, nil
}

func (h *WorkspaceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/workspaces", h.Search)
	router.POST("/api/v1/workspaces", h.auth.Require(h.Create))
	router.GET("/api/v1/workspaces/featured", h.Featured)
	router.GET("/api/v1/workspaces/mine", h.auth.Require(h.Mine))
	router.GET("/api/v1/workspaces/dashboard", h.auth.Require(h.Dashboard))
	router.GET("/api/v1/workspaces/dashboard/ws", h.auth.Require(h.WatchDashboard))
	router.GET("/api/v1/workspaces/id/:id", h.GetByID)
	router.GET("/api/v1/workspaces/id/:id/plans", h.Plans)
	router.PATCH("/api/v1/workspaces/id/:id", h.auth.Require(h.Update))
	router.DELETE("/api/v1/workspaces/id/:id", h.auth.Require(h.Delete))
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"bookmyworkspace/pkg/auth"
	"bookmyworkspace/pkg/checkout"
	apperrors "bookmyworkspace/pkg/errors"
	"bookmyworkspace/pkg/logger"
	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/querycache"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockWorkspaceService struct {
	createFunc    func(ctx context.Context, ownerID string, ws *model.Workspace) error
	getByIDFunc   func(ctx context.Context, id string) (*model.Workspace, error)
	searchFunc    func(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, int64, error)
	deleteFunc    func(ctx context.Context, ownerID, id string) error
	listMineFunc  func(ctx context.Context, ownerID string) ([]*model.Workspace, error)
	dashboardFunc func(ctx context.Context, ownerID string) (*model.Dashboard, error)
	dashboards    chan *model.Dashboard
}

func (m *mockWorkspaceService) Create(ctx context.Context, ownerID string, ws *model.Workspace) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, ws)
	}
	return nil
}

func (m *mockWorkspaceService) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Workspace", id)
}

func (m *mockWorkspaceService) Search(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter, limit, offset)
	}
	return []*model.Workspace{}, 0, nil
}

func (m *mockWorkspaceService) Featured(ctx context.Context) ([]*model.Workspace, error) {
	return []*model.Workspace{}, nil
}

func (m *mockWorkspaceService) ListMine(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx, ownerID)
	}
	return []*model.Workspace{}, nil
}

func (m *mockWorkspaceService) Plans(ctx context.Context, id string) ([]checkout.Plan, error) {
	return []checkout.Plan{{ID: "day-pass", Name: "Day Pass", UnitPrice: 500, BillingUnit: checkout.Day}}, nil
}

func (m *mockWorkspaceService) Update(ctx context.Context, ownerID, id string, updates *model.WorkspaceUpdate) (*model.Workspace, error) {
	return &model.Workspace{ID: id, OwnerID: ownerID}, nil
}

func (m *mockWorkspaceService) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, id)
	}
	return nil
}

func (m *mockWorkspaceService) Dashboard(ctx context.Context, ownerID string) (*model.Dashboard, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx, ownerID)
	}
	return &model.Dashboard{}, nil
}

func (m *mockWorkspaceService) WatchDashboard(ctx context.Context, ownerID string) (<-chan *model.Dashboard, func(), error) {
	if m.dashboards == nil {
		return nil, nil, apperrors.Unauthorized("Authentication required")
	}
	return m.dashboards, func() {}, nil
}

func newTestRouter(t *testing.T, svc *mockWorkspaceService) (*httprouter.Router, string) {
	t.Helper()
	issuer, err := auth.NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := issuer.Issue("owner-1", "owner@example.com")
	if err != nil {
		t.Fatal(err)
	}
	log := logger.Discard()
	h := NewWorkspaceHandler(svc, auth.NewAuthenticator(issuer, auth.NewMemoryRevocationStore(), log), []string{"http://localhost:5173"}, log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router, "Bearer " + token
}

func TestSearch_ParsesFilter(t *testing.T) {
	var got model.WorkspaceFilter
	var gotLimit int
	svc := &mockWorkspaceService{
		searchFunc: func(ctx context.Context, filter model.WorkspaceFilter, limit int, offset int64) ([]*model.Workspace, int64, error) {
			got = filter
			gotLimit = limit
			return []*model.Workspace{{ID: "a"}}, 7, nil
		},
	}
	router, _ := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces?location=koramangala&amenities=wifi,coffee&min_price=100&max_price=900&premium=true&sort=rating&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Location != "koramangala" || len(got.Amenities) != 2 || got.Sort != "rating" {
		t.Errorf("unexpected filter %+v", got)
	}
	if got.MinPrice == nil || *got.MinPrice != 100 || got.MaxPrice == nil || *got.MaxPrice != 900 {
		t.Errorf("unexpected price bounds %+v", got)
	}
	if got.Premium == nil || !*got.Premium {
		t.Error("expected premium filter")
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}

	var body struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.TotalCount != 7 {
		t.Errorf("expected total 7, got %d", body.TotalCount)
	}
}

func TestSearch_InvalidQueryParameters(t *testing.T) {
	router, _ := newTestRouter(t, &mockWorkspaceService{})

	tests := []struct {
		name  string
		query string
	}{
		{"alphabetic limit", "?limit=abc"},
		{"alphabetic min price", "?min_price=cheap"},
		{"negative max price", "?max_price=-1"},
		{"bad premium flag", "?premium=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, &mockWorkspaceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/id/507f1f77bcf86cd799439011", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("expected not found message, got %s", rec.Body.String())
	}
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	var owner string
	svc := &mockWorkspaceService{
		createFunc: func(ctx context.Context, ownerID string, ws *model.Workspace) error {
			owner = ownerID
			ws.ID = "507f1f77bcf86cd799439011"
			return nil
		},
	}
	router, bearer := newTestRouter(t, svc)
	body := `{"name":"The Hive","city":"Pune","area":"Baner","address":"Baner Road 1","price_per_day":500,"capacity":10}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader(body))
	req.Header.Set("Authorization", bearer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if owner != "owner-1" {
		t.Errorf("expected owner from token, got %q", owner)
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	router, bearer := newTestRouter(t, &mockWorkspaceService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader(`{"name":"x","seats_left":3}`))
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "deleted", want: http.StatusNoContent},
		{name: "forbidden", err: apperrors.Forbidden("Only the owner can delete this workspace"), want: http.StatusForbidden},
		{name: "store failure", err: apperrors.Persistence("delete workspace", context.DeadlineExceeded), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockWorkspaceService{
				deleteFunc: func(ctx context.Context, ownerID, id string) error {
					if id != "abc" {
						t.Errorf("unexpected id %q", id)
					}
					return tt.err
				},
			}
			router, bearer := newTestRouter(t, svc)
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/workspaces/id/abc", nil)
			req.Header.Set("Authorization", bearer)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestDashboard_UsesAuthenticatedOwner(t *testing.T) {
	svc := &mockWorkspaceService{
		dashboardFunc: func(ctx context.Context, ownerID string) (*model.Dashboard, error) {
			if ownerID != "owner-1" {
				t.Errorf("unexpected owner %q", ownerID)
			}
			return &model.Dashboard{TotalWorkspaces: 2, TotalRevenue: 900}, nil
		},
	}
	router, bearer := newTestRouter(t, svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/dashboard", nil)
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_revenue":900`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestPlans(t *testing.T) {
	router, _ := newTestRouter(t, &mockWorkspaceService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/id/abc/plans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "day-pass") {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestMine_Refresh(t *testing.T) {
	var refreshed []bool
	svc := &mockWorkspaceService{
		listMineFunc: func(ctx context.Context, ownerID string) ([]*model.Workspace, error) {
			refreshed = append(refreshed, querycache.RefreshRequested(ctx))
			return []*model.Workspace{{ID: "a", OwnerID: ownerID}}, nil
		},
	}
	router, bearer := newTestRouter(t, svc)

	tests := []struct {
		name        string
		query       string
		want        int
		wantRefresh bool
	}{
		{"cached", "", http.StatusOK, false},
		{"refresh", "?refresh=true", http.StatusOK, true},
		{"explicit false", "?refresh=false", http.StatusOK, false},
		{"invalid", "?refresh=maybe", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refreshed = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/mine"+tt.query, nil)
			req.Header.Set("Authorization", bearer)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				if len(refreshed) != 0 {
					t.Error("service must not be called for an invalid refresh flag")
				}
				return
			}
			if len(refreshed) != 1 || refreshed[0] != tt.wantRefresh {
				t.Errorf("expected refresh=%v, got %v", tt.wantRefresh, refreshed)
			}
		})
	}
}

func TestWatchDashboard_Streams(t *testing.T) {
	dashboards := make(chan *model.Dashboard, 2)
	dashboards <- &model.Dashboard{TotalWorkspaces: 1}
	router, bearer := newTestRouter(t, &mockWorkspaceService{dashboards: dashboards})
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/workspaces/dashboard/ws?token=" + strings.TrimPrefix(bearer, "Bearer ")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var first model.Dashboard
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if first.TotalWorkspaces != 1 {
		t.Errorf("unexpected initial dashboard %+v", first)
	}

	dashboards <- &model.Dashboard{TotalWorkspaces: 2}
	var next model.Dashboard
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if next.TotalWorkspaces != 2 {
		t.Errorf("unexpected update %+v", next)
	}
	close(dashboards)
}

func TestWatchDashboard_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t, &mockWorkspaceService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/dashboard/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

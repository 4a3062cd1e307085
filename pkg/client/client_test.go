package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmyworkspace/pkg/querycache"
)

func TestWorkspaceClient_GetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/workspaces/id/ws-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"id":"ws-1","name":"WeWork Galaxy","city":"Bangalore","price_per_day":500}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found","code":"NOT_FOUND"}`))
		}
	}))
	defer srv.Close()

	c := NewWorkspaceClient(srv.URL)

	ws, err := c.GetByID(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ws.Name != "WeWork Galaxy" || ws.PricePerDay != 500 {
		t.Errorf("unexpected workspace %+v", ws)
	}

	_, err = c.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "not found" {
		t.Errorf("expected status error with message, got %v", err)
	}
}

func TestBookingClient_ListMine_ForwardsAuthorization(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[{"id":"b1","reference":"WS12345678"}],"total_count":1,"limit":10,"offset":0}`))
	}))
	defer srv.Close()

	bookings, meta, err := NewBookingClient(srv.URL).ListMine(context.Background(), "Bearer tkn", 10, 0)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if gotAuth != "Bearer tkn" {
		t.Errorf("authorization not forwarded, got %q", gotAuth)
	}
	if gotQuery != "limit=10&offset=0" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(bookings) != 1 || bookings[0].Reference != "WS12345678" || meta.TotalCount != 1 {
		t.Errorf("unexpected page %+v %+v", bookings, meta)
	}
}

func TestBookingClient_ListMine_ForwardsRefresh(t *testing.T) {
	var gotRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRefresh = r.URL.Query().Get("refresh")
		_, _ = w.Write([]byte(`{"data":[],"total_count":0,"limit":10,"offset":0}`))
	}))
	defer srv.Close()

	ctx := querycache.WithRefresh(context.Background())
	if _, _, err := NewBookingClient(srv.URL).ListMine(ctx, "Bearer tkn", 10, 0); err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if gotRefresh != "true" {
		t.Errorf("expected refresh forwarded, got %q", gotRefresh)
	}
}

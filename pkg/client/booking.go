package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"bookmyworkspace/pkg/model"
	"bookmyworkspace/pkg/querycache"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// ListMine returns the caller's bookings, newest first. authorization is
// forwarded verbatim so the bookings service sees the same user, and a
// refresh requested on ctx is passed on.
func (c *BookingClient) ListMine(ctx context.Context, authorization string, limit int, offset int64) ([]*model.Booking, *Metadata, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	if querycache.RefreshRequested(ctx) {
		q.Set("refresh", "true")
	}

	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/mine?"+q.Encode(), map[string]string{
		"Authorization": authorization,
	})
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, statusError(resp)
	}
	return decodePage[*model.Booking](resp, "booking")
}

func (c *BookingClient) GetByID(ctx context.Context, authorization, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), map[string]string{
		"Authorization": authorization,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	return decodeData[*model.Booking](resp, "booking")
}

package model

// Dashboard is the owner analytics view across all of their listings.
type Dashboard struct {
	TotalWorkspaces     int          `json:"total_workspaces"`
	TotalRevenue        int64        `json:"total_revenue"`
	TotalBookings       int64        `json:"total_bookings"`
	PendingBookings     int64        `json:"pending_bookings"`
	ConfirmedBookings   int64        `json:"confirmed_bookings"`
	ConfirmationRate    int64        `json:"confirmation_rate"`
	AverageBookingValue int64        `json:"average_booking_value"`
	TotalViews          int64        `json:"total_views"`
	Workspaces          []*Workspace `json:"workspaces"`
	RecentBookings      []*Booking   `json:"recent_bookings"`
}

// ApplyStats fills the booking figures. Rate and average are rounded to the
// nearest whole number and are zero when there are no bookings.
func (d *Dashboard) ApplyStats(stats *BookingStats) {
	if stats == nil {
		return
	}
	d.TotalRevenue = stats.TotalRevenue
	d.TotalBookings = stats.TotalBookings
	d.PendingBookings = stats.PendingBookings
	d.ConfirmedBookings = stats.ConfirmedBookings
	d.ConfirmationRate = 0
	d.AverageBookingValue = 0
	if stats.TotalBookings > 0 {
		d.ConfirmationRate = roundDiv(stats.ConfirmedBookings*100, stats.TotalBookings)
		d.AverageBookingValue = roundDiv(stats.TotalRevenue, stats.TotalBookings)
	}
}

func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}

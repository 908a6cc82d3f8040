package models

import "time"

// Route names understood by the navigation host
const (
	RouteOrders = "Orders"
)

// NavigationSignal asks the navigation host to move to another screen.
// It carries no order payload.
type NavigationSignal struct {
	Route     string    `json:"route"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

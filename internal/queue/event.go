// Package queue defines message payloads exchanged over the message broker.
package queue

// SessionCompletedEvent is published when a table session is ended and
// settled. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type SessionCompletedEvent struct {
	SessionID     uint64  `json:"session_id"`
	VenueID       uint64  `json:"venue_id"`
	TableID       uint64  `json:"table_id"`
	OpenedBy      uint64  `json:"opened_by"`
	CustomerName  string  `json:"customer_name"`
	PricingMethod string  `json:"pricing_method"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	GameCost      float64 `json:"game_cost"`
	ItemsRevenue  float64 `json:"items_revenue"`
	TotalCost     float64 `json:"total_cost"`
	TotalPaid     float64 `json:"total_paid"`
	PaymentStatus string  `json:"payment_status"`
	CompletedAt   string  `json:"completed_at"`
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// AnalyticsRepo computes read-only business reports by grouping and
// summing over sessions, sales and products. It never mutates
// anything. Every method verifies venue ownership first so report
// routes share the same authorization rule as the rest of the API.
type AnalyticsRepo struct{ DB *sql.DB }

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{DB: db} }

func (r *AnalyticsRepo) ownsVenue(ctx context.Context, venueID, userID uint64) error {
	var ownerID uint64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT owner_id FROM venues WHERE id=? LIMIT 1", venueID).Scan(&ownerID); err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

// RevenueByDay is one row of the revenue report: per-day sums of
// session billing and counter sales.
type RevenueByDay struct {
	Day            string  `json:"day"`
	SessionRevenue float64 `json:"session_revenue"`
	SaleRevenue    float64 `json:"sale_revenue"`
	Total          float64 `json:"total"`
}

// RevenueByMethod groups collected session payments and counter sales
// by payment method.
type RevenueByMethod struct {
	Method string  `json:"method"`
	Source string  `json:"source"` // "session" or "sale"
	Amount float64 `json:"amount"`
}

// Revenue returns daily totals plus a per-method breakdown for the
// given window. Session revenue counts completed sessions by end
// time; sale revenue counts non-cancelled sales by creation time.
func (r *AnalyticsRepo) Revenue(ctx context.Context, venueID, userID uint64, from, to time.Time) ([]RevenueByDay, []RevenueByMethod, error) {
	if err := r.ownsVenue(ctx, venueID, userID); err != nil {
		return nil, nil, err
	}
	days := map[string]*RevenueByDay{}
	order := []string{}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(end_time) AS day, SUM(total_cost)
		 FROM sessions
		 WHERE venue_id=? AND status=? AND end_time >= ? AND end_time < ?
		 GROUP BY DATE(end_time) ORDER BY day`,
		venueID, model.SessionStatusCompleted, from, to)
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var day string
		var amount float64
		if err := rows.Scan(&day, &amount); err != nil {
			rows.Close()
			return nil, nil, err
		}
		days[day] = &RevenueByDay{Day: day, SessionRevenue: amount}
		order = append(order, day)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = r.DB.QueryContext(ctx,
		`SELECT DATE(created_at) AS day, SUM(total_revenue)
		 FROM sales
		 WHERE venue_id=? AND status<>? AND created_at >= ? AND created_at < ?
		 GROUP BY DATE(created_at) ORDER BY day`,
		venueID, model.SaleStatusCancelled, from, to)
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var day string
		var amount float64
		if err := rows.Scan(&day, &amount); err != nil {
			rows.Close()
			return nil, nil, err
		}
		d, ok := days[day]
		if !ok {
			d = &RevenueByDay{Day: day}
			days[day] = d
			order = append(order, day)
		}
		d.SaleRevenue = amount
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	daily := make([]RevenueByDay, 0, len(order))
	for _, day := range order {
		d := days[day]
		d.Total = d.SessionRevenue + d.SaleRevenue
		daily = append(daily, *d)
	}

	methods := make([]RevenueByMethod, 0)
	rows, err = r.DB.QueryContext(ctx,
		`SELECT sp.method, SUM(sp.amount)
		 FROM session_payments sp
		 JOIN sessions s ON s.id = sp.session_id
		 WHERE s.venue_id=? AND sp.created_at >= ? AND sp.created_at < ?
		 GROUP BY sp.method ORDER BY sp.method`,
		venueID, from, to)
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var m RevenueByMethod
		if err := rows.Scan(&m.Method, &m.Amount); err != nil {
			rows.Close()
			return nil, nil, err
		}
		m.Source = "session"
		methods = append(methods, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = r.DB.QueryContext(ctx,
		`SELECT payment_method, SUM(total_revenue)
		 FROM sales
		 WHERE venue_id=? AND status<>? AND created_at >= ? AND created_at < ?
		 GROUP BY payment_method ORDER BY payment_method`,
		venueID, model.SaleStatusCancelled, from, to)
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		var m RevenueByMethod
		if err := rows.Scan(&m.Method, &m.Amount); err != nil {
			rows.Close()
			return nil, nil, err
		}
		m.Source = "sale"
		methods = append(methods, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return daily, methods, nil
}

// SessionCount is one row of the session status report.
type SessionCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// SessionCounts groups a venue's sessions by status over a window.
func (r *AnalyticsRepo) SessionCounts(ctx context.Context, venueID, userID uint64, from, to time.Time) ([]SessionCount, error) {
	if err := r.ownsVenue(ctx, venueID, userID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM sessions
		 WHERE venue_id=? AND start_time >= ? AND start_time < ?
		 GROUP BY status ORDER BY status`,
		venueID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionCount, 0)
	for rows.Next() {
		var c SessionCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TopCustomer is one row of the top-customers report, keyed by the
// customer name recorded on completed sessions.
type TopCustomer struct {
	CustomerName string  `json:"customer_name"`
	Sessions     int64   `json:"sessions"`
	TotalSpent   float64 `json:"total_spent"`
}

// TopCustomers ranks named customers by spend on completed sessions.
func (r *AnalyticsRepo) TopCustomers(ctx context.Context, venueID, userID uint64, from, to time.Time, limit int) ([]TopCustomer, error) {
	if err := r.ownsVenue(ctx, venueID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT customer_name, COUNT(*), SUM(total_cost)
		 FROM sessions
		 WHERE venue_id=? AND status=? AND customer_name IS NOT NULL AND customer_name <> ''
		   AND start_time >= ? AND start_time < ?
		 GROUP BY customer_name
		 ORDER BY SUM(total_cost) DESC
		 LIMIT ?`,
		venueID, model.SessionStatusCompleted, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TopCustomer, 0)
	for rows.Next() {
		var c TopCustomer
		if err := rows.Scan(&c.CustomerName, &c.Sessions, &c.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LowStock returns active products at or below their minimum stock
// threshold, most depleted first.
func (r *AnalyticsRepo) LowStock(ctx context.Context, venueID, userID uint64) ([]model.Product, error) {
	if err := r.ownsVenue(ctx, venueID, userID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 WHERE p.venue_id=? AND p.status=? AND p.current_stock <= p.min_stock
		 ORDER BY p.current_stock ASC, p.name`,
		venueID, model.ProductStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PeakHour is one bucket of the peak-hours histogram: how many
// sessions started in each hour of the day over the window.
type PeakHour struct {
	Hour     int   `json:"hour"`
	Sessions int64 `json:"sessions"`
}

// PeakHours builds the histogram of session start hours.
func (r *AnalyticsRepo) PeakHours(ctx context.Context, venueID, userID uint64, from, to time.Time) ([]PeakHour, error) {
	if err := r.ownsVenue(ctx, venueID, userID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT HOUR(start_time), COUNT(*) FROM sessions
		 WHERE venue_id=? AND start_time >= ? AND start_time < ?
		 GROUP BY HOUR(start_time) ORDER BY HOUR(start_time)`,
		venueID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PeakHour, 0)
	for rows.Next() {
		var h PeakHour
		if err := rows.Scan(&h.Hour, &h.Sessions); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

const sessionColumns = `s.id, s.venue_id, s.table_id, s.opened_by, s.customer_name, s.customer_phone,
       s.status, s.start_time, s.end_time, s.paused_at, s.total_paused_seconds,
       s.pricing_method, s.minute_rate, s.frame_rate, s.kitti_rate, s.frames, s.kittis, s.notes,
       s.total_items, s.items_cost, s.items_revenue, s.items_profit, s.game_cost, s.total_cost,
       s.payment_status, s.total_paid, s.remaining, s.paid_at, s.created_at, s.updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var customerName, customerPhone, notes sql.NullString
	var endTime, pausedAt, paidAt sql.NullTime
	err := row.Scan(&s.ID, &s.VenueID, &s.TableID, &s.OpenedBy, &customerName, &customerPhone,
		&s.Status, &s.StartTime, &endTime, &pausedAt, &s.TotalPausedSeconds,
		&s.PricingMethod, &s.MinuteRate, &s.FrameRate, &s.KittiRate, &s.Frames, &s.Kittis, &notes,
		&s.TotalItems, &s.ItemsCost, &s.ItemsRevenue, &s.ItemsProfit, &s.GameCost, &s.TotalCost,
		&s.PaymentStatus, &s.TotalPaid, &s.Remaining, &paidAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerName.Valid {
		v := customerName.String
		s.CustomerName = &v
	}
	if customerPhone.Valid {
		v := customerPhone.String
		s.CustomerPhone = &v
	}
	if notes.Valid {
		v := notes.String
		s.Notes = &v
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	if pausedAt.Valid {
		t := pausedAt.Time
		s.PausedAt = &t
	}
	if paidAt.Valid {
		t := paidAt.Time
		s.PaidAt = &t
	}
	return &s, nil
}

type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadItems fills s.Items from session_items, oldest first so the
// list reflects purchase order.
func loadItems(ctx context.Context, q rowQuerier, s *model.Session) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, session_id, product_id, name, quantity, cost_price, selling_price,
		        total_cost, total_revenue, profit, created_at
		 FROM session_items WHERE session_id=? ORDER BY id`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	s.Items = s.Items[:0]
	for rows.Next() {
		var it model.SessionItem
		if err := rows.Scan(&it.ID, &it.SessionID, &it.ProductID, &it.Name, &it.Quantity,
			&it.CostPrice, &it.SellingPrice, &it.TotalCost, &it.TotalRevenue, &it.Profit, &it.CreatedAt); err != nil {
			return err
		}
		s.Items = append(s.Items, it)
	}
	return rows.Err()
}

// loadPayments fills s.Payments from session_payments in ledger order.
func loadPayments(ctx context.Context, q rowQuerier, s *model.Session) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, session_id, method, amount, transaction_id, notes, created_at
		 FROM session_payments WHERE session_id=? ORDER BY id`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	s.Payments = s.Payments[:0]
	for rows.Next() {
		var p model.SessionPayment
		var txnID, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Method, &p.Amount, &txnID, &notes, &p.CreatedAt); err != nil {
			return err
		}
		if txnID.Valid {
			v := txnID.String
			p.TransactionID = &v
		}
		if notes.Valid {
			v := notes.String
			p.Notes = &v
		}
		s.Payments = append(s.Payments, p)
	}
	return rows.Err()
}

// SessionFilter narrows the my-sessions listing. Zero values mean "no
// constraint". Limit defaults to 50 and is capped at 200.
type SessionFilter struct {
	Status        string
	PaymentStatus string
	TableID       uint64
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Skip          int
}

// List returns sessions across all venues the user owns, newest
// first, with items and payments attached.
func (r *SessionRepo) List(ctx context.Context, userID uint64, f SessionFilter) ([]*model.Session, error) {
	q := `SELECT ` + sessionColumns + `
	      FROM sessions s JOIN venues v ON v.id = s.venue_id
	      WHERE v.owner_id=?`
	args := []any{userID}
	if f.Status != "" {
		q += " AND s.status=?"
		args = append(args, f.Status)
	}
	if f.PaymentStatus != "" {
		q += " AND s.payment_status=?"
		args = append(args, f.PaymentStatus)
	}
	if f.TableID != 0 {
		q += " AND s.table_id=?"
		args = append(args, f.TableID)
	}
	if f.DateFrom != nil {
		q += " AND s.start_time >= ?"
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		// strict upper bound; callers pass the midnight after the
		// last included day
		q += " AND s.start_time < ?"
		args = append(args, *f.DateTo)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}
	q += " ORDER BY s.start_time DESC LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(skip)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if err := loadItems(ctx, r.DB, s); err != nil {
			return nil, err
		}
		if err := loadPayments(ctx, r.DB, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

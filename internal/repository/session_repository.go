package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/snooker-house-api/internal/billing"
	"github.com/iliyamo/snooker-house-api/internal/model"
)

// SessionRepo is the table-session engine. Every mutating operation
// runs inside a transaction: the session row is locked FOR UPDATE,
// state checks run against the locked row, stock moves use the
// product repo's guarded helpers, and the operation finishes by
// recomputing every derived field through the billing package and
// persisting the result. Either the whole operation lands or none of
// it does.
type SessionRepo struct {
	DB       *sql.DB
	Products *ProductRepo
	Tables   *TableRepo
}

func NewSessionRepo(db *sql.DB, products *ProductRepo, tables *TableRepo) *SessionRepo {
	if products == nil || tables == nil {
		panic("nil repository passed to NewSessionRepo")
	}
	return &SessionRepo{DB: db, Products: products, Tables: tables}
}

// getOwnedTx loads a session with its items and payments inside a
// transaction, locking the session row and verifying that userID owns
// the session's venue. Returns sql.ErrNoRows when absent and
// ErrForbidden on an ownership mismatch.
func (r *SessionRepo) getOwnedTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (*model.Session, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+`, v.owner_id
		 FROM sessions s JOIN venues v ON v.id = s.venue_id
		 WHERE s.id=? FOR UPDATE`, id)
	var s model.Session
	var customerName, customerPhone, notes sql.NullString
	var endTime, pausedAt, paidAt sql.NullTime
	var ownerID uint64
	err := row.Scan(&s.ID, &s.VenueID, &s.TableID, &s.OpenedBy, &customerName, &customerPhone,
		&s.Status, &s.StartTime, &endTime, &pausedAt, &s.TotalPausedSeconds,
		&s.PricingMethod, &s.MinuteRate, &s.FrameRate, &s.KittiRate, &s.Frames, &s.Kittis, &notes,
		&s.TotalItems, &s.ItemsCost, &s.ItemsRevenue, &s.ItemsProfit, &s.GameCost, &s.TotalCost,
		&s.PaymentStatus, &s.TotalPaid, &s.Remaining, &paidAt, &s.CreatedAt, &s.UpdatedAt, &ownerID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
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
	if err := loadItems(ctx, tx, &s); err != nil {
		return nil, err
	}
	if err := loadPayments(ctx, tx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// saveTx persists a session's mutable and derived columns.
func (r *SessionRepo) saveTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status=?, end_time=?, paused_at=?, total_paused_seconds=?,
		        frames=?, kittis=?, notes=?,
		        total_items=?, items_cost=?, items_revenue=?, items_profit=?, game_cost=?, total_cost=?,
		        payment_status=?, total_paid=?, remaining=?, paid_at=?
		 WHERE id=?`,
		s.Status, s.EndTime, s.PausedAt, s.TotalPausedSeconds,
		s.Frames, s.Kittis, s.Notes,
		s.TotalItems, s.ItemsCost, s.ItemsRevenue, s.ItemsProfit, s.GameCost, s.TotalCost,
		s.PaymentStatus, s.TotalPaid, s.Remaining, s.PaidAt,
		s.ID)
	return err
}

// withTx runs fn inside a transaction and commits when it succeeds.
func (r *SessionRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Start opens a session on a table. It fails when the table does not
// exist, the caller does not own its venue, the table is not active,
// the table is occupied, or an open session already references it.
// On success the table's pricing is snapshotted into the session and
// the table is flagged occupied and linked to it.
func (r *SessionRepo) Start(ctx context.Context, tableID, userID uint64, customerName, customerPhone, notes *string) (*model.Session, error) {
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		t, err := r.Tables.GetForUpdateTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		var ownerID uint64
		if err := tx.QueryRowContext(ctx,
			"SELECT owner_id FROM venues WHERE id=?", t.VenueID).Scan(&ownerID); err != nil {
			return err
		}
		if ownerID != userID {
			return ErrForbidden
		}
		if t.Status != model.TableStatusActive {
			return ErrInvalidState
		}
		if t.IsOccupied {
			return ErrTableOccupied
		}
		var open int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sessions WHERE table_id=? AND status IN (?,?)",
			tableID, model.SessionStatusActive, model.SessionStatusPaused).Scan(&open); err != nil {
			return err
		}
		if open > 0 {
			return ErrTableOccupied
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (venue_id, table_id, opened_by, customer_name, customer_phone, status,
			        start_time, pricing_method, minute_rate, frame_rate, kitti_rate, notes, payment_status)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			t.VenueID, t.ID, userID, customerName, customerPhone, model.SessionStatusActive,
			now, t.PricingMethod, t.MinuteRate, t.FrameRate, t.KittiRate, notes, model.PaymentStatusPending)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		sid := uint64(id)
		if err := r.Tables.SetOccupiedTx(ctx, tx, t.ID, true, &sid); err != nil {
			return err
		}
		out, err = r.getOwnedTx(ctx, tx, sid, userID)
		return err
	})
	return out, err
}

// Get loads a session with items and payments after verifying venue
// ownership.
func (r *SessionRepo) Get(ctx context.Context, id, userID uint64) (*model.Session, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM sessions s JOIN venues v ON v.id = s.venue_id
		 WHERE s.id=? AND v.owner_id=? LIMIT 1`, id, userID)
	s, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			// distinguish missing from foreign so 403s are accurate
			var n int
			if e := r.DB.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM sessions WHERE id=?", id).Scan(&n); e == nil && n > 0 {
				return nil, ErrForbidden
			}
		}
		return nil, err
	}
	if err := loadItems(ctx, r.DB, s); err != nil {
		return nil, err
	}
	if err := loadPayments(ctx, r.DB, s); err != nil {
		return nil, err
	}
	return s, nil
}

// AddItem appends a product snapshot to an open session, decrementing
// stock with the guarded update so the purchase can never oversell.
func (r *SessionRepo) AddItem(ctx context.Context, sessionID, userID, productID uint64, qty uint32) (*model.Session, error) {
	if qty == 0 {
		return nil, ErrInvalidState
	}
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getOwnedTx(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if !s.Open() {
			return ErrInvalidState
		}
		var p model.Product
		err = tx.QueryRowContext(ctx,
			`SELECT id, venue_id, name, cost_price, selling_price, current_stock
			 FROM products WHERE id=? AND venue_id=? LIMIT 1`,
			productID, s.VenueID).Scan(&p.ID, &p.VenueID, &p.Name, &p.CostPrice, &p.SellingPrice, &p.CurrentStock)
		if err != nil {
			return err
		}
		if err := r.Products.DecrementStockTx(ctx, tx, p.ID, qty); err != nil {
			return err
		}
		now := time.Now().UTC()
		it := billing.NewItem(&p, qty, now)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO session_items (session_id, product_id, name, quantity, cost_price, selling_price, total_cost, total_revenue, profit)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			s.ID, it.ProductID, it.Name, it.Quantity, it.CostPrice, it.SellingPrice, it.TotalCost, it.TotalRevenue, it.Profit)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		it.ID = uint64(itemID)
		it.SessionID = s.ID
		s.Items = append(s.Items, it)
		billing.Recalculate(s, now)
		if err := r.saveTx(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// RemoveItem deletes an item from an open session and restores its
// quantity to the product's stock.
func (r *SessionRepo) RemoveItem(ctx context.Context, sessionID, userID, itemID uint64) (*model.Session, error) {
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getOwnedTx(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if !s.Open() {
			return ErrInvalidState
		}
		idx := -1
		for i := range s.Items {
			if s.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return sql.ErrNoRows
		}
		it := s.Items[idx]
		if err := r.Products.RestoreStockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM session_items WHERE id=? AND session_id=?", it.ID, s.ID); err != nil {
			return err
		}
		s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
		billing.Recalculate(s, time.Now().UTC())
		if err := r.saveTx(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// Pause stops the billing clock. Only valid from active.
func (r *SessionRepo) Pause(ctx context.Context, sessionID, userID uint64) (*model.Session, error) {
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if s.Status != model.SessionStatusActive {
			return ErrInvalidState
		}
		s.Status = model.SessionStatusPaused
		s.PausedAt = &now
		return nil
	})
}

// Resume restarts the billing clock, folding the finished pause into
// the cumulative paused time. Only valid from paused.
func (r *SessionRepo) Resume(ctx context.Context, sessionID, userID uint64) (*model.Session, error) {
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if s.Status != model.SessionStatusPaused || s.PausedAt == nil {
			return ErrInvalidState
		}
		s.TotalPausedSeconds += int64(now.Sub(*s.PausedAt) / time.Second)
		s.PausedAt = nil
		s.Status = model.SessionStatusActive
		return nil
	})
}

// UpdateFramesKittis sets the game counters on an open session. The
// counters only affect cost under frame_kitti pricing but are stored
// regardless.
func (r *SessionRepo) UpdateFramesKittis(ctx context.Context, sessionID, userID uint64, frames, kittis uint32) (*model.Session, error) {
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if !s.Open() {
			return ErrInvalidState
		}
		s.Frames = frames
		s.Kittis = kittis
		return nil
	})
}

// AddNotes replaces the operator notes on an open session.
func (r *SessionRepo) AddNotes(ctx context.Context, sessionID, userID uint64, notes string) (*model.Session, error) {
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if !s.Open() {
			return ErrInvalidState
		}
		s.Notes = &notes
		return nil
	})
}

// mutate runs a state change on an owned open-or-terminal session and
// finishes with the mandatory recompute-and-save.
func (r *SessionRepo) mutate(ctx context.Context, sessionID, userID uint64, fn func(s *model.Session, now time.Time) error) (*model.Session, error) {
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getOwnedTx(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := fn(s, now); err != nil {
			return err
		}
		billing.Recalculate(s, now)
		if err := r.appendPaymentsTx(ctx, tx, s); err != nil {
			return err
		}
		if err := r.saveTx(ctx, tx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// RecordPayment appends a ledger entry and re-derives the payment
// status. Partial amounts leave the session in credit.
func (r *SessionRepo) RecordPayment(ctx context.Context, sessionID, userID uint64, method string, amount float64, transactionID, notes *string) (*model.Session, error) {
	if !model.ValidSessionPaymentMethod(method) || amount <= 0 {
		return nil, ErrInvalidState
	}
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if !s.Open() {
			return ErrInvalidState
		}
		return r.insertPaymentTxless(ctx, s, method, amount, transactionID, notes, now)
	})
}

// insertPaymentTxless appends the entry in memory; the surrounding
// mutate call persists the row before commit via appendPaymentsTx.
func (r *SessionRepo) insertPaymentTxless(ctx context.Context, s *model.Session, method string, amount float64, transactionID, notes *string, now time.Time) error {
	s.Payments = append(s.Payments, model.SessionPayment{
		SessionID:     s.ID,
		Method:        method,
		Amount:        amount,
		TransactionID: transactionID,
		Notes:         notes,
		CreatedAt:     now,
	})
	return nil
}

// MarkAsPaid settles the remaining balance in a single ledger entry.
// Totals are recomputed first so the charged amount reflects the
// latest items and elapsed time. A session whose total is zero is
// stamped paid directly; a zero ledger entry would derive to pending.
func (r *SessionRepo) MarkAsPaid(ctx context.Context, sessionID, userID uint64, method string, transactionID, notes *string) (*model.Session, error) {
	if !model.ValidSessionPaymentMethod(method) {
		return nil, ErrInvalidState
	}
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if !s.Open() {
			return ErrInvalidState
		}
		billing.Recalculate(s, now)
		if s.Remaining > 0 {
			return r.insertPaymentTxless(ctx, s, method, s.Remaining, transactionID, notes, now)
		}
		if s.PaymentStatus != model.PaymentStatusPaid {
			s.PaymentStatus = model.PaymentStatusPaid
			if s.PaidAt == nil {
				t := now
				s.PaidAt = &t
			}
		}
		return nil
	})
}

// MarkAsCredit forces the payment status to credit without touching
// the ledger: the operator is deferring collection. The billing
// recompute preserves this override while nothing has been paid; the
// first real payment re-derives the status canonically.
func (r *SessionRepo) MarkAsCredit(ctx context.Context, sessionID, userID uint64, notes *string) (*model.Session, error) {
	return r.mutate(ctx, sessionID, userID, func(s *model.Session, now time.Time) error {
		if !s.Open() {
			return ErrInvalidState
		}
		s.PaymentStatus = model.PaymentStatusCredit
		if notes != nil {
			s.Notes = notes
		}
		return nil
	})
}

// ConfirmPayment is the gate before ending a session: paid settles the
// remaining balance with the given method, credit defers collection.
func (r *SessionRepo) ConfirmPayment(ctx context.Context, sessionID, userID uint64, status, method string, transactionID, notes *string) (*model.Session, error) {
	switch status {
	case model.PaymentStatusPaid:
		return r.MarkAsPaid(ctx, sessionID, userID, method, transactionID, notes)
	case model.PaymentStatusCredit:
		return r.MarkAsCredit(ctx, sessionID, userID, notes)
	default:
		return nil, ErrInvalidState
	}
}

// End completes a session. It fails with ErrPaymentPending while the
// recomputed payment status is pending; the session returned alongside
// the error carries the current cost so the handler can render the
// amount due. On success any open pause is folded in, the end time is
// stamped, and the table is freed.
func (r *SessionRepo) End(ctx context.Context, sessionID, userID uint64, notes *string) (*model.Session, error) {
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getOwnedTx(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if !s.Open() {
			return ErrInvalidState
		}
		now := time.Now().UTC()
		billing.Recalculate(s, now)
		if s.PaymentStatus == model.PaymentStatusPending {
			out = s
			return ErrPaymentPending
		}
		if s.Status == model.SessionStatusPaused && s.PausedAt != nil {
			s.TotalPausedSeconds += int64(now.Sub(*s.PausedAt) / time.Second)
			s.PausedAt = nil
		}
		s.Status = model.SessionStatusCompleted
		s.EndTime = &now
		if notes != nil {
			s.Notes = notes
		}
		billing.Recalculate(s, now)
		if err := r.appendPaymentsTx(ctx, tx, s); err != nil {
			return err
		}
		if err := r.saveTx(ctx, tx, s); err != nil {
			return err
		}
		if err := r.Tables.SetOccupiedTx(ctx, tx, s.TableID, false, nil); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// Cancel aborts an open session: every item's quantity goes back to
// its product's stock, the payment ledger and all derived payment
// fields reset to their initial state, and the table is freed.
// Completed and cancelled sessions are terminal; cancelling again
// would restore the same stock twice. Money already collected is not
// refunded by this path; that is an operator concern outside the
// system.
func (r *SessionRepo) Cancel(ctx context.Context, sessionID, userID uint64) (*model.Session, error) {
	var out *model.Session
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		s, err := r.getOwnedTx(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if !s.Open() {
			return ErrInvalidState
		}
		now := time.Now().UTC()
		for i := range s.Items {
			if err := r.Products.RestoreStockTx(ctx, tx, s.Items[i].ProductID, s.Items[i].Quantity); err != nil {
				return err
			}
		}
		if s.Status == model.SessionStatusPaused && s.PausedAt != nil {
			s.TotalPausedSeconds += int64(now.Sub(*s.PausedAt) / time.Second)
			s.PausedAt = nil
		}
		s.Status = model.SessionStatusCancelled
		s.EndTime = &now
		billing.Recalculate(s, now)
		billing.ResetPayments(s)
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM session_payments WHERE session_id=?", s.ID); err != nil {
			return err
		}
		if err := r.saveTx(ctx, tx, s); err != nil {
			return err
		}
		if err := r.Tables.SetOccupiedTx(ctx, tx, s.TableID, false, nil); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// appendPaymentsTx persists ledger entries that exist in memory but
// not yet in the database (ID zero).
func (r *SessionRepo) appendPaymentsTx(ctx context.Context, tx *sql.Tx, s *model.Session) error {
	for i := range s.Payments {
		p := &s.Payments[i]
		if p.ID != 0 {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO session_payments (session_id, method, amount, transaction_id, notes)
			 VALUES (?,?,?,?,?)`,
			s.ID, p.Method, p.Amount, p.TransactionID, p.Notes)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = uint64(id)
	}
	return nil
}

// CalculateCurrentCost recomputes a session's cost as of now without
// persisting anything. Used by the cost preview endpoint.
func (r *SessionRepo) CalculateCurrentCost(ctx context.Context, sessionID, userID uint64) (*model.Session, error) {
	s, err := r.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	billing.Recalculate(s, time.Now().UTC())
	return s, nil
}

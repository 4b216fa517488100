package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// TableRepo provides CRUD operations for snooker tables. Ownership is
// resolved by joining through venues: a user may touch a table only
// when they own the venue it belongs to.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

const tableColumns = `t.id, t.venue_id, t.number, t.name, t.status, t.pricing_method,
       t.minute_rate, t.frame_rate, t.kitti_rate, t.is_occupied, t.current_session_id,
       t.created_at, t.updated_at`

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var t model.Table
	var sessionID sql.NullInt64
	err := row.Scan(&t.ID, &t.VenueID, &t.Number, &t.Name, &t.Status, &t.PricingMethod,
		&t.MinuteRate, &t.FrameRate, &t.KittiRate, &t.IsOccupied, &sessionID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if sessionID.Valid {
		sid := uint64(sessionID.Int64)
		t.CurrentSessionID = &sid
	}
	return t, nil
}

// Create inserts a table into a venue. The (venue_id, number) pair is
// unique; MySQL duplicate-key errors map to ErrConflict.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO tables (venue_id, number, name, status, pricing_method, minute_rate, frame_rate, kitti_rate)
		 VALUES (?,?,?,?,?,?,?,?)`,
		t.VenueID, t.Number, t.Name, t.Status, t.PricingMethod, t.MinuteRate, t.FrameRate, t.KittiRate)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a table by id.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM tables t WHERE t.id=? LIMIT 1", id)
	return scanTable(row)
}

// GetOwned fetches a table and verifies that userID owns its venue in
// one round trip. Returns sql.ErrNoRows when the table does not exist
// and ErrForbidden when the venue belongs to someone else.
func (r *TableRepo) GetOwned(ctx context.Context, id, userID uint64) (model.Table, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+tableColumns+`, v.owner_id
		 FROM tables t JOIN venues v ON v.id = t.venue_id
		 WHERE t.id=? LIMIT 1`, id)
	var t model.Table
	var sessionID sql.NullInt64
	var ownerID uint64
	err := row.Scan(&t.ID, &t.VenueID, &t.Number, &t.Name, &t.Status, &t.PricingMethod,
		&t.MinuteRate, &t.FrameRate, &t.KittiRate, &t.IsOccupied, &sessionID,
		&t.CreatedAt, &t.UpdatedAt, &ownerID)
	if err != nil {
		return t, err
	}
	if ownerID != userID {
		return t, ErrForbidden
	}
	if sessionID.Valid {
		sid := uint64(sessionID.Int64)
		t.CurrentSessionID = &sid
	}
	return t, nil
}

// ListByVenue returns all tables in a venue ordered by number.
func (r *TableRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tableColumns+" FROM tables t WHERE t.venue_id=? ORDER BY t.number", venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update modifies a table's configuration. Rate or pricing changes do
// not touch open sessions; each session carries its own pricing
// snapshot. Occupied tables cannot be moved out of active status.
func (r *TableRepo) Update(ctx context.Context, t *model.Table, userID uint64) error {
	cur, err := r.GetOwned(ctx, t.ID, userID)
	if err != nil {
		return err
	}
	if cur.IsOccupied && t.Status != model.TableStatusActive {
		return ErrInvalidState
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE tables SET number=?, name=?, status=?, pricing_method=?, minute_rate=?, frame_rate=?, kitti_rate=?
		 WHERE id=?`,
		t.Number, t.Name, t.Status, t.PricingMethod, t.MinuteRate, t.FrameRate, t.KittiRate, t.ID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Delete removes a table after verifying ownership. Tables that are
// occupied or have recorded sessions return ErrConflict.
func (r *TableRepo) Delete(ctx context.Context, id, userID uint64) error {
	cur, err := r.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if cur.IsOccupied {
		return ErrConflict
	}
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE table_id=?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM tables WHERE id=?", id)
	return err
}

// GetForUpdateTx locks a table row inside a transaction. StartSession
// uses this so two concurrent starts on the same table serialize and
// the occupancy invariant holds.
func (r *TableRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Table, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM tables t WHERE t.id=? FOR UPDATE", id)
	return scanTable(row)
}

// SetOccupiedTx flags a table occupied/free and links or clears the
// current session reference within a transaction.
func (r *TableRepo) SetOccupiedTx(ctx context.Context, tx *sql.Tx, id uint64, occupied bool, sessionID *uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE tables SET is_occupied=?, current_session_id=? WHERE id=?",
		occupied, sessionID, id)
	return err
}

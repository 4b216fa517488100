package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// VenueRepo provides CRUD operations for venues (snooker houses).
// Every query that reads or mutates a venue on behalf of a user
// enforces ownership; there is exactly one authorization rule in the
// system and it lives here: a user owns a resource iff they own the
// venue it belongs to.
type VenueRepo struct{ DB *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{DB: db} }

// Owns reports whether userID owns venueID. sql.ErrNoRows means the
// venue does not exist.
func (r *VenueRepo) Owns(ctx context.Context, venueID, userID uint64) error {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT owner_id FROM venues WHERE id=? LIMIT 1", venueID).Scan(&ownerID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	return nil
}

// Create inserts a venue for the given owner and returns its ID.
func (r *VenueRepo) Create(ctx context.Context, ownerID uint64, name string, address, phone *string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO venues (owner_id, name, address, phone) VALUES (?,?,?,?)",
		ownerID, name, address, phone)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a venue by id.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	var v model.Venue
	var address, phone sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_id, name, address, phone, is_active, created_at, updated_at FROM venues WHERE id=? LIMIT 1",
		id).Scan(&v.ID, &v.OwnerID, &v.Name, &address, &phone, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return v, err
	}
	if address.Valid {
		a := address.String
		v.Address = &a
	}
	if phone.Valid {
		p := phone.String
		v.Phone = &p
	}
	return v, nil
}

// ListByOwner returns all venues belonging to a user, newest first.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, owner_id, name, address, phone, is_active, created_at, updated_at FROM venues WHERE owner_id=? ORDER BY created_at DESC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		var address, phone sql.NullString
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Name, &address, &phone, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if address.Valid {
			a := address.String
			v.Address = &a
		}
		if phone.Valid {
			p := phone.String
			v.Phone = &p
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update modifies a venue's mutable fields after verifying ownership.
func (r *VenueRepo) Update(ctx context.Context, id, userID uint64, name string, address, phone *string, isActive bool) error {
	if err := r.Owns(ctx, id, userID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE venues SET name=?, address=?, phone=?, is_active=? WHERE id=?",
		name, address, phone, isActive, id)
	return err
}

// Delete removes a venue after verifying ownership. Venues with any
// recorded sessions or sales cannot be deleted; ErrConflict is
// returned so history stays intact.
func (r *VenueRepo) Delete(ctx context.Context, id, userID uint64) error {
	if err := r.Owns(ctx, id, userID); err != nil {
		return err
	}
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM sessions WHERE venue_id=?) +
		        (SELECT COUNT(*) FROM sales WHERE venue_id=?)`, id, id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM venues WHERE id=?", id)
	return err
}

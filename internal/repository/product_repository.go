package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// ProductRepo provides CRUD and stock operations for the inventory
// ledger. Stock never goes negative: the manual adjustment endpoint
// clamps at zero, and the purchase paths use a guarded decrement that
// fails with ErrInsufficientStock instead of underflowing.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = `p.id, p.venue_id, p.name, p.barcode, p.category, p.cost_price,
       p.selling_price, p.current_stock, p.min_stock, p.unit, p.status, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	var barcode sql.NullString
	err := row.Scan(&p.ID, &p.VenueID, &p.Name, &barcode, &p.Category, &p.CostPrice,
		&p.SellingPrice, &p.CurrentStock, &p.MinStock, &p.Unit, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if barcode.Valid {
		b := barcode.String
		p.Barcode = &b
	}
	return p, nil
}

// Create inserts a product. Name and barcode are unique per venue;
// duplicates map to ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (venue_id, name, barcode, category, cost_price, selling_price, current_stock, min_stock, unit, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.VenueID, p.Name, p.Barcode, p.Category, p.CostPrice, p.SellingPrice, p.CurrentStock, p.MinStock, p.Unit, p.Status)
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

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p WHERE p.id=? LIMIT 1", id)
	return scanProduct(row)
}

// GetOwned fetches a product and verifies venue ownership in one
// query, mirroring TableRepo.GetOwned.
func (r *ProductRepo) GetOwned(ctx context.Context, id, userID uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+productColumns+`, v.owner_id
		 FROM products p JOIN venues v ON v.id = p.venue_id
		 WHERE p.id=? LIMIT 1`, id)
	var p model.Product
	var barcode sql.NullString
	var ownerID uint64
	err := row.Scan(&p.ID, &p.VenueID, &p.Name, &barcode, &p.Category, &p.CostPrice,
		&p.SellingPrice, &p.CurrentStock, &p.MinStock, &p.Unit, &p.Status, &p.CreatedAt, &p.UpdatedAt, &ownerID)
	if err != nil {
		return p, err
	}
	if ownerID != userID {
		return p, ErrForbidden
	}
	if barcode.Valid {
		b := barcode.String
		p.Barcode = &b
	}
	return p, nil
}

// ListByVenue returns a venue's products, optionally filtered by
// category and status, ordered by name.
func (r *ProductRepo) ListByVenue(ctx context.Context, venueID uint64, category, status string) ([]model.Product, error) {
	q := "SELECT " + productColumns + " FROM products p WHERE p.venue_id=?"
	args := []any{venueID}
	if category != "" {
		q += " AND p.category=?"
		args = append(args, category)
	}
	if status != "" {
		q += " AND p.status=?"
		args = append(args, status)
	}
	q += " ORDER BY p.name"
	rows, err := r.DB.QueryContext(ctx, q, args...)
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

// Update modifies a product's catalog fields. Stock changes go through
// UpdateStock, not here, so price edits cannot silently clobber a
// concurrent stock movement.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product, userID uint64) error {
	if _, err := r.GetOwned(ctx, p.ID, userID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE products SET name=?, barcode=?, category=?, cost_price=?, selling_price=?, min_stock=?, unit=?, status=?
		 WHERE id=?`,
		p.Name, p.Barcode, p.Category, p.CostPrice, p.SellingPrice, p.MinStock, p.Unit, p.Status, p.ID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// Delete removes a product after verifying ownership. Products that
// appear in any session or sale line return ErrConflict so snapshots
// keep a valid reference.
func (r *ProductRepo) Delete(ctx context.Context, id, userID uint64) error {
	if _, err := r.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM session_items WHERE product_id=?) +
		        (SELECT COUNT(*) FROM sale_items WHERE product_id=?)`, id, id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	return err
}

// UpdateStock applies a manual stock adjustment: add increments,
// subtract decrements clamping at zero (silent floor, no error), set
// assigns. Returns the product with its fresh stock level.
func (r *ProductRepo) UpdateStock(ctx context.Context, id, userID uint64, quantity uint32, op string) (model.Product, error) {
	if _, err := r.GetOwned(ctx, id, userID); err != nil {
		return model.Product{}, err
	}
	var q string
	switch op {
	case model.StockOpAdd:
		q = "UPDATE products SET current_stock = current_stock + ? WHERE id=?"
	case model.StockOpSubtract:
		q = "UPDATE products SET current_stock = GREATEST(0, CAST(current_stock AS SIGNED) - ?) WHERE id=?"
	case model.StockOpSet:
		q = "UPDATE products SET current_stock = ? WHERE id=?"
	default:
		return model.Product{}, ErrInvalidState
	}
	if _, err := r.DB.ExecContext(ctx, q, quantity, id); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// DecrementStockTx atomically takes qty units off a product inside a
// transaction. The WHERE guard makes overselling impossible: when the
// row no longer has qty units the update matches nothing and
// ErrInsufficientStock is returned.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET current_stock = current_stock - ? WHERE id=? AND current_stock >= ?",
		qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStockTx returns qty units to a product inside a transaction.
// Used by item removal, session cancellation and sale cancellation.
func (r *ProductRepo) RestoreStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE products SET current_stock = current_stock + ? WHERE id=?", qty, id)
	return err
}

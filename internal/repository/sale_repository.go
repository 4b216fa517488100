package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/snooker-house-api/internal/model"
)

// SaleRepo persists standalone point-of-sale transactions. Creating a
// sale is a single transaction: stock is taken with the guarded
// decrement per line, item prices are snapshotted, totals are summed
// and the per-venue per-day sale number is allocated under the same
// lock window.
type SaleRepo struct {
	DB       *sql.DB
	Products *ProductRepo
}

func NewSaleRepo(db *sql.DB, products *ProductRepo) *SaleRepo {
	if products == nil {
		panic("nil repository passed to NewSaleRepo")
	}
	return &SaleRepo{DB: db, Products: products}
}

// SaleLine is one requested line of a new sale.
type SaleLine struct {
	ProductID uint64
	Quantity  uint32
}

// Create records a sale for a venue the user owns. Every line must
// reference a product of the same venue with enough stock.
func (r *SaleRepo) Create(ctx context.Context, venueID, userID uint64, method string, customerName, customerPhone *string, lines []SaleLine) (*model.Sale, error) {
	if !model.ValidSaleMethod(method) || len(lines) == 0 {
		return nil, ErrInvalidState
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT owner_id FROM venues WHERE id=? FOR UPDATE", venueID).Scan(&ownerID); err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	// allocate the daily sequence number; the venue row lock above
	// serializes concurrent allocations for the same venue
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var seq int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*)+1 FROM sales WHERE venue_id=? AND created_at >= ?",
		venueID, dayStart).Scan(&seq); err != nil {
		return nil, err
	}
	saleNumber := fmt.Sprintf("SALE-%s-%04d", now.Format("20060102"), seq)

	sale := &model.Sale{
		VenueID:       venueID,
		SoldBy:        userID,
		SaleNumber:    saleNumber,
		Status:        model.SaleStatusCompleted,
		PaymentMethod: method,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
	}
	for _, line := range lines {
		if line.Quantity == 0 {
			return nil, ErrInvalidState
		}
		var p model.Product
		err := tx.QueryRowContext(ctx,
			"SELECT id, name, cost_price, selling_price FROM products WHERE id=? AND venue_id=? LIMIT 1",
			line.ProductID, venueID).Scan(&p.ID, &p.Name, &p.CostPrice, &p.SellingPrice)
		if err != nil {
			return nil, err
		}
		if err := r.Products.DecrementStockTx(ctx, tx, p.ID, line.Quantity); err != nil {
			return nil, err
		}
		it := model.SaleItem{
			ProductID:    p.ID,
			Name:         p.Name,
			Quantity:     line.Quantity,
			CostPrice:    p.CostPrice,
			SellingPrice: p.SellingPrice,
			TotalCost:    float64(line.Quantity) * p.CostPrice,
			TotalRevenue: float64(line.Quantity) * p.SellingPrice,
			Profit:       float64(line.Quantity) * (p.SellingPrice - p.CostPrice),
		}
		sale.Items = append(sale.Items, it)
		sale.TotalItems += it.Quantity
		sale.TotalCost += it.TotalCost
		sale.TotalRevenue += it.TotalRevenue
	}
	sale.TotalProfit = sale.TotalRevenue - sale.TotalCost

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sales (venue_id, sold_by, sale_number, status, payment_method, customer_name, customer_phone,
		        total_items, total_cost, total_revenue, total_profit)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		sale.VenueID, sale.SoldBy, sale.SaleNumber, sale.Status, sale.PaymentMethod,
		sale.CustomerName, sale.CustomerPhone,
		sale.TotalItems, sale.TotalCost, sale.TotalRevenue, sale.TotalProfit)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	sale.ID = uint64(id)
	for i := range sale.Items {
		it := &sale.Items[i]
		it.SaleID = sale.ID
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sale_items (sale_id, product_id, name, quantity, cost_price, selling_price, total_cost, total_revenue, profit)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			it.SaleID, it.ProductID, it.Name, it.Quantity, it.CostPrice, it.SellingPrice,
			it.TotalCost, it.TotalRevenue, it.Profit)
		if err != nil {
			return nil, err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		it.ID = uint64(itemID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	sale.CreatedAt = now
	sale.UpdatedAt = now
	return sale, nil
}

const saleColumns = `sl.id, sl.venue_id, sl.sold_by, sl.sale_number, sl.status, sl.payment_method,
       sl.customer_name, sl.customer_phone, sl.total_items, sl.total_cost, sl.total_revenue, sl.total_profit,
       sl.created_at, sl.updated_at`

func scanSale(row interface{ Scan(...any) error }) (*model.Sale, error) {
	var s model.Sale
	var customerName, customerPhone sql.NullString
	err := row.Scan(&s.ID, &s.VenueID, &s.SoldBy, &s.SaleNumber, &s.Status, &s.PaymentMethod,
		&customerName, &customerPhone, &s.TotalItems, &s.TotalCost, &s.TotalRevenue, &s.TotalProfit,
		&s.CreatedAt, &s.UpdatedAt)
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
	return &s, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, q rowQuerier, s *model.Sale) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, sale_id, product_id, name, quantity, cost_price, selling_price, total_cost, total_revenue, profit
		 FROM sale_items WHERE sale_id=? ORDER BY id`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Name, &it.Quantity,
			&it.CostPrice, &it.SellingPrice, &it.TotalCost, &it.TotalRevenue, &it.Profit); err != nil {
			return err
		}
		s.Items = append(s.Items, it)
	}
	return rows.Err()
}

// Get loads a sale with its items after verifying venue ownership.
func (r *SaleRepo) Get(ctx context.Context, id, userID uint64) (*model.Sale, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+saleColumns+`, v.owner_id
		 FROM sales sl JOIN venues v ON v.id = sl.venue_id
		 WHERE sl.id=? LIMIT 1`, id)
	var s model.Sale
	var customerName, customerPhone sql.NullString
	var ownerID uint64
	err := row.Scan(&s.ID, &s.VenueID, &s.SoldBy, &s.SaleNumber, &s.Status, &s.PaymentMethod,
		&customerName, &customerPhone, &s.TotalItems, &s.TotalCost, &s.TotalRevenue, &s.TotalProfit,
		&s.CreatedAt, &s.UpdatedAt, &ownerID)
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
	if err := r.loadItems(ctx, r.DB, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaleFilter narrows the sales listing.
type SaleFilter struct {
	Method   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Skip     int
}

// ListByVenue returns a venue's sales, newest first, after verifying
// ownership.
func (r *SaleRepo) ListByVenue(ctx context.Context, venueID, userID uint64, f SaleFilter) ([]*model.Sale, error) {
	var ownerID uint64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT owner_id FROM venues WHERE id=? LIMIT 1", venueID).Scan(&ownerID); err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	q := "SELECT " + saleColumns + " FROM sales sl WHERE sl.venue_id=?"
	args := []any{venueID}
	if f.Method != "" {
		q += " AND sl.payment_method=?"
		args = append(args, f.Method)
	}
	if f.DateFrom != nil {
		q += " AND sl.created_at >= ?"
		args = append(args, *f.DateFrom)
	}
	if f.DateTo != nil {
		// strict upper bound; callers pass the midnight after the
		// last included day
		q += " AND sl.created_at < ?"
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
	q += " ORDER BY sl.created_at DESC LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(skip)
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if err := r.loadItems(ctx, r.DB, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Cancel voids a sale and restores every line's quantity to stock.
// Already-cancelled sales return ErrInvalidState.
func (r *SaleRepo) Cancel(ctx context.Context, id, userID uint64) (*model.Sale, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+saleColumns+`, v.owner_id
		 FROM sales sl JOIN venues v ON v.id = sl.venue_id
		 WHERE sl.id=? FOR UPDATE`, id)
	var s model.Sale
	var customerName, customerPhone sql.NullString
	var ownerID uint64
	err = row.Scan(&s.ID, &s.VenueID, &s.SoldBy, &s.SaleNumber, &s.Status, &s.PaymentMethod,
		&customerName, &customerPhone, &s.TotalItems, &s.TotalCost, &s.TotalRevenue, &s.TotalProfit,
		&s.CreatedAt, &s.UpdatedAt, &ownerID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	if s.Status == model.SaleStatusCancelled {
		return nil, ErrInvalidState
	}
	if customerName.Valid {
		v := customerName.String
		s.CustomerName = &v
	}
	if customerPhone.Valid {
		v := customerPhone.String
		s.CustomerPhone = &v
	}
	if err := r.loadItems(ctx, tx, &s); err != nil {
		return nil, err
	}
	for i := range s.Items {
		if err := r.Products.RestoreStockTx(ctx, tx, s.Items[i].ProductID, s.Items[i].Quantity); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE sales SET status=? WHERE id=?", model.SaleStatusCancelled, s.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	s.Status = model.SaleStatusCancelled
	return &s, nil
}

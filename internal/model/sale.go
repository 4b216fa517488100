package model

import "time"

// Sale statuses.
const (
    SaleStatusCompleted = "completed"
    SaleStatusCancelled = "cancelled"
)

// Payment methods accepted at the point-of-sale counter.  This is a
// different enumeration from the session payment methods in session.go
// (credit exists here as a method, not only as a derived status).
const (
    SaleMethodCash   = "cash"
    SaleMethodCard   = "card"
    SaleMethodMobile = "mobile"
    SaleMethodCredit = "credit"
)

// ValidSaleMethod reports whether m is one of the methods accepted for
// counter sales.
func ValidSaleMethod(m string) bool {
    switch m {
    case SaleMethodCash, SaleMethodCard, SaleMethodMobile, SaleMethodCredit:
        return true
    }
    return false
}

// Sale is a standalone point-of-sale transaction, independent of any
// table session.  Each sale carries a sequential number unique per
// venue per day in the form SALE-YYYYMMDD-NNNN.
//
// Fields:
//  ID            – primary key identifier.
//  VenueID       – venue the sale belongs to.
//  SoldBy        – user who recorded the sale.
//  SaleNumber    – sequential per-venue per-day number.
//  Status        – completed or cancelled.
//  PaymentMethod – cash, card, mobile or credit.
//  CustomerName  – optional customer name.
//  CustomerPhone – optional customer phone.
//  TotalItems    – derived: sum of item quantities.
//  TotalCost     – derived: sum of item cost totals.
//  TotalRevenue  – derived: sum of item revenue totals.
//  TotalProfit   – derived: TotalRevenue − TotalCost.
//  Items         – item snapshots (loaded separately).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Sale struct {
    ID            uint64    // sales.id
    VenueID       uint64    // sales.venue_id
    SoldBy        uint64    // sales.sold_by
    SaleNumber    string    // sales.sale_number
    Status        string    // sales.status
    PaymentMethod string    // sales.payment_method
    CustomerName  *string   // sales.customer_name (nullable)
    CustomerPhone *string   // sales.customer_phone (nullable)
    TotalItems    uint32    // sales.total_items
    TotalCost     float64   // sales.total_cost
    TotalRevenue  float64   // sales.total_revenue
    TotalProfit   float64   // sales.total_profit
    Items         []SaleItem
    CreatedAt     time.Time // sales.created_at
    UpdatedAt     time.Time // sales.updated_at
}

// SaleItem is one line of a sale, snapshotting the product's name and
// prices at sale time exactly like SessionItem does for sessions.
//
// Fields:
//  ID           – primary key identifier.
//  SaleID       – owning sale.
//  ProductID    – product sold.
//  Name         – product name at sale time.
//  Quantity     – units sold.
//  CostPrice    – per-unit cost at sale time.
//  SellingPrice – per-unit selling price at sale time.
//  TotalCost    – Quantity × CostPrice.
//  TotalRevenue – Quantity × SellingPrice.
//  Profit       – TotalRevenue − TotalCost.
type SaleItem struct {
    ID           uint64  // sale_items.id
    SaleID       uint64  // sale_items.sale_id
    ProductID    uint64  // sale_items.product_id
    Name         string  // sale_items.name
    Quantity     uint32  // sale_items.quantity
    CostPrice    float64 // sale_items.cost_price
    SellingPrice float64 // sale_items.selling_price
    TotalCost    float64 // sale_items.total_cost
    TotalRevenue float64 // sale_items.total_revenue
    Profit       float64 // sale_items.profit
}

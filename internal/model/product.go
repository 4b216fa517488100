package model

import "time"

// Product statuses.
const (
    ProductStatusActive   = "active"
    ProductStatusInactive = "inactive"
)

// Stock operations accepted by the stock-adjustment endpoint and used
// internally by the session and sale engines.  subtract and set clamp
// at zero; stock can never go negative.
const (
    StockOpAdd      = "add"
    StockOpSubtract = "subtract"
    StockOpSet      = "set"
)

// Product is a sellable inventory item owned by a venue.  The name is
// unique per venue and the barcode, when present, is unique per venue
// as well.  CurrentStock is the live quantity on hand; MinStock is the
// threshold below which the product shows up in low-stock reports.
//
// Fields:
//  ID           – primary key identifier.
//  VenueID      – venue that owns the product.
//  Name         – product name, unique per venue.
//  Barcode      – optional barcode, unique per venue when set.
//  Category     – free-form category (drinks, snacks, ...).
//  CostPrice    – purchase cost per unit.
//  SellingPrice – selling price per unit.
//  CurrentStock – units on hand, never negative.
//  MinStock     – low-stock alert threshold.
//  Unit         – unit of measure (pcs, bottle, ...).
//  Status       – active or inactive.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Product struct {
    ID           uint64    // products.id
    VenueID      uint64    // products.venue_id
    Name         string    // products.name
    Barcode      *string   // products.barcode (nullable)
    Category     string    // products.category
    CostPrice    float64   // products.cost_price
    SellingPrice float64   // products.selling_price
    CurrentStock uint32    // products.current_stock
    MinStock     uint32    // products.min_stock
    Unit         string    // products.unit
    Status       string    // products.status
    CreatedAt    time.Time // products.created_at
    UpdatedAt    time.Time // products.updated_at
}

// LowStock reports whether the product is at or below its alert
// threshold.
func (p *Product) LowStock() bool { return p.CurrentStock <= p.MinStock }

package model

import "time"

// Session lifecycle statuses.  active and paused are open states;
// completed and cancelled are terminal and no transition leaves them.
const (
    SessionStatusActive    = "active"
    SessionStatusPaused    = "paused"
    SessionStatusCompleted = "completed"
    SessionStatusCancelled = "cancelled"
)

// Payment statuses derived from the payment ledger.  pending means
// nothing has been paid, paid means the ledger covers the full cost,
// credit means a partial payment or a deferred collection.
const (
    PaymentStatusPending = "pending"
    PaymentStatusPaid    = "paid"
    PaymentStatusCredit  = "credit"
)

// Payment methods accepted when settling a table session.  These are
// distinct from the sale-level methods in sale.go; both enumerations
// exist in the upstream business and are kept separate on purpose.
const (
    PaymentMethodEsewa         = "esewa"
    PaymentMethodOnlineBanking = "online_banking"
    PaymentMethodCash          = "cash"
)

// ValidSessionPaymentMethod reports whether m is one of the methods
// accepted for session payments.
func ValidSessionPaymentMethod(m string) bool {
    switch m {
    case PaymentMethodEsewa, PaymentMethodOnlineBanking, PaymentMethodCash:
        return true
    }
    return false
}

// Session is a single table-occupancy event: one customer playing on
// one table, accumulating game time, item purchases and payments until
// the session is ended or cancelled.  Pricing fields are a snapshot of
// the table's configuration at start time.  All derived totals are
// recomputed by the billing package on every mutation; the persisted
// values are a cache refreshed before each write, never the sole
// source of truth for an open session.
//
// Fields:
//  ID                 – primary key identifier.
//  VenueID            – venue the session belongs to.
//  TableID            – table being occupied.
//  OpenedBy           – user who started the session.
//  CustomerName       – optional walk-in customer name.
//  CustomerPhone      – optional customer phone.
//  Status             – active, paused, completed or cancelled.
//  StartTime          – when the session started.
//  EndTime            – when the session ended (nil while open).
//  PausedAt           – start of the current pause (nil unless paused).
//  TotalPausedSeconds – accumulated paused time across all pauses.
//  PricingMethod      – snapshot of the table's pricing method.
//  MinuteRate         – snapshot of the per-minute rate.
//  FrameRate          – snapshot of the per-frame rate.
//  KittiRate          – snapshot of the per-kitti rate.
//  Frames             – frames played (frame_kitti pricing only).
//  Kittis             – kittis played (frame_kitti pricing only).
//  Notes              – free-form operator notes.
//  TotalItems         – derived: sum of item quantities.
//  ItemsCost          – derived: sum of item cost totals.
//  ItemsRevenue       – derived: sum of item revenue totals.
//  ItemsProfit        – derived: ItemsRevenue − ItemsCost.
//  GameCost           – derived: table-time charge.
//  TotalCost          – derived: GameCost + ItemsRevenue.
//  PaymentStatus      – pending, paid or credit.
//  TotalPaid          – derived: sum of ledger amounts.
//  Remaining          – derived: max(0, TotalCost − TotalPaid).
//  PaidAt             – stamped once when the ledger first covers the cost.
//  Items              – purchased item snapshots (loaded separately).
//  Payments           – payment ledger entries (loaded separately).
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Session struct {
    ID                 uint64     // sessions.id
    VenueID            uint64     // sessions.venue_id
    TableID            uint64     // sessions.table_id
    OpenedBy           uint64     // sessions.opened_by
    CustomerName       *string    // sessions.customer_name (nullable)
    CustomerPhone      *string    // sessions.customer_phone (nullable)
    Status             string     // sessions.status
    StartTime          time.Time  // sessions.start_time
    EndTime            *time.Time // sessions.end_time (nullable)
    PausedAt           *time.Time // sessions.paused_at (nullable)
    TotalPausedSeconds int64      // sessions.total_paused_seconds
    PricingMethod      string     // sessions.pricing_method
    MinuteRate         float64    // sessions.minute_rate
    FrameRate          float64    // sessions.frame_rate
    KittiRate          float64    // sessions.kitti_rate
    Frames             uint32     // sessions.frames
    Kittis             uint32     // sessions.kittis
    Notes              *string    // sessions.notes (nullable)
    TotalItems         uint32     // sessions.total_items
    ItemsCost          float64    // sessions.items_cost
    ItemsRevenue       float64    // sessions.items_revenue
    ItemsProfit        float64    // sessions.items_profit
    GameCost           float64    // sessions.game_cost
    TotalCost          float64    // sessions.total_cost
    PaymentStatus      string     // sessions.payment_status
    TotalPaid          float64    // sessions.total_paid
    Remaining          float64    // sessions.remaining
    PaidAt             *time.Time // sessions.paid_at (nullable)
    Items              []SessionItem
    Payments           []SessionPayment
    CreatedAt          time.Time // sessions.created_at
    UpdatedAt          time.Time // sessions.updated_at
}

// Open reports whether the session is still mutable (active or paused).
func (s *Session) Open() bool {
    return s.Status == SessionStatusActive || s.Status == SessionStatusPaused
}

// SessionItem is a purchased-item snapshot attached to a session.  The
// name and both prices are copied from the product at purchase time so
// later product edits never change a recorded sale.
//
// Fields:
//  ID           – primary key identifier.
//  SessionID    – owning session.
//  ProductID    – product the snapshot was taken from.
//  Name         – product name at purchase time.
//  Quantity     – units purchased.
//  CostPrice    – per-unit cost at purchase time.
//  SellingPrice – per-unit selling price at purchase time.
//  TotalCost    – Quantity × CostPrice.
//  TotalRevenue – Quantity × SellingPrice.
//  Profit       – TotalRevenue − TotalCost.
//  CreatedAt    – purchase timestamp.
type SessionItem struct {
    ID           uint64    // session_items.id
    SessionID    uint64    // session_items.session_id
    ProductID    uint64    // session_items.product_id
    Name         string    // session_items.name
    Quantity     uint32    // session_items.quantity
    CostPrice    float64   // session_items.cost_price
    SellingPrice float64   // session_items.selling_price
    TotalCost    float64   // session_items.total_cost
    TotalRevenue float64   // session_items.total_revenue
    Profit       float64   // session_items.profit
    CreatedAt    time.Time // session_items.created_at
}

// SessionPayment is one entry in a session's payment ledger.
//
// Fields:
//  ID            – primary key identifier.
//  SessionID     – owning session.
//  Method        – esewa, online_banking or cash.
//  Amount        – amount paid in this entry.
//  TransactionID – optional external transaction reference.
//  Notes         – optional operator notes.
//  CreatedAt     – payment timestamp.
type SessionPayment struct {
    ID            uint64    // session_payments.id
    SessionID     uint64    // session_payments.session_id
    Method        string    // session_payments.method
    Amount        float64   // session_payments.amount
    TransactionID *string   // session_payments.transaction_id (nullable)
    Notes         *string   // session_payments.notes (nullable)
    CreatedAt     time.Time // session_payments.created_at
}

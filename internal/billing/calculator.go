// Package billing implements the cost and payment arithmetic for table
// sessions.  Everything here is pure: functions take a session plus a
// clock value and mutate only the session's derived fields.  The
// repository layer calls Recalculate before every write so the
// persisted totals are always a refreshed cache of this logic, never
// an independent source of truth.
package billing

import (
    "time"

    "github.com/iliyamo/snooker-house-api/internal/model"
)

// ElapsedActive returns the billable playing time of a session at the
// given instant: wall time since start, minus all completed pauses,
// minus the currently open pause when the session is paused.  For a
// completed or cancelled session the end time caps the window.  The
// result is never negative.
func ElapsedActive(s *model.Session, now time.Time) time.Duration {
    end := now
    if s.EndTime != nil {
        end = *s.EndTime
    }
    d := end.Sub(s.StartTime) - time.Duration(s.TotalPausedSeconds)*time.Second
    if s.Status == model.SessionStatusPaused && s.PausedAt != nil {
        d -= end.Sub(*s.PausedAt)
    }
    if d < 0 {
        d = 0
    }
    return d
}

// ElapsedMinutes floors the billable time to whole minutes.
func ElapsedMinutes(s *model.Session, now time.Time) int64 {
    return int64(ElapsedActive(s, now) / time.Minute)
}

// GameCost computes the table-time charge for a session at the given
// instant using the pricing snapshot taken when the session started.
func GameCost(s *model.Session, now time.Time) float64 {
    switch s.PricingMethod {
    case model.PricingFrameKitti:
        return float64(s.Frames)*s.FrameRate + float64(s.Kittis)*s.KittiRate
    default: // per_minute
        return float64(ElapsedMinutes(s, now)) * s.MinuteRate
    }
}

// NewItem builds an item snapshot for a purchase of qty units of p at
// the given instant.  Unit prices are copied so later product edits
// never affect the recorded line.
func NewItem(p *model.Product, qty uint32, now time.Time) model.SessionItem {
    return model.SessionItem{
        ProductID:    p.ID,
        Name:         p.Name,
        Quantity:     qty,
        CostPrice:    p.CostPrice,
        SellingPrice: p.SellingPrice,
        TotalCost:    float64(qty) * p.CostPrice,
        TotalRevenue: float64(qty) * p.SellingPrice,
        Profit:       float64(qty) * (p.SellingPrice - p.CostPrice),
        CreatedAt:    now,
    }
}

// DerivePaymentStatus is the single canonical mapping from ledger sums
// to a payment status.  Nothing paid is pending; covering the full
// cost is paid; anything in between is credit.
func DerivePaymentStatus(totalPaid, totalCost float64) string {
    switch {
    case totalPaid <= 0:
        return model.PaymentStatusPending
    case totalPaid >= totalCost:
        return model.PaymentStatusPaid
    default:
        return model.PaymentStatusCredit
    }
}

// Recalculate refreshes every derived field on the session: item
// totals, game cost, grand total, paid/remaining sums and the payment
// status.  It must be called (and the result persisted) at the end of
// every mutating operation.
//
// One divergence from the pure derivation is permitted: an operator
// may force a session to credit before any money is collected
// (MarkAsCredit).  With a zero ledger the derivation would flip the
// status back to pending, so a pre-existing credit status with zero
// paid survives recalculation.  The moment a payment lands the
// canonical derivation takes over again.
func Recalculate(s *model.Session, now time.Time) {
    var count uint32
    var cost, revenue float64
    for i := range s.Items {
        it := &s.Items[i]
        count += it.Quantity
        cost += it.TotalCost
        revenue += it.TotalRevenue
    }
    s.TotalItems = count
    s.ItemsCost = cost
    s.ItemsRevenue = revenue
    s.ItemsProfit = revenue - cost
    s.GameCost = GameCost(s, now)
    s.TotalCost = s.GameCost + s.ItemsRevenue

    var paid float64
    for i := range s.Payments {
        paid += s.Payments[i].Amount
    }
    s.TotalPaid = paid
    s.Remaining = s.TotalCost - s.TotalPaid
    if s.Remaining < 0 {
        s.Remaining = 0
    }

    status := DerivePaymentStatus(s.TotalPaid, s.TotalCost)
    if status == model.PaymentStatusPending && s.PaymentStatus == model.PaymentStatusCredit {
        status = model.PaymentStatusCredit // manual credit override, see above
    }
    if status == model.PaymentStatusPending && s.PaymentStatus == model.PaymentStatusPaid && s.TotalCost == 0 {
        status = model.PaymentStatusPaid // zero-cost session already settled stays settled
    }
    s.PaymentStatus = status
    if s.PaymentStatus == model.PaymentStatusPaid && s.PaidAt == nil {
        t := now
        s.PaidAt = &t
    }
}

// ResetPayments clears the ledger and every payment-derived field back
// to the initial state.  Used by session cancellation, which reverses
// payment bookkeeping entirely (money already collected is refunded
// outside this system).
func ResetPayments(s *model.Session) {
    s.Payments = nil
    s.TotalPaid = 0
    s.Remaining = 0
    s.PaymentStatus = model.PaymentStatusPending
    s.PaidAt = nil
}

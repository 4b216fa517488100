package billing

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/snooker-house-api/internal/model"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func perMinuteSession(rate float64) *model.Session {
    return &model.Session{
        Status:        model.SessionStatusActive,
        StartTime:     t0,
        PricingMethod: model.PricingPerMinute,
        MinuteRate:    rate,
        PaymentStatus: model.PaymentStatusPending,
    }
}

func TestElapsedMinutesExcludesPausedTime(t *testing.T) {
    // start T0, pause at T0+10m, resume at T0+20m, end at T0+30m
    // => 20 active minutes, not 30.
    s := perMinuteSession(1)
    pausedAt := t0.Add(10 * time.Minute)
    s.Status = model.SessionStatusPaused
    s.PausedAt = &pausedAt
    assert.EqualValues(t, 10, ElapsedMinutes(s, t0.Add(20*time.Minute)))

    // resume folds the pause into the accumulator
    s.Status = model.SessionStatusActive
    s.PausedAt = nil
    s.TotalPausedSeconds = 600
    assert.EqualValues(t, 20, ElapsedMinutes(s, t0.Add(30*time.Minute)))

    end := t0.Add(30 * time.Minute)
    s.EndTime = &end
    s.Status = model.SessionStatusCompleted
    assert.EqualValues(t, 20, ElapsedMinutes(s, end.Add(2*time.Hour)), "end time caps the window")
}

func TestElapsedMinutesNeverNegative(t *testing.T) {
    s := perMinuteSession(1)
    s.TotalPausedSeconds = 7200 // more pause than wall time
    assert.EqualValues(t, 0, ElapsedMinutes(s, t0.Add(30*time.Minute)))
}

func TestElapsedMinutesFloorsPartialMinute(t *testing.T) {
    s := perMinuteSession(1)
    assert.EqualValues(t, 4, ElapsedMinutes(s, t0.Add(4*time.Minute+59*time.Second)))
}

func TestGameCostFrameKitti(t *testing.T) {
    s := &model.Session{
        Status:        model.SessionStatusActive,
        StartTime:     t0,
        PricingMethod: model.PricingFrameKitti,
        FrameRate:     150,
        KittiRate:     20,
        Frames:        3,
        Kittis:        5,
    }
    // frames*frameRate + kittis*kittiRate, elapsed time irrelevant
    assert.InDelta(t, 3*150+5*20, GameCost(s, t0.Add(9*time.Hour)), 1e-9)
}

func TestDerivePaymentStatus(t *testing.T) {
    cases := []struct {
        name       string
        paid, cost float64
        want       string
    }{
        {"nothing paid", 0, 500, model.PaymentStatusPending},
        {"partial", 200, 500, model.PaymentStatusCredit},
        {"exact", 500, 500, model.PaymentStatusPaid},
        {"overpaid", 600, 500, model.PaymentStatusPaid},
        {"zero cost zero paid", 0, 0, model.PaymentStatusPending},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, DerivePaymentStatus(tc.paid, tc.cost))
        })
    }
}

func TestRecalculatePaymentDerivation(t *testing.T) {
    s := perMinuteSession(2)
    now := t0.Add(50 * time.Minute) // game cost 100
    s.Items = []model.SessionItem{
        {Quantity: 2, CostPrice: 50, SellingPrice: 80, TotalCost: 100, TotalRevenue: 160, Profit: 60},
    }

    Recalculate(s, now)
    require.InDelta(t, 100, s.GameCost, 1e-9)
    require.InDelta(t, 260, s.TotalCost, 1e-9)
    assert.Equal(t, model.PaymentStatusPending, s.PaymentStatus)
    assert.InDelta(t, 260, s.Remaining, 1e-9)

    s.Payments = append(s.Payments, model.SessionPayment{Method: model.PaymentMethodCash, Amount: 100})
    Recalculate(s, now)
    assert.Equal(t, model.PaymentStatusCredit, s.PaymentStatus)
    assert.InDelta(t, 160, s.Remaining, 1e-9)
    assert.Nil(t, s.PaidAt)

    s.Payments = append(s.Payments, model.SessionPayment{Method: model.PaymentMethodEsewa, Amount: 160})
    Recalculate(s, now)
    assert.Equal(t, model.PaymentStatusPaid, s.PaymentStatus)
    assert.InDelta(t, 0, s.Remaining, 1e-9)
    require.NotNil(t, s.PaidAt)

    // PaidAt is stamped once and kept on later recalculations
    first := *s.PaidAt
    Recalculate(s, now.Add(time.Hour))
    assert.Equal(t, first, *s.PaidAt)
}

func TestRecalculateIdempotent(t *testing.T) {
    s := perMinuteSession(1.6667)
    s.Items = []model.SessionItem{
        {Quantity: 3, CostPrice: 40, SellingPrice: 60, TotalCost: 120, TotalRevenue: 180, Profit: 60},
    }
    end := t0.Add(30 * time.Minute)
    s.EndTime = &end
    s.Status = model.SessionStatusCompleted

    now := end.Add(time.Minute)
    Recalculate(s, now)
    game, revenue, total := s.GameCost, s.ItemsRevenue, s.TotalCost
    Recalculate(s, now)
    assert.Equal(t, game, s.GameCost)
    assert.Equal(t, revenue, s.ItemsRevenue)
    assert.Equal(t, total, s.TotalCost)
}

func TestCreditOverrideSurvivesRecalculate(t *testing.T) {
    // An operator may force credit before anything is paid; the zero
    // ledger must not flip the status back to pending.
    s := perMinuteSession(1)
    s.PaymentStatus = model.PaymentStatusCredit
    Recalculate(s, t0.Add(10*time.Minute))
    assert.Equal(t, model.PaymentStatusCredit, s.PaymentStatus)

    // a real payment hands control back to the canonical derivation
    s.Payments = append(s.Payments, model.SessionPayment{Method: model.PaymentMethodCash, Amount: 10})
    Recalculate(s, t0.Add(10*time.Minute))
    assert.Equal(t, model.PaymentStatusPaid, s.PaymentStatus)
}

func TestResetPayments(t *testing.T) {
    s := perMinuteSession(1)
    s.Payments = []model.SessionPayment{{Method: model.PaymentMethodCash, Amount: 100}}
    now := t0.Add(time.Hour)
    Recalculate(s, now)
    require.NotEqual(t, model.PaymentStatusPending, s.PaymentStatus)

    ResetPayments(s)
    assert.Empty(t, s.Payments)
    assert.Zero(t, s.TotalPaid)
    assert.Zero(t, s.Remaining)
    assert.Nil(t, s.PaidAt)
    assert.Equal(t, model.PaymentStatusPending, s.PaymentStatus)
}

func TestNewItemSnapshot(t *testing.T) {
    p := &model.Product{ID: 7, Name: "Coke", CostPrice: 50, SellingPrice: 80}
    it := NewItem(p, 2, t0)
    assert.Equal(t, "Coke", it.Name)
    assert.InDelta(t, 100, it.TotalCost, 1e-9)
    assert.InDelta(t, 160, it.TotalRevenue, 1e-9)
    assert.InDelta(t, 60, it.Profit, 1e-9)

    // later product edits must not affect the snapshot
    p.SellingPrice = 999
    assert.InDelta(t, 160, it.TotalRevenue, 1e-9)
}

func TestThirtyMinuteScenario(t *testing.T) {
    // per-minute table at 100/hour, 2 items at 80 selling, 30 minutes
    // => total ≈ 30×(100/60) + 2×80.
    rate := 100.0 / 60.0
    s := perMinuteSession(rate)
    p := &model.Product{ID: 1, Name: "Lassi", CostPrice: 50, SellingPrice: 80, CurrentStock: 10}
    s.Items = append(s.Items, NewItem(p, 2, t0))

    now := t0.Add(30 * time.Minute)
    Recalculate(s, now)
    assert.InDelta(t, 30*rate+2*80, s.TotalCost, 1e-6)
}

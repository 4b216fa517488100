package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSessionPaymentMethod(t *testing.T) {
	assert.True(t, ValidSessionPaymentMethod(PaymentMethodEsewa))
	assert.True(t, ValidSessionPaymentMethod(PaymentMethodOnlineBanking))
	assert.True(t, ValidSessionPaymentMethod(PaymentMethodCash))

	// Sale-level methods are a different enumeration and must be
	// rejected here.
	assert.False(t, ValidSessionPaymentMethod(SaleMethodCard))
	assert.False(t, ValidSessionPaymentMethod(SaleMethodMobile))
	assert.False(t, ValidSessionPaymentMethod(""))
	assert.False(t, ValidSessionPaymentMethod("ESEWA"))
}

func TestValidSaleMethod(t *testing.T) {
	assert.True(t, ValidSaleMethod(SaleMethodCash))
	assert.True(t, ValidSaleMethod(SaleMethodCard))
	assert.True(t, ValidSaleMethod(SaleMethodMobile))
	assert.True(t, ValidSaleMethod(SaleMethodCredit))

	assert.False(t, ValidSaleMethod(PaymentMethodEsewa))
	assert.False(t, ValidSaleMethod(""))
}

func TestSessionOpen(t *testing.T) {
	s := Session{Status: SessionStatusActive}
	assert.True(t, s.Open())
	s.Status = SessionStatusPaused
	assert.True(t, s.Open())
	s.Status = SessionStatusCompleted
	assert.False(t, s.Open())
	s.Status = SessionStatusCancelled
	assert.False(t, s.Open())
}

func TestTerminalSessionFailsOpenGuard(t *testing.T) {
	// Every lifecycle mutator, cancellation included, gates on
	// Open(). A cancelled session must fail that gate; otherwise a
	// repeat cancel would restore its items' stock a second time.
	s := Session{Status: SessionStatusCancelled}
	assert.False(t, s.Open())
	s.Status = SessionStatusCompleted
	assert.False(t, s.Open())
}

func TestProductLowStock(t *testing.T) {
	p := Product{CurrentStock: 5, MinStock: 5}
	assert.True(t, p.LowStock())
	p.CurrentStock = 6
	assert.False(t, p.LowStock())
	p.CurrentStock = 0
	assert.True(t, p.LowStock())
}

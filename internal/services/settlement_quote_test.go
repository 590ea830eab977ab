package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSettlementQuote_DerivesPenaltyAndTotal(t *testing.T) {
	q := NewSettlementQuote(500000, 10000, 0, 2)

	// penalty = principal * rate / 100
	assert.InDelta(t, 10000.0, q.EarlyRepaymentPenalty, 0.001)
	assert.InDelta(t, 520000.0, q.TotalSettlementAmount, 0.001)
}

func TestSettlementQuote_TotalInvariant(t *testing.T) {
	q := NewSettlementQuote(300000, 7500, 1200, 1.5)

	expected := q.RemainingPrincipal + q.AccruedInterest + q.AccruedPenalties + q.EarlyRepaymentPenalty
	assert.InDelta(t, expected, q.TotalSettlementAmount, 0.001)

	// The invariant must survive any sequence of edits
	q.SetAccruedPenalties(2500)
	expected = q.RemainingPrincipal + q.AccruedInterest + q.AccruedPenalties + q.EarlyRepaymentPenalty
	assert.InDelta(t, expected, q.TotalSettlementAmount, 0.001)

	q.SetEarlyRepaymentRate(3)
	expected = q.RemainingPrincipal + q.AccruedInterest + q.AccruedPenalties + q.EarlyRepaymentPenalty
	assert.InDelta(t, expected, q.TotalSettlementAmount, 0.001)

	q.SetEarlyRepaymentPenalty(5000)
	expected = q.RemainingPrincipal + q.AccruedInterest + q.AccruedPenalties + q.EarlyRepaymentPenalty
	assert.InDelta(t, expected, q.TotalSettlementAmount, 0.001)
}

func TestSettlementQuote_RateEditDerivesAmount(t *testing.T) {
	q := NewSettlementQuote(200000, 5000, 0, 2)

	q.SetEarlyRepaymentRate(3.5)

	assert.InDelta(t, 7000.0, q.EarlyRepaymentPenalty, 0.001)
	assert.InDelta(t, 212000.0, q.TotalSettlementAmount, 0.001)
}

func TestSettlementQuote_AmountEditBackDerivesRate(t *testing.T) {
	q := NewSettlementQuote(200000, 5000, 0, 2)

	q.SetEarlyRepaymentPenalty(5000)

	// rate = penalty / principal * 100
	assert.InDelta(t, 2.5, q.EarlyRepaymentRate, 0.001)
	assert.InDelta(t, 210000.0, q.TotalSettlementAmount, 0.001)
}

func TestSettlementQuote_ZeroPrincipalHoldsRate(t *testing.T) {
	q := NewSettlementQuote(0, 0, 0, 2)

	q.SetEarlyRepaymentPenalty(1500)

	// No division by zero: the rate keeps its previous value
	assert.InDelta(t, 2.0, q.EarlyRepaymentRate, 0.001)
	assert.InDelta(t, 1500.0, q.EarlyRepaymentPenalty, 0.001)
	assert.InDelta(t, 1500.0, q.TotalSettlementAmount, 0.001)
}

func TestSettlementQuote_PrincipalChangeKeepsRateAuthoritative(t *testing.T) {
	q := NewSettlementQuote(100000, 2000, 0, 2)

	// Operator typed an explicit amount first
	q.SetEarlyRepaymentPenalty(3000)
	assert.InDelta(t, 3.0, q.EarlyRepaymentRate, 0.001)

	// A principal refresh re-derives the amount from the back-derived rate
	q.SetRemainingPrincipal(50000)
	assert.InDelta(t, 3.0, q.EarlyRepaymentRate, 0.001)
	assert.InDelta(t, 1500.0, q.EarlyRepaymentPenalty, 0.001)
}

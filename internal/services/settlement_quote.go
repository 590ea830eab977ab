package services

// QuoteField identifies which quote field an edit touched. The recompute rule
// depends on it: a rate edit derives the penalty amount, a penalty-amount edit
// back-derives the rate.
type QuoteField int

const (
	FieldAccruedPenalties QuoteField = iota
	FieldEarlyRepaymentRate
	FieldEarlyRepaymentPenalty
)

// SettlementQuote holds the monetary components of an early-repayment
// settlement. The total is never stored independently: it is recomputed from
// the addends after every edit.
type SettlementQuote struct {
	RemainingPrincipal    float64 `json:"remaining_principal"`
	AccruedInterest       float64 `json:"accrued_interest"`
	AccruedPenalties      float64 `json:"accrued_penalties"`
	EarlyRepaymentRate    float64 `json:"early_repayment_rate"`
	EarlyRepaymentPenalty float64 `json:"early_repayment_penalty"`
	TotalSettlementAmount float64 `json:"total_settlement_amount"`
	InterestSavings       float64 `json:"interest_savings"`
}

// NewSettlementQuote builds a quote from a loan snapshot and derives the
// early-repayment penalty from the rate
func NewSettlementQuote(remainingPrincipal, accruedInterest, accruedPenalties, rate float64) *SettlementQuote {
	q := &SettlementQuote{
		RemainingPrincipal: remainingPrincipal,
		AccruedInterest:    accruedInterest,
		AccruedPenalties:   accruedPenalties,
		EarlyRepaymentRate: rate,
	}
	q.Recompute(FieldEarlyRepaymentRate)
	return q
}

// Recompute applies the sync and total invariants after an edit to the given
// field. Rate and penalty amount are linked bidirectionally:
//
//	penalty = remainingPrincipal * rate / 100
//	rate    = penalty / remainingPrincipal * 100
//
// The amount is derived from the rate unless the amount itself was the field
// just edited. Back-derivation is skipped when the principal is zero; the rate
// is held unchanged instead of dividing by zero.
func (q *SettlementQuote) Recompute(edited QuoteField) {
	if edited == FieldEarlyRepaymentPenalty {
		if q.RemainingPrincipal != 0 {
			q.EarlyRepaymentRate = q.EarlyRepaymentPenalty / q.RemainingPrincipal * 100
		}
	} else {
		q.EarlyRepaymentPenalty = q.RemainingPrincipal * q.EarlyRepaymentRate / 100
	}

	q.TotalSettlementAmount = q.RemainingPrincipal +
		q.AccruedInterest +
		q.AccruedPenalties +
		q.EarlyRepaymentPenalty
}

// SetAccruedPenalties edits the accrued penalties and recomputes the total
func (q *SettlementQuote) SetAccruedPenalties(amount float64) {
	q.AccruedPenalties = amount
	q.Recompute(FieldAccruedPenalties)
}

// SetEarlyRepaymentRate edits the rate; the penalty amount is re-derived
func (q *SettlementQuote) SetEarlyRepaymentRate(rate float64) {
	q.EarlyRepaymentRate = rate
	q.Recompute(FieldEarlyRepaymentRate)
}

// SetEarlyRepaymentPenalty edits the penalty amount; the rate is back-derived
func (q *SettlementQuote) SetEarlyRepaymentPenalty(amount float64) {
	q.EarlyRepaymentPenalty = amount
	q.Recompute(FieldEarlyRepaymentPenalty)
}

// SetRemainingPrincipal refreshes the principal snapshot. The rate is treated
// as authoritative and the penalty amount is re-derived from the new principal.
func (q *SettlementQuote) SetRemainingPrincipal(amount float64) {
	q.RemainingPrincipal = amount
	q.Recompute(FieldEarlyRepaymentRate)
}

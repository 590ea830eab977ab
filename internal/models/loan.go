package models

import (
	"time"
)

// Loan represents a disbursed loan with its repayment schedule
type Loan struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	AccountNumber       string     `gorm:"not null;uniqueIndex" json:"account_number"`
	ClientName          string     `gorm:"not null" json:"client_name"`
	ClientUserID        *uint      `gorm:"index" json:"client_user_id"`
	Amount              float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	InterestRate        float64    `gorm:"type:decimal(5,2);not null" json:"interest_rate"`
	PenaltyRate         float64    `gorm:"type:decimal(5,2);default:0" json:"penalty_rate"`
	EarlyRepaymentRate  float64    `gorm:"type:decimal(5,2);default:2" json:"early_repayment_rate"`
	Term                int        `gorm:"not null" json:"term"`
	Currency            string     `gorm:"default:XAF;not null" json:"currency"`
	Status              string     `gorm:"default:active;index" json:"status"`
	DisbursedAt         *time.Time `gorm:"type:date" json:"disbursed_at"`
	SettledAt           *time.Time `json:"settled_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Associations
	ClientUser   *User         `gorm:"foreignKey:ClientUserID" json:"client_user,omitempty"`
	Installments []Installment `gorm:"foreignKey:LoanID" json:"installments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusActive    = "active"
	LoanStatusSettled   = "settled"
	LoanStatusDefaulted = "defaulted"
)

// MaySettle returns true if the loan can be settled early
func (l *Loan) MaySettle() bool {
	return l.Status == LoanStatusActive
}

// RemainingPrincipal sums the principal of all unpaid installments
func (l *Loan) RemainingPrincipal() float64 {
	var total float64
	for _, inst := range l.Installments {
		if inst.Status != InstallmentStatusPaid {
			total += inst.PrincipalAmount
		}
	}
	return total
}

// AccruedInterest sums the interest owed on unpaid installments up to a date.
// Installments due after the settlement date carry no interest: settling
// early discharges them at principal only, which is the interest saving.
func (l *Loan) AccruedInterest(asOf time.Time) float64 {
	var total float64
	for _, inst := range l.Installments {
		if inst.Status == InstallmentStatusPaid {
			continue
		}
		if inst.DueDate.After(asOf) {
			continue
		}
		total += inst.InterestAmount
	}
	return total
}

// AccruedPenalties sums penalties on unpaid installments
func (l *Loan) AccruedPenalties() float64 {
	var total float64
	for _, inst := range l.Installments {
		if inst.Status != InstallmentStatusPaid {
			total += inst.PenaltyAmount
		}
	}
	return total
}

// InterestSavings sums the interest on unpaid installments falling after the
// settlement date, i.e. interest the client no longer pays
func (l *Loan) InterestSavings(asOf time.Time) float64 {
	var total float64
	for _, inst := range l.Installments {
		if inst.Status == InstallmentStatusPaid {
			continue
		}
		if !inst.DueDate.After(asOf) {
			continue
		}
		total += inst.InterestAmount
	}
	return total
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID                 uint       `json:"id"`
	AccountNumber      string     `json:"account_number"`
	ClientName         string     `json:"client_name"`
	Amount             float64    `json:"amount"`
	InterestRate       float64    `json:"interest_rate"`
	PenaltyRate        float64    `json:"penalty_rate"`
	EarlyRepaymentRate float64    `json:"early_repayment_rate"`
	Term               int        `json:"term"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	DisbursedAt        *time.Time `json:"disbursed_at"`
	SettledAt          *time.Time `json:"settled_at"`
	RemainingPrincipal float64    `json:"remaining_principal"`
	AccruedPenalties   float64    `json:"accrued_penalties"`
	InstallmentCount   int        `json:"installment_count"`
}

// ToResponse converts Loan to LoanResponse
func (l *Loan) ToResponse() LoanResponse {
	return LoanResponse{
		ID:                 l.ID,
		AccountNumber:      l.AccountNumber,
		ClientName:         l.ClientName,
		Amount:             l.Amount,
		InterestRate:       l.InterestRate,
		PenaltyRate:        l.PenaltyRate,
		EarlyRepaymentRate: l.EarlyRepaymentRate,
		Term:               l.Term,
		Currency:           l.Currency,
		Status:             l.Status,
		DisbursedAt:        l.DisbursedAt,
		SettledAt:          l.SettledAt,
		RemainingPrincipal: l.RemainingPrincipal(),
		AccruedPenalties:   l.AccruedPenalties(),
		InstallmentCount:   len(l.Installments),
	}
}

package models

import (
	"time"
)

// LoanLedgerEntry represents a financial movement recorded against a loan
type LoanLedgerEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	LoanID      uint      `json:"loan_id" gorm:"not null;index"`
	PaymentID   *uint     `json:"payment_id,omitempty" gorm:"index"`
	Amount      float64   `json:"amount" gorm:"not null"` // Positive for credits (repayments), negative for charges
	Description string    `json:"description" gorm:"not null"`
	EntryType   string    `json:"entry_type" gorm:"not null;index"`
	EntryDate   time.Time `json:"entry_date" gorm:"not null;default:current_timestamp"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Loan    *Loan    `json:"loan,omitempty" gorm:"foreignKey:LoanID"`
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
}

// Entry type constants
const (
	EntryTypePrincipal         = "principal"           // Principal discharged at settlement
	EntryTypeInterest          = "interest"            // Accrued interest collected
	EntryTypePenalty           = "penalty"             // Late-payment penalties collected
	EntryTypeEarlyRepaymentFee = "early_repayment_fee" // Early-repayment penalty collected
)

// TableName specifies the table name for GORM
func (LoanLedgerEntry) TableName() string {
	return "loan_ledger_entries"
}

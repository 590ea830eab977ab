package models

import (
	"time"
)

// Installment represents one scheduled repayment unit of a loan (échéance)
type Installment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	LoanID          uint       `gorm:"not null;index" json:"loan_id"`
	Number          int        `gorm:"not null" json:"number"`
	DueDate         time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	PrincipalAmount float64    `gorm:"type:decimal(15,2);not null" json:"principal_amount"`
	InterestAmount  float64    `gorm:"type:decimal(15,2);default:0" json:"interest_amount"`
	PenaltyAmount   float64    `gorm:"type:decimal(15,2);default:0" json:"penalty_amount"`
	Status          string     `gorm:"default:pending;not null;index" json:"status"`
	PaidAt          *time.Time `json:"paid_at"`
	PaymentID       *uint      `gorm:"index" json:"payment_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"-"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// Installment status constants
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
)

// IsOverdue returns true if the installment is unpaid past its due date
func (i *Installment) IsOverdue() bool {
	return i.Status == InstallmentStatusPending && time.Now().After(i.DueDate)
}

// OverdueDays returns the number of days overdue
func (i *Installment) OverdueDays() int {
	if !i.IsOverdue() {
		return 0
	}
	return int(time.Since(i.DueDate).Hours() / 24)
}

// Outstanding returns the total still owed on this installment
func (i *Installment) Outstanding() float64 {
	if i.Status == InstallmentStatusPaid {
		return 0
	}
	return i.PrincipalAmount + i.InterestAmount + i.PenaltyAmount
}

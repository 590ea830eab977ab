package models

import (
	"time"
)

// Payment represents the payment record produced by processing a settlement
type Payment struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	LoanID              uint      `gorm:"not null;index" json:"loan_id"`
	SettlementRequestID uint      `gorm:"not null;index" json:"settlement_request_id"`
	PaymentNumber       string    `gorm:"not null;uniqueIndex" json:"payment_number"`
	Amount              float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	SlipNumber          string    `gorm:"not null" json:"slip_number"`
	PaymentDate         time.Time `gorm:"type:date;not null" json:"payment_date"`
	ProcessedBy         string    `gorm:"not null" json:"processed_by"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID                  uint      `json:"id"`
	LoanID              uint      `json:"loan_id"`
	SettlementRequestID uint      `json:"settlement_request_id"`
	PaymentNumber       string    `json:"payment_number"`
	Amount              float64   `json:"amount"`
	SlipNumber          string    `json:"slip_number"`
	PaymentDate         time.Time `json:"payment_date"`
	ProcessedBy         string    `json:"processed_by"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:                  p.ID,
		LoanID:              p.LoanID,
		SettlementRequestID: p.SettlementRequestID,
		PaymentNumber:       p.PaymentNumber,
		Amount:              p.Amount,
		SlipNumber:          p.SlipNumber,
		PaymentDate:         p.PaymentDate,
		ProcessedBy:         p.ProcessedBy,
	}
}

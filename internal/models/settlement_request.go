package models

import (
	"time"
)

// SettlementRequest represents an early-repayment settlement request for a loan.
// At most one request may be active (pending or approved) per loan.
type SettlementRequest struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	LoanID        uint   `gorm:"not null;index" json:"loan_id"`
	AccountNumber string `gorm:"not null" json:"account_number"`
	RepaymentType string `gorm:"default:total;not null" json:"repayment_type"`

	// Monetary snapshot taken at calculation time
	SettlementDate        time.Time `gorm:"type:date;not null" json:"settlement_date"`
	RemainingPrincipal    float64   `gorm:"type:decimal(15,2);not null" json:"remaining_principal"`
	AccruedInterest       float64   `gorm:"type:decimal(15,2);default:0" json:"accrued_interest"`
	AccruedPenalties      float64   `gorm:"type:decimal(15,2);default:0" json:"accrued_penalties"`
	EarlyRepaymentRate    float64   `gorm:"type:decimal(5,2);default:0" json:"early_repayment_rate"`
	EarlyRepaymentPenalty float64   `gorm:"type:decimal(15,2);default:0" json:"early_repayment_penalty"`
	TotalSettlementAmount float64   `gorm:"type:decimal(15,2);not null" json:"total_settlement_amount"`
	InterestSavings       float64   `gorm:"type:decimal(15,2);default:0" json:"interest_savings"`

	Status          string     `gorm:"default:pending;not null;index" json:"status"`
	SlipNumber      *string    `gorm:"index" json:"slip_number"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedBy      *string    `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`

	// Populated only after successful processing
	PaymentID     *uint      `gorm:"index" json:"payment_id"`
	PaymentNumber *string    `json:"payment_number"`
	ProcessedBy   *string    `json:"processed_by"`
	ProcessedDate *time.Time `json:"processed_date"`
	StatementPath *string    `json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Loan    Loan     `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// TableName specifies the table name for SettlementRequest
func (SettlementRequest) TableName() string {
	return "settlement_requests"
}

// Settlement request status constants
const (
	SettlementStatusPending   = "pending"
	SettlementStatusApproved  = "approved"
	SettlementStatusRejected  = "rejected"
	SettlementStatusCancelled = "cancelled"
	SettlementStatusCompleted = "completed"
)

// Repayment type constants
const (
	RepaymentTypeTotal   = "total"
	RepaymentTypePartial = "partial"
)

// MayUpdate returns true if the request fields can still be edited
func (r *SettlementRequest) MayUpdate() bool {
	return r.Status == SettlementStatusPending
}

// MayApprove returns true if the request can be approved
func (r *SettlementRequest) MayApprove() bool {
	return r.Status == SettlementStatusPending
}

// MayReject returns true if the request can be rejected
func (r *SettlementRequest) MayReject() bool {
	return r.Status == SettlementStatusPending
}

// MayCancel returns true if the request can be cancelled administratively
func (r *SettlementRequest) MayCancel() bool {
	return r.Status == SettlementStatusPending
}

// MayProcess returns true if the request can be processed into a payment
func (r *SettlementRequest) MayProcess() bool {
	return r.Status == SettlementStatusApproved
}

// IsActive returns true while the request still blocks a new one for the loan
func (r *SettlementRequest) IsActive() bool {
	return r.Status == SettlementStatusPending || r.Status == SettlementStatusApproved
}

// SettlementRequestResponse is the JSON response format for settlement requests
type SettlementRequestResponse struct {
	ID                    uint       `json:"id"`
	LoanID                uint       `json:"loan_id"`
	AccountNumber         string     `json:"account_number"`
	ClientName            string     `json:"client_name,omitempty"`
	RepaymentType         string     `json:"repayment_type"`
	SettlementDate        time.Time  `json:"settlement_date"`
	RemainingPrincipal    float64    `json:"remaining_principal"`
	AccruedInterest       float64    `json:"accrued_interest"`
	AccruedPenalties      float64    `json:"accrued_penalties"`
	EarlyRepaymentRate    float64    `json:"early_repayment_rate"`
	EarlyRepaymentPenalty float64    `json:"early_repayment_penalty"`
	TotalSettlementAmount float64    `json:"total_settlement_amount"`
	InterestSavings       float64    `json:"interest_savings"`
	Status                string     `json:"status"`
	SlipNumber            *string    `json:"slip_number"`
	RejectionReason       *string    `json:"rejection_reason,omitempty"`
	ApprovedBy            *string    `json:"approved_by"`
	ApprovedAt            *time.Time `json:"approved_at"`
	PaymentID             *uint      `json:"payment_id"`
	PaymentNumber         *string    `json:"payment_number"`
	ProcessedDate         *time.Time `json:"processed_date"`
	CreatedAt             time.Time  `json:"created_at"`
}

// ToResponse converts SettlementRequest to SettlementRequestResponse
func (r *SettlementRequest) ToResponse() SettlementRequestResponse {
	resp := SettlementRequestResponse{
		ID:                    r.ID,
		LoanID:                r.LoanID,
		AccountNumber:         r.AccountNumber,
		RepaymentType:         r.RepaymentType,
		SettlementDate:        r.SettlementDate,
		RemainingPrincipal:    r.RemainingPrincipal,
		AccruedInterest:       r.AccruedInterest,
		AccruedPenalties:      r.AccruedPenalties,
		EarlyRepaymentRate:    r.EarlyRepaymentRate,
		EarlyRepaymentPenalty: r.EarlyRepaymentPenalty,
		TotalSettlementAmount: r.TotalSettlementAmount,
		InterestSavings:       r.InterestSavings,
		Status:                r.Status,
		SlipNumber:            r.SlipNumber,
		RejectionReason:       r.RejectionReason,
		ApprovedBy:            r.ApprovedBy,
		ApprovedAt:            r.ApprovedAt,
		PaymentID:             r.PaymentID,
		PaymentNumber:         r.PaymentNumber,
		ProcessedDate:         r.ProcessedDate,
		CreatedAt:             r.CreatedAt,
	}

	if r.Loan.ID != 0 {
		resp.ClientName = r.Loan.ClientName
	}

	return resp
}

package models

import (
	"time"
)

// SlipVerification records the outcome of a bordereau verification attempt
// for a settlement request. Approval requires a valid verification matching
// the slip number on the request.
type SlipVerification struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SettlementRequestID uint       `gorm:"not null;index" json:"settlement_request_id"`
	SlipNumber          string     `gorm:"not null;index" json:"slip_number"`
	State               string     `gorm:"not null" json:"state"`
	Message             *string    `gorm:"type:text" json:"message,omitempty"`
	SlipAmount          *float64   `gorm:"type:decimal(15,2)" json:"slip_amount,omitempty"`
	SlipClientName      *string    `json:"slip_client_name,omitempty"`
	SlipDate            *time.Time `gorm:"type:date" json:"slip_date,omitempty"`
	CheckedAt           time.Time  `json:"checked_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName specifies the table name for SlipVerification
func (SlipVerification) TableName() string {
	return "slip_verifications"
}

// Verification state constants
const (
	VerificationStateUnverified = "unverified"
	VerificationStateChecking   = "checking"
	VerificationStateValid      = "valid"
	VerificationStateInvalid    = "invalid"
)

// IsValid returns true if the verification passed both registry checks
func (v *SlipVerification) IsValid() bool {
	return v.State == VerificationStateValid
}

// Summary returns the human-readable slip summary retained for display
func (v *SlipVerification) Summary() string {
	if !v.IsValid() || v.SlipClientName == nil || v.SlipAmount == nil || v.SlipDate == nil {
		return ""
	}
	return *v.SlipClientName + " - " +
		formatAmount(*v.SlipAmount) + " - " +
		v.SlipDate.Format("02/01/2006")
}

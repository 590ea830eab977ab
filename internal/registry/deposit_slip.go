package registry

import (
	"context"
	"time"
)

// DepositSlip is a deposit-slip (bordereau) entry from the external registry
type DepositSlip struct {
	SlipNumber  string    `json:"slip_number"`
	ClientName  string    `json:"client_name"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	DepositDate time.Time `json:"deposit_date"`
}

// Deposit-slip status constants as reported by the registry
const (
	SlipStatusCompleted = "COMPLETED"
	SlipStatusPending   = "PENDING"
	SlipStatusCancelled = "CANCELLED"
)

// IsCompleted returns true if the slip has been fully processed by the registry
func (s *DepositSlip) IsCompleted() bool {
	return s.Status == SlipStatusCompleted
}

// SlipSource provides the deposit-slip collection for client-side lookup
type SlipSource interface {
	FindAll(ctx context.Context) ([]DepositSlip, error)
}

// SlipRegistry fetches deposit slips from the external registry
type SlipRegistry struct {
	client *Client
}

// NewSlipRegistry creates a deposit-slip registry client
func NewSlipRegistry(baseURL, token string) *SlipRegistry {
	return &SlipRegistry{client: NewClient(baseURL, token)}
}

// FindAll retrieves the full deposit-slip collection
func (r *SlipRegistry) FindAll(ctx context.Context) ([]DepositSlip, error) {
	var slips []DepositSlip
	if err := r.client.getJSON(ctx, "/deposit-slips/findall", &slips); err != nil {
		return nil, err
	}
	return slips, nil
}

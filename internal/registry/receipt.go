package registry

import (
	"context"
	"fmt"
)

// ReceiptCheck is the payments-registry verdict on a receipt number
type ReceiptCheck struct {
	Valid   bool    `json:"valid"`
	Error   string  `json:"error,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Details string  `json:"details,omitempty"`
}

// ReceiptChecker validates receipt numbers against the payments registry
type ReceiptChecker interface {
	CheckReceipt(ctx context.Context, receiptNumber string) (*ReceiptCheck, error)
}

// PaymentRegistry queries the external payments registry
type PaymentRegistry struct {
	client *Client
}

// NewPaymentRegistry creates a payments registry client
func NewPaymentRegistry(baseURL, token string) *PaymentRegistry {
	return &PaymentRegistry{client: NewClient(baseURL, token)}
}

// CheckReceipt reports whether a receipt number is valid and unused
func (r *PaymentRegistry) CheckReceipt(ctx context.Context, receiptNumber string) (*ReceiptCheck, error) {
	if receiptNumber == "" {
		return nil, fmt.Errorf("receipt number is required")
	}
	var check ReceiptCheck
	if err := r.client.getJSON(ctx, "/payments/check-receipt/"+receiptNumber, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

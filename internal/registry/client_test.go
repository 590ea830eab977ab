package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlipRegistry_FindAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deposit-slips/findall", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"slip_number": "B-0042", "client_name": "Jean Mbarga", "amount": 520000, "status": "COMPLETED", "deposit_date": "2026-03-15T00:00:00Z"},
			{"slip_number": "B-0043", "client_name": "Autre Client", "amount": 100000, "status": "PENDING", "deposit_date": "2026-03-16T00:00:00Z"}
		]`))
	}))
	defer server.Close()

	registry := NewSlipRegistry(server.URL, "test-token")
	slips, err := registry.FindAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, slips, 2)
	assert.Equal(t, "B-0042", slips[0].SlipNumber)
	assert.InDelta(t, 520000.0, slips[0].Amount, 0.001)
	assert.True(t, slips[0].IsCompleted())
	assert.False(t, slips[1].IsCompleted())
}

func TestSlipRegistry_FindAll_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "base indisponible"}`))
	}))
	defer server.Close()

	registry := NewSlipRegistry(server.URL, "")
	slips, err := registry.FindAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, slips)
	assert.Contains(t, err.Error(), "base indisponible")
}

func TestSlipRegistry_FindAll_Unreachable(t *testing.T) {
	registry := NewSlipRegistry("http://127.0.0.1:1", "")
	_, err := registry.FindAll(context.Background())
	assert.Error(t, err)
}

func TestPaymentRegistry_CheckReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/check-receipt/B-0042", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid": false, "error": "Reçu déjà rattaché au paiement PAY-AB12"}`))
	}))
	defer server.Close()

	registry := NewPaymentRegistry(server.URL, "test-token")
	check, err := registry.CheckReceipt(context.Background(), "B-0042")

	assert.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "Reçu déjà rattaché au paiement PAY-AB12", check.Error)
}

func TestPaymentRegistry_CheckReceipt_EmptyNumber(t *testing.T) {
	registry := NewPaymentRegistry("http://example.invalid", "")
	_, err := registry.CheckReceipt(context.Background(), "")
	assert.Error(t, err)
}

func TestPaymentRegistry_CheckReceipt_Valid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid": true, "amount": 520000}`))
	}))
	defer server.Close()

	registry := NewPaymentRegistry(server.URL, "")
	check, err := registry.CheckReceipt(context.Background(), "B-0042")

	assert.NoError(t, err)
	assert.True(t, check.Valid)
	assert.InDelta(t, 520000.0, check.Amount, 0.001)
}

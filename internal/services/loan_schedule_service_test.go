package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crediplus/crediplus-api/internal/models"
)

func TestGenerateSchedule(t *testing.T) {
	service := NewLoanScheduleService()
	disbursed := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	loan := &models.Loan{
		ID:           42,
		Amount:       1000000,
		InterestRate: 12,
		Term:         12,
		DisbursedAt:  &disbursed,
	}

	installments, err := service.GenerateSchedule(context.Background(), loan)
	assert.NoError(t, err)
	assert.Len(t, installments, 12)

	// Principal sums back to the loan amount exactly
	var totalPrincipal float64
	for i, inst := range installments {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, uint(42), inst.LoanID)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		totalPrincipal += inst.PrincipalAmount
	}
	assert.InDelta(t, 1000000.0, totalPrincipal, 0.001)

	// Flat monthly interest: 1,000,000 * 12% / 12
	assert.InDelta(t, 10000.0, installments[0].InterestAmount, 0.001)

	// Due dates are monthly from disbursement
	assert.True(t, installments[0].DueDate.Equal(disbursed.AddDate(0, 1, 0)))
	assert.True(t, installments[11].DueDate.Equal(disbursed.AddDate(0, 12, 0)))
}

func TestGenerateSchedule_RoundingGoesToFirstInstallment(t *testing.T) {
	service := NewLoanScheduleService()

	loan := &models.Loan{ID: 1, Amount: 100001, InterestRate: 10, Term: 3}

	installments, err := service.GenerateSchedule(context.Background(), loan)
	assert.NoError(t, err)
	assert.Len(t, installments, 3)

	assert.InDelta(t, 33333.0, installments[1].PrincipalAmount, 0.001)
	assert.InDelta(t, 33333.0, installments[2].PrincipalAmount, 0.001)
	assert.InDelta(t, 33335.0, installments[0].PrincipalAmount, 0.001)
}

func TestGenerateSchedule_InvalidLoan(t *testing.T) {
	service := NewLoanScheduleService()

	_, err := service.GenerateSchedule(context.Background(), &models.Loan{Amount: 0, Term: 12})
	assert.Error(t, err)

	_, err = service.GenerateSchedule(context.Background(), &models.Loan{Amount: 1000, Term: 0})
	assert.Error(t, err)
}

package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/crediplus/crediplus-api/internal/models"
)

// LoanScheduleService handles installment schedule generation
type LoanScheduleService struct{}

// NewLoanScheduleService creates a new loan schedule service
func NewLoanScheduleService() *LoanScheduleService {
	return &LoanScheduleService{}
}

// GenerateSchedule creates the installment schedule for a disbursed loan.
// Principal is split evenly with the first installment absorbing the rounding
// remainder; interest is flat per installment from the annual rate.
func (s *LoanScheduleService) GenerateSchedule(ctx context.Context, loan *models.Loan) ([]models.Installment, error) {
	if loan.Amount <= 0 {
		return nil, fmt.Errorf("loan amount is required")
	}
	if loan.Term <= 0 {
		return nil, fmt.Errorf("loan term is required")
	}

	start := time.Now()
	if loan.DisbursedAt != nil {
		start = *loan.DisbursedAt
	}

	// Avoid cents in installments: floor the base amount, first installment
	// picks up the remainder
	basePrincipal := math.Floor(loan.Amount / float64(loan.Term))
	firstPrincipal := loan.Amount - basePrincipal*float64(loan.Term-1)

	// Flat monthly interest from the annual rate
	monthlyInterest := loan.Amount * loan.InterestRate / 100 / 12

	installments := make([]models.Installment, 0, loan.Term)
	for i := 0; i < loan.Term; i++ {
		principal := basePrincipal
		if i == 0 {
			principal = firstPrincipal
		}

		installments = append(installments, models.Installment{
			LoanID:          loan.ID,
			Number:          i + 1,
			DueDate:         start.AddDate(0, i+1, 0),
			PrincipalAmount: principal,
			InterestAmount:  monthlyInterest,
			Status:          models.InstallmentStatusPending,
		})
	}

	return installments, nil
}

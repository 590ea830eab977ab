package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/models"
)

// Mock with FindOverdue support
type mockInstallmentRepositoryWithOverdue struct {
	mockInstallmentRepository
	mockFindOverdue func(ctx context.Context) ([]models.Installment, error)
	mockUpdate      func(ctx context.Context, installment *models.Installment) error
}

func (m *mockInstallmentRepositoryWithOverdue) FindOverdue(ctx context.Context) ([]models.Installment, error) {
	if m.mockFindOverdue != nil {
		return m.mockFindOverdue(ctx)
	}
	return nil, nil
}

func (m *mockInstallmentRepositoryWithOverdue) Update(ctx context.Context, installment *models.Installment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, installment)
	}
	return nil
}

type mockLedgerRepositoryWithUpsert struct {
	mockLedgerRepository
	upserted []*models.LoanLedgerEntry
}

func (m *mockLedgerRepositoryWithUpsert) FindOrCreateByInstallmentPenalty(ctx context.Context, entry *models.LoanLedgerEntry) error {
	m.upserted = append(m.upserted, entry)
	return nil
}

func TestAccrueOverduePenalties(t *testing.T) {
	installmentRepo := &mockInstallmentRepositoryWithOverdue{}
	ledgerRepo := &mockLedgerRepositoryWithUpsert{}
	userRepo := &mockUserRepository{}
	notifRepo := &mockNotificationRepository{}

	worker := jobs.NewWorker(0)
	defer worker.Shutdown()

	notifSvc := NewNotificationService(notifRepo, userRepo)
	service := NewPenaltyService(installmentRepo, ledgerRepo, notifSvc, worker)

	daysOverdue := 10
	dueDate := time.Now().AddDate(0, 0, -daysOverdue)

	activeLoan := models.Loan{ID: 42, Status: models.LoanStatusActive, PenaltyRate: 10}
	settledLoan := models.Loan{ID: 43, Status: models.LoanStatusSettled, PenaltyRate: 10}
	noRateLoan := models.Loan{ID: 44, Status: models.LoanStatusActive, PenaltyRate: 0}

	installmentRepo.mockFindOverdue = func(ctx context.Context) ([]models.Installment, error) {
		return []models.Installment{
			{ID: 1, LoanID: 42, Loan: activeLoan, PrincipalAmount: 5000, DueDate: dueDate, Status: models.InstallmentStatusPending},
			{ID: 2, LoanID: 43, Loan: settledLoan, PrincipalAmount: 5000, DueDate: dueDate, Status: models.InstallmentStatusPending},
			{ID: 3, LoanID: 44, Loan: noRateLoan, PrincipalAmount: 5000, DueDate: dueDate, Status: models.InstallmentStatusPending},
		}, nil
	}

	var updated []*models.Installment
	installmentRepo.mockUpdate = func(ctx context.Context, installment *models.Installment) error {
		updated = append(updated, installment)
		return nil
	}

	notified := false
	userRepo.mockFindAdmins = func(ctx context.Context) ([]models.User, error) {
		notified = true
		return []models.User{{ID: 99}}, nil
	}

	err := service.AccrueOverduePenalties(context.Background())
	assert.NoError(t, err)

	// Only the active loan with a penalty rate accrues
	assert.Len(t, updated, 1)
	assert.Equal(t, uint(1), updated[0].ID)

	// penalty = principal * (days / 365) * rate
	expectedPenalty := 5000.0 * float64(daysOverdue) / 365.0 * 0.10
	assert.InDelta(t, expectedPenalty, updated[0].PenaltyAmount, 0.001)

	// One running ledger entry per loan, amount negative (owed by the client)
	assert.Len(t, ledgerRepo.upserted, 1)
	entry := ledgerRepo.upserted[0]
	assert.Equal(t, uint(42), entry.LoanID)
	assert.Equal(t, models.EntryTypePenalty, entry.EntryType)
	assert.InDelta(t, -expectedPenalty, entry.Amount, 0.001)

	// Admin report goes out asynchronously
	time.Sleep(100 * time.Millisecond)
	assert.True(t, notified)
}

func TestAccrueOverduePenalties_NothingOverdue(t *testing.T) {
	installmentRepo := &mockInstallmentRepositoryWithOverdue{}
	ledgerRepo := &mockLedgerRepositoryWithUpsert{}

	worker := jobs.NewWorker(0)
	defer worker.Shutdown()

	notifSvc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{})
	service := NewPenaltyService(installmentRepo, ledgerRepo, notifSvc, worker)

	err := service.AccrueOverduePenalties(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, ledgerRepo.upserted)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/pkg/logger"
)

// PenaltyService accrues late-payment penalties on overdue installments. It
// runs on a schedule so the penalties feeding a settlement quote are current.
type PenaltyService struct {
	installmentRepo repository.InstallmentRepository
	ledgerRepo      repository.LedgerRepository
	notificationSvc *NotificationService
	worker          *jobs.Worker
}

// NewPenaltyService creates a new penalty service
func NewPenaltyService(
	installmentRepo repository.InstallmentRepository,
	ledgerRepo repository.LedgerRepository,
	notificationSvc *NotificationService,
	worker *jobs.Worker,
) *PenaltyService {
	return &PenaltyService{
		installmentRepo: installmentRepo,
		ledgerRepo:      ledgerRepo,
		notificationSvc: notificationSvc,
		worker:          worker,
	}
}

// AccrueOverduePenalties recalculates the penalty on every overdue installment
// of active loans and posts the running total per loan to the ledger.
func (s *PenaltyService) AccrueOverduePenalties(ctx context.Context) error {
	installments, err := s.installmentRepo.FindOverdue(ctx)
	if err != nil {
		return err
	}

	overdueCount := 0
	totalPenalties := 0.0
	loanTotals := map[uint]float64{}

	for i := range installments {
		installment := &installments[i]

		if installment.Loan.Status != models.LoanStatusActive {
			continue
		}

		penaltyRate := installment.Loan.PenaltyRate / 100.0
		if penaltyRate <= 0 {
			continue
		}

		daysOverdue := installment.OverdueDays()
		if daysOverdue <= 0 {
			continue
		}

		// penalty = outstanding principal * (days / 365) * rate
		penaltyAmount := installment.PrincipalAmount * float64(daysOverdue) / 365.0 * penaltyRate

		installment.PenaltyAmount = penaltyAmount
		if err := s.installmentRepo.Update(ctx, installment); err != nil {
			logger.Error("Failed to update installment penalty", "installment_id", installment.ID, "error", err)
			continue
		}

		loanTotals[installment.LoanID] += penaltyAmount
		overdueCount++
		totalPenalties += penaltyAmount
	}

	// One running penalty entry per loan, updated in place each run
	now := time.Now()
	for loanID, total := range loanTotals {
		entry := &models.LoanLedgerEntry{
			LoanID:      loanID,
			Amount:      -total,
			Description: fmt.Sprintf("Pénalités de retard courues au %s", now.Format("02/01/2006")),
			EntryType:   models.EntryTypePenalty,
			EntryDate:   now,
		}
		if err := s.ledgerRepo.FindOrCreateByInstallmentPenalty(ctx, entry); err != nil {
			logger.Error("Failed to update penalty ledger entry", "loan_id", loanID, "error", err)
		}
	}

	if overdueCount > 0 {
		msg := fmt.Sprintf("Accrual des pénalités terminé.\n\nÉchéances en retard traitées: %d\nTotal des pénalités courues: %.2f", overdueCount, totalPenalties)
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx, "Rapport des pénalités de retard", msg, models.NotificationTypeSystem)
		})
	}

	return nil
}

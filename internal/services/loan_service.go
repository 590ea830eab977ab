package services

import (
	"context"

	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
)

// LoanService manages loans and their repayment schedules
type LoanService struct {
	repo            repository.LoanRepository
	installmentRepo repository.InstallmentRepository
	scheduleSvc     *LoanScheduleService
	auditSvc        *AuditService
}

// NewLoanService creates a new loan service
func NewLoanService(
	repo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	scheduleSvc *LoanScheduleService,
	auditSvc *AuditService,
) *LoanService {
	return &LoanService{
		repo:            repo,
		installmentRepo: installmentRepo,
		scheduleSvc:     scheduleSvc,
		auditSvc:        auditSvc,
	}
}

func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.repo.FindByIDWithSchedule(ctx, id)
}

func (s *LoanService) List(ctx context.Context, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *LoanService) FindSchedule(ctx context.Context, loanID uint) ([]models.Installment, error) {
	return s.installmentRepo.FindByLoan(ctx, loanID)
}

// Create registers a loan and generates its installment schedule
func (s *LoanService) Create(ctx context.Context, loan *models.Loan, actor Actor) (*models.Loan, error) {
	if loan.Status == "" {
		loan.Status = models.LoanStatusActive
	}

	if err := s.repo.Create(ctx, loan); err != nil {
		return nil, err
	}

	installments, err := s.scheduleSvc.GenerateSchedule(ctx, loan)
	if err != nil {
		return nil, err
	}
	if err := s.installmentRepo.CreateBatch(ctx, installments); err != nil {
		return nil, err
	}
	loan.Installments = installments

	s.auditSvc.Log(ctx, actor.UserID, "CREATE", "Loan", loan.ID,
		"Prêt "+loan.AccountNumber+" créé", actor.IP, actor.UserAgent)

	return loan, nil
}

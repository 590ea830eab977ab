package services

import (
	"gorm.io/gorm"

	"github.com/crediplus/crediplus-api/internal/config"
	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/registry"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Loan         *LoanService
	Settlement   *SettlementService
	Verification *VerificationService
	Penalty      *PenaltyService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
}

// NewServices creates all service instances
func NewServices(
	repos *repository.Repositories,
	slips registry.SlipSource,
	receipts registry.ReceiptChecker,
	worker *jobs.Worker,
	archive *storage.Archive,
	cfg *config.Config,
	db *gorm.DB,
) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg, repos.User)
	auditSvc := NewAuditService(db)
	verificationSvc := NewVerificationService(slips, receipts, repos.Verification)
	exportSvc := NewExportService(repos.Settlement, archive)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg),
		Loan:         NewLoanService(repos.Loan, repos.Installment, NewLoanScheduleService(), auditSvc),
		Settlement:   NewSettlementService(repos.Settlement, repos.Loan, repos.Installment, repos.Payment, repos.Ledger, verificationSvc, notificationSvc, emailSvc, exportSvc, auditSvc, worker),
		Verification: verificationSvc,
		Penalty:      NewPenaltyService(repos.Installment, repos.Ledger, notificationSvc, worker),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       exportSvc,
	}
}

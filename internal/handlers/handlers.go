package handlers

import (
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Loan         *LoanHandler
	Settlement   *SettlementHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		Loan:         NewLoanHandler(svcs.Loan, repos.Ledger),
		Settlement:   NewSettlementHandler(svcs.Settlement, svcs.Verification, svcs.Export),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
	}
}

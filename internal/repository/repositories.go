package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Loan         LoanRepository
	Installment  InstallmentRepository
	Settlement   SettlementRepository
	Verification VerificationRepository
	Payment      PaymentRepository
	Ledger       LedgerRepository
	Notification NotificationRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Loan:         NewLoanRepository(db),
		Installment:  NewInstallmentRepository(db),
		Settlement:   NewSettlementRepository(db),
		Verification: NewVerificationRepository(db),
		Payment:      NewPaymentRepository(db),
		Ledger:       NewLedgerRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

package repository

import (
	"context"

	"github.com/crediplus/crediplus-api/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository defines the interface for loan ledger data access
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LoanLedgerEntry) error
	FindByLoanID(ctx context.Context, loanID uint) ([]models.LoanLedgerEntry, error)
	FindByPaymentID(ctx context.Context, paymentID uint) ([]models.LoanLedgerEntry, error)
	FindOrCreateByInstallmentPenalty(ctx context.Context, entry *models.LoanLedgerEntry) error
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *models.LoanLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) FindByLoanID(ctx context.Context, loanID uint) ([]models.LoanLedgerEntry, error) {
	var entries []models.LoanLedgerEntry
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) FindByPaymentID(ctx context.Context, paymentID uint) ([]models.LoanLedgerEntry, error) {
	var entries []models.LoanLedgerEntry
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

// FindOrCreateByInstallmentPenalty updates the accumulated penalty entry for a
// loan if one exists, so daily accrual maintains a single current-total entry
func (r *ledgerRepository) FindOrCreateByInstallmentPenalty(ctx context.Context, entry *models.LoanLedgerEntry) error {
	var existing models.LoanLedgerEntry
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND entry_type = ? AND payment_id IS NULL", entry.LoanID, models.EntryTypePenalty).
		First(&existing).Error
	if err == nil {
		existing.Amount = entry.Amount
		existing.Description = entry.Description
		existing.EntryDate = entry.EntryDate
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

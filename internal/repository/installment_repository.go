package repository

import (
	"context"
	"time"

	"github.com/crediplus/crediplus-api/internal/models"
	"gorm.io/gorm"
)

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByLoan(ctx context.Context, loanID uint) ([]models.Installment, error)
	FindOverdue(ctx context.Context) ([]models.Installment, error)
	Update(ctx context.Context, installment *models.Installment) error
	CreateBatch(ctx context.Context, installments []models.Installment) error
	MarkPendingPaid(ctx context.Context, loanID, paymentID uint, paidAt time.Time) error
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("number ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindOverdue(ctx context.Context) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < CURRENT_DATE", models.InstallmentStatusPending).
		Preload("Loan").
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *installmentRepository) CreateBatch(ctx context.Context, installments []models.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&installments).Error
}

// MarkPendingPaid marks every remaining pending installment of a loan as paid,
// stamping the settlement payment and paid-at date
func (r *installmentRepository) MarkPendingPaid(ctx context.Context, loanID, paymentID uint, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("loan_id = ? AND status = ?", loanID, models.InstallmentStatusPending).
		Updates(map[string]interface{}{
			"status":     models.InstallmentStatusPaid,
			"paid_at":    paidAt,
			"payment_id": paymentID,
		}).Error
}

package repository

import (
	"context"

	"github.com/crediplus/crediplus-api/internal/models"
	"gorm.io/gorm"
)

// VerificationRepository defines the interface for slip verification data access
type VerificationRepository interface {
	Create(ctx context.Context, verification *models.SlipVerification) error
	FindLatest(ctx context.Context, requestID uint, slipNumber string) (*models.SlipVerification, error)
	FindByRequest(ctx context.Context, requestID uint) ([]models.SlipVerification, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, verification *models.SlipVerification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

// FindLatest returns the most recent verification attempt for a request and
// slip number
func (r *verificationRepository) FindLatest(ctx context.Context, requestID uint, slipNumber string) (*models.SlipVerification, error) {
	var verification models.SlipVerification
	err := r.db.WithContext(ctx).
		Where("settlement_request_id = ? AND slip_number = ?", requestID, slipNumber).
		Order("checked_at DESC").
		First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *verificationRepository) FindByRequest(ctx context.Context, requestID uint) ([]models.SlipVerification, error) {
	var verifications []models.SlipVerification
	err := r.db.WithContext(ctx).
		Where("settlement_request_id = ?", requestID).
		Order("checked_at DESC").
		Find(&verifications).Error
	return verifications, err
}

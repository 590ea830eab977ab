package repository

import (
	"context"
	"strings"

	"github.com/crediplus/crediplus-api/internal/models"
	"gorm.io/gorm"
)

// SettlementRepository defines the interface for settlement request data access
type SettlementRepository interface {
	FindByID(ctx context.Context, id uint) (*models.SettlementRequest, error)
	FindByIDWithLoan(ctx context.Context, id uint) (*models.SettlementRequest, error)
	FindActiveByLoan(ctx context.Context, loanID uint) (*models.SettlementRequest, error)
	Create(ctx context.Context, request *models.SettlementRequest) error
	Update(ctx context.Context, request *models.SettlementRequest) error
	List(ctx context.Context, query *ListQuery) ([]models.SettlementRequest, int64, error)
	GetStats(ctx context.Context) (*SettlementStats, error)
}

// SettlementStats summarizes settlement requests by status
type SettlementStats struct {
	Pending   int64   `json:"pending"`
	Approved  int64   `json:"approved"`
	Completed int64   `json:"completed"`
	Collected float64 `json:"collected"`
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) FindByID(ctx context.Context, id uint) (*models.SettlementRequest, error) {
	var request models.SettlementRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *settlementRepository) FindByIDWithLoan(ctx context.Context, id uint) (*models.SettlementRequest, error) {
	var request models.SettlementRequest
	err := r.db.WithContext(ctx).
		Joins("Loan").
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindActiveByLoan returns the pending or approved request for a loan, if any
func (r *settlementRepository) FindActiveByLoan(ctx context.Context, loanID uint) (*models.SettlementRequest, error) {
	var request models.SettlementRequest
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND status IN ?", loanID,
			[]string{models.SettlementStatusPending, models.SettlementStatusApproved}).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *settlementRepository) Create(ctx context.Context, request *models.SettlementRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *settlementRepository) Update(ctx context.Context, request *models.SettlementRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *settlementRepository) List(ctx context.Context, query *ListQuery) ([]models.SettlementRequest, int64, error) {
	var requests []models.SettlementRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&models.SettlementRequest{})

	// Apply status filter, supporting comma-separated lists
	statusFilter := query.Filters["status"]
	if statusFilter != "" {
		if strings.Contains(statusFilter, ",") {
			db = db.Where("settlement_requests.status IN ?", strings.Split(statusFilter, ","))
		} else {
			db = db.Where("settlement_requests.status = ?", statusFilter)
		}
	}

	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("settlement_requests.created_at >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		endDate := val
		if len(endDate) == 10 {
			endDate += " 23:59:59"
		}
		db = db.Where("settlement_requests.created_at <= ?", endDate)
	}

	// Case-insensitive search across account number and client name
	if search := query.Filters["search_term"]; search != "" {
		term := "%" + search + "%"
		db = db.Joins("JOIN loans ON loans.id = settlement_requests.loan_id").
			Where("settlement_requests.account_number ILIKE ? OR loans.client_name ILIKE ?", term, term)
	}

	// Clone the database session for count to avoid affecting the main query
	countDb := db.Session(&gorm.Session{})
	if err := countDb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Pending requests first, then most recent
	pendingFirst := "(CASE WHEN settlement_requests.status = '" + models.SettlementStatusPending + "' THEN 0 ELSE 1 END) ASC"
	db = db.Order(pendingFirst)
	if query.SortBy != "" {
		dir := "asc"
		if query.SortDir == "desc" {
			dir = "desc"
		}
		db = db.Order("settlement_requests." + query.SortBy + " " + dir)
	} else {
		db = db.Order("settlement_requests.created_at DESC")
	}

	offset := (query.Page - 1) * query.PerPage
	err := db.Preload("Loan").Offset(offset).Limit(query.PerPage).Find(&requests).Error
	return requests, total, err
}

func (r *settlementRepository) GetStats(ctx context.Context) (*SettlementStats, error) {
	stats := &SettlementStats{}

	counts := []struct {
		status string
		dest   *int64
	}{
		{models.SettlementStatusPending, &stats.Pending},
		{models.SettlementStatusApproved, &stats.Approved},
		{models.SettlementStatusCompleted, &stats.Completed},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).
			Model(&models.SettlementRequest{}).
			Where("status = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var result struct {
		Collected float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.SettlementRequest{}).
		Select("COALESCE(SUM(total_settlement_amount), 0) as collected").
		Where("status = ?", models.SettlementStatusCompleted).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	stats.Collected = result.Collected

	return stats, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/registry"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/statemachine"
	"github.com/crediplus/crediplus-api/pkg/logger"
)

// VerificationService runs the bordereau verification gate. Both registry
// checks must pass before a settlement request can be approved; any transport
// failure counts as invalid, never as valid.
type VerificationService struct {
	slips    registry.SlipSource
	receipts registry.ReceiptChecker
	repo     repository.VerificationRepository
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	slips registry.SlipSource,
	receipts registry.ReceiptChecker,
	repo repository.VerificationRepository,
) *VerificationService {
	return &VerificationService{
		slips:    slips,
		receipts: receipts,
		repo:     repo,
	}
}

// VerifySlip runs one verification attempt for a settlement request. An empty
// slip number is refused locally without touching either registry.
func (s *VerificationService) VerifySlip(ctx context.Context, requestID uint, slipNumber string) (*models.SlipVerification, error) {
	if slipNumber == "" {
		return nil, ErrMissingSlipNumber
	}

	verification := &models.SlipVerification{
		SettlementRequestID: requestID,
		SlipNumber:          slipNumber,
		State:               models.VerificationStateUnverified,
		CheckedAt:           time.Now(),
	}
	vfsm := statemachine.NewVerificationFSM(verification)

	if err := vfsm.Check(ctx); err != nil {
		return nil, err
	}

	// Step 1: locate the slip in the registry collection, exact match
	slips, err := s.slips.FindAll(ctx)
	if err != nil {
		logger.Warn("Slip registry unreachable", "slip_number", slipNumber, "error", err)
		vfsm.Fail(ctx, "Registre des bordereaux indisponible, veuillez réessayer")
		return s.record(ctx, verification)
	}

	var slip *registry.DepositSlip
	for i := range slips {
		if slips[i].SlipNumber == slipNumber {
			slip = &slips[i]
			break
		}
	}

	if slip == nil {
		vfsm.Fail(ctx, fmt.Sprintf("Bordereau %s introuvable", slipNumber))
		return s.record(ctx, verification)
	}

	if !slip.IsCompleted() {
		vfsm.Fail(ctx, fmt.Sprintf("Bordereau %s au statut %s", slipNumber, slip.Status))
		return s.record(ctx, verification)
	}

	// Step 2: receipt must not have been used elsewhere
	check, err := s.receipts.CheckReceipt(ctx, slipNumber)
	if err != nil {
		logger.Warn("Receipt check unreachable", "slip_number", slipNumber, "error", err)
		vfsm.Fail(ctx, "Vérification du reçu indisponible, veuillez réessayer")
		return s.record(ctx, verification)
	}

	if !check.Valid {
		reason := check.Error
		if reason == "" {
			reason = fmt.Sprintf("Reçu %s déjà utilisé", slipNumber)
		}
		vfsm.Fail(ctx, reason)
		return s.record(ctx, verification)
	}

	if err := vfsm.Pass(ctx); err != nil {
		return nil, err
	}

	// Retain the slip details for display alongside the approval control
	verification.SlipAmount = &slip.Amount
	verification.SlipClientName = &slip.ClientName
	slipDate := slip.DepositDate
	verification.SlipDate = &slipDate

	return s.record(ctx, verification)
}

// FindValid returns the latest verification for the request and slip number
// only if it passed
func (s *VerificationService) FindValid(ctx context.Context, requestID uint, slipNumber string) (*models.SlipVerification, error) {
	verification, err := s.repo.FindLatest(ctx, requestID, slipNumber)
	if err != nil {
		return nil, ErrNotVerified
	}
	if !verification.IsValid() {
		return nil, ErrNotVerified
	}
	return verification, nil
}

// History lists verification attempts for a request, most recent first
func (s *VerificationService) History(ctx context.Context, requestID uint) ([]models.SlipVerification, error) {
	return s.repo.FindByRequest(ctx, requestID)
}

func (s *VerificationService) record(ctx context.Context, verification *models.SlipVerification) (*models.SlipVerification, error) {
	if err := s.repo.Create(ctx, verification); err != nil {
		return nil, fmt.Errorf("failed to record verification: %w", err)
	}
	return verification, nil
}

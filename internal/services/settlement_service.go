package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/statemachine"
)

// SettlementCalculationInput carries the parameters of a settlement
// calculation. LoanID and SettlementDate are mandatory.
type SettlementCalculationInput struct {
	LoanID         uint
	SettlementDate time.Time
	RepaymentType  string
}

// SettlementCalculation is the result of a settlement calculation: the loan
// snapshot alongside the computed quote. Nothing is persisted at this stage.
type SettlementCalculation struct {
	LoanID         uint            `json:"loan_id"`
	AccountNumber  string          `json:"account_number"`
	ClientName     string          `json:"client_name"`
	Currency       string          `json:"currency"`
	SettlementDate time.Time       `json:"settlement_date"`
	RepaymentType  string          `json:"repayment_type"`
	Quote          SettlementQuote `json:"quote"`
}

// SettlementUpdateInput carries editable fields of a pending request. Nil
// fields are left untouched. When both the early-repayment rate and the
// penalty amount are present, the amount is treated as the last edit and the
// rate is back-derived from it.
type SettlementUpdateInput struct {
	SettlementDate        *time.Time
	RepaymentType         *string
	SlipNumber            *string
	AccruedPenalties      *float64
	EarlyRepaymentRate    *float64
	EarlyRepaymentPenalty *float64
}

// SettlementService orchestrates the early-repayment settlement lifecycle:
// calculation, request creation, approval gate, and processing into a payment.
type SettlementService struct {
	repo            repository.SettlementRepository
	loanRepo        repository.LoanRepository
	installmentRepo repository.InstallmentRepository
	paymentRepo     repository.PaymentRepository
	ledgerRepo      repository.LedgerRepository
	verificationSvc *VerificationService
	notificationSvc *NotificationService
	emailSvc        *EmailService
	exportSvc       *ExportService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	repo repository.SettlementRepository,
	loanRepo repository.LoanRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.LedgerRepository,
	verificationSvc *VerificationService,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	exportSvc *ExportService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *SettlementService {
	return &SettlementService{
		repo:            repo,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		ledgerRepo:      ledgerRepo,
		verificationSvc: verificationSvc,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		exportSvc:       exportSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

// FindByID gets a settlement request by ID with its loan preloaded
func (s *SettlementService) FindByID(ctx context.Context, id uint) (*models.SettlementRequest, error) {
	request, err := s.repo.FindByIDWithLoan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func (s *SettlementService) List(ctx context.Context, query *repository.ListQuery) ([]models.SettlementRequest, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *SettlementService) GetStats(ctx context.Context) (*repository.SettlementStats, error) {
	return s.repo.GetStats(ctx)
}

// Calculate computes a settlement quote for a loan as of a date. Missing
// parameters are refused before any data access happens.
func (s *SettlementService) Calculate(ctx context.Context, input SettlementCalculationInput, actor Actor) (*SettlementCalculation, error) {
	if input.LoanID == 0 {
		return nil, ErrMissingLoan
	}
	if input.SettlementDate.IsZero() {
		return nil, ErrMissingDate
	}
	if input.RepaymentType == "" {
		input.RepaymentType = models.RepaymentTypeTotal
	}

	loan, err := s.loanRepo.FindByIDWithSchedule(ctx, input.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !loan.MaySettle() {
		return nil, ErrLoanNotSettleable
	}

	quote := NewSettlementQuote(
		loan.RemainingPrincipal(),
		loan.AccruedInterest(input.SettlementDate),
		loan.AccruedPenalties(),
		loan.EarlyRepaymentRate,
	)
	quote.InterestSavings = loan.InterestSavings(input.SettlementDate)

	s.auditSvc.Log(ctx, actor.UserID, "CALCULATE", "Loan", loan.ID,
		fmt.Sprintf("Décompte de remboursement anticipé calculé pour le prêt %s au %s. Total: %.2f",
			loan.AccountNumber, input.SettlementDate.Format("02/01/2006"), quote.TotalSettlementAmount),
		actor.IP, actor.UserAgent)

	return &SettlementCalculation{
		LoanID:         loan.ID,
		AccountNumber:  loan.AccountNumber,
		ClientName:     loan.ClientName,
		Currency:       loan.Currency,
		SettlementDate: input.SettlementDate,
		RepaymentType:  input.RepaymentType,
		Quote:          *quote,
	}, nil
}

// Create registers a pending settlement request from a calculation, applying
// any operator edits on top of the computed quote. A loan can carry at most
// one active request at a time.
func (s *SettlementService) Create(ctx context.Context, input SettlementCalculationInput, edits SettlementUpdateInput, actor Actor) (*models.SettlementRequest, error) {
	calc, err := s.Calculate(ctx, input, actor)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindActiveByLoan(ctx, calc.LoanID); err == nil && existing != nil {
		return nil, ErrActiveRequest
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	quote := calc.Quote
	applyQuoteEdits(&quote, edits)

	request := &models.SettlementRequest{
		LoanID:                calc.LoanID,
		AccountNumber:         calc.AccountNumber,
		RepaymentType:         calc.RepaymentType,
		SettlementDate:        calc.SettlementDate,
		RemainingPrincipal:    quote.RemainingPrincipal,
		AccruedInterest:       quote.AccruedInterest,
		AccruedPenalties:      quote.AccruedPenalties,
		EarlyRepaymentRate:    quote.EarlyRepaymentRate,
		EarlyRepaymentPenalty: quote.EarlyRepaymentPenalty,
		TotalSettlementAmount: quote.TotalSettlementAmount,
		InterestSavings:       quote.InterestSavings,
		Status:                models.SettlementStatusPending,
		SlipNumber:            edits.SlipNumber,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Nouvelle demande de remboursement anticipé",
			fmt.Sprintf("Demande de remboursement anticipé reçue pour le prêt %s. Montant: %.2f",
				request.AccountNumber, request.TotalSettlementAmount),
			models.NotificationTypeSystem)
	})

	s.auditSvc.Log(ctx, actor.UserID, "CREATE", "SettlementRequest", request.ID,
		fmt.Sprintf("Demande de remboursement anticipé créée pour le prêt %s. Total: %.2f",
			request.AccountNumber, request.TotalSettlementAmount),
		actor.IP, actor.UserAgent)

	return request, nil
}

// Update edits a pending request. Monetary edits flow through the quote so
// the rate/amount link and the total stay consistent; changing the settlement
// date re-derives the date-dependent components from the loan schedule.
func (s *SettlementService) Update(ctx context.Context, id uint, edits SettlementUpdateInput, actor Actor) (*models.SettlementRequest, error) {
	request, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.MayUpdate() {
		return nil, ErrInvalidState
	}

	quote := SettlementQuote{
		RemainingPrincipal:    request.RemainingPrincipal,
		AccruedInterest:       request.AccruedInterest,
		AccruedPenalties:      request.AccruedPenalties,
		EarlyRepaymentRate:    request.EarlyRepaymentRate,
		EarlyRepaymentPenalty: request.EarlyRepaymentPenalty,
		TotalSettlementAmount: request.TotalSettlementAmount,
		InterestSavings:       request.InterestSavings,
	}

	if edits.SettlementDate != nil && !edits.SettlementDate.Equal(request.SettlementDate) {
		loan, err := s.loanRepo.FindByIDWithSchedule(ctx, request.LoanID)
		if err != nil {
			return nil, err
		}
		quote.AccruedInterest = loan.AccruedInterest(*edits.SettlementDate)
		quote.InterestSavings = loan.InterestSavings(*edits.SettlementDate)
		quote.Recompute(FieldEarlyRepaymentRate)
		request.SettlementDate = *edits.SettlementDate
	}

	applyQuoteEdits(&quote, edits)

	if edits.RepaymentType != nil {
		request.RepaymentType = *edits.RepaymentType
	}
	if edits.SlipNumber != nil {
		request.SlipNumber = edits.SlipNumber
	}

	request.RemainingPrincipal = quote.RemainingPrincipal
	request.AccruedInterest = quote.AccruedInterest
	request.AccruedPenalties = quote.AccruedPenalties
	request.EarlyRepaymentRate = quote.EarlyRepaymentRate
	request.EarlyRepaymentPenalty = quote.EarlyRepaymentPenalty
	request.TotalSettlementAmount = quote.TotalSettlementAmount
	request.InterestSavings = quote.InterestSavings

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// VerifySlip runs the bordereau verification gate for a pending request and
// records the attempt. The slip number is also stored on the request so the
// later approval can be matched against it.
func (s *SettlementService) VerifySlip(ctx context.Context, id uint, slipNumber string, actor Actor) (*models.SlipVerification, error) {
	request, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.MayUpdate() {
		return nil, ErrInvalidState
	}

	verification, err := s.verificationSvc.VerifySlip(ctx, request.ID, slipNumber)
	if err != nil {
		return nil, err
	}

	if request.SlipNumber == nil || *request.SlipNumber != slipNumber {
		request.SlipNumber = &slipNumber
		if err := s.repo.Update(ctx, request); err != nil {
			return nil, err
		}
	}

	return verification, nil
}

// Approve approves a pending request. Approval is only possible when the
// latest verification for the slip number on the request passed both checks.
func (s *SettlementService) Approve(ctx context.Context, id uint, actor Actor) (*models.SettlementRequest, error) {
	request, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.SlipNumber == nil || *request.SlipNumber == "" {
		return nil, ErrMissingSlipNumber
	}

	if _, err := s.verificationSvc.FindValid(ctx, request.ID, *request.SlipNumber); err != nil {
		return nil, err
	}

	fsm := statemachine.NewSettlementFSM(request)
	if err := fsm.Approve(ctx); err != nil {
		return nil, fmt.Errorf("cannot approve settlement request: %w", err)
	}

	now := time.Now()
	request.ApprovedBy = &actor.Name
	request.ApprovedAt = &now

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.notifyClient(request,
		"Demande de remboursement approuvée",
		fmt.Sprintf("Votre demande de remboursement anticipé pour le prêt %s a été approuvée", request.AccountNumber),
		models.NotificationTypeSettlementApproved)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendSettlementApprovedEmail(ctx, request)
	})

	s.auditSvc.Log(ctx, actor.UserID, "APPROVE", "SettlementRequest", request.ID,
		fmt.Sprintf("Demande approuvée. Bordereau: %s, Total: %.2f", *request.SlipNumber, request.TotalSettlementAmount),
		actor.IP, actor.UserAgent)

	return request, nil
}

// Reject rejects a pending request with a reason
func (s *SettlementService) Reject(ctx context.Context, id uint, reason string, actor Actor) (*models.SettlementRequest, error) {
	request, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewSettlementFSM(request)
	if err := fsm.Reject(ctx); err != nil {
		return nil, fmt.Errorf("cannot reject settlement request: %w", err)
	}

	request.RejectionReason = &reason

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.notifyClient(request,
		"Demande de remboursement rejetée",
		fmt.Sprintf("Votre demande de remboursement anticipé pour le prêt %s a été rejetée: %s", request.AccountNumber, reason),
		models.NotificationTypeSettlementRejected)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendSettlementRejectedEmail(ctx, request)
	})

	s.auditSvc.Log(ctx, actor.UserID, "REJECT", "SettlementRequest", request.ID,
		fmt.Sprintf("Demande rejetée. Raison: %s", reason),
		actor.IP, actor.UserAgent)

	return request, nil
}

// Cancel cancels a pending request administratively
func (s *SettlementService) Cancel(ctx context.Context, id uint, note string, actor Actor) (*models.SettlementRequest, error) {
	request, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fsm := statemachine.NewSettlementFSM(request)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, fmt.Errorf("cannot cancel settlement request: %w", err)
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor.UserID, "CANCEL", "SettlementRequest", request.ID,
		fmt.Sprintf("Demande annulée. Note: %s", note),
		actor.IP, actor.UserAgent)

	return request, nil
}

// Process turns an approved request into a payment: installments are marked
// paid, the collection is posted to the loan ledger, and the loan is settled.
// The caller must confirm explicitly; processing is irreversible.
func (s *SettlementService) Process(ctx context.Context, id uint, confirmed bool, actor Actor) (*models.SettlementRequest, error) {
	if !confirmed {
		return nil, ErrConfirmationNeeded
	}

	request, err := s.repo.FindByIDWithLoan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fsm := statemachine.NewSettlementFSM(request)
	if err := fsm.Process(ctx); err != nil {
		return nil, fmt.Errorf("cannot process settlement request: %w", err)
	}

	now := time.Now()

	payment := &models.Payment{
		LoanID:              request.LoanID,
		SettlementRequestID: request.ID,
		PaymentNumber:       newPaymentNumber(),
		Amount:              request.TotalSettlementAmount,
		SlipNumber:          derefOr(request.SlipNumber, ""),
		PaymentDate:         now,
		ProcessedBy:         actor.Name,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if err := s.installmentRepo.MarkPendingPaid(ctx, request.LoanID, payment.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark installments paid: %w", err)
	}

	if err := s.postSettlementEntries(ctx, request, payment, now); err != nil {
		return nil, err
	}

	// Settle the loan
	loan := &request.Loan
	loan.Status = models.LoanStatusSettled
	loan.SettledAt = &now
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to settle loan: %w", err)
	}

	request.PaymentID = &payment.ID
	request.PaymentNumber = &payment.PaymentNumber
	request.ProcessedBy = &actor.Name
	request.ProcessedDate = &now

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	s.notifyClient(request,
		"Remboursement anticipé effectué",
		fmt.Sprintf("Le remboursement anticipé du prêt %s a été effectué. Paiement %s, montant %.2f",
			request.AccountNumber, payment.PaymentNumber, payment.Amount),
		models.NotificationTypeSettlementCompleted)

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.emailSvc.SendSettlementCompletedEmail(ctx, request, payment)
	})

	// Archive the final statement as the permanent record
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		relPath, err := s.exportSvc.ArchiveStatement(ctx, request)
		if err != nil || relPath == "" {
			return err
		}
		request.StatementPath = &relPath
		return s.repo.Update(ctx, request)
	})

	s.auditSvc.Log(ctx, actor.UserID, "PROCESS", "SettlementRequest", request.ID,
		fmt.Sprintf("Demande traitée. Paiement %s créé pour %.2f", payment.PaymentNumber, payment.Amount),
		actor.IP, actor.UserAgent)

	return request, nil
}

// postSettlementEntries records the collected components on the loan ledger,
// one entry per non-zero component
func (s *SettlementService) postSettlementEntries(ctx context.Context, request *models.SettlementRequest, payment *models.Payment, entryDate time.Time) error {
	components := []struct {
		amount      float64
		entryType   string
		description string
	}{
		{request.RemainingPrincipal, models.EntryTypePrincipal, "Capital restant dû soldé"},
		{request.AccruedInterest, models.EntryTypeInterest, "Intérêts courus encaissés"},
		{request.AccruedPenalties, models.EntryTypePenalty, "Pénalités de retard encaissées"},
		{request.EarlyRepaymentPenalty, models.EntryTypeEarlyRepaymentFee, "Indemnité de remboursement anticipé"},
	}

	for _, c := range components {
		if c.amount == 0 {
			continue
		}
		entry := &models.LoanLedgerEntry{
			LoanID:      request.LoanID,
			PaymentID:   &payment.ID,
			Amount:      c.amount,
			Description: c.description,
			EntryType:   c.entryType,
			EntryDate:   entryDate,
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}
	}

	return nil
}

// notifyClient notifies the loan's client user asynchronously, when one is
// linked to the loan
func (s *SettlementService) notifyClient(request *models.SettlementRequest, title, message, notificationType string) {
	if request.Loan.ID == 0 || request.Loan.ClientUserID == nil {
		return
	}
	userID := *request.Loan.ClientUserID
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, userID, title, message, notificationType)
	})
}

// applyQuoteEdits applies monetary edits in dependency order: the penalty
// amount is applied last so an explicit amount wins over the rate-derived one
func applyQuoteEdits(quote *SettlementQuote, edits SettlementUpdateInput) {
	if edits.AccruedPenalties != nil {
		quote.SetAccruedPenalties(*edits.AccruedPenalties)
	}
	if edits.EarlyRepaymentRate != nil {
		quote.SetEarlyRepaymentRate(*edits.EarlyRepaymentRate)
	}
	if edits.EarlyRepaymentPenalty != nil {
		quote.SetEarlyRepaymentPenalty(*edits.EarlyRepaymentPenalty)
	}
}

func newPaymentNumber() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

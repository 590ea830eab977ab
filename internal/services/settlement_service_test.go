package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/crediplus/crediplus-api/internal/config"
	"github.com/crediplus/crediplus-api/internal/jobs"
	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
)

// Mock SettlementRepository
type mockSettlementRepository struct {
	repository.SettlementRepository
	mockFindByIDWithLoan func(ctx context.Context, id uint) (*models.SettlementRequest, error)
	mockFindActiveByLoan func(ctx context.Context, loanID uint) (*models.SettlementRequest, error)
	mockCreate           func(ctx context.Context, request *models.SettlementRequest) error
	mockUpdate           func(ctx context.Context, request *models.SettlementRequest) error
}

func (m *mockSettlementRepository) FindByIDWithLoan(ctx context.Context, id uint) (*models.SettlementRequest, error) {
	if m.mockFindByIDWithLoan != nil {
		return m.mockFindByIDWithLoan(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettlementRepository) FindActiveByLoan(ctx context.Context, loanID uint) (*models.SettlementRequest, error) {
	if m.mockFindActiveByLoan != nil {
		return m.mockFindActiveByLoan(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettlementRepository) Create(ctx context.Context, request *models.SettlementRequest) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, request)
	}
	request.ID = 1
	return nil
}

func (m *mockSettlementRepository) Update(ctx context.Context, request *models.SettlementRequest) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, request)
	}
	return nil
}

// Mock LoanRepository
type mockLoanRepository struct {
	repository.LoanRepository
	mockFindByIDWithSchedule func(ctx context.Context, id uint) (*models.Loan, error)
	mockUpdate               func(ctx context.Context, loan *models.Loan) error
	scheduleCalls            int
}

func (m *mockLoanRepository) FindByIDWithSchedule(ctx context.Context, id uint) (*models.Loan, error) {
	m.scheduleCalls++
	if m.mockFindByIDWithSchedule != nil {
		return m.mockFindByIDWithSchedule(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, loan)
	}
	return nil
}

// Mock InstallmentRepository
type mockInstallmentRepository struct {
	repository.InstallmentRepository
	mockMarkPendingPaid func(ctx context.Context, loanID, paymentID uint, paidAt time.Time) error
}

func (m *mockInstallmentRepository) MarkPendingPaid(ctx context.Context, loanID, paymentID uint, paidAt time.Time) error {
	if m.mockMarkPendingPaid != nil {
		return m.mockMarkPendingPaid(ctx, loanID, paymentID, paidAt)
	}
	return nil
}

// Mock PaymentRepository
type mockPaymentRepository struct {
	repository.PaymentRepository
	mockCreate func(ctx context.Context, payment *models.Payment) error
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, payment)
	}
	payment.ID = 77
	return nil
}

// Mock LedgerRepository
type mockLedgerRepository struct {
	repository.LedgerRepository
	entries []*models.LoanLedgerEntry
}

func (m *mockLedgerRepository) Create(ctx context.Context, entry *models.LoanLedgerEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

// Mock UserRepository
type mockUserRepository struct {
	repository.UserRepository
	mockFindAdmins func(ctx context.Context) ([]models.User, error)
}

func (m *mockUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	if m.mockFindAdmins != nil {
		return m.mockFindAdmins(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

// Mock NotificationRepository
type mockNotificationRepository struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, notification)
	}
	return nil
}

type settlementTestEnv struct {
	service         *SettlementService
	settlementRepo  *mockSettlementRepository
	loanRepo        *mockLoanRepository
	installmentRepo *mockInstallmentRepository
	paymentRepo     *mockPaymentRepository
	ledgerRepo      *mockLedgerRepository
	verifRepo       *mockVerificationRepository
	worker          *jobs.Worker
}

func newSettlementTestEnv() *settlementTestEnv {
	env := &settlementTestEnv{
		settlementRepo:  &mockSettlementRepository{},
		loanRepo:        &mockLoanRepository{},
		installmentRepo: &mockInstallmentRepository{},
		paymentRepo:     &mockPaymentRepository{},
		ledgerRepo:      &mockLedgerRepository{},
		verifRepo:       &mockVerificationRepository{},
		worker:          jobs.NewWorker(0),
	}

	userRepo := &mockUserRepository{}
	notifSvc := NewNotificationService(&mockNotificationRepository{}, userRepo)
	emailSvc := NewEmailService(&config.Config{}, userRepo)
	auditSvc := NewAuditService(nil)
	verifSvc := NewVerificationService(&mockSlipSource{}, &mockReceiptChecker{}, env.verifRepo)
	exportSvc := NewExportService(env.settlementRepo, nil)

	env.service = NewSettlementService(
		env.settlementRepo,
		env.loanRepo,
		env.installmentRepo,
		env.paymentRepo,
		env.ledgerRepo,
		verifSvc,
		notifSvc,
		emailSvc,
		exportSvc,
		auditSvc,
		env.worker,
	)
	return env
}

// testLoan builds an active loan with two unpaid installments: one due before
// the settlement date (interest owed) and one after (interest saved).
func testLoan(settlementDate time.Time) *models.Loan {
	return &models.Loan{
		ID:                 42,
		AccountNumber:      "CP-2026-0042",
		ClientName:         "Jean Mbarga",
		Currency:           "XAF",
		Status:             models.LoanStatusActive,
		EarlyRepaymentRate: 2,
		Installments: []models.Installment{
			{Number: 1, DueDate: settlementDate.AddDate(0, -1, 0), PrincipalAmount: 250000, InterestAmount: 10000, Status: models.InstallmentStatusPending},
			{Number: 2, DueDate: settlementDate.AddDate(0, 1, 0), PrincipalAmount: 250000, InterestAmount: 8000, Status: models.InstallmentStatusPending},
		},
	}
}

func TestCalculate_RefusesMissingParametersBeforeDataAccess(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()
	actor := Actor{UserID: 1, Name: "Agent"}

	_, err := env.service.Calculate(context.Background(), SettlementCalculationInput{
		SettlementDate: time.Now(),
	}, actor)
	assert.ErrorIs(t, err, ErrMissingLoan)

	_, err = env.service.Calculate(context.Background(), SettlementCalculationInput{
		LoanID: 42,
	}, actor)
	assert.ErrorIs(t, err, ErrMissingDate)

	assert.Equal(t, 0, env.loanRepo.scheduleCalls, "missing parameters must be refused before the loan is loaded")
}

func TestCalculate_BuildsQuoteFromSchedule(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	settlementDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	loan := testLoan(settlementDate)
	env.loanRepo.mockFindByIDWithSchedule = func(ctx context.Context, id uint) (*models.Loan, error) {
		assert.Equal(t, uint(42), id)
		return loan, nil
	}

	calc, err := env.service.Calculate(context.Background(), SettlementCalculationInput{
		LoanID:         42,
		SettlementDate: settlementDate,
	}, Actor{UserID: 1})

	assert.NoError(t, err)
	assert.Equal(t, "CP-2026-0042", calc.AccountNumber)
	assert.Equal(t, models.RepaymentTypeTotal, calc.RepaymentType)

	assert.InDelta(t, 500000.0, calc.Quote.RemainingPrincipal, 0.001)
	assert.InDelta(t, 10000.0, calc.Quote.AccruedInterest, 0.001)
	assert.InDelta(t, 0.0, calc.Quote.AccruedPenalties, 0.001)
	assert.InDelta(t, 10000.0, calc.Quote.EarlyRepaymentPenalty, 0.001)
	assert.InDelta(t, 520000.0, calc.Quote.TotalSettlementAmount, 0.001)
	assert.InDelta(t, 8000.0, calc.Quote.InterestSavings, 0.001)
}

func TestCalculate_SettledLoanIsRefused(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	settlementDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	loan := testLoan(settlementDate)
	loan.Status = models.LoanStatusSettled
	env.loanRepo.mockFindByIDWithSchedule = func(ctx context.Context, id uint) (*models.Loan, error) {
		return loan, nil
	}

	_, err := env.service.Calculate(context.Background(), SettlementCalculationInput{
		LoanID:         42,
		SettlementDate: settlementDate,
	}, Actor{UserID: 1})

	assert.ErrorIs(t, err, ErrLoanNotSettleable)
}

func TestCreate_RefusesSecondActiveRequest(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	settlementDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	env.loanRepo.mockFindByIDWithSchedule = func(ctx context.Context, id uint) (*models.Loan, error) {
		return testLoan(settlementDate), nil
	}
	env.settlementRepo.mockFindActiveByLoan = func(ctx context.Context, loanID uint) (*models.SettlementRequest, error) {
		return &models.SettlementRequest{ID: 9, LoanID: loanID, Status: models.SettlementStatusPending}, nil
	}

	_, err := env.service.Create(context.Background(), SettlementCalculationInput{
		LoanID:         42,
		SettlementDate: settlementDate,
	}, SettlementUpdateInput{}, Actor{UserID: 1})

	assert.ErrorIs(t, err, ErrActiveRequest)
}

func TestCreate_ExplicitPenaltyAmountWinsOverRate(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	settlementDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	env.loanRepo.mockFindByIDWithSchedule = func(ctx context.Context, id uint) (*models.Loan, error) {
		return testLoan(settlementDate), nil
	}

	var created *models.SettlementRequest
	env.settlementRepo.mockCreate = func(ctx context.Context, request *models.SettlementRequest) error {
		request.ID = 1
		created = request
		return nil
	}

	rate := 3.0
	amount := 9000.0
	slip := "B-0042"
	request, err := env.service.Create(context.Background(), SettlementCalculationInput{
		LoanID:         42,
		SettlementDate: settlementDate,
	}, SettlementUpdateInput{
		EarlyRepaymentRate:    &rate,
		EarlyRepaymentPenalty: &amount,
		SlipNumber:            &slip,
	}, Actor{UserID: 1})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, models.SettlementStatusPending, request.Status)
	assert.Equal(t, "B-0042", *request.SlipNumber)

	// The typed amount is kept and the rate back-derived from it
	assert.InDelta(t, 9000.0, request.EarlyRepaymentPenalty, 0.001)
	assert.InDelta(t, 1.8, request.EarlyRepaymentRate, 0.001)
	assert.InDelta(t, 519000.0, request.TotalSettlementAmount, 0.001)
}

func TestUpdate_DateChangeRecomputesFromSchedule(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	originalDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	request := &models.SettlementRequest{
		ID:                    5,
		LoanID:                42,
		Status:                models.SettlementStatusPending,
		SettlementDate:        originalDate,
		RemainingPrincipal:    500000,
		AccruedInterest:       10000,
		EarlyRepaymentRate:    2,
		EarlyRepaymentPenalty: 10000,
		TotalSettlementAmount: 520000,
		InterestSavings:       8000,
	}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}
	env.loanRepo.mockFindByIDWithSchedule = func(ctx context.Context, id uint) (*models.Loan, error) {
		return testLoan(originalDate), nil
	}

	// Move the date before the first due date: no interest is owed yet and
	// both installments' interest becomes a saving
	newDate := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	updated, err := env.service.Update(context.Background(), 5, SettlementUpdateInput{
		SettlementDate: &newDate,
	}, Actor{UserID: 1})

	assert.NoError(t, err)
	assert.True(t, newDate.Equal(updated.SettlementDate))
	assert.InDelta(t, 0.0, updated.AccruedInterest, 0.001)
	assert.InDelta(t, 18000.0, updated.InterestSavings, 0.001)
	assert.InDelta(t, 10000.0, updated.EarlyRepaymentPenalty, 0.001, "amount re-derived from the rate")
	assert.InDelta(t, 510000.0, updated.TotalSettlementAmount, 0.001)
}

func TestUpdate_NonPendingIsRefused(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	request := &models.SettlementRequest{ID: 5, Status: models.SettlementStatusApproved}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}

	rate := 3.0
	_, err := env.service.Update(context.Background(), 5, SettlementUpdateInput{EarlyRepaymentRate: &rate}, Actor{UserID: 1})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApprove_RequiresValidVerification(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()
	actor := Actor{UserID: 2, Name: "Admin"}

	slip := "B-0042"
	request := &models.SettlementRequest{
		ID:     5,
		LoanID: 42,
		Status: models.SettlementStatusPending,
	}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}

	// No slip number on the request
	_, err := env.service.Approve(context.Background(), 5, actor)
	assert.ErrorIs(t, err, ErrMissingSlipNumber)

	// Slip present but never successfully verified
	request.SlipNumber = &slip
	_, err = env.service.Approve(context.Background(), 5, actor)
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Equal(t, models.SettlementStatusPending, request.Status)

	// Latest verification passed
	env.verifRepo.mockFindLatest = func(ctx context.Context, requestID uint, slipNumber string) (*models.SlipVerification, error) {
		assert.Equal(t, uint(5), requestID)
		assert.Equal(t, "B-0042", slipNumber)
		return &models.SlipVerification{State: models.VerificationStateValid, SlipNumber: slipNumber}, nil
	}

	approved, err := env.service.Approve(context.Background(), 5, actor)
	assert.NoError(t, err)
	assert.Equal(t, models.SettlementStatusApproved, approved.Status)
	assert.Equal(t, "Admin", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestReject_SetsReason(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	request := &models.SettlementRequest{ID: 5, LoanID: 42, Status: models.SettlementStatusPending}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}

	rejected, err := env.service.Reject(context.Background(), 5, "Montant du bordereau insuffisant", Actor{UserID: 2, Name: "Admin"})

	assert.NoError(t, err)
	assert.Equal(t, models.SettlementStatusRejected, rejected.Status)
	assert.Equal(t, "Montant du bordereau insuffisant", *rejected.RejectionReason)
}

func TestProcess_RequiresConfirmation(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	repoCalled := false
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		repoCalled = true
		return nil, gorm.ErrRecordNotFound
	}

	_, err := env.service.Process(context.Background(), 5, false, Actor{UserID: 2, Name: "Admin"})

	assert.ErrorIs(t, err, ErrConfirmationNeeded)
	assert.False(t, repoCalled, "unconfirmed processing must not touch the request")
}

func TestProcess_CompletesRequestAndSettlesLoan(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	slip := "B-0042"
	request := &models.SettlementRequest{
		ID:                    5,
		LoanID:                42,
		AccountNumber:         "CP-2026-0042",
		Status:                models.SettlementStatusApproved,
		SlipNumber:            &slip,
		RemainingPrincipal:    500000,
		AccruedInterest:       10000,
		AccruedPenalties:      0,
		EarlyRepaymentPenalty: 10000,
		TotalSettlementAmount: 520000,
		Loan: models.Loan{
			ID:            42,
			AccountNumber: "CP-2026-0042",
			Status:        models.LoanStatusActive,
		},
	}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}

	var createdPayment *models.Payment
	env.paymentRepo.mockCreate = func(ctx context.Context, payment *models.Payment) error {
		payment.ID = 77
		createdPayment = payment
		return nil
	}

	markPaidCalled := false
	env.installmentRepo.mockMarkPendingPaid = func(ctx context.Context, loanID, paymentID uint, paidAt time.Time) error {
		markPaidCalled = true
		assert.Equal(t, uint(42), loanID)
		assert.Equal(t, uint(77), paymentID)
		return nil
	}

	var settledLoan *models.Loan
	env.loanRepo.mockUpdate = func(ctx context.Context, loan *models.Loan) error {
		settledLoan = loan
		return nil
	}

	processed, err := env.service.Process(context.Background(), 5, true, Actor{UserID: 2, Name: "Admin"})

	assert.NoError(t, err)
	assert.Equal(t, models.SettlementStatusCompleted, processed.Status)

	assert.NotNil(t, createdPayment)
	assert.InDelta(t, 520000.0, createdPayment.Amount, 0.001)
	assert.Equal(t, "B-0042", createdPayment.SlipNumber)
	assert.Equal(t, "Admin", createdPayment.ProcessedBy)
	assert.Regexp(t, `^PAY-[0-9A-F]{8}$`, createdPayment.PaymentNumber)

	assert.True(t, markPaidCalled)

	// One ledger entry per non-zero component: principal, interest, fee
	assert.Len(t, env.ledgerRepo.entries, 3)
	var ledgerTotal float64
	for _, entry := range env.ledgerRepo.entries {
		assert.Equal(t, uint(42), entry.LoanID)
		assert.Equal(t, uint(77), *entry.PaymentID)
		ledgerTotal += entry.Amount
	}
	assert.InDelta(t, 520000.0, ledgerTotal, 0.001)

	assert.NotNil(t, settledLoan)
	assert.Equal(t, models.LoanStatusSettled, settledLoan.Status)
	assert.NotNil(t, settledLoan.SettledAt)

	assert.Equal(t, uint(77), *processed.PaymentID)
	assert.Equal(t, createdPayment.PaymentNumber, *processed.PaymentNumber)
	assert.Equal(t, "Admin", *processed.ProcessedBy)
	assert.NotNil(t, processed.ProcessedDate)
}

func TestProcess_PendingRequestIsRefused(t *testing.T) {
	env := newSettlementTestEnv()
	defer env.worker.Shutdown()

	request := &models.SettlementRequest{ID: 5, LoanID: 42, Status: models.SettlementStatusPending}
	env.settlementRepo.mockFindByIDWithLoan = func(ctx context.Context, id uint) (*models.SettlementRequest, error) {
		return request, nil
	}

	_, err := env.service.Process(context.Background(), 5, true, Actor{UserID: 2, Name: "Admin"})

	assert.Error(t, err)
	assert.Equal(t, models.SettlementStatusPending, request.Status)
	assert.Empty(t, env.ledgerRepo.entries)
}

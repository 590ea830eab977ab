package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/services"
)

type LoanHandler struct {
	loanService *services.LoanService
	ledgerRepo  repository.LedgerRepository
}

func NewLoanHandler(loanService *services.LoanService, ledgerRepo repository.LedgerRepository) *LoanHandler {
	return &LoanHandler{loanService: loanService, ledgerRepo: ledgerRepo}
}

// @Summary List Loans
// @Description Get a paginated list of loans
// @Tags Loans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by account number or client name"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	query.Search = c.Query("search_term")

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Loan
// @Description Get a loan by ID with its installment schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	loan, err := h.loanService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prêt introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan.ToResponse(), "installments": loan.Installments})
}

// CreateLoanRequest is the body for registering a loan
type CreateLoanRequest struct {
	AccountNumber      string  `json:"account_number" binding:"required"`
	ClientName         string  `json:"client_name" binding:"required"`
	ClientUserID       *uint   `json:"client_user_id"`
	Amount             float64 `json:"amount" binding:"required,gt=0"`
	InterestRate       float64 `json:"interest_rate" binding:"required,gte=0"`
	PenaltyRate        float64 `json:"penalty_rate"`
	EarlyRepaymentRate float64 `json:"early_repayment_rate"`
	Term               int     `json:"term" binding:"required,gt=0"`
	Currency           string  `json:"currency"`
	DisbursedAt        string  `json:"disbursed_at"` // YYYY-MM-DD
}

// @Summary Create Loan
// @Description Register a loan and generate its installment schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body CreateLoanRequest true "Loan data"
// @Success 201 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan := &models.Loan{
		AccountNumber:      req.AccountNumber,
		ClientName:         req.ClientName,
		ClientUserID:       req.ClientUserID,
		Amount:             req.Amount,
		InterestRate:       req.InterestRate,
		PenaltyRate:        req.PenaltyRate,
		EarlyRepaymentRate: req.EarlyRepaymentRate,
		Term:               req.Term,
		Currency:           req.Currency,
	}
	if req.DisbursedAt != "" {
		parsed, err := time.Parse("2006-01-02", req.DisbursedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "la date de décaissement doit être au format YYYY-MM-DD"})
			return
		}
		loan.DisbursedAt = &parsed
	}

	created, err := h.loanService.Create(c.Request.Context(), loan, actorFrom(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": created.ToResponse(), "message": "Prêt créé"})
}

// @Summary Get Loan Schedule
// @Description Get the installment schedule of a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/schedule [get]
func (h *LoanHandler) Schedule(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	installments, err := h.loanService.FindSchedule(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": installments})
}

// @Summary Get Loan Ledger
// @Description Get ledger entries for a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/ledger [get]
func (h *LoanHandler) Ledger(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	entries, err := h.ledgerRepo.FindByLoanID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger_entries": entries})
}

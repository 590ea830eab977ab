package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crediplus/crediplus-api/internal/middleware"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/services"
)

type SettlementHandler struct {
	settlementService   *services.SettlementService
	verificationService *services.VerificationService
	exportService       *services.ExportService
}

func NewSettlementHandler(
	settlementService *services.SettlementService,
	verificationService *services.VerificationService,
	exportService *services.ExportService,
) *SettlementHandler {
	return &SettlementHandler{
		settlementService:   settlementService,
		verificationService: verificationService,
		exportService:       exportService,
	}
}

// actorFrom builds the acting-user context from the authenticated request
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    middleware.GetUserID(c),
		Name:      middleware.GetUserName(c),
		Role:      middleware.GetUserRole(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// CalculateSettlementRequest is the body for a settlement calculation
type CalculateSettlementRequest struct {
	LoanID         uint   `json:"loan_id"`
	SettlementDate string `json:"settlement_date"` // YYYY-MM-DD
	RepaymentType  string `json:"repayment_type"`
}

func (r *CalculateSettlementRequest) toInput() (services.SettlementCalculationInput, error) {
	input := services.SettlementCalculationInput{
		LoanID:        r.LoanID,
		RepaymentType: r.RepaymentType,
	}
	if r.SettlementDate != "" {
		parsed, err := time.Parse("2006-01-02", r.SettlementDate)
		if err != nil {
			return input, errors.New("la date de remboursement doit être au format YYYY-MM-DD")
		}
		input.SettlementDate = parsed
	}
	return input, nil
}

// @Summary Calculate Settlement
// @Description Compute an early-repayment settlement quote for a loan. Nothing is persisted.
// @Tags Settlements
// @Accept json
// @Produce json
// @Param request body CalculateSettlementRequest true "Calculation parameters"
// @Success 200 {object} services.SettlementCalculation
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/calculate [post]
func (h *SettlementHandler) Calculate(c *gin.Context) {
	var req CalculateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calc, err := h.settlementService.Calculate(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"calculation": calc})
}

// CreateSettlementRequest is the body for creating a settlement request. The
// optional fields override the computed quote.
type CreateSettlementRequest struct {
	CalculateSettlementRequest
	SlipNumber            *string  `json:"slip_number"`
	AccruedPenalties      *float64 `json:"accrued_penalties"`
	EarlyRepaymentRate    *float64 `json:"early_repayment_rate"`
	EarlyRepaymentPenalty *float64 `json:"early_repayment_penalty"`
}

// @Summary Create Settlement Request
// @Description Create a pending settlement request from a calculation, with optional operator adjustments
// @Tags Settlements
// @Accept json
// @Produce json
// @Param request body CreateSettlementRequest true "Settlement request data"
// @Success 201 {object} models.SettlementRequestResponse
// @Failure 400,404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements [post]
func (h *SettlementHandler) Create(c *gin.Context) {
	var req CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edits := services.SettlementUpdateInput{
		SlipNumber:            req.SlipNumber,
		AccruedPenalties:      req.AccruedPenalties,
		EarlyRepaymentRate:    req.EarlyRepaymentRate,
		EarlyRepaymentPenalty: req.EarlyRepaymentPenalty,
	}

	request, err := h.settlementService.Create(c.Request.Context(), input, edits, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"settlement_request": request.ToResponse(), "message": "Demande de remboursement créée"})
}

// @Summary List Settlement Requests
// @Description Get a paginated list of settlement requests, pending first
// @Tags Settlements
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status (comma-separated)"
// @Param search_term query string false "Search by account number or client name"
// @Param start_date query string false "Created from (YYYY-MM-DD)"
// @Param end_date query string false "Created until (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settlements [get]
func (h *SettlementHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)

	requests, total, err := h.settlementService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, request := range requests {
		responses = append(responses, request.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"settlement_requests": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Settlement Stats
// @Description Get settlement request counts by status and total collected
// @Tags Settlements
// @Accept json
// @Produce json
// @Success 200 {object} repository.SettlementStats
// @Security BearerAuth
// @Router /settlements/stats [get]
func (h *SettlementHandler) GetStats(c *gin.Context) {
	stats, err := h.settlementService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get Settlement Request
// @Description Get a settlement request by ID
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id} [get]
func (h *SettlementHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	request, err := h.settlementService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse()})
}

// UpdateSettlementRequest is the body for PATCH settlement request. Only
// pending requests can be edited.
type UpdateSettlementRequest struct {
	SettlementDate        *string  `json:"settlement_date"` // YYYY-MM-DD
	RepaymentType         *string  `json:"repayment_type"`
	SlipNumber            *string  `json:"slip_number"`
	AccruedPenalties      *float64 `json:"accrued_penalties"`
	EarlyRepaymentRate    *float64 `json:"early_repayment_rate"`
	EarlyRepaymentPenalty *float64 `json:"early_repayment_penalty"`
}

// @Summary Update Settlement Request
// @Description Edit a pending settlement request. Monetary edits recompute the total; rate and penalty amount stay linked.
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Param request body UpdateSettlementRequest true "Fields to update"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id} [patch]
func (h *SettlementHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)

	var req UpdateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edits := services.SettlementUpdateInput{
		RepaymentType:         req.RepaymentType,
		SlipNumber:            req.SlipNumber,
		AccruedPenalties:      req.AccruedPenalties,
		EarlyRepaymentRate:    req.EarlyRepaymentRate,
		EarlyRepaymentPenalty: req.EarlyRepaymentPenalty,
	}
	if req.SettlementDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.SettlementDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "la date de remboursement doit être au format YYYY-MM-DD"})
			return
		}
		edits.SettlementDate = &parsed
	}

	request, err := h.settlementService.Update(c.Request.Context(), uint(id), edits, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse(), "message": "Demande mise à jour"})
}

type VerifySlipRequest struct {
	SlipNumber string `json:"slip_number"`
}

// @Summary Verify Deposit Slip
// @Description Run the two-step bordereau verification against the external registries and record the attempt
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Param request body VerifySlipRequest true "Slip number"
// @Success 200 {object} models.SlipVerification
// @Failure 400,404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/verify-slip [post]
func (h *SettlementHandler) VerifySlip(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)

	var req VerifySlipRequest
	c.ShouldBindJSON(&req)

	verification, err := h.settlementService.VerifySlip(c.Request.Context(), uint(id), req.SlipNumber, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification": verification, "summary": verification.Summary()})
}

// @Summary List Slip Verifications
// @Description Get the verification attempts recorded for a settlement request, most recent first
// @Tags Settlements
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settlements/{settlement_id}/verifications [get]
func (h *SettlementHandler) Verifications(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	verifications, err := h.verificationService.History(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": verifications})
}

// @Summary Approve Settlement Request
// @Description Approve a pending settlement request. Requires a valid slip verification. (Admin)
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/approve [post]
func (h *SettlementHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	request, err := h.settlementService.Approve(c.Request.Context(), uint(id), actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse(), "message": "Demande approuvée"})
}

type RejectSettlementRequest struct {
	Reason string `json:"reason"`
}

// @Summary Reject Settlement Request
// @Description Reject a pending settlement request with a reason (Admin)
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Param request body RejectSettlementRequest true "Reason"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/reject [post]
func (h *SettlementHandler) Reject(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	var req RejectSettlementRequest
	c.ShouldBindJSON(&req)

	request, err := h.settlementService.Reject(c.Request.Context(), uint(id), req.Reason, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse(), "message": "Demande rejetée"})
}

type CancelSettlementRequest struct {
	Note string `json:"note"`
}

// @Summary Cancel Settlement Request
// @Description Cancel a pending settlement request administratively (Admin)
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Param request body CancelSettlementRequest true "Note"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/cancel [post]
func (h *SettlementHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	var req CancelSettlementRequest
	c.ShouldBindJSON(&req)

	request, err := h.settlementService.Cancel(c.Request.Context(), uint(id), req.Note, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse(), "message": "Demande annulée"})
}

type ProcessSettlementRequest struct {
	Confirmed bool `json:"confirmed"`
}

// @Summary Process Settlement Request
// @Description Process an approved request: create the payment, mark installments paid and settle the loan. Requires explicit confirmation. (Admin)
// @Tags Settlements
// @Accept json
// @Produce json
// @Param settlement_id path int true "Settlement Request ID"
// @Param request body ProcessSettlementRequest true "Confirmation"
// @Success 200 {object} models.SettlementRequestResponse
// @Failure 404,422 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/process [post]
func (h *SettlementHandler) Process(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	var req ProcessSettlementRequest
	c.ShouldBindJSON(&req)

	request, err := h.settlementService.Process(c.Request.Context(), uint(id), req.Confirmed, actorFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement_request": request.ToResponse(), "message": "Remboursement traité"})
}

// @Summary Download Settlement Statement
// @Description Download the settlement statement of a request as PDF
// @Tags Settlements
// @Produce application/pdf
// @Param settlement_id path int true "Settlement Request ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /settlements/{settlement_id}/statement [get]
func (h *SettlementHandler) Statement(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("settlement_id"), 10, 32)
	request, err := h.settlementService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, filename, err := h.exportService.SettlementStatementPDF(c.Request.Context(), request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Export Settlement Requests
// @Description Export settlement requests matching the filters as CSV or XLSX
// @Tags Settlements
// @Produce octet-stream
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Param status query string false "Filter by status"
// @Param start_date query string false "Created from (YYYY-MM-DD)"
// @Param end_date query string false "Created until (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /settlements/export [get]
func (h *SettlementHandler) Export(c *gin.Context) {
	query := listQueryFrom(c)

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, filename, err = h.exportService.ExportXLSX(c.Request.Context(), query)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		data, filename, err = h.exportService.ExportCSV(c.Request.Context(), query)
		contentType = "text/csv"
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// listQueryFrom builds a ListQuery from common pagination and filter params
func listQueryFrom(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")

	for _, key := range []string{"status", "search_term", "start_date", "end_date"} {
		if val := c.Query(key); val != "" {
			query.Filters[key] = val
		}
	}
	return query
}

// respondError maps service errors to HTTP statuses
func (h *SettlementHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMissingLoan),
		errors.Is(err, services.ErrMissingDate),
		errors.Is(err, services.ErrMissingSlipNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrActiveRequest):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}

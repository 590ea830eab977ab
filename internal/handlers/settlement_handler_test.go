package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/crediplus/crediplus-api/internal/services"
)

func TestCalculateSettlementRequest_ToInput(t *testing.T) {
	tests := []struct {
		name        string
		request     CalculateSettlementRequest
		expectError bool
		expected    time.Time
	}{
		{
			name:     "Valid date",
			request:  CalculateSettlementRequest{LoanID: 42, SettlementDate: "2026-09-15"},
			expected: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "Empty date passes through as zero",
			request: CalculateSettlementRequest{LoanID: 42},
		},
		{
			name:        "Wrong format",
			request:     CalculateSettlementRequest{LoanID: 42, SettlementDate: "15/09/2026"},
			expectError: true,
		},
		{
			name:        "Garbage",
			request:     CalculateSettlementRequest{LoanID: 42, SettlementDate: "bientôt"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := tt.request.toInput()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, uint(42), input.LoanID)
			assert.True(t, tt.expected.Equal(input.SettlementDate))
		})
	}
}

func TestCreateSettlementRequestBinding(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload := map[string]interface{}{
		"loan_id":                 42,
		"settlement_date":         "2026-09-15",
		"slip_number":             "B-0042",
		"early_repayment_penalty": 9000,
	}
	jsonBytes, _ := json.Marshal(payload)
	c.Request, _ = http.NewRequest("POST", "/settlements", bytes.NewBuffer(jsonBytes))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreateSettlementRequest
	assert.NoError(t, c.ShouldBindJSON(&req))

	assert.Equal(t, uint(42), req.LoanID)
	assert.Equal(t, "B-0042", *req.SlipNumber)
	assert.InDelta(t, 9000.0, *req.EarlyRepaymentPenalty, 0.001)
	assert.Nil(t, req.EarlyRepaymentRate, "absent fields must stay nil so they are not applied as edits")
	assert.Nil(t, req.AccruedPenalties)
}

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &SettlementHandler{}

	tests := []struct {
		err      error
		expected int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrMissingLoan, http.StatusBadRequest},
		{services.ErrMissingDate, http.StatusBadRequest},
		{services.ErrMissingSlipNumber, http.StatusBadRequest},
		{services.ErrActiveRequest, http.StatusConflict},
		{services.ErrInvalidState, http.StatusUnprocessableEntity},
		{services.ErrNotVerified, http.StatusUnprocessableEntity},
		{services.ErrConfirmationNeeded, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		h.respondError(c, tt.err)

		assert.Equal(t, tt.expected, w.Code, "status for %v", tt.err)

		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.err.Error(), body["error"])
	}
}

func TestListQueryFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/settlements?page=3&per_page=50&status=pending&search_term=CP-2026&sort_by=created_at&sort_dir=desc", nil)

	query := listQueryFrom(c)

	assert.Equal(t, 3, query.Page)
	assert.Equal(t, 50, query.PerPage)
	assert.Equal(t, "created_at", query.SortBy)
	assert.Equal(t, "desc", query.SortDir)
	assert.Equal(t, "pending", query.Filters["status"])
	assert.Equal(t, "CP-2026", query.Filters["search_term"])
	_, hasStart := query.Filters["start_date"]
	assert.False(t, hasStart, "absent filters must not be set")
}

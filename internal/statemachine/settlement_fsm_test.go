package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crediplus/crediplus-api/internal/models"
)

func TestSettlementFSM_PendingTransitions(t *testing.T) {
	ctx := context.Background()

	request := &models.SettlementRequest{Status: models.SettlementStatusPending}
	fsm := NewSettlementFSM(request)
	assert.NoError(t, fsm.Approve(ctx))
	assert.Equal(t, models.SettlementStatusApproved, request.Status)

	request = &models.SettlementRequest{Status: models.SettlementStatusPending}
	fsm = NewSettlementFSM(request)
	assert.NoError(t, fsm.Reject(ctx))
	assert.Equal(t, models.SettlementStatusRejected, request.Status)

	request = &models.SettlementRequest{Status: models.SettlementStatusPending}
	fsm = NewSettlementFSM(request)
	assert.NoError(t, fsm.Cancel(ctx))
	assert.Equal(t, models.SettlementStatusCancelled, request.Status)
}

func TestSettlementFSM_ProcessOnlyFromApproved(t *testing.T) {
	ctx := context.Background()

	request := &models.SettlementRequest{Status: models.SettlementStatusApproved}
	fsm := NewSettlementFSM(request)
	assert.NoError(t, fsm.Process(ctx))
	assert.Equal(t, models.SettlementStatusCompleted, request.Status)

	request = &models.SettlementRequest{Status: models.SettlementStatusPending}
	fsm = NewSettlementFSM(request)
	assert.Error(t, fsm.Process(ctx))
	assert.Equal(t, models.SettlementStatusPending, request.Status)
}

func TestSettlementFSM_TerminalStatesRefuseEverything(t *testing.T) {
	ctx := context.Background()

	for _, status := range []string{
		models.SettlementStatusRejected,
		models.SettlementStatusCancelled,
		models.SettlementStatusCompleted,
	} {
		request := &models.SettlementRequest{Status: status}
		fsm := NewSettlementFSM(request)

		assert.Error(t, fsm.Approve(ctx), "approve from %s", status)
		assert.Error(t, fsm.Reject(ctx), "reject from %s", status)
		assert.Error(t, fsm.Cancel(ctx), "cancel from %s", status)
		assert.Error(t, fsm.Process(ctx), "process from %s", status)
		assert.Equal(t, status, request.Status)
	}
}

func TestSettlementFSM_ApprovedCannotBeRejected(t *testing.T) {
	request := &models.SettlementRequest{Status: models.SettlementStatusApproved}
	fsm := NewSettlementFSM(request)

	assert.Error(t, fsm.Reject(context.Background()))
	assert.Equal(t, models.SettlementStatusApproved, request.Status)
}

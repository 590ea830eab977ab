package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/crediplus/crediplus-api/internal/models"
)

// SettlementFSM wraps a settlement request with its state machine
type SettlementFSM struct {
	request *models.SettlementRequest
	fsm     *fsm.FSM
}

// NewSettlementFSM creates a new settlement request state machine
func NewSettlementFSM(request *models.SettlementRequest) *SettlementFSM {
	sfsm := &SettlementFSM{
		request: request,
	}

	sfsm.fsm = fsm.NewFSM(
		request.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.SettlementStatusPending}, Dst: models.SettlementStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.SettlementStatusPending}, Dst: models.SettlementStatusRejected},

			// pending → cancelled (administrative)
			{Name: "cancel", Src: []string{models.SettlementStatusPending}, Dst: models.SettlementStatusCancelled},

			// approved → completed
			{Name: "process", Src: []string{models.SettlementStatusApproved}, Dst: models.SettlementStatusCompleted},
		},
		fsm.Callbacks{},
	)

	return sfsm
}

// Approve transitions the request to approved state
func (s *SettlementFSM) Approve(ctx context.Context) error {
	if !s.request.MayApprove() {
		return fmt.Errorf("settlement request cannot be approved in current state: %s", s.request.Status)
	}

	if err := s.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve settlement request: %w", err)
	}

	s.request.Status = s.fsm.Current()
	return nil
}

// Reject transitions the request to rejected state
func (s *SettlementFSM) Reject(ctx context.Context) error {
	if !s.request.MayReject() {
		return fmt.Errorf("settlement request cannot be rejected in current state: %s", s.request.Status)
	}

	if err := s.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject settlement request: %w", err)
	}

	s.request.Status = s.fsm.Current()
	return nil
}

// Cancel transitions the request to cancelled state
func (s *SettlementFSM) Cancel(ctx context.Context) error {
	if !s.request.MayCancel() {
		return fmt.Errorf("settlement request cannot be cancelled in current state: %s", s.request.Status)
	}

	if err := s.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel settlement request: %w", err)
	}

	s.request.Status = s.fsm.Current()
	return nil
}

// Process transitions the request from approved to completed
func (s *SettlementFSM) Process(ctx context.Context) error {
	if !s.request.MayProcess() {
		return fmt.Errorf("settlement request cannot be processed in current state: %s", s.request.Status)
	}

	if err := s.fsm.Event(ctx, "process"); err != nil {
		return fmt.Errorf("failed to process settlement request: %w", err)
	}

	s.request.Status = s.fsm.Current()
	return nil
}

// Current returns the current state
func (s *SettlementFSM) Current() string {
	return s.fsm.Current()
}

// Can checks if a transition is possible
func (s *SettlementFSM) Can(event string) bool {
	return s.fsm.Can(event)
}

package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/crediplus/crediplus-api/internal/models"
)

// VerificationFSM drives a single bordereau verification attempt through
// unverified → checking → valid | invalid. A failed attempt is terminal;
// re-verification starts a fresh attempt.
type VerificationFSM struct {
	verification *models.SlipVerification
	fsm          *fsm.FSM
}

// NewVerificationFSM creates a state machine for a verification attempt
func NewVerificationFSM(verification *models.SlipVerification) *VerificationFSM {
	if verification.State == "" {
		verification.State = models.VerificationStateUnverified
	}

	vfsm := &VerificationFSM{
		verification: verification,
	}

	vfsm.fsm = fsm.NewFSM(
		verification.State,
		fsm.Events{
			// unverified → checking
			{Name: "check", Src: []string{models.VerificationStateUnverified}, Dst: models.VerificationStateChecking},

			// checking → valid
			{Name: "pass", Src: []string{models.VerificationStateChecking}, Dst: models.VerificationStateValid},

			// checking → invalid
			{Name: "fail", Src: []string{models.VerificationStateChecking}, Dst: models.VerificationStateInvalid},
		},
		fsm.Callbacks{},
	)

	return vfsm
}

// Check transitions the attempt to checking state
func (v *VerificationFSM) Check(ctx context.Context) error {
	if err := v.fsm.Event(ctx, "check"); err != nil {
		return fmt.Errorf("failed to start verification: %w", err)
	}

	v.verification.State = v.fsm.Current()
	return nil
}

// Pass transitions the attempt to valid state
func (v *VerificationFSM) Pass(ctx context.Context) error {
	if err := v.fsm.Event(ctx, "pass"); err != nil {
		return fmt.Errorf("failed to mark verification valid: %w", err)
	}

	v.verification.State = v.fsm.Current()
	return nil
}

// Fail transitions the attempt to invalid state with a reason
func (v *VerificationFSM) Fail(ctx context.Context, reason string) error {
	if err := v.fsm.Event(ctx, "fail"); err != nil {
		return fmt.Errorf("failed to mark verification invalid: %w", err)
	}

	v.verification.State = v.fsm.Current()
	if reason != "" {
		v.verification.Message = &reason
	}
	return nil
}

// Current returns the current state
func (v *VerificationFSM) Current() string {
	return v.fsm.Current()
}

// Can checks if a transition is possible
func (v *VerificationFSM) Can(event string) bool {
	return v.fsm.Can(event)
}

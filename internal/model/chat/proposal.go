package chat

import (
	"errors"

	"github.com/google/uuid"
)

// ActionKind tags what a proposal would do. The kind is set at creation and
// never inferred from the action id.
type ActionKind string

const (
	ActionCommand   ActionKind = "command"
	ActionFilePatch ActionKind = "filePatch"
)

// ReviewState of a proposal. There are exactly two: a proposal is either
// awaiting review or reviewed, with the resolution set once.
type ReviewState string

const (
	StateProposed ReviewState = "proposed"
	StateReviewed ReviewState = "reviewed"
)

// Resolution records the human's choice on a reviewed proposal.
type Resolution string

const (
	ResolutionApproved Resolution = "approved"
	ResolutionRejected Resolution = "rejected"
)

var (
	// ErrAlreadyReviewed reports a duplicate of a decision that already
	// applied. Callers treat it as an echo, not a failure.
	ErrAlreadyReviewed = errors.New("action already reviewed")
	// ErrDecisionConflict reports a second decision that contradicts the
	// stored resolution. The original resolution is preserved.
	ErrDecisionConflict = errors.New("conflicting decision for reviewed action")
)

// ActionProposal is a suggested side-effecting operation awaiting human
// review. It is owned by exactly one Message and never reused once resolved.
// Execution of an approved payload is someone else's job; this type only
// gates it.
type ActionProposal struct {
	ID         string      `json:"actionId"`
	Kind       ActionKind  `json:"contentType"`
	Command    string      `json:"command,omitempty"`
	DiffString string      `json:"diffString,omitempty"`
	FileName   string      `json:"fileName,omitempty"`
	State      ReviewState `json:"state"`
	Resolution Resolution  `json:"resolution,omitempty"`
}

// NewCommandProposal wraps a single executable line awaiting approval.
func NewCommandProposal(command string) *ActionProposal {
	return &ActionProposal{
		ID:      uuid.NewString(),
		Kind:    ActionCommand,
		Command: command,
		State:   StateProposed,
	}
}

// NewFilePatchProposal wraps a unified diff against one file awaiting approval.
func NewFilePatchProposal(diff, fileName string) *ActionProposal {
	return &ActionProposal{
		ID:         uuid.NewString(),
		Kind:       ActionFilePatch,
		DiffString: diff,
		FileName:   fileName,
		State:      StateProposed,
	}
}

// Resolve moves the proposal from proposed to reviewed with the given
// resolution. Re-submitting the decision that already applied returns
// ErrAlreadyReviewed with the state untouched; a contradictory decision
// returns ErrDecisionConflict. Callers must hold the owning log's lock.
func (a *ActionProposal) Resolve(approved bool) error {
	resolution := ResolutionRejected
	if approved {
		resolution = ResolutionApproved
	}

	if a.State == StateReviewed {
		if a.Resolution == resolution {
			return ErrAlreadyReviewed
		}
		return ErrDecisionConflict
	}

	a.State = StateReviewed
	a.Resolution = resolution
	return nil
}

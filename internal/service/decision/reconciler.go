package decision

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	model "github.com/opencodex/codex-web/backend/internal/model/chat"
	chatservice "github.com/opencodex/codex-web/backend/internal/service/chat"
)

// Decision is a client report of a human's choice on one action proposal.
// Transient; it is only ever applied to the matching proposal.
type Decision struct {
	ActionID  string `json:"actionId"`
	Approved  bool   `json:"approved"`
	MessageID string `json:"messageId"`
}

// Confirmation is the authoritative record of a reconciled decision.
type Confirmation struct {
	ActionID     string `json:"actionId"`
	Approved     bool   `json:"approved"`
	MessageID    string `json:"messageId"`
	Confirmation string `json:"confirmation"`
}

// Reconciler is the sole path by which a proposal's reviewed outcome enters
// the conversation log. No other code flips review state.
type Reconciler struct {
	log *chatservice.Service
}

// New creates a reconciler over the given conversation log.
func New(log *chatservice.Service) *Reconciler {
	return &Reconciler{log: log}
}

// Reconcile validates the decision against the proposal's state and applies
// it exactly once. The first apply appends a system message summarizing the
// outcome; a duplicate of an applied decision returns the same confirmation
// without touching the log again. NotFound and conflict failures leave the
// log unmutated.
func (r *Reconciler) Reconcile(ctx context.Context, d Decision) (Confirmation, error) {
	message, err := r.log.Find(ctx, d.MessageID)
	if err != nil {
		return Confirmation{}, err
	}
	if message.Action == nil || message.Action.ID != d.ActionID {
		return Confirmation{}, chatservice.ErrActionNotFound
	}

	resolution, err := r.log.ReviewProposal(ctx, d.MessageID, d.ActionID, d.Approved)
	switch {
	case err == nil:
		r.appendOutcome(ctx, message, d)
		return r.confirmation(d.ActionID, d.MessageID, d.Approved), nil
	case errors.Is(err, model.ErrAlreadyReviewed):
		// Duplicate of the decision that already applied: echo it. The
		// resolution matches by construction, so the confirmation text is
		// byte-identical to the first response.
		return r.confirmation(d.ActionID, d.MessageID, resolution == model.ResolutionApproved), nil
	default:
		return Confirmation{}, err
	}
}

func (r *Reconciler) appendOutcome(ctx context.Context, message model.Message, d Decision) {
	verb := "rejected"
	if d.Approved {
		verb = "approved"
	}

	outcome := &model.Message{
		ID:        uuid.NewString(),
		SessionID: message.SessionID,
		Sender:    model.SenderSystem,
		Content:   fmt.Sprintf("%s proposal %s was %s by the user.", describeKind(message.Action.Kind), d.ActionID, verb),
	}
	if err := r.log.Append(ctx, outcome); err != nil {
		log.Printf("[decision] failed to append outcome message: %v", err)
	}
}

func (r *Reconciler) confirmation(actionID, messageID string, approved bool) Confirmation {
	verb := "rejection"
	if approved {
		verb = "approval"
	}
	return Confirmation{
		ActionID:     actionID,
		Approved:     approved,
		MessageID:    messageID,
		Confirmation: fmt.Sprintf("Backend acknowledged %s of action %s", verb, actionID),
	}
}

func describeKind(kind model.ActionKind) string {
	switch kind {
	case model.ActionFilePatch:
		return "File patch"
	default:
		return "Command"
	}
}

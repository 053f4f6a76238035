package turn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/opencodex/codex-web/backend/internal/model/chat"
	"github.com/opencodex/codex-web/backend/internal/model/settings"
	"github.com/opencodex/codex-web/backend/internal/service/ai"
	chatservice "github.com/opencodex/codex-web/backend/internal/service/chat"
	"github.com/opencodex/codex-web/backend/internal/service/decision"
	"github.com/opencodex/codex-web/backend/internal/stream"
)

// Request carries one prompt submission into a turn.
type Request struct {
	SessionID    string
	Prompt       string
	Images       []chat.Attachment
	ContextFiles []chat.Attachment
	Provider     string
	Model        string
}

// Coordinator drives one conversational turn: it is the sole writer to its
// event channel, consumes the backend's chunk sequence, records proposals in
// the conversation log and terminates the stream on completion or disconnect.
type Coordinator struct {
	backend    ai.Backend
	log        *chatservice.Service
	reconciler *decision.Reconciler
}

// New wires a coordinator over the backend, log and reconciler.
func New(backend ai.Backend, log *chatservice.Service, reconciler *decision.Reconciler) *Coordinator {
	return &Coordinator{backend: backend, log: log, reconciler: reconciler}
}

// Run executes the turn on the given channel and closes it when done. Peer
// disconnection stops backend consumption; the stream then ends without a
// done event. A backend failure surfaces as a terminal status event; content
// already emitted stands.
func (c *Coordinator) Run(ctx context.Context, ch stream.Channel, req Request, prefs settings.Record) error {
	defer ch.Close()

	userMessage := &chat.Message{
		ID:           uuid.NewString(),
		SessionID:    req.SessionID,
		Sender:       chat.SenderUser,
		Content:      req.Prompt,
		Images:       req.Images,
		ContextFiles: req.ContextFiles,
	}
	if err := c.log.Append(ctx, userMessage); err != nil {
		return err
	}

	ch.Emit(stream.Event{Type: stream.EventStatus, Content: "Thinking..."})

	provider := req.Provider
	if provider == "" {
		provider = prefs.DefaultProvider
	}
	model := req.Model
	if model == "" {
		model = prefs.DefaultModel
	}

	history, err := c.log.Transcript(ctx, req.SessionID)
	if err != nil {
		return err
	}

	chunks, err := c.backend.Stream(ctx, ai.TurnRequest{
		SessionID:    req.SessionID,
		Prompt:       req.Prompt,
		Images:       req.Images,
		ContextFiles: req.ContextFiles,
		Provider:     provider,
		Model:        model,
		Instructions: prefs.Instructions,
		History:      history,
	})
	if err != nil {
		ch.Emit(stream.Event{Type: stream.EventStatus, Content: fmt.Sprintf("generation failed: %v", err)})
		return err
	}
	defer chunks.Close()

	policy := AutoResolutionPolicy{Mode: prefs.ApprovalMode}
	var assistantText strings.Builder

	for {
		select {
		case <-ch.Done():
			log.Printf("[turn] client disconnected, session=%s", req.SessionID)
			return nil
		default:
		}

		chunk, recvErr := chunks.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			ch.Emit(stream.Event{Type: stream.EventStatus, Content: fmt.Sprintf("generation failed: %v", recvErr)})
			return recvErr
		}

		switch {
		case chunk.Proposal != nil:
			if err := c.emitProposal(ctx, ch, req.SessionID, chunk.Proposal, policy); err != nil {
				return err
			}
		case chunk.Text != "":
			assistantText.WriteString(chunk.Text)
			ch.Emit(stream.Event{Type: stream.EventText, Content: chunk.Text})
		}
	}

	if assistantText.Len() > 0 {
		assistantMessage := &chat.Message{
			ID:        uuid.NewString(),
			SessionID: req.SessionID,
			Sender:    chat.SenderAssistant,
			Content:   assistantText.String(),
		}
		if err := c.log.Append(ctx, assistantMessage); err != nil {
			log.Printf("[turn] failed to save assistant message: %v", err)
		}
	}

	ch.Emit(stream.Event{Type: stream.EventDone})
	log.Printf("[turn] completed, session=%s", req.SessionID)
	return nil
}

// emitProposal records the proposal in the log, applies the auto-resolution
// policy and announces the action on the channel with its owning message id.
func (c *Coordinator) emitProposal(ctx context.Context, ch stream.Channel, sessionID string, proposal *chat.ActionProposal, policy AutoResolutionPolicy) error {
	message := &chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Action:    proposal,
	}
	if err := c.log.Append(ctx, message); err != nil {
		return err
	}

	if policy.AutoApproves(proposal.Kind) {
		if _, err := c.reconciler.Reconcile(ctx, decision.Decision{
			ActionID:  proposal.ID,
			Approved:  true,
			MessageID: message.ID,
		}); err != nil {
			log.Printf("[turn] auto-resolution failed for action=%s: %v", proposal.ID, err)
		}
	}

	ch.Emit(stream.Event{
		Type:      stream.EventAction,
		MessageID: message.ID,
		Action: &stream.ActionPayload{
			ContentType: string(proposal.Kind),
			ActionID:    proposal.ID,
			Command:     proposal.Command,
			DiffString:  proposal.DiffString,
			FileName:    proposal.FileName,
		},
	})
	return nil
}

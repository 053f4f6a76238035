package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	model "github.com/opencodex/codex-web/backend/internal/model/chat"
	"github.com/opencodex/codex-web/backend/internal/model/settings"
	chatservice "github.com/opencodex/codex-web/backend/internal/service/chat"
	"github.com/opencodex/codex-web/backend/internal/service/decision"
	"github.com/opencodex/codex-web/backend/internal/service/turn"
	"github.com/opencodex/codex-web/backend/internal/stream"
	"github.com/opencodex/codex-web/backend/pkg/utils"
)

// Handler serves the conversational endpoints: prompt streaming, decision
// submission, session provisioning and transcript retrieval.
type Handler struct {
	chatSvc     *chatservice.Service
	coordinator *turn.Coordinator
	reconciler  *decision.Reconciler
	settings    settings.Store
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, coordinator *turn.Coordinator, reconciler *decision.Reconciler, settingsStore settings.Store) *Handler {
	return &Handler{
		chatSvc:     chatSvc,
		coordinator: coordinator,
		reconciler:  reconciler,
		settings:    settingsStore,
	}
}

// RegisterRoutes wires the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/session", h.handleCreateSession)
	r.Get("/chat/transcript/{sessionID}", h.handleTranscript)
	r.Post("/chat/prompt", h.handlePrompt)
	r.Get("/chat/ws/{sessionID}", h.handlePromptWebSocket)
	r.Post("/chat/decision", h.handleDecision)
}

type promptRequest struct {
	Prompt       string             `json:"prompt"`
	Images       []model.Attachment `json:"images"`
	ContextFiles []model.Attachment `json:"contextFiles"`
	Provider     string             `json:"provider"`
	Model        string             `json:"model"`
	SessionID    string             `json:"sessionId"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	transcript, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcript)
}

func (h *Handler) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var payload promptRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	req, ok := h.resolveTurnRequest(w, r, payload)
	if !ok {
		return
	}

	ch, err := stream.OpenSSE(w, r)
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "streaming unsupported")
		return
	}

	if err := h.coordinator.Run(r.Context(), ch, req, h.settings.Get()); err != nil {
		// The stream is already open; the coordinator has surfaced the
		// failure on the channel itself.
		log.Printf("[chat] turn failed: %v", err)
	}
}

func (h *Handler) handlePromptWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	prompt := r.URL.Query().Get("message")
	if prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	req, ok := h.resolveTurnRequest(w, r, promptRequest{Prompt: prompt, SessionID: sessionID})
	if !ok {
		return
	}

	ch, err := stream.OpenWebSocket(w, r)
	if err != nil {
		// Upgrade failures already wrote the handshake error response.
		log.Printf("[chat] websocket open failed: %v", err)
		return
	}

	if err := h.coordinator.Run(r.Context(), ch, req, h.settings.Get()); err != nil {
		log.Printf("[chat] websocket turn failed: %v", err)
	}
}

// resolveTurnRequest validates the session before any event is emitted: a
// blank sessionId provisions a fresh log, an unknown one is a 404.
func (h *Handler) resolveTurnRequest(w http.ResponseWriter, r *http.Request, payload promptRequest) (turn.Request, bool) {
	sessionID := payload.SessionID
	if sessionID == "" {
		session, err := h.chatSvc.CreateSession(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return turn.Request{}, false
		}
		sessionID = session.ID
	} else if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return turn.Request{}, false
	}

	return turn.Request{
		SessionID:    sessionID,
		Prompt:       payload.Prompt,
		Images:       payload.Images,
		ContextFiles: payload.ContextFiles,
		Provider:     payload.Provider,
		Model:        payload.Model,
	}, true
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request) {
	var payload decision.Decision
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ActionID == "" || payload.MessageID == "" {
		utils.RespondError(w, http.StatusBadRequest, "actionId and messageId are required")
		return
	}

	confirmation, err := h.reconciler.Reconcile(r.Context(), payload)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":       "decision_received",
			"actionId":     confirmation.ActionID,
			"approved":     confirmation.Approved,
			"messageId":    confirmation.MessageID,
			"confirmation": confirmation.Confirmation,
		})
	case errors.Is(err, chatservice.ErrMessageNotFound), errors.Is(err, chatservice.ErrActionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrDecisionConflict):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencodex/codex-web/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrActionNotFound  = errors.New("action not found")
)

// Service is the append-only conversation log for all live sessions. Message
// order within a session is the only source of truth; messages are never
// reordered or truncated, and the sole in-place mutation is a proposal review.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]*chat.Message
	// byID indexes every appended message; ids are minted with uuid so they
	// are unique across sessions and a Decision can omit the session id.
	byID map[string]*chat.Message
}

// NewService bootstraps the in-memory conversation log.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]*chat.Message),
		byID:     make(map[string]*chat.Message),
	}
}

// CreateSession provisions an empty conversation log.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = make([]*chat.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Append adds a message to the end of its session's log. The caller supplies
// the message id; CreatedAt is stamped when zero.
func (s *Service) Append(_ context.Context, message *chat.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return ErrSessionNotFound
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	s.byID[message.ID] = message
	return nil
}

// Find returns a copy of the message with the given id.
func (s *Service) Find(_ context.Context, messageID string) (chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.byID[messageID]
	if !ok {
		return chat.Message{}, ErrMessageNotFound
	}
	return copyMessage(message), nil
}

// ReviewProposal applies a review decision to the action proposal embedded in
// the given message, atomically with respect to concurrent decisions for the
// same action. It returns the resolution now stored on the proposal, which
// for ErrAlreadyReviewed is the one that applied earlier.
func (s *Service) ReviewProposal(_ context.Context, messageID, actionID string, approved bool) (chat.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.byID[messageID]
	if !ok {
		return "", ErrMessageNotFound
	}
	if message.Action == nil || message.Action.ID != actionID {
		return "", ErrActionNotFound
	}

	err := message.Action.Resolve(approved)
	return message.Action.Resolution, err
}

// Transcript returns a copy of the session's messages in append order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	for i, message := range messages {
		copied[i] = copyMessage(message)
	}
	return copied, nil
}

func copyMessage(message *chat.Message) chat.Message {
	copied := *message
	if message.Action != nil {
		action := *message.Action
		copied.Action = &action
	}
	return copied
}

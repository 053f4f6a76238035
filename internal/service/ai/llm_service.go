package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/opencodex/codex-web/backend/internal/config"
	"github.com/opencodex/codex-web/backend/internal/model/chat"
)

const basePrompt = "You are a coding assistant. Answer concisely and propose shell commands or file patches only when the user asks for them."

// ModelBackend produces turn content from the configured Ark chat model
// through an eino chain. It emits text chunks only; the model is not
// prompted for structured actions, so proposals come from backends that
// script them.
type ModelBackend struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewModelBackend compiles the prompt/model chain once at startup.
func NewModelBackend(ctx context.Context, cfg config.AIConfig) (*ModelBackend, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ModelBackend{chain: runnable}, nil
}

// Stream starts the model stream for one turn.
func (b *ModelBackend) Stream(ctx context.Context, req TurnRequest) (ChunkStream, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(req.Instructions),
		"history": buildHistoryMessages(req.History),
		"query":   req.Prompt,
	}

	stream, err := b.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream chat chain output: %w", err)
	}

	return &modelStream{inner: stream}, nil
}

type modelStream struct {
	inner *schema.StreamReader[*schema.Message]
}

func (s *modelStream) Recv() (Chunk, error) {
	for {
		message, err := s.inner.Recv()
		if err != nil {
			// io.EOF passes through as end of sequence.
			return Chunk{}, err
		}
		if message == nil || message.Content == "" {
			continue
		}
		return Chunk{Text: message.Content}, nil
	}
}

func (s *modelStream) Close() {
	s.inner.Close()
}

func buildSystemPrompt(instructions string) string {
	if strings.TrimSpace(instructions) == "" {
		return basePrompt
	}

	var builder strings.Builder
	builder.WriteString(basePrompt)
	builder.WriteString("\n\nUser instructions:\n")
	builder.WriteString(instructions)
	return builder.String()
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			if msg.Content != "" {
				history = append(history, schema.AssistantMessage(msg.Content, nil))
			}
		}
	}

	return history
}

package ai

import (
	"context"

	"github.com/opencodex/codex-web/backend/internal/model/chat"
)

// Chunk is one element of a turn's content sequence: either a piece of
// assistant text or an action proposal, never both.
type Chunk struct {
	Text     string
	Proposal *chat.ActionProposal
}

// TurnRequest describes one prompt submission to a backend.
type TurnRequest struct {
	SessionID    string
	Prompt       string
	Images       []chat.Attachment
	ContextFiles []chat.Attachment
	Provider     string
	Model        string
	Instructions string
	History      []chat.Message
}

// ChunkStream is a lazy, finite sequence of chunks. Recv blocks until the
// next chunk is available and returns io.EOF when the sequence ends. Each
// Recv is a suspension point where the caller checks for cancellation.
type ChunkStream interface {
	Recv() (Chunk, error)
	Close()
}

// Backend produces the content of one conversational turn: text chunks and
// zero or more action proposals, interleaved in any order. Implementations
// may be a real model integration or a scripted double; the coordinator does
// not care which.
type Backend interface {
	Stream(ctx context.Context, req TurnRequest) (ChunkStream, error)
}

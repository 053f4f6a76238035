package ai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/opencodex/codex-web/backend/internal/model/chat"
)

const sampleDiff = `--- a/example.txt
+++ b/example.txt
@@ -1 +1,2 @@
-Hello world
+Hello backend world!
+This is a new line.
`

// SimulatedBackend scripts a deterministic turn without calling a model.
// Prompts mentioning "command" yield a command proposal; prompts mentioning
// "diff", "patch" or "fix" yield a file patch proposal.
type SimulatedBackend struct{}

// NewSimulatedBackend returns the scripted backend.
func NewSimulatedBackend() SimulatedBackend {
	return SimulatedBackend{}
}

// Stream builds the scripted chunk sequence for the prompt.
func (SimulatedBackend) Stream(_ context.Context, req TurnRequest) (ChunkStream, error) {
	chunks := []Chunk{
		{Text: fmt.Sprintf("This is a simulated AI response to: %q from %s/%s", req.Prompt, req.Provider, req.Model)},
	}

	lower := strings.ToLower(req.Prompt)
	if strings.Contains(lower, "command") {
		command := fmt.Sprintf(`echo "Hello from backend! You said: %s" && date`, req.Prompt)
		chunks = append(chunks, Chunk{Proposal: chat.NewCommandProposal(command)})
	}
	if strings.Contains(lower, "diff") || strings.Contains(lower, "patch") || strings.Contains(lower, "fix") {
		chunks = append(chunks, Chunk{Proposal: chat.NewFilePatchProposal(sampleDiff, "example.txt")})
	}

	return &scriptedStream{chunks: chunks}, nil
}

type scriptedStream struct {
	chunks []Chunk
	pos    int
}

func (s *scriptedStream) Recv() (Chunk, error) {
	if s.pos >= len(s.chunks) {
		return Chunk{}, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *scriptedStream) Close() {}

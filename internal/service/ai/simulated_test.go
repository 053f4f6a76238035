package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/opencodex/codex-web/backend/internal/model/chat"
)

func drain(t *testing.T, backend Backend, prompt string) []Chunk {
	t.Helper()
	stream, err := backend.Stream(context.Background(), TurnRequest{
		Prompt:   prompt,
		Provider: "openai",
		Model:    "o4-mini",
	})
	if err != nil {
		t.Fatalf("Stream err: %v", err)
	}
	defer stream.Close()

	var chunks []Chunk
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("Recv err: %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func TestSimulatedCommandPrompt(t *testing.T) {
	chunks := drain(t, NewSimulatedBackend(), "list files, command please")

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text == "" || chunks[0].Proposal != nil {
		t.Fatalf("first chunk should be text: %+v", chunks[0])
	}

	proposal := chunks[1].Proposal
	if proposal == nil {
		t.Fatal("second chunk missing proposal")
	}
	if proposal.Kind != chat.ActionCommand {
		t.Fatalf("proposal kind: %s", proposal.Kind)
	}
	if proposal.Command == "" || proposal.State != chat.StateProposed {
		t.Fatalf("unexpected proposal: %+v", proposal)
	}
}

func TestSimulatedPatchPrompt(t *testing.T) {
	chunks := drain(t, NewSimulatedBackend(), "fix the diff")

	var proposal *chat.ActionProposal
	for _, chunk := range chunks {
		if chunk.Proposal != nil && chunk.Proposal.Kind == chat.ActionFilePatch {
			proposal = chunk.Proposal
		}
	}
	if proposal == nil {
		t.Fatal("no file patch proposal in stream")
	}
	if !strings.Contains(proposal.DiffString, "---") || !strings.Contains(proposal.DiffString, "+++") {
		t.Fatalf("diff missing unified headers: %q", proposal.DiffString)
	}
	if proposal.FileName != "example.txt" {
		t.Fatalf("file name: %s", proposal.FileName)
	}
}

func TestSimulatedPlainPromptHasNoProposal(t *testing.T) {
	chunks := drain(t, NewSimulatedBackend(), "hello there")

	for _, chunk := range chunks {
		if chunk.Proposal != nil {
			t.Fatalf("unexpected proposal for plain prompt: %+v", chunk.Proposal)
		}
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 text chunk, got %d", len(chunks))
	}
}

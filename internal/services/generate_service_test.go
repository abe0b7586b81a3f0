package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pverdon/go-minutes-backend/internal/llm"
)

// stubCompleter records the last call and returns canned output.
type stubCompleter struct {
	calls    int
	model    string
	messages []llm.Message
	out      string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, model string, messages []llm.Message) (string, error) {
	s.calls++
	s.model = model
	s.messages = messages
	return s.out, s.err
}

func TestGenerate_EmptyTranscript_NoGatewayCall(t *testing.T) {
	stub := &stubCompleter{out: "should not be seen"}
	svc := &GenerateService{Client: stub, Model: "m"}

	_, err := svc.Generate(context.Background(), "instr", "   \n\t ")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("gateway must not be called for empty transcript, got %d calls", stub.calls)
	}
}

func TestGenerate_BuildsPromptWithInstructionAndTranscript(t *testing.T) {
	stub := &stubCompleter{out: "Summary: budget discussed."}
	svc := &GenerateService{Client: stub, Model: "llama-3.3-70b-versatile"}

	out, err := svc.Generate(context.Background(), "Focus on decisions", "Alice and Bob discussed budget.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "Summary: budget discussed." {
		t.Fatalf("output must be returned unmodified, got %q", out)
	}
	if stub.model != "llama-3.3-70b-versatile" {
		t.Fatalf("model = %q", stub.model)
	}
	if len(stub.messages) != 2 {
		t.Fatalf("expected system+user turns, got %d", len(stub.messages))
	}
	if stub.messages[0].Role != "system" || stub.messages[0].Content != systemPrompt {
		t.Fatalf("system turn wrong: %+v", stub.messages[0])
	}
	want := "INSTRUCTION: Focus on decisions\n\nTRANSCRIPT:\nAlice and Bob discussed budget."
	if stub.messages[1].Role != "user" || stub.messages[1].Content != want {
		t.Fatalf("user turn wrong:\n got %q\nwant %q", stub.messages[1].Content, want)
	}
}

func TestGenerate_BlankInstruction_UsesDefault(t *testing.T) {
	stub := &stubCompleter{out: "ok"}
	svc := &GenerateService{Client: stub, Model: "m"}

	if _, err := svc.Generate(context.Background(), "  ", "some transcript"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(stub.messages[1].Content, "INSTRUCTION: "+DefaultInstruction) {
		t.Fatalf("default instruction not applied: %q", stub.messages[1].Content)
	}
}

func TestGenerate_TranscriptTooLong(t *testing.T) {
	stub := &stubCompleter{out: "ok"}
	svc := &GenerateService{Client: stub, Model: "m", MaxTranscriptRunes: 5}

	_, err := svc.Generate(context.Background(), "", "123456")
	if !errors.Is(err, ErrTranscriptTooLong) {
		t.Fatalf("expected ErrTranscriptTooLong, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("gateway must not be called for oversized transcript")
	}
}

func TestGenerate_GatewayErrorPropagates(t *testing.T) {
	boom := errors.New("chat completion: 429 Too Many Requests")
	stub := &stubCompleter{err: boom}
	svc := &GenerateService{Client: stub, Model: "m"}

	_, err := svc.Generate(context.Background(), "i", "tr")
	if !errors.Is(err, boom) {
		t.Fatalf("expected gateway error verbatim, got %v", err)
	}
}

// Package services – GenerateService
//
// This file implements GenerateService, the application-level component in
// front of the text-generation gateway. It validates the transcript, builds
// the combined instruction+transcript prompt, and performs one synchronous
// completion call. The gateway's output is returned unmodified; call
// failures propagate to the caller with no retry and no fallback model.
//
// Observability: Generate is OpenTelemetry-instrumented; spans record the
// model name and prompt size.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pverdon/go-minutes-backend/internal/llm"
)

const (
	roleSystem = "system"
	roleUser   = "user"

	// systemPrompt is the fixed system turn sent with every request.
	systemPrompt = "You are an assistant that creates structured meeting summaries."
)

// DefaultInstruction is used when the caller provides no instruction text.
const DefaultInstruction = "Summarize the transcript into a concise structured summary with action items, decisions, and owners."

// Completer is the gateway contract required by GenerateService.
type Completer interface {
	// Complete performs one synchronous chat completion.
	Complete(ctx context.Context, model string, messages []llm.Message) (string, error)
}

// GenerateService builds prompts and requests summaries from the gateway.
type GenerateService struct {
	Client Completer
	Model  string

	// MaxTranscriptRunes guards against oversized inputs; zero disables it.
	MaxTranscriptRunes int
}

// Generate validates the transcript, combines it with the instruction into
// a single prompt, and returns the gateway's response text.
//
// An empty transcript yields ErrEmptyTranscript before any external call.
// A blank instruction falls back to DefaultInstruction.
func (s *GenerateService) Generate(ctx context.Context, instruction, transcript string) (string, error) {
	tr := otel.Tracer("services/GenerateService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("llm.model", s.Model),
			attribute.Int("transcript.bytes", len(transcript)),
		),
	)
	defer span.End()

	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	if s.MaxTranscriptRunes > 0 && utf8.RuneCountInString(transcript) > s.MaxTranscriptRunes {
		return "", ErrTranscriptTooLong
	}

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}

	prompt := "INSTRUCTION: " + instruction + "\n\nTRANSCRIPT:\n" + transcript

	return s.Client.Complete(ctx, s.Model, []llm.Message{
		{Role: roleSystem, Content: systemPrompt},
		{Role: roleUser, Content: prompt},
	})
}

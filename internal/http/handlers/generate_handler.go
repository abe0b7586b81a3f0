// Summary generation HTTP handler.
//
// This file exposes the LLM-backed endpoint:
//   - POST /summaries/generate   (summarize a transcript, nothing persisted)
//
// The handler is transport-thin:
//   - validate & normalize inputs (including newline and length constraints)
//   - delegate to the application service (GenerateService)
//   - map upstream provider failures to 502 so clients can distinguish them
//     from local errors
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/pverdon/go-minutes-backend/internal/services"
)

//
// DTOs
//

// GenerateSummaryRequest is the JSON payload for summarizing a transcript.
//
// Transcript is normalized by the handler (line endings and excessive blank
// lines) before being passed to the service layer. The service also enforces a
// maximum rune count, which can be configured in GenerateService.
type GenerateSummaryRequest struct {
	// Transcript is the raw meeting transcript. It must be non-empty.
	Transcript string `json:"transcript" binding:"required,min=1" example:"Alice: shipping slips to Friday. Bob: I'll own the rollback plan."`
	// Instruction optionally overrides the default summarization instruction.
	Instruction string `json:"instruction,omitempty" example:"Summarize as bullet points grouped by owner"`
}

// GenerateSummaryResponse is the JSON envelope for a freshly generated summary.
type GenerateSummaryResponse struct {
	// Summary is the structured summary text returned by the model.
	Summary string `json:"summary"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeTranscript normalizes pasted text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeTranscript(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxTranscriptRunes inspects the concrete GenerateService for a
// configured transcript-length limit. If unavailable, it returns a
// conservative fallback.
func discoverMaxTranscriptRunes(genSvc GenerateService) int {
	const fallback = 400000
	if gs, ok := genSvc.(*services.GenerateService); ok {
		if gs.MaxTranscriptRunes > 0 {
			return gs.MaxTranscriptRunes
		}
	}
	return fallback
}

//
// Handler
//

// GenerateSummary godoc
// @ID          generateSummary
// @Summary     Generate a summary from a transcript
// @Description Sends the transcript and instruction to the model and returns the structured summary.
// @Description Nothing is persisted; the client saves explicitly via POST /summaries.
// @Tags        Summaries
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.GenerateSummaryRequest  true  "Transcript payload"
//
// @Success     200  {object}  handlers.GenerateSummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream model failure"
// @Router      /summaries/generate [post]
func (h *Handlers) GenerateSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req GenerateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "transcript required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	transcript := sanitizeTranscript(req.Transcript)
	maxRunes := discoverMaxTranscriptRunes(h.genSvc)
	if maxRunes > 0 && utf8.RuneCountInString(transcript) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("transcript too long: max %d runes", maxRunes))
		return
	}
	if transcript == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "transcript required")
		return
	}

	summary, err := h.genSvc.Generate(ctx, strings.TrimSpace(req.Instruction), transcript)
	if err != nil {
		switch err {
		case services.ErrEmptyTranscript:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "transcript required")
		case services.ErrTranscriptTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("transcript too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusBadGateway, ErrCodeGenerationFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, GenerateSummaryResponse{Summary: summary})
}

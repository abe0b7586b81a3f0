// Summary HTTP handlers.
//
// This file exposes REST endpoints for persisted meeting summaries:
//   - POST   /summaries         (save an accepted summary)
//   - GET    /summaries         (list most recent, ETag support)
//   - GET    /summaries/{id}    (fetch one record)
//   - DELETE /summaries/{id}    (delete one record)
//   - DELETE /summaries         (delete all records)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header on POST /summaries and a
// previous successful save exists for (user, "save", key), the handler returns
// the recorded row and sets `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pverdon/go-minutes-backend/internal/domain"
	"github.com/pverdon/go-minutes-backend/internal/http/middleware"
	"github.com/pverdon/go-minutes-backend/internal/repo"
	"github.com/pverdon/go-minutes-backend/internal/services"
	"github.com/pverdon/go-minutes-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SummaryService defines summary persistence operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SummaryService interface {
	// Save persists an accepted summary and returns the stored record.
	Save(ctx context.Context, title, prompt, transcript, generated, edited string) (*domain.Summary, error)
	// List returns the most recent summaries, capped at limit.
	List(ctx context.Context, limit int) ([]domain.Summary, error)
	// Get returns one summary by primary key.
	Get(ctx context.Context, id uint) (*domain.Summary, error)
	// Delete removes one summary by primary key.
	Delete(ctx context.Context, id uint) error
	// DeleteAll removes every stored summary.
	DeleteAll(ctx context.Context) error
}

// GenerateService defines the LLM summarization operation.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type GenerateService interface {
	// Generate produces a structured summary of transcript per instruction.
	Generate(ctx context.Context, instruction, transcript string) (string, error)
}

// MailService defines the email delivery operation for summaries.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MailService interface {
	// SendSummary delivers the summary text to the given recipients.
	SendSummary(ctx context.Context, recipients []string, subject, summary string) error
}

//
// Handler wiring
//

// Idempotency scopes recorded alongside keys so that a save retry and an
// email retry with the same key never collide.
const (
	IdemScopeSave  = "save"
	IdemScopeEmail = "email"
)

// Handlers groups HTTP endpoints for summary generation, persistence, and
// email delivery. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	sumSvc  SummaryService
	genSvc  GenerateService
	mailSvc MailService

	// IdemTTL bounds how long a stored idempotency record may be replayed.
	IdemTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(sumSvc SummaryService, genSvc GenerateService, mailSvc MailService) *Handlers {
	return &Handlers{sumSvc: sumSvc, genSvc: genSvc, mailSvc: mailSvc, IdemTTL: 24 * time.Hour}
}

// userID resolves the acting user for idempotency records. It defers to
// middleware.UserID so handlers and the replay-detecting middleware agree on
// the identity for any given request.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

//
// DTOs
//

// SaveSummaryRequest is the JSON payload for persisting an accepted summary.
type SaveSummaryRequest struct {
	// Title optionally names the record; "Untitled" is used when empty.
	Title string `json:"title" example:"Weekly sync 2025-03-14"`
	// Prompt is the instruction that produced the summary.
	Prompt string `json:"prompt" example:"Summarize with action items and owners"`
	// Transcript is the original meeting transcript.
	Transcript string `json:"transcript" binding:"required" example:"Alice: let's start..."`
	// Summary is the generated text, possibly edited by the user.
	Summary string `json:"summary" binding:"required" example:"Decisions: ..."`
	// Generated optionally carries the unedited model output; when empty the
	// edited Summary is stored for both columns.
	Generated string `json:"generated,omitempty"`
}

// ListSummariesResponse wraps the most recent summaries and their count.
type ListSummariesResponse struct {
	Summaries []domain.Summary `json:"summaries"`
	Count     int              `json:"count"`
}

//
// Helpers
//

// clampListLimit parses the limit query param, applying the default cap when
// absent and bounding it to [1, max].
func clampListLimit(c *gin.Context) int {
	const (
		defaultLimit = services.DefaultListLimit
		maxLimit     = 200
	)
	limit := utils.AtoiDefault(c.Query("limit"), defaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// parseID parses the :id path parameter as an unsigned integer primary key.
func parseID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// summariesDB inspects the concrete SummaryService for its database handle,
// used by best-effort features (ETag, idempotency) that read outside the
// service contract.
func (h *Handlers) summariesDB() *gorm.DB {
	if svc, ok := h.sumSvc.(*services.SummaryService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// SaveSummary godoc
// @ID          saveSummary
// @Summary     Save an accepted summary
// @Description Persists the transcript, prompt, and (possibly edited) summary as one record.
// @Description Supports idempotency via the Idempotency-Key header (same key → same record).
// @Tags        Summaries
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SaveSummaryRequest  true  "Save summary payload"
//
// @Success     201  {object}  domain.Summary
// @Success     200  {object}  domain.Summary  "Replayed from an earlier identical save"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /summaries [post]
func (h *Handlers) SaveSummary(c *gin.Context) {
	ctx := c.Request.Context()
	currentUser := userID(c)

	var req SaveSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "transcript and summary required")
		return
	}
	// The gate is on the text the user currently sees. A whitespace-only
	// summary must not be rescued by a non-blank generated field.
	if strings.TrimSpace(req.Summary) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "nothing to save: summary is empty")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	db := h.summariesDB()
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, currentUser, IdemScopeSave, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if id, err2 := strconv.ParseUint(rec.Ref, 10, 32); err2 == nil {
				if prev, err3 := h.sumSvc.Get(ctx, uint(id)); err3 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	generated := req.Generated
	if strings.TrimSpace(generated) == "" {
		generated = req.Summary
	}

	rec, err := h.sumSvc.Save(ctx, req.Title, req.Prompt, req.Transcript, generated, req.Summary)
	if err != nil {
		switch err {
		case services.ErrEmptySummary:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "nothing to save: summary is empty")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && db != nil {
		ref := strconv.FormatUint(uint64(rec.ID), 10)
		_, _ = repo.CreateIdempotency(ctx, db, currentUser, IdemScopeSave, idemKey, ref, http.StatusCreated, h.IdemTTL)
	}

	ok(c, http.StatusCreated, rec)
}

// ListSummaries godoc
// @ID          listSummaries
// @Summary     List saved summaries
// @Description Returns the most recent summaries, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Summaries
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       limit          query   int     false "Maximum rows to return"       minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListSummariesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /summaries [get]
func (h *Handlers) ListSummaries(c *gin.Context) {
	ctx := c.Request.Context()
	limit := clampListLimit(c)

	// ETag pre-check (best effort).
	if db := h.summariesDB(); db != nil {
		count, maxTS, err := repo.SummariesStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"summaries:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.sumSvc.List(ctx, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListSummariesResponse{Summaries: items, Count: len(items)})
}

// GetSummary godoc
// @ID          getSummary
// @Summary     Fetch one summary
// @Description Returns a single saved summary by its numeric id.
// @Tags        Summaries
// @Produce     json
//
// @Param       id  path  int  true  "Summary ID"  minimum(1) example(42)
//
// @Success     200  {object} domain.Summary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Summary not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /summaries/{id} [get]
func (h *Handlers) GetSummary(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "summary id must be a positive integer")
		return
	}

	rec, err := h.sumSvc.Get(c.Request.Context(), id)
	if err != nil {
		switch err {
		case services.ErrSummaryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "summary not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, rec)
}

// DeleteSummary godoc
// @ID          deleteSummary
// @Summary     Delete one summary
// @Description Removes a single saved summary. Deleting an absent id still returns 204.
// @Tags        Summaries
// @Produce     json
//
// @Param       id  path  int  true  "Summary ID"  minimum(1) example(42)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /summaries/{id} [delete]
func (h *Handlers) DeleteSummary(c *gin.Context) {
	id, okID := parseID(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "summary id must be a positive integer")
		return
	}

	if err := h.sumSvc.Delete(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

// DeleteAllSummaries godoc
// @ID          deleteAllSummaries
// @Summary     Delete all summaries
// @Description Removes every saved summary. Succeeds on an empty store.
// @Tags        Summaries
// @Produce     json
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /summaries [delete]
func (h *Handlers) DeleteAllSummaries(c *gin.Context) {
	if err := h.sumSvc.DeleteAll(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

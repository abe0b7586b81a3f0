// Summary email HTTP handler.
//
// This file exposes the outbound mail endpoint:
//   - POST /summaries/email   (send a summary to one or more recipients)
//
// The handler is transport-thin: it validates input, delegates to MailService,
// and maps delivery failures onto distinct status codes so clients can tell a
// bad address (400) from a missing relay configuration (503) from a relay
// failure (502).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// send exists for (user, "email", key), the handler short-circuits without
// re-sending and sets `Idempotency-Replayed: true`.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pverdon/go-minutes-backend/internal/http/middleware"
	"github.com/pverdon/go-minutes-backend/internal/mail"
	"github.com/pverdon/go-minutes-backend/internal/repo"
	"github.com/pverdon/go-minutes-backend/internal/services"
)

//
// DTOs
//

// RecipientList accepts either a JSON array of addresses or a single
// comma-separated string, so both `"a@x.com, b@y.com"` and
// `["a@x.com","b@y.com"]` are valid payloads.
type RecipientList []string

// UnmarshalJSON implements json.Unmarshaler.
func (r *RecipientList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*r = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*r = []string{one}
	return nil
}

// EmailSummaryRequest is the JSON payload for emailing a summary.
type EmailSummaryRequest struct {
	// Recipients holds the destination addresses (array or comma-separated string).
	Recipients RecipientList `json:"recipients" binding:"required" swaggertype:"array,string" example:"alice@example.com,bob@example.com"`
	// Subject is the email subject line.
	Subject string `json:"subject" example:"Meeting Summary: Weekly sync"`
	// Summary is the text to deliver.
	Summary string `json:"summary" binding:"required" example:"Decisions: ..."`
}

// EmailSummaryResponse confirms a completed delivery.
type EmailSummaryResponse struct {
	Status     string   `json:"status" example:"sent"`
	Recipients []string `json:"recipients"`
}

//
// Handler
//

// EmailSummary godoc
// @ID          emailSummary
// @Summary     Email a summary
// @Description Sends the summary as a multipart (HTML + plain text) email to the given recipients.
// @Description All addresses are validated before any relay connection; one bad address blocks the whole send.
// @Description Supports idempotency via the Idempotency-Key header (same key → no duplicate email).
// @Tags        Email
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.EmailSummaryRequest  true  "Email payload"
//
// @Success     200  {object}  handlers.EmailSummaryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or invalid recipients"
// @Failure     502  {object}  handlers.ErrorResponse  "Relay failure"
// @Failure     503  {object}  handlers.ErrorResponse  "SMTP not configured"
// @Router      /summaries/email [post]
func (h *Handlers) EmailSummary(c *gin.Context) {
	ctx := c.Request.Context()
	currentUser := userID(c)

	var req EmailSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipients and summary required")
		return
	}

	recipients := services.ParseRecipients(req.Recipients)

	// Idempotency (replay path) – skip the relay entirely on a known key.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	db := h.summariesDB()
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, currentUser, IdemScopeEmail, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, EmailSummaryResponse{Status: "sent", Recipients: recipients})
			return
		}
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "Meeting Summary"
	}

	if err := h.mailSvc.SendSummary(ctx, recipients, subject, req.Summary); err != nil {
		var badAddrs *services.InvalidRecipientsError
		switch {
		case errors.Is(err, services.ErrNoRecipients):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "no recipients provided")
		case errors.As(err, &badAddrs):
			fail(c, http.StatusBadRequest, ErrCodeInvalidRecipients, badAddrs.Error())
		case errors.Is(err, mail.ErrNotConfigured):
			fail(c, http.StatusServiceUnavailable, ErrCodeMailNotConfigured, err.Error())
		default:
			fail(c, http.StatusBadGateway, ErrCodeSendFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && db != nil {
		_, _ = repo.CreateIdempotency(ctx, db, currentUser, IdemScopeEmail, idemKey, strings.Join(recipients, ","), http.StatusOK, h.IdemTTL)
	}

	ok(c, http.StatusOK, EmailSummaryResponse{Status: "sent", Recipients: recipients})
}

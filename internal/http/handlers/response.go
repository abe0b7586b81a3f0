// Package handlers implements the HTTP endpoints of the public API:
// generating, saving, listing, fetching, deleting, and emailing summaries.
//
// Every endpoint answers with one of two shapes. Success responses are the
// resource (or a list wrapper) serialized as-is. Failures always carry the
// ErrorResponse envelope, so a client can branch on the stable `code` field
// instead of parsing messages:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "summary not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pverdon/go-minutes-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by all endpoints. RequestID
// echoes the X-Request-ID response header so a client report can be matched
// to server logs; Code is one of the constants in errors.go and is the only
// field clients should branch on.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"summary not found"`
}

// fail writes an ErrorResponse with the given status and aborts the chain.
// 5xx responses are additionally logged through the request-scoped logger;
// 4xx are the client's problem and stay out of the error log.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail() to the router package for NoRoute/NoMethod handlers,
// which must emit the same envelope as the endpoints themselves.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

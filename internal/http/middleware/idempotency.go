// Idempotency-Key handling for the POST endpoints. A client that retries a
// save or an email send with the same key must get the stored outcome back,
// not a second summary row or a second message to the recipients.
//
// The middleware only validates the header and flags detected replays in the
// request context. Serving the stored response stays in the handlers, and
// persistence is reached through the narrow IdempotencyLookup func so this
// package never imports the repo.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pverdon/go-minutes-backend/internal/sysutil"
)

// HeaderIdempotencyKey is the request header carrying the client's retry key.
// The value must be stable across retries of the same semantic operation.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashed by IdempotencyValidator. Read through the accessors
// below, never directly.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
// The second return value reports presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// operation for the same user, scope, and key. Handlers use it to return the
// stored result instead of generating or sending again.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. TTL is not enforced here;
// the lookup decides whether a stored record is still current.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$,
	// roughly an RFC 7230 token.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a completed, unexpired record exists for
// (userID, scope, key) at the given time. Errors mean the lookup itself
// failed and must not block the request.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator checks the Idempotency-Key header when present,
// stashes it for handlers, and marks the context when the lookup finds a
// prior completed request.
//
//   - No header: pass through untouched.
//   - Malformed key: 400 with a compact error body.
//   - Known replay: IsReplay turns true and rate limiting is bypassed, since
//     serving a stored row costs neither an LLM call nor a relay send.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			uid := UserID(c)
			scope := ScopeFromPath(c)
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), uid, scope, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// ScopeFromPath derives the idempotency scope from the matched route. The
// email endpoint gets its own scope so a save retry and an email retry with
// the same key never collide; every other POST shares the "save" scope.
func ScopeFromPath(c *gin.Context) string {
	if c != nil && c.Request != nil && strings.HasSuffix(c.Request.URL.Path, "/email") {
		return "email"
	}
	return "save"
}

// UserID resolves the identity a request acts as: the "userID" context value
// set by auth middleware, then the X-User-ID header, then "demo-user". The
// handlers use the same resolution, so a header-identified user's stored
// records and replay lookups share one key.
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		return sysutil.FirstNonEmpty(strings.TrimSpace(c.GetHeader("X-User-ID")), "demo-user")
	}
	return "demo-user"
}

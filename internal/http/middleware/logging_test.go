package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

func ridRouter(t *testing.T, wantCtxID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		v, ok := c.Get(requestIDKey)
		if !ok || v == "" {
			t.Fatalf("requestID not set in context")
		}
		if wantCtxID != "" && v != wantCtxID {
			t.Fatalf("context requestID = %v; want %q", v, wantCtxID)
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestID(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		r := ridRouter(t, "")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
		if w.Header().Get(requestIDHeader) == "" {
			t.Fatalf("expected generated %s header", requestIDHeader)
		}
	})

	t.Run("lowercase header propagates", func(t *testing.T) {
		r := ridRouter(t, "abc-123")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(strings.ToLower(requestIDHeader), "abc-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "abc-123" {
			t.Fatalf("expected propagated request id, got %q", got)
		}
	})

	t.Run("canonical header propagates", func(t *testing.T) {
		r := ridRouter(t, "Z-REQ-123")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(requestIDHeader, "Z-REQ-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "Z-REQ-123" {
			t.Fatalf("response %s header = %q; want %q", requestIDHeader, got, "Z-REQ-123")
		}
	})
}

type errGenFailed struct{}

func (e errGenFailed) Error() string { return "generation failed" }

func TestLogger_InfoWarnErrorAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())

	// 200 logs at info with the route pattern as path
	r.GET("/summaries", func(c *gin.Context) { c.String(http.StatusOK, `{"summaries":[]}`) })
	// a recorded gin error forces error level even on a 4xx status
	r.GET("/generate", func(c *gin.Context) {
		_ = c.Error(errGenFailed{})
		c.Status(http.StatusBadRequest)
	})

	for _, call := range []struct {
		path string
		want int
	}{
		{"/summaries", http.StatusOK},
		{"/missing", http.StatusNotFound}, // 404 -> warn, raw URL as path
		{"/generate", http.StatusBadRequest},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, call.path, nil))
		if w.Code != call.want {
			t.Fatalf("GET %s -> %d, want %d", call.path, w.Code, call.want)
		}
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/summaries"`) {
		t.Fatalf("expected info log with route path, got:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/missing"`) {
		t.Fatalf("expected warn log with raw path fallback, got:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) {
		t.Fatalf("expected error log, got:\n%s", logs)
	}
}

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())

	r.GET("/panic", func(c *gin.Context) {
		panic("summary store gone")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from Recovery, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("unexpected body: %v", body)
	}
	out := buf.String()
	if !strings.Contains(out, `"panic recovered"`) && !strings.Contains(out, `"panic"`) {
		t.Fatalf("expected panic log, got:\n%s", out)
	}
}

func TestRecovery_PanicAfterWrite_NoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(Recovery())

	// The response is already written when the panic hits, so Recovery must
	// abort without appending the JSON error body.
	r.GET("/panic-after-write", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("relay hung up")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic-after-write", nil))

	// The status may already be flushed as 200; only the absence of the JSON
	// envelope is asserted.
	if strings.Contains(w.Body.String(), "internal error") || strings.Contains(strings.ToLower(w.Header().Get("Content-Type")), "application/json") {
		t.Fatalf("expected no JSON error body when panic after write; got CT=%q body=%q",
			w.Header().Get("Content-Type"), w.Body.String())
	}

	if !strings.Contains(buf.String(), "panic recovered") && !strings.Contains(buf.String(), `"panic"`) {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestLoggerFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("fallback without Logger middleware", func(t *testing.T) {
		buf := captureLogger(t)
		r := gin.New()
		r.Use(RequestID())
		r.GET("/use", func(c *gin.Context) {
			LoggerFrom(c).Info().Msg("custom")
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))

		if !strings.Contains(buf.String(), `"message":"custom"`) {
			t.Fatalf("expected custom log in fallback")
		}
		if strings.Contains(buf.String(), `"request_id"`) {
			t.Fatalf("fallback logger unexpectedly had request_id")
		}
	})

	t.Run("request-scoped carries request_id", func(t *testing.T) {
		buf := captureLogger(t)
		r := gin.New()
		r.Use(RequestID())
		r.Use(Logger())
		r.GET("/use", func(c *gin.Context) {
			LoggerFrom(c).Info().Msg("custom2")
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))

		out := buf.String()
		if !strings.Contains(out, `"message":"custom2"`) {
			t.Fatalf("expected custom2 log present")
		}
		if !strings.Contains(out, `"request_id"`) {
			t.Fatalf("expected request-scoped logger to include request_id")
		}
	})
}

func TestHelpers_asString_and_truncate(t *testing.T) {
	if asString("x") != "x" || asString(123) != "" {
		t.Fatalf("asString failed")
	}
	for _, tc := range []struct {
		in   string
		max  int
		want string
	}{
		{"minutes", 10, "minutes"}, // shorter than max
		{"abcdefgh", 5, "abcde…"},  // truncated with ellipsis
		{"abc", 0, "abc"},          // max <= 0 disables truncation
	} {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

package obs

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// DefaultQuietPaths are polled often enough that their access logs drop to debug.
var DefaultQuietPaths = []string{"/health/live", "/health/ready", "/metrics"}

// NewLogger builds the process logger. format "console" (or "text") selects
// the human-readable writer; anything else emits JSON lines.
func NewLogger(format, level string) zerolog.Logger {
	return newLogger(os.Stdout, format, level)
}

func newLogger(w io.Writer, format, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// RequestLogger writes one access log line per request. Server errors log at
// error, client errors at warn, quiet paths at debug.
type RequestLogger struct {
	Logger     zerolog.Logger
	QuietPaths []string
}

// Middleware implements chi middleware.
func (l RequestLogger) Middleware(next http.Handler) http.Handler {
	quiet := l.QuietPaths
	if quiet == nil {
		quiet = DefaultQuietPaths
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := NewStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		status := rec.Status()
		evt := l.Logger.WithLevel(accessLevel(status, r.URL.Path, quiet))
		if !evt.Enabled() {
			return
		}
		evt = evt.
			Str("method", r.Method).
			Str("route", routeOf(r, r.URL.Path)).
			Int("status", status).
			Str("format", rec.Format()).
			Dur("duration", time.Since(start)).
			Int64("bytes", rec.BytesWritten())
		if id := middleware.GetReqID(r.Context()); id != "" {
			evt = evt.Str("request_id", id)
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
		}
		if sid, ok := common.SessionID(r.Context()); ok && sid != "" {
			evt = evt.Str("session_id", sid)
		}
		if loc := rec.Header().Get("Location"); loc != "" {
			evt = evt.Str("location", loc)
		}
		evt.Str("client_ip", common.ClientIP(r)).Msg("http_request")
	})
}

func accessLevel(status int, path string, quiet []string) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	}
	for _, p := range quiet {
		if path == p {
			return zerolog.DebugLevel
		}
	}
	return zerolog.InfoLevel
}

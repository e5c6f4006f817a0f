package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/odpem/drims/pkg/authz"
)

// Appender stores audit events.
type Appender interface {
	Append(ctx context.Context, event *EventRecord) error
}

// errorPeek caps how much of a failed response body is kept to read its
// error code.
const errorPeek = 4 << 10

// Middleware records an EventRecord for every mutating request after the
// handler completes. A failed write is logged and never fails the request.
func Middleware(store Appender, cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAudited(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			body := &capped{max: errorPeek}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(body)
			next.ServeHTTP(ww, r)

			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			ev := newEvent(r, code, start)
			if ev.Outcome == OutcomeDenied && !cfg.LogDenied {
				return
			}
			if code >= http.StatusBadRequest {
				if reason := errorCode(body.Bytes()); reason != "" {
					ev.Metadata = withMeta(ev.Metadata, "error", reason)
				}
			}

			// The request context may already be cancelled by the client.
			if err := store.Append(context.WithoutCancel(r.Context()), ev); err != nil {
				logger.Error("failed to write audit event", "error", err, "requestID", ev.RequestID)
			}
		})
	}
}

// newEvent describes a finished request.
func newEvent(r *http.Request, code int, start time.Time) *EventRecord {
	ctx := r.Context()
	actor := "anonymous"
	var roles []string
	if id, ok := authz.IdentityFromContext(ctx); ok {
		actor, roles = id.User, id.Roles
	}
	reqID := middleware.GetReqID(ctx)
	corrID := r.Header.Get("X-Correlation-ID")
	if corrID == "" {
		corrID = reqID
	}

	ev := &EventRecord{
		ID:            uuid.NewString(),
		CorrelationID: corrID,
		RequestID:     reqID,
		Actor:         actor,
		Roles:         JSONStringSlice(roles),
		Method:        r.Method,
		Path:          r.URL.Path,
		ResourceType:  extractResourceType(r.URL.Path),
		ResourceIDs:   JSONStringSlice(extractResourceIDs(r.URL.Path)),
		Action:        extractAction(r.Method, r.URL.Path),
		Outcome:       outcomeFromStatus(code),
		StatusCode:    code,
		DurationMS:    time.Since(start).Milliseconds(),
		CreatedAt:     start.UTC(),
	}
	if q := r.URL.RawQuery; q != "" {
		ev.Metadata = withMeta(ev.Metadata, "query", q)
	}
	return ev
}

func withMeta(m JSONMap, key string, v any) JSONMap {
	if m == nil {
		m = JSONMap{}
	}
	m[key] = v
	return m
}

// errorCode reads the "error" field of a JSON error body.
func errorCode(b []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) != nil {
		return ""
	}
	return body.Error
}

// capped keeps the first max bytes written to it and drops the rest.
type capped struct {
	bytes.Buffer
	max int
}

func (c *capped) Write(p []byte) (int, error) {
	if room := c.max - c.Len(); room > 0 {
		if len(p) > room {
			c.Buffer.Write(p[:room])
		} else {
			c.Buffer.Write(p)
		}
	}
	return len(p), nil
}

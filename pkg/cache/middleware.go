package cache

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Cache status reported in the X-Cache response header.
const (
	HeaderCache = "X-Cache"
	Hit         = "HIT"
	Miss        = "MISS"
)

// Middleware serves repeated GETs of the same URI from c. Only 200 responses
// are stored. Mount it on routes whose body does not depend on the caller.
func Middleware(c *LRUCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			key := r.URL.RequestURI()
			if body, ok := c.Get(key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(HeaderCache, Hit)
				_, _ = w.Write(body)
				return
			}

			w.Header().Set(HeaderCache, Miss)
			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			next.ServeHTTP(ww, r)

			if ww.Status() == http.StatusOK {
				c.Set(key, buf.Bytes())
			}
		})
	}
}

package http

import (
	"bytes"
	"net/http"
	"time"
)

// withUniformDelay holds the response of timing-sensitive endpoints until
// a fixed interval has elapsed, so response time does not leak whether a
// credential matched or which pipeline branch a submission took. Requests
// already slower than the interval are released immediately.
func (h *Handler) withUniformDelay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := h.cfg.UniformDelay
		if delay <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		buffered := &bufferedResponseWriter{header: make(http.Header)}
		next.ServeHTTP(buffered, r)

		if remaining := delay - time.Since(start); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-r.Context().Done():
			}
		}

		buffered.flushTo(w)
	})
}

// bufferedResponseWriter accumulates a whole response in memory so it can
// be released at a chosen instant.
type bufferedResponseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *bufferedResponseWriter) Header() http.Header { return b.header }

func (b *bufferedResponseWriter) WriteHeader(statusCode int) {
	if b.status == 0 {
		b.status = statusCode
	}
}

func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponseWriter) flushTo(w http.ResponseWriter) {
	for key, values := range b.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}

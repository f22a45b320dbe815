package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// statusRecorder remembers what a handler wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

type logFieldsKey struct{}

// logFields carries attributes a handler adds to its request's log line.
type logFields struct {
	attrs []any
}

// annotateRequest attaches key/value pairs to the access log line of r.
func annotateRequest(r *http.Request, kv ...any) {
	if f, ok := r.Context().Value(logFieldsKey{}).(*logFields); ok {
		f.attrs = append(f.attrs, kv...)
	}
}

// withRequestLogging writes one line per request. Health checks and blob
// downloads are skipped; rejected uploads log at warn so curators see why.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/blobs/") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		fields := &logFields{}
		r = r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, fields))
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.code()
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", rec.bytes,
			"remote_addr", r.RemoteAddr,
		}
		if r.Pattern != "" {
			attrs = append(attrs, "route", r.Pattern)
		}
		attrs = append(attrs, fields.attrs...)

		logger := s.log()
		switch {
		case status >= 500:
			logger.Error("request complete", attrs...)
		case status >= 400 && r.Method == http.MethodPost:
			logger.Warn("request complete", attrs...)
		case !isReadOnlyMethod(r.Method) && status < 400:
			logger.Info("request complete", attrs...)
		default:
			logger.Debug("request complete", attrs...)
		}
	})
}

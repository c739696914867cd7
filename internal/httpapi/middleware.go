package httpapi

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the status code a handler writes. Scan rejections
// travel inside 200 bodies, so the logged status separates transport
// failures from handled requests rather than saved from rejected scans.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s from=%s status=%d dur=%s", r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start))
	})
}

package middleware

import (
	"net/http"
	"time"

	chi_middleware "github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
)

func RequestLogFields(r *http.Request) log.Fields {
	return log.Fields{
		"request_id":     chi_middleware.GetReqID(r.Context()),
		"remote_address": r.RemoteAddr,
		"method":         r.Method,
		"path":           r.URL.Path,
	}
}

// RequestLogger logs every request when it completes.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chi_middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.WithFields(RequestLogFields(r)).WithFields(log.Fields{
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debugf("%s %s", r.Method, r.URL.Path)
		}
		return http.HandlerFunc(fn)
	}
}

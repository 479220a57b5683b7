package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/workpairs/pkg/logging"
)

// Logging creates middleware that logs every request with its status and
// latency. Server errors are logged at error level, client errors at warn.
func Logging(logger logging.Logger, getRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", rw.statusCode),
				logging.Int("bytes", rw.bytesWritten),
				logging.Latency(time.Since(start)),
			}
			if getRequestID != nil {
				if id := getRequestID(r); id != "" {
					fields = append(fields, logging.RequestID(id))
				}
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				logger.Error("http request", fields...)
			case rw.statusCode >= http.StatusBadRequest:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
		})
	}
}

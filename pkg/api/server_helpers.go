package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dd0wney/workpairs/pkg/api/middleware"
	"github.com/dd0wney/workpairs/pkg/logging"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// sanitizeError logs err in full and returns a message that is safe to show
// to clients.
func sanitizeError(logger logging.Logger, err error, operation string) string {
	if err == nil {
		return ""
	}

	logger.Error(operation+" failed",
		logging.String("operation", operation),
		logging.Error(err),
	)

	return fmt.Sprintf("%s failed", operation)
}

// requestLogger returns the server logger tagged with the request id.
func (s *Server) requestLogger(r *http.Request) logging.Logger {
	if id := middleware.GetRequestID(r); id != "" {
		return s.logger.With(logging.RequestID(id))
	}
	return s.logger
}

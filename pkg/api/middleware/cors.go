package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"

	"github.com/dd0wney/workpairs/pkg/logging"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string // List of allowed origins, or ["*"] for all
	AllowedMethods   []string // HTTP methods allowed
	AllowedHeaders   []string // Headers allowed in requests
	AllowCredentials bool     // Whether credentials (cookies, auth headers) are allowed
	MaxAge           int      // Preflight cache duration in seconds
}

// DefaultCORSConfig returns the configuration used for the upload API.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   []string{"http://localhost:8000"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// CORS creates middleware that handles Cross-Origin Resource Sharing. A nil
// config uses DefaultCORSConfig. Preflight requests are answered here and
// never reach next.
func CORS(config *CORSConfig, logger logging.Logger) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig()
	}
	opts := cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	}
	if logger != nil && logger.GetLevel() == logging.DebugLevel {
		opts.Logger = corsLogger{logger}
	}
	return cors.New(opts).Handler
}

// corsLogger adapts logging.Logger to the rs/cors Logger interface.
type corsLogger struct {
	logger logging.Logger
}

func (l corsLogger) Printf(format string, args ...any) {
	l.logger.Debug("cors", logging.String("detail", fmt.Sprintf(format, args...)))
}

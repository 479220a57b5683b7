// Package middleware provides HTTP middleware components for the workpairs
// upload service.
//
// The middleware package is organized into separate files by concern:
//
//   - recovery.go: Panic recovery middleware
//   - request_id.go: Request ID generation and tracking middleware
//   - logging.go: Request logging middleware
//   - metrics.go: HTTP metrics collection middleware
//   - body_limit.go: Request body size limiting middleware
//   - cors.go: Cross-Origin Resource Sharing (CORS) middleware
//   - security_headers.go: Security headers middleware
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler
// This allows easy chaining: handler = middleware1(middleware2(handler))
//
// Example usage:
//
//	router := mux.NewRouter()
//	// ... register handlers ...
//
//	handler := middleware.Metrics(registry)(router)
//	handler = middleware.Logging(logger, middleware.GetRequestID)(handler)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.PanicRecovery(logger)(handler)
//
//	http.ListenAndServe(":8080", handler)
package middleware

// Package http provides HTTP handlers and routing for the rewriter REST API.
//
// Endpoints:
//   - Health: / and /health
//   - Rewrite: POST /api/rewrite
//   - Sandbox: POST /api/sandbox
//   - Concat: GET /concat
//
// Example Usage:
//
//	handlers := http.NewHandlers(resolver, fetcher, sandboxRewriter, metrics, log)
//	router.GET("/health", handlers.Health)
//	router.POST("/api/rewrite", handlers.Rewrite)
package http

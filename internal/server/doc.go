// Package server provides HTTP server setup and initialization for the
// rewriter service.
//
// This package orchestrates all components:
//   - HTTP routing with Gin framework
//   - Middleware stack (request IDs, CORS, rate limiting, recovery, metrics)
//   - Container base URI resolution
//   - Resource fetcher for the concat endpoint
//   - Sandbox rewriter with its content-addressed cache
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Build the URI resolver and load container overrides
//  4. Wire fetcher, cache provider, and sandbox rewriter
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

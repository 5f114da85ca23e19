// Package main is the entry point for the resource rewriter server.
//
// The server rewrites script/stylesheet references in fetched documents
// so external resource loads are funneled through a controlled proxy,
// batched into concatenated requests, or sandboxed through a cached
// content transformation.
//
// The server provides:
//   - REST API for document rewriting and sandboxing
//   - Concat endpoint resolving batched resource requests
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8080
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

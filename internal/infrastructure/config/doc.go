// Package config provides 12-factor configuration management for the rewriter service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Rewrite: Proxy/concat base URIs, container overrides file, sandbox cache size
//   - Fetch: Resource fetcher timeout and body limits
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - PROXY_BASE, CONCAT_BASE, CONTAINERS_FILE, SANDBOX_CACHE_CAPACITY
//   - FETCH_TIMEOUT, FETCH_MAX_BODY
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config

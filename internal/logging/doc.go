// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Features:
//   - Zero-allocation logging in production
//   - Structured fields for context
//   - Per-component child loggers
//   - Configurable output paths
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	logger.Info("Server starting", zap.String("port", "8080"))
//	logger.WithComponent("fetch").Debug("fetched resource", zap.String("url", u))
package logging

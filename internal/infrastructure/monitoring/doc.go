/*
Package monitoring provides Prometheus-based metrics collection.

# Overview

Tracks HTTP request latency/throughput plus domain counters: document
rewrites, concatenated runs and resources, sandbox cache hits/misses,
and transformer failures.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	metrics.RecordRewrite("script", "mutated")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring

/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern to stop the concat
fetcher from hammering origins that have become unavailable or slow.
Breakers are grouped per origin host so one failing host does not block
resources served from healthy ones.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := group.Do(u.Host, func() error {
		_, err := client.Get(u.String())
		return err
	})

# States

  - Closed: Normal operation, requests pass through
  - Open: Host unavailable, requests fail immediately
  - Half-Open: Testing if host recovered, limited requests allowed

State transitions:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
*/
package resilience

// Package cache provides a minimal pluggable key/value cache abstraction.
//
// The core only requires Get and Put; eviction, persistence, and sizing
// policy belong to the provider. A nil or missing provider is modeled by
// the no-op cache, which always misses and never stores.
package cache

// Cache maps string keys to values.
type Cache interface {
	// Get returns the value stored under key, if any.
	Get(key string) (any, bool)
	// Put stores value under key. Last writer wins.
	Put(key string, value any)
}

// Provider creates named caches. Repeated calls with the same name
// return the same cache.
type Provider interface {
	Cache(name string) Cache
}

// Noop is a cache that always misses and never stores.
type Noop struct{}

// Get always reports a miss.
func (Noop) Get(string) (any, bool) { return nil, false }

// Put discards the value.
func (Noop) Put(string, any) {}

// FromProvider returns a cache from provider, or a Noop cache when no
// provider is configured.
func FromProvider(provider Provider, name string) Cache {
	if provider == nil {
		return Noop{}
	}
	return provider.Cache(name)
}

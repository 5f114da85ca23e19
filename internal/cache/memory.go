package cache

import "sync"

// MemoryProvider creates bounded in-memory caches.
type MemoryProvider struct {
	mu       sync.Mutex
	capacity int
	caches   map[string]*Memory
}

// NewMemoryProvider creates a provider whose caches hold at most
// capacity entries each. A non-positive capacity means unbounded.
func NewMemoryProvider(capacity int) *MemoryProvider {
	return &MemoryProvider{
		capacity: capacity,
		caches:   make(map[string]*Memory),
	}
}

// Cache returns the named cache, creating it on first use.
func (p *MemoryProvider) Cache(name string) Cache {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.caches[name]
	if !ok {
		c = NewMemory(p.capacity)
		p.caches[name] = c
	}
	return c
}

// Memory is a concurrency-safe in-memory cache with a soft size bound.
// When full, an arbitrary entry is evicted to make room.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]any
}

// NewMemory creates an in-memory cache holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	return &Memory{
		capacity: capacity,
		entries:  make(map[string]any),
	}
}

// Get returns the value stored under key, if any.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Put stores value under key, evicting an arbitrary entry when full.
func (m *Memory) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && m.capacity > 0 && len(m.entries) >= m.capacity {
		for k := range m.entries {
			delete(m.entries, k)
			break
		}
	}
	m.entries[key] = value
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

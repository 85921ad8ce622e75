package sequence

import (
	"context"
	"sync"
)

// MemoryAllocator keeps counters in process memory. Used in dev mode and
// tests; it provides the same uniqueness guarantee within one process.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		counters: make(map[string]int64),
	}
}

func (m *MemoryAllocator) Next(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name]++
	return m.counters[name], nil
}

// Current returns the last allocated value without consuming one.
func (m *MemoryAllocator) Current(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

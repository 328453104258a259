package credstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps everything in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Put(ctx context.Context, namespace string, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string, len(entries))
		m.data[namespace] = ns
	}
	for k, v := range entries {
		ns[k] = v
	}
	return nil
}

func (m *MemoryBackend) Erase(ctx context.Context, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

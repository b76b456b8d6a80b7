package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process Storage used by tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string

	// FailPut, when set, makes Put fail for matching paths. Lets tests
	// exercise partial-upload cleanup.
	FailPut func(path string) bool
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Put(_ context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil && m.FailPut(path) {
		return fmt.Errorf("put %s: injected failure", path)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = buf
	m.types[path] = contentType
	return nil
}

func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return ErrNotFound
	}
	delete(m.objects, path)
	delete(m.types, path)
	return nil
}

func (m *Memory) SignedURL(path string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s?expires=%d", path, time.Now().Add(ttl).Unix()), nil
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

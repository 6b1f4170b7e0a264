package lister

import (
	"context"
	"fmt"
	"sync"
)

// MockLister is a simple in-memory Lister implementation for tests.
type MockLister struct {
	mu       sync.RWMutex
	listings map[string][]byte
	calls    map[string]int
}

// NewMockLister constructs an empty MockLister.
func NewMockLister() *MockLister {
	return &MockLister{
		listings: make(map[string][]byte),
		calls:    make(map[string]int),
	}
}

// List returns the registered listing for archivePath.
func (m *MockLister) List(ctx context.Context, archivePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[archivePath]++
	out, ok := m.listings[archivePath]
	if !ok {
		return nil, fmt.Errorf("mock lister: no listing for %s", archivePath)
	}
	return append([]byte(nil), out...), nil
}

// AddListing registers the tool output returned for archivePath.
func (m *MockLister) AddListing(archivePath string, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listings[archivePath] = []byte(output)
}

// Calls reports how many times archivePath was listed.
func (m *MockLister) Calls(archivePath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.calls[archivePath]
}

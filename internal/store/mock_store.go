// ABOUTME: In-memory LinkStore implementation for testing
// ABOUTME: Allows handler tests to run without SQLite while keeping Put semantics

package store

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// MockStore is an in-memory LinkStore for testing. Values are kept as raw bytes so
// tests can seed corrupt records with SetRaw.
type MockStore struct {
	mu      sync.RWMutex
	links   map[string]mockLink
	opts    options
	closed  bool
	failErr error // returned by every operation when set
}

type mockLink struct {
	raw       []byte
	createdAt time.Time
}

var _ LinkStore = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore(opts ...Option) *MockStore {
	return &MockStore{
		links: make(map[string]mockLink),
		opts:  newOptions(opts),
	}
}

// Put stores target following LinkStore.Put semantics.
func (m *MockStore) Put(ctx context.Context, custom string, target *url.URL, length int) (string, error) {
	if target == nil {
		return "", errors.New("target is required")
	}
	if err := m.failure(); err != nil {
		return "", err
	}

	chosen, err := m.opts.allocate(ctx, custom, length, m.Get)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[chosen] = mockLink{raw: []byte(target.String()), createdAt: time.Now().UTC()}
	return chosen, nil
}

// Get retrieves the target for slug.
func (m *MockStore) Get(ctx context.Context, slug string) (*url.URL, error) {
	link, err := m.GetLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	return link.Target, nil
}

// GetLink retrieves the full record for slug.
func (m *MockStore) GetLink(ctx context.Context, slug string) (*Link, error) {
	if err := m.failure(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	l, ok := m.links[slug]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	target, err := decodeTarget(slug, l.raw)
	if err != nil {
		return nil, err
	}
	return &Link{Slug: slug, Target: target, CreatedAt: l.createdAt}, nil
}

// Ping returns the configured failure, if any.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.failure()
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetRaw stores value under slug without any validation.
func (m *MockStore) SetRaw(slug string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[slug] = mockLink{raw: value, createdAt: time.Now().UTC()}
}

// FailWith makes every subsequent operation return err. Pass nil to clear.
func (m *MockStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Len returns the number of stored links.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}

// Closed reports whether Close has been called.
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *MockStore) failure() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failErr
}

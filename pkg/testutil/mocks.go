// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/util"

	"github.com/R3E-Network/nft_layer/internal/storage"
	"github.com/R3E-Network/nft_layer/internal/storage/memory"
)

// ErrInjected is returned by MockStore when a failure is armed.
var ErrInjected = errors.New("injected storage failure")

// Account returns a deterministic, non-zero script hash for n.
func Account(n byte) util.Uint160 {
	var a util.Uint160
	for i := range a {
		a[i] = n
	}
	a[0] = 0xA0 ^ n
	return a
}

// MockStore is a storage.Store backed by memory with failure injection
// and call counting.
type MockStore struct {
	mu        sync.Mutex
	inner     *memory.Store
	failSaves int
	saves     int
	loads     int
}

var _ storage.Store = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{inner: memory.New()}
}

// FailNextSaves makes the next n Save calls return ErrInjected.
func (m *MockStore) FailNextSaves(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = n
}

// Saves returns the number of successful saves.
func (m *MockStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Loads returns the number of Load calls.
func (m *MockStore) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func (m *MockStore) Load(ctx context.Context, address string) (storage.Record, error) {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()
	return m.inner.Load(ctx, address)
}

func (m *MockStore) Save(ctx context.Context, rec storage.Record) error {
	m.mu.Lock()
	if m.failSaves > 0 {
		m.failSaves--
		m.mu.Unlock()
		return ErrInjected
	}
	m.saves++
	m.mu.Unlock()
	return m.inner.Save(ctx, rec)
}

func (m *MockStore) List(ctx context.Context) ([]storage.Record, error) {
	return m.inner.List(ctx)
}

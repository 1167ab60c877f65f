// Package memstore provides an in-memory credential store.
//
// It is suitable for tests and for sessions that should not outlive the
// process. It is not persistent and does not share state across processes.
package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-booking-client/credstore"
)

var _ credstore.Store = (*Memstore)(nil)

// Memstore is an in-memory credential store.
// It is safe for concurrent use by multiple goroutines.
type Memstore struct {
	values sync.Map
}

// New creates an empty Memstore.
func New() *Memstore {
	return &Memstore{}
}

// NewWithValues creates a Memstore pre-populated with values.
func NewWithValues(values map[string]string) *Memstore {
	m := New()
	for k, v := range values {
		m.values.Store(k, v)
	}
	return m
}

func (m *Memstore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, credstore.Wrap(credstore.OpGet, name, err)
	}
	v, ok := m.values.Load(name)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *Memstore) Set(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return credstore.Wrap(credstore.OpSet, name, err)
	}
	m.values.Store(name, value)
	return nil
}

func (m *Memstore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return credstore.Wrap(credstore.OpRemove, name, err)
	}
	m.values.Delete(name)
	return nil
}

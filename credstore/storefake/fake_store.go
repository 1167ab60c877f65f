package storefake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-booking-client/credstore"
)

var _ credstore.Store = (*FakeStore)(nil)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected storage failure")

// FakeStore is an in-memory Store whose operations can be made to fail or block.
type FakeStore struct {
	lock       sync.Mutex
	values     map[string]string
	failGet    bool
	failSet    bool
	failRemove bool
	gate       chan struct{} // when non-nil, Get waits for it to close
	calls      map[string]int
}

func NewFakeStore(values map[string]string) *FakeStore {
	fs := &FakeStore{
		values: make(map[string]string),
		calls:  make(map[string]int),
	}
	for k, v := range values {
		fs.values[k] = v
	}
	return fs
}

// FailGet makes Get fail with ErrInjected while fail is true.
func (fs *FakeStore) FailGet(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failGet = fail
}

// FailSet makes Set fail with ErrInjected while fail is true.
func (fs *FakeStore) FailSet(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failSet = fail
}

// FailRemove makes Remove fail with ErrInjected while fail is true.
func (fs *FakeStore) FailRemove(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failRemove = fail
}

// BlockGet makes Get wait until the returned release function is called
// (or the caller's context ends).
func (fs *FakeStore) BlockGet() (release func()) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	gate := make(chan struct{})
	fs.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns how many times op (credstore.OpGet, OpSet, OpRemove) was invoked.
func (fs *FakeStore) Calls(op string) int {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.calls[op]
}

// Value returns the raw stored value.
func (fs *FakeStore) Value(name string) (string, bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	v, ok := fs.values[name]
	return v, ok
}

func (fs *FakeStore) Get(ctx context.Context, name string) (string, bool, error) {
	fs.lock.Lock()
	fs.calls[credstore.OpGet]++
	gate := fs.gate
	fs.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", false, credstore.Wrap(credstore.OpGet, name, ctx.Err())
		}
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failGet {
		return "", false, credstore.Wrap(credstore.OpGet, name, ErrInjected)
	}
	v, ok := fs.values[name]
	return v, ok, nil
}

func (fs *FakeStore) Set(ctx context.Context, name, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.calls[credstore.OpSet]++
	if fs.failSet {
		return credstore.Wrap(credstore.OpSet, name, ErrInjected)
	}
	fs.values[name] = value
	return nil
}

func (fs *FakeStore) Remove(ctx context.Context, name string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.calls[credstore.OpRemove]++
	if fs.failRemove {
		return credstore.Wrap(credstore.OpRemove, name, ErrInjected)
	}
	delete(fs.values, name)
	return nil
}

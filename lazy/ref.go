// Package lazy provides placeholders that load their value on first use.
//
// A Ref implements replica.Placeholder and replica.Rewrapper, so graphs built
// from Refs can be detached with replica.DeepCopy:
//
//	type Order struct {
//	    ID       string
//	    Customer *lazy.Ref[*Customer]
//	}
//
//	order.Customer = lazy.Load[*Customer](source, codec.JSON(), "customer:42")
//	detached, err := replica.Copy(ctx, order) // Customer is now loaded and copied
package lazy

import (
	"context"
	"errors"
	"sync"
)

// ErrNoLoader indicates a Ref with neither a value nor a loader.
var ErrNoLoader = errors.New("lazy: ref has no loader")

// Loader produces the value of a Ref. It may block.
type Loader[T any] func(ctx context.Context) (T, error)

// Ref is a placeholder for a T loaded on first access.
//
// A successful load is kept and the loader released; a failed load is not
// kept, the next access tries again. Refs are safe for concurrent use.
// The zero Ref holds no value and fails with ErrNoLoader.
type Ref[T any] struct {
	mu     sync.Mutex
	load   Loader[T]
	value  T
	loaded bool
}

// New returns an unloaded Ref backed by load.
func New[T any](load Loader[T]) *Ref[T] {
	return &Ref[T]{load: load}
}

// Of returns a Ref already holding v.
func Of[T any](v T) *Ref[T] {
	return &Ref[T]{value: v, loaded: true}
}

// Get returns the value, loading it if needed.
func (r *Ref[T]) Get(ctx context.Context) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.value, nil
	}

	var zero T
	if r.load == nil {
		return zero, ErrNoLoader
	}

	v, err := r.load(ctx)
	if err != nil {
		return zero, err
	}

	r.value, r.loaded, r.load = v, true, nil
	return v, nil
}

// Loaded reports whether the value is available without loading.
func (r *Ref[T]) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Resolve implements replica.Placeholder.
func (r *Ref[T]) Resolve(ctx context.Context) (any, error) {
	v, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Rewrap implements replica.Rewrapper. It returns a loaded Ref holding
// actual, or nil if actual is not a T.
func (r *Ref[T]) Rewrap(actual any) any {
	v, ok := actual.(T)
	if !ok {
		return nil
	}
	return Of(v)
}

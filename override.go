package replica

import (
	"context"
	"reflect"
)

// Replicable lets a type copy itself without reflection. It is the hook a
// code generator implements from the same copy tags the reflective path reads.
//
// Replicate is called on the freshly allocated, zero-valued copy after it has
// been registered, so a cycle leading back to src resolves to the receiver.
// src is the source value (not a pointer). Use r to copy fields that may hold
// placeholders or shared nodes; values r returns can still be filling in and
// are complete once the outer copy returns.
type Replicable interface {
	Replicate(src any, r *Replicator) error
}

// Replicator gives a Replicable access to the copy in progress.
type Replicator struct {
	w  *walker
	at *step
}

// Context returns the context of the copy in progress.
func (r *Replicator) Context() context.Context {
	return r.w.ctx
}

// Copy copies v within the current call, sharing its visited map.
func (r *Replicator) Copy(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	cv, err := r.w.copyValue(reflect.ValueOf(v), r.at)
	if err != nil {
		return nil, err
	}
	if !cv.IsValid() {
		return nil, nil
	}
	return cv.Interface(), nil
}

// ReplicaOf copies v through r and returns it as T.
func ReplicaOf[T any](r *Replicator, v T) (T, error) {
	var zero T
	rt := reflect.TypeFor[T]()

	cv, err := r.w.convert(rt, reflect.ValueOf(&v).Elem(), r.at)
	if err != nil {
		return zero, err
	}
	out, _ := cv.Interface().(T)
	return out, nil
}

package replica

import (
	"context"
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

var (
	registry   = make(map[reflect.Type]*typePlan)
	registryMu sync.RWMutex
)

// planFor returns the cached plan for a struct type or builds a new one.
// Plans that fail to build are not cached.
func planFor(ctx context.Context, rt reflect.Type) (*typePlan, error) {
	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[rt]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[rt]; ok {
		return cached, nil
	}

	plan, err := buildPlan(rt)
	if err != nil {
		return nil, err
	}

	registry[rt] = plan
	emitPlanBuilt(ctx, plan.typeName, len(plan.fields))
	return plan, nil
}

// Prepare plans T and every struct type statically reachable from it,
// returning the first invalid copy tag. Calling Prepare at startup surfaces
// tag mistakes before the first copy; it is never required.
func Prepare[T any]() error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Struct {
		sentinel.Scan[T]()
	}

	for _, st := range structTypes(rt, make(map[reflect.Type]bool), nil) {
		if _, err := planFor(context.Background(), st); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]*typePlan)
}

package replica

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestPlanFor_Caching(t *testing.T) {
	Reset()

	p1, err := planFor(context.Background(), reflect.TypeFor[Node]())
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	p2, err := planFor(context.Background(), reflect.TypeFor[Node]())
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}

	if p1 != p2 {
		t.Error("planFor() should return cached plan")
	}
}

func TestPlanFor_ErrorsNotCached(t *testing.T) {
	Reset()

	if _, err := planFor(context.Background(), reflect.TypeFor[BadTag]()); err == nil {
		t.Fatal("expected error")
	}

	registryMu.RLock()
	_, cached := registry[reflect.TypeFor[BadTag]()]
	registryMu.RUnlock()
	if cached {
		t.Error("failed plan should not be cached")
	}
}

func TestPlanFor_Concurrent(t *testing.T) {
	Reset()

	var wg sync.WaitGroup
	plans := make([]*typePlan, 16)
	for i := range plans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plans[i], _ = planFor(context.Background(), reflect.TypeFor[Tree]())
		}(i)
	}
	wg.Wait()

	for i, p := range plans {
		if p != plans[0] {
			t.Errorf("plan %d differs from plan 0", i)
		}
	}
}

func TestReset(t *testing.T) {
	p1, _ := planFor(context.Background(), reflect.TypeFor[Node]())

	Reset()

	p2, _ := planFor(context.Background(), reflect.TypeFor[Node]())
	if p1 == p2 {
		t.Error("Reset() should clear cache, new plan expected")
	}
}

func TestPrepare(t *testing.T) {
	Reset()

	if err := Prepare[Order](); err != nil {
		t.Fatalf("Prepare[Order]() error: %v", err)
	}

	registryMu.RLock()
	_, order := registry[reflect.TypeFor[Order]()]
	_, line := registry[reflect.TypeFor[Line]()]
	registryMu.RUnlock()
	if !order || !line {
		t.Errorf("Prepare should plan Order and Line, got order=%v line=%v", order, line)
	}
}

func TestPrepare_NonStruct(t *testing.T) {
	Reset()

	if err := Prepare[[]*Tree](); err != nil {
		t.Fatalf("Prepare[[]*Tree]() error: %v", err)
	}
	if err := Prepare[int](); err != nil {
		t.Fatalf("Prepare[int]() error: %v", err)
	}
}

func TestPrepare_InvalidTag(t *testing.T) {
	Reset()

	err := Prepare[Wrapper]()
	if !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}

	var te *TagError
	if !errors.As(err, &te) {
		t.Fatal("expected *TagError")
	}
	if te.Type != reflect.TypeFor[BadTag]() {
		t.Errorf("TagError.Type = %s, want replica.BadTag", te.Type)
	}
}

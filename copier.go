package replica

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"
)

var errNilValue = errors.New("value is nil")

// Copier produces detached deep copies of object graphs.
//
// A Copier is immutable after New and safe for concurrent use. Each DeepCopy
// call keeps its own visited map, so sharing and cycles are preserved within
// one call only: two calls reaching the same node copy it twice.
type Copier struct {
	resolver        Resolver
	leaves          map[reflect.Type]struct{}
	strict          bool
	maxResolveDepth int
	concurrency     int
}

// New creates a Copier with the default resolver and leaf types.
func New(opts ...Option) *Copier {
	c := &Copier{
		resolver:        PlaceholderResolver{},
		leaves:          make(map[reflect.Type]struct{}),
		maxResolveDepth: DefaultMaxResolveDepth,
	}
	for _, t := range defaultLeafTypes() {
		c.leaves[t] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCopier = New()

// IsLeaf reports whether values of type t are shared by reference instead of copied.
func (c *Copier) IsLeaf(t reflect.Type) bool {
	if isLeafKind(t.Kind()) {
		return true
	}
	_, ok := c.leaves[t]
	return ok
}

// ShallowResolve resolves v if it is a placeholder and returns the real value.
// Placeholders resolving to placeholders are followed until a real value is
// reached, so ShallowResolve(ShallowResolve(v)) equals ShallowResolve(v).
// Fields and elements of the result are left untouched.
func (c *Copier) ShallowResolve(ctx context.Context, v any) (any, error) {
	if isAbsent(v) {
		return nil, newCopyError(ErrInvalidArgument, nil, reflect.TypeOf(v), errNilValue)
	}
	actual, _, err := c.resolve(ctx, "", v)
	if err != nil {
		return nil, newCopyError(ErrResolve, nil, reflect.TypeOf(v), err)
	}
	return actual, nil
}

// resolve follows placeholders until v is real. It returns the number of
// placeholders resolved.
func (c *Copier) resolve(ctx context.Context, copyID string, v any) (any, int, error) {
	n := 0
	for v != nil && c.resolver.IsPlaceholder(v) {
		if n >= c.maxResolveDepth {
			return nil, n, fmt.Errorf("more than %d nested placeholders", c.maxResolveDepth)
		}

		start := time.Now()
		actual, err := c.resolver.Resolve(ctx, v)
		emitPlaceholderResolved(ctx, copyID, typeName(v), time.Since(start), err)
		if err != nil {
			return nil, n, err
		}

		n++
		v = actual
	}
	return v, n, nil
}

// DeepCopy returns a detached copy of root with every placeholder resolved.
//
// Slices, arrays, maps and sets are copied as containers, including nil ones.
// Anything else is copied as a single object graph, which requires a non-nil
// root: nil and typed nil pointers fail with ErrInvalidArgument.
//
// Any error aborts the whole copy. No partial result is returned.
func (c *Copier) DeepCopy(ctx context.Context, root any) (any, error) {
	if isAbsent(root) {
		return nil, newCopyError(ErrInvalidArgument, nil, reflect.TypeOf(root), errNilValue)
	}

	name := typeName(root)
	start := time.Now()
	w := c.newWalker(ctx)
	emitCopyStart(ctx, w.id, name)

	out, err := w.run(reflect.ValueOf(root), rootStep(reflect.TypeOf(root)))

	emitCopyComplete(ctx, w.id, name, time.Since(start), w.nodes, w.resolved, err)
	if err != nil {
		return nil, err
	}
	if !out.IsValid() {
		return nil, nil
	}
	return out.Interface(), nil
}

// DeepCopyEach copies independent roots concurrently, one visited map per root.
// Nodes reachable from several roots are copied once per root. The first
// failure cancels the context passed to the others and is returned.
func (c *Copier) DeepCopyEach(ctx context.Context, roots []any) ([]any, error) {
	out := make([]any, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, root := range roots {
		g.Go(func() error {
			cp, err := c.DeepCopy(gctx, root)
			if err != nil {
				return fmt.Errorf("root %d: %w", i, err)
			}
			out[i] = cp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeepCopy copies root with the default Copier.
func DeepCopy(ctx context.Context, root any) (any, error) {
	return defaultCopier.DeepCopy(ctx, root)
}

// ShallowResolve resolves v with the default Copier.
func ShallowResolve(ctx context.Context, v any) (any, error) {
	return defaultCopier.ShallowResolve(ctx, v)
}

// Copy deep copies v with the default Copier and returns it as T.
func Copy[T any](ctx context.Context, v T) (T, error) {
	return CopyWith(ctx, defaultCopier, v)
}

// CopyWith deep copies v with c and returns it as T.
// A placeholder root resolves to its real value; if that value is not a T,
// the placeholder must implement Rewrapper.
func CopyWith[T any](ctx context.Context, c *Copier, v T) (T, error) {
	var zero T

	out, err := c.DeepCopy(ctx, v)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}

	rt := reflect.TypeFor[T]()
	fitted, err := fit(rt, reflect.ValueOf(out), reflect.ValueOf(any(v)), rootStep(rt))
	if err != nil {
		return zero, err
	}
	copied, _ := fitted.Interface().(T)
	return copied, nil
}

// isAbsent reports nil interfaces and typed nil pointers.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// rootStep names the root of an error path after the root's type.
func rootStep(t reflect.Type) *step {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return &step{field: name, index: -1}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

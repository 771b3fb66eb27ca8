package replica

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/google/uuid"
)

// nodeKey identifies a reference node by type and address.
// Slices also carry their length, since sub-slices share a base address.
type nodeKey struct {
	typ reflect.Type
	ptr unsafe.Pointer
	n   int
}

// step is one segment of the path from the root to the value being copied.
// Paths are only rendered when an error needs them.
type step struct {
	parent *step
	field  string
	index  int
	key    reflect.Value
}

func (s *step) child(field string) *step { return &step{parent: s, field: field, index: -1} }
func (s *step) elem(i int) *step         { return &step{parent: s, index: i} }
func (s *step) entry(k reflect.Value) *step {
	return &step{parent: s, index: -1, key: k}
}

func (s *step) String() string {
	if s == nil {
		return ""
	}
	var segs []*step
	for cur := s; cur != nil; cur = cur.parent {
		segs = append(segs, cur)
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		seg := segs[i]
		switch {
		case seg.field != "":
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.field)
		case seg.key.IsValid():
			if seg.key.CanInterface() {
				fmt.Fprintf(&b, "[%v]", seg.key.Interface())
			} else {
				b.WriteString("[?]")
			}
		case seg.index >= 0:
			fmt.Fprintf(&b, "[%d]", seg.index)
		}
	}
	return b.String()
}

// pending is a reference node whose copy is allocated and registered but
// not yet populated.
type pending struct {
	dst    reflect.Value
	src    reflect.Value
	at     *step
	target bool // dst is the element behind a freshly allocated pointer
}

// walker holds the state of a single DeepCopy call.
// It must not be shared between goroutines.
type walker struct {
	id       string // correlates the events of one call
	ctx      context.Context
	c        *Copier
	visited  map[nodeKey]reflect.Value
	stack    []pending
	nodes    int
	resolved int
}

func (c *Copier) newWalker(ctx context.Context) *walker {
	return &walker{
		id:      uuid.NewString(),
		ctx:     ctx,
		c:       c,
		visited: make(map[nodeKey]reflect.Value),
	}
}

// run copies root and drains the work stack.
func (w *walker) run(root reflect.Value, at *step) (reflect.Value, error) {
	out, err := w.copyValue(root, at)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := w.drain(); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// drain populates pending nodes until none are left.
func (w *walker) drain() error {
	for len(w.stack) > 0 {
		n := len(w.stack) - 1
		p := w.stack[n]
		w.stack[n] = pending{}
		w.stack = w.stack[:n]

		if err := w.populate(p); err != nil {
			return err
		}
	}
	return nil
}

// register records the copy of a reference node before it is populated, so
// any path leading back to src finds the in-progress copy.
func (w *walker) register(key nodeKey, node reflect.Value, p pending) {
	w.visited[key] = node
	w.nodes++
	w.stack = append(w.stack, p)
}

// isPlaceholder asks the resolver about v, skipping the interface conversion
// for types the default resolver can never match.
func (w *walker) isPlaceholder(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}
	if _, ok := w.c.resolver.(PlaceholderResolver); ok && !v.Type().Implements(placeholderType) {
		return false
	}
	return w.c.resolver.IsPlaceholder(v.Interface())
}

// copyValue returns the copy of src. Reference nodes come back allocated and
// registered; their contents are filled when the stack drains.
func (w *walker) copyValue(src reflect.Value, at *step) (reflect.Value, error) {
	for src.IsValid() && src.Kind() == reflect.Interface {
		if src.IsNil() {
			return reflect.Zero(src.Type()), nil
		}
		src = src.Elem()
	}
	if !src.IsValid() {
		return src, nil
	}

	if w.isPlaceholder(src) {
		actual, n, err := w.c.resolve(w.ctx, w.id, src.Interface())
		w.resolved += n
		if err != nil {
			return reflect.Value{}, newCopyError(ErrResolve, at, src.Type(), err)
		}
		if actual == nil {
			return reflect.Value{}, nil
		}
		return w.copyValue(reflect.ValueOf(actual), at)
	}

	t := src.Type()
	if w.c.IsLeaf(t) {
		return src, nil
	}

	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return reflect.Zero(t), nil
		}
		key := nodeKey{typ: t, ptr: src.UnsafePointer()}
		if cp, ok := w.visited[key]; ok {
			return cp, nil
		}
		cp := reflect.New(t.Elem())
		w.register(key, cp, pending{dst: cp.Elem(), src: src.Elem(), at: at, target: true})
		return cp, nil

	case reflect.Map:
		if src.IsNil() {
			return reflect.Zero(t), nil
		}
		key := nodeKey{typ: t, ptr: src.UnsafePointer()}
		if cp, ok := w.visited[key]; ok {
			return cp, nil
		}
		cp := reflect.MakeMapWithSize(t, src.Len())
		w.register(key, cp, pending{dst: cp, src: src, at: at})
		return cp, nil

	case reflect.Slice:
		if src.IsNil() {
			return reflect.Zero(t), nil
		}
		key := nodeKey{typ: t, ptr: src.UnsafePointer(), n: src.Len()}
		if cp, ok := w.visited[key]; ok {
			return cp, nil
		}
		cp := reflect.MakeSlice(t, src.Len(), src.Len())
		w.register(key, cp, pending{dst: cp, src: src, at: at})
		return cp, nil

	case reflect.Array:
		cp := reflect.New(t).Elem()
		for i := 0; i < src.Len(); i++ {
			if err := w.place(cp.Index(i), src.Index(i), at.elem(i)); err != nil {
				return reflect.Value{}, err
			}
		}
		return cp, nil

	case reflect.Struct:
		cp := reflect.New(t).Elem()
		w.nodes++
		if err := w.populateStruct(cp, src, at); err != nil {
			return reflect.Value{}, err
		}
		return cp, nil
	}

	return src, nil
}

// populate fills a registered copy from its source.
func (w *walker) populate(p pending) error {
	dst, src, at := p.dst, p.src, p.at

	if p.target {
		if src.Kind() == reflect.Struct && !w.c.IsLeaf(src.Type()) {
			return w.populateStruct(dst, src, at)
		}
		// *[]T, **T, *int, *[N]T
		return w.place(dst, src, at)
	}

	if src.Kind() == reflect.Map {
		return w.populateMap(dst, src, at)
	}
	for i := 0; i < src.Len(); i++ {
		if err := w.place(dst.Index(i), src.Index(i), at.elem(i)); err != nil {
			return err
		}
	}
	return nil
}

// populateMap copies every entry of src into dst. Sets (map[K]struct{}) only
// carry keys.
func (w *walker) populateMap(dst, src reflect.Value, at *step) error {
	t := src.Type()
	set := isSetType(t)
	unit := reflect.Zero(t.Elem())

	iter := src.MapRange()
	for iter.Next() {
		k, v := iter.Key(), iter.Value()
		entry := at.entry(k)

		ck, err := w.convert(t.Key(), k, entry)
		if err != nil {
			return err
		}
		if set {
			dst.SetMapIndex(ck, unit)
			continue
		}

		cv, err := w.convert(t.Elem(), v, entry)
		if err != nil {
			return err
		}
		dst.SetMapIndex(ck, cv)
	}
	return nil
}

// populateStruct copies the fields of src into the addressable struct dst.
func (w *walker) populateStruct(dst, src reflect.Value, at *step) error {
	if dst.CanAddr() && dst.Addr().CanInterface() && src.CanInterface() {
		if r, ok := dst.Addr().Interface().(Replicable); ok {
			if err := r.Replicate(src.Interface(), &Replicator{w: w, at: at}); err != nil {
				var ce *CopyError
				if errors.As(err, &ce) {
					return err
				}
				return newCopyError(ErrUnsupportedType, at, src.Type(), err)
			}
			return nil
		}
	}

	plan, err := planFor(w.ctx, src.Type())
	if err != nil {
		return newCopyError(ErrInvalidTag, at, src.Type(), err)
	}

	// unexported fields are read through their address
	if plan.hidden && !src.CanAddr() {
		tmp := reflect.New(src.Type()).Elem()
		tmp.Set(src)
		src = tmp
	}

	for _, f := range plan.fields {
		if f.mode == modeSkip {
			continue
		}
		if f.hidden && w.c.strict {
			return newCopyError(ErrUnsupportedType, at.child(f.name), f.typ,
				fmt.Errorf("unexported field %s is not copied in strict mode", f.name))
		}

		df, sf := fieldOf(dst, f), fieldOf(src, f)
		if f.mode == modeShallow {
			df.Set(sf)
			continue
		}
		if err := w.place(df, sf, at.child(f.name)); err != nil {
			return err
		}
	}
	return nil
}

// fieldOf returns field f of the addressable struct v. Unexported fields come
// back readable and settable.
func fieldOf(v reflect.Value, f fieldPlan) reflect.Value {
	fv := v.Field(f.index)
	if !f.hidden {
		return fv
	}
	return reflect.NewAt(f.typ, unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

// place copies src and stores the result in the settable dst.
func (w *walker) place(dst, src reflect.Value, at *step) error {
	cv, err := w.convert(dst.Type(), src, at)
	if err != nil {
		return err
	}
	dst.Set(cv)
	return nil
}

// convert copies src and returns a value assignable to t.
func (w *walker) convert(t reflect.Type, src reflect.Value, at *step) (reflect.Value, error) {
	cv, err := w.copyValue(src, at)
	if err != nil {
		return reflect.Value{}, err
	}
	if !cv.IsValid() {
		return reflect.Zero(t), nil
	}
	if cv.Type().AssignableTo(t) {
		return cv, nil
	}

	// A placeholder re-wrapped once is reused for every slot it fills.
	key, keyed := rewrapKey(src)
	if keyed {
		if prev, ok := w.visited[key]; ok && prev.Type().AssignableTo(t) {
			return prev, nil
		}
	}
	out, err := fit(t, cv, src, at)
	if err != nil {
		return reflect.Value{}, err
	}
	if keyed {
		w.visited[key] = out
	}
	return out, nil
}

// rewrapKey identifies a reference placeholder held in orig. Placeholders are
// resolved before they are registered, so the key never names a copied node.
func rewrapKey(orig reflect.Value) (nodeKey, bool) {
	for orig.IsValid() && orig.Kind() == reflect.Interface && !orig.IsNil() {
		orig = orig.Elem()
	}
	if !orig.IsValid() {
		return nodeKey{}, false
	}
	switch orig.Kind() {
	case reflect.Pointer, reflect.Map:
		if orig.IsNil() {
			return nodeKey{}, false
		}
		return nodeKey{typ: orig.Type(), ptr: orig.UnsafePointer()}, true
	}
	return nodeKey{}, false
}

// fit makes cv assignable to t. A resolved placeholder whose real value does
// not fit the slot is re-wrapped by the original placeholder when it can.
func fit(t reflect.Type, cv, orig reflect.Value, at *step) (reflect.Value, error) {
	if cv.Type().AssignableTo(t) {
		return cv, nil
	}

	for orig.IsValid() && orig.Kind() == reflect.Interface && !orig.IsNil() {
		orig = orig.Elem()
	}
	if orig.IsValid() && orig.CanInterface() && cv.CanInterface() {
		if rw, ok := orig.Interface().(Rewrapper); ok {
			wrapped := reflect.ValueOf(rw.Rewrap(cv.Interface()))
			if wrapped.IsValid() && wrapped.Type().AssignableTo(t) {
				return wrapped, nil
			}
		}
	}

	return reflect.Value{}, newCopyError(ErrUnsupportedType, at, t,
		fmt.Errorf("copied %s is not assignable to %s", cv.Type(), t))
}

// isSetType reports whether t is a map used as a set: map[K]struct{}.
func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

package replica

import (
	"context"
	"math/big"
	"reflect"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Placeholder is a value that stands in for real data until resolved.
// Resolve forces the load and returns the real value. It must be idempotent:
// resolving an already-loaded placeholder returns the same value again.
type Placeholder interface {
	Resolve(ctx context.Context) (any, error)
}

// Rewrapper is implemented by placeholders whose own type must survive a copy,
// typically because a field is declared as the placeholder type itself.
// Rewrap returns an already-resolved placeholder holding actual, or nil if actual
// has the wrong type.
type Rewrapper interface {
	Rewrap(actual any) any
}

// Resolver recognizes and resolves placeholders.
// Implement it to plug in a placeholder runtime that does not use Placeholder.
type Resolver interface {
	// IsPlaceholder reports whether v must be resolved before copying.
	IsPlaceholder(v any) bool

	// Resolve returns the real value behind the placeholder v. It may block.
	Resolve(ctx context.Context, v any) (any, error)
}

// PlaceholderResolver is the default Resolver. It treats every non-nil value
// implementing Placeholder as a placeholder.
type PlaceholderResolver struct{}

// IsPlaceholder returns true if v implements Placeholder and is not a nil pointer.
func (PlaceholderResolver) IsPlaceholder(v any) bool {
	if _, ok := v.(Placeholder); !ok {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Resolve calls v.Resolve.
func (PlaceholderResolver) Resolve(ctx context.Context, v any) (any, error) {
	return v.(Placeholder).Resolve(ctx)
}

var placeholderType = reflect.TypeFor[Placeholder]()

// Disposition describes how a struct field takes part in a copy.
// Use these values in struct tags: `copy:"-"`
type Disposition string

const (
	// DispositionCopy deep copies the field. It is the default for exported fields.
	DispositionCopy Disposition = ""

	// DispositionSkip leaves the field at its zero value in the copy.
	DispositionSkip Disposition = "-"

	// DispositionShallow assigns the source value without traversing it.
	DispositionShallow Disposition = "shallow"
)

// validDispositions contains all valid copy tag values for tag validation.
var validDispositions = map[Disposition]bool{
	DispositionCopy:    true,
	DispositionSkip:    true,
	DispositionShallow: true,
}

// IsValidDisposition returns true if d is a known copy tag value.
func IsValidDisposition(d Disposition) bool {
	return validDispositions[d]
}

// defaultLeafTypes returns the non-basic types shared by reference by default.
// Each of them is immutable in practice, so walking its internals buys nothing.
// uuid.UUID is a plain array; listing it only skips the per-byte walk.
func defaultLeafTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[*time.Location](),
		reflect.TypeFor[uuid.UUID](),
		reflect.TypeFor[*regexp.Regexp](),
		reflect.TypeFor[*big.Int](),
	}
}

// isLeafKind reports kinds that are atomic: copied by value or impossible to duplicate.
func isLeafKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

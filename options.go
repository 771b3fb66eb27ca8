package replica

import "reflect"

// DefaultMaxResolveDepth bounds how many placeholders may wrap each other
// before ShallowResolve gives up.
const DefaultMaxResolveDepth = 32

// Option configures a Copier.
type Option func(*Copier)

// WithResolver replaces the default PlaceholderResolver.
func WithResolver(r Resolver) Option {
	return func(c *Copier) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLeafTypes registers additional types that are shared by reference.
// Pass pointer types for reference leaves: reflect.TypeFor[*Money]().
func WithLeafTypes(types ...reflect.Type) Option {
	return func(c *Copier) {
		for _, t := range types {
			if t != nil {
				c.leaves[t] = struct{}{}
			}
		}
	}
}

// WithStrictFields stops the copier from reaching into unexported fields.
// Any unexported field not tagged copy:"-" fails the copy with
// ErrUnsupportedType instead of being copied through its address.
func WithStrictFields() Option {
	return func(c *Copier) {
		c.strict = true
	}
}

// WithMaxResolveDepth sets how many nested placeholders are resolved before
// ErrResolve. Values below 1 are ignored.
func WithMaxResolveDepth(n int) Option {
	return func(c *Copier) {
		if n > 0 {
			c.maxResolveDepth = n
		}
	}
}

// WithConcurrency bounds the goroutines used by DeepCopyEach.
// Zero or less means one goroutine per root.
func WithConcurrency(n int) Option {
	return func(c *Copier) {
		c.concurrency = n
	}
}

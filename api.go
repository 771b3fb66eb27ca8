// Package replica produces detached, placeholder-free deep copies of object graphs.
//
// Object graphs loaded from a persistence layer are often full of lazy
// placeholders: values that stand in for real data until something forces
// them to load. Handing such a graph to code that outlives the loading
// session (a cache, another goroutine, an API response) means every
// placeholder must be resolved and the graph detached from its origin.
// replica walks the graph, resolves every placeholder it meets and writes an
// independent copy.
//
// # Guarantees
//
//   - Cycles are preserved as cycles: A.Next = B, B.Next = A copies to
//     A'.Next = B', B'.Next = A'.
//   - Sharing is preserved: two fields pointing at the same node point at the
//     same copied node.
//   - Leaf values (scalars, time.Time, *time.Location, uuid.UUID, ...) are
//     shared, never duplicated.
//   - The source graph is never mutated.
//
// Identity is pointer identity. Pointers, maps and slices are memoized per
// call; struct and array values are copied inline.
//
// # Basic Usage
//
//	type Order struct {
//	    ID       string
//	    Customer Customer          // interface, may hold a placeholder
//	    Lines    []*Line
//	    Audit    *AuditTrail       `copy:"-"`
//	    Session  *Session          `copy:"shallow"`
//	}
//
//	detached, err := replica.Copy(ctx, order)
//
// # Tag Syntax
//
// Field behavior is declared with the copy tag:
//
//	copy:"-"        - Excluded: left at its zero value, never read or resolved
//	copy:"shallow"  - Assigned by reference, never traversed or resolved
//
// Unexported fields are copied like exported ones, through their address, and
// honor the same tags. Tag them copy:"-" to keep state such as a sync.Mutex
// out of the copy. WithStrictFields refuses unexported fields altogether: any
// that is not excluded fails the copy with ErrUnsupportedType.
//
// # Placeholders
//
// Any value implementing Placeholder is resolved before it is copied. A custom
// Resolver can recognize placeholders from other runtimes. When the resolved
// copy does not fit the slot the placeholder occupied (a field typed as the
// placeholder itself), the placeholder may implement Rewrapper to return an
// already-resolved instance of its own type. A placeholder filling several
// such slots is re-wrapped once, so the slots keep sharing one instance.
//
// The lazy sub-package provides a placeholder runtime backed by a byte Source
// and a Codec:
//
//	ref := lazy.Load[*Customer](source, codec.JSON(), "customer:42")
//
// # Override Interface
//
// Types can bypass reflection by implementing Replicable. The method is called
// on the freshly allocated copy after it has been registered, so cycles through
// the source resolve to the receiver.
//
// # Codec Providers
//
// The codec sub-package decodes placeholder payloads:
//
//   - JSON (application/json)
//   - XML (application/xml)
//   - YAML (application/yaml)
//   - MsgPack (application/msgpack), reading json struct tags
//   - BSON (application/bson)
package replica

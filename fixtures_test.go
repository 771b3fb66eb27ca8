package replica

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Node is a linked graph node. Peer holds anything, including placeholders.
type Node struct {
	Name string
	Next *Node
	Peer any
}

// Pair references two nodes, possibly the same one.
type Pair struct {
	A *Node
	B *Node
}

// Tree is an acyclic value graph exercising every container kind.
type Tree struct {
	Label    string
	Children []*Tree
	Attrs    map[string]string
	Weights  [3]float64
	Tags     map[string]struct{}
}

// Order and Line give errors a recognizable path.
type Order struct {
	ID    string
	Lines []*Line
}

type Line struct {
	SKU     string
	Product any
}

// Key is used as a map key behind a placeholder.
type Key struct {
	ID string
}

// Stamped carries leaf values that must be shared, not copied.
type Stamped struct {
	ID   uuid.UUID
	At   time.Time
	Zone *time.Location
	Hits int
}

// Cached has excluded and shallow fields.
type Cached struct {
	Name    string
	Scratch any   `copy:"-"`
	Session *Node `copy:"shallow"`
}

// Hidden has an unexported field.
type Hidden struct {
	Name   string
	secret int
}

// Quiet has an unexported field explicitly excluded.
type Quiet struct {
	Name   string
	secret int `copy:"-"`
}

// Ledger keeps references and placeholders in unexported fields.
type Ledger struct {
	Name    string
	balance int64
	owner   *Node
	auditor *Node `copy:"shallow"`
	entries []*Node
	source  any
}

type base struct {
	ID      string
	Version int
}

// Entity promotes fields from an unexported embedded struct.
type Entity struct {
	base
	Name string
}

// Graph nests composites inside composites.
type Graph struct {
	Layers [][]*Node
	Index  map[string][]*Node
}

// Slices holds the same backing array twice and a sub-slice of it.
type Slices struct {
	All   []*Node
	Again []*Node
	Head  []*Node
}

// Indirect holds pointers to non-struct values.
type Indirect struct {
	Numbers *[]int
	Double  **Node
	Count   *int
}

// BadTag has an unknown copy tag value.
type BadTag struct {
	Name string `copy:"deep"`
}

// Wrapper reaches BadTag only through a pointer.
type Wrapper struct {
	Inner *BadTag
}

// stub is a placeholder counting its resolutions.
type stub struct {
	target any
	err    error
	calls  int
}

func (s *stub) Resolve(context.Context) (any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.target, nil
}

// nodeRef is a placeholder that can stand in its own field type.
type nodeRef struct {
	node   *Node
	loaded bool
}

func (r *nodeRef) Resolve(context.Context) (any, error) {
	return r.node, nil
}

func (r *nodeRef) Rewrap(actual any) any {
	n, ok := actual.(*Node)
	if !ok {
		return nil
	}
	return &nodeRef{node: n, loaded: true}
}

// Holder declares a field typed as a placeholder.
type Holder struct {
	Ref *nodeRef
}

// RefPair holds two placeholder-typed slots, possibly the same placeholder.
type RefPair struct {
	A *nodeRef
	B *nodeRef
}

// StubHolder declares a field typed as a placeholder without Rewrap.
type StubHolder struct {
	Ref *stub
}

// Account copies itself through Replicable.
type Account struct {
	ID         string
	Owner      *Account
	replicated bool
}

func (a *Account) Replicate(src any, r *Replicator) error {
	s := src.(Account)
	a.ID = s.ID
	owner, err := ReplicaOf(r, s.Owner)
	if err != nil {
		return err
	}
	a.Owner = owner
	a.replicated = true
	return nil
}

// Money keeps its state unexported.
type Money struct {
	cents    int64
	currency string
}

type Invoice struct {
	Total *Money
}

// handle is a placeholder recognized only by handleResolver.
type handle struct {
	id int
}

type handleResolver struct {
	nodes map[int]*Node
}

func (r handleResolver) IsPlaceholder(v any) bool {
	_, ok := v.(handle)
	return ok
}

func (r handleResolver) Resolve(_ context.Context, v any) (any, error) {
	return r.nodes[v.(handle).id], nil
}

// chain returns a placeholder wrapped n levels deep around target.
func chain(target any, n int) any {
	v := target
	for i := 0; i < n; i++ {
		v = &stub{target: v}
	}
	return v
}

// Package testing provides fixtures for testing code that copies object graphs.
package testing

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/replica/codec"
	"github.com/zoobzio/replica/lazy"
)

// Customer is a persisted entity loaded behind a placeholder.
type Customer struct {
	ID    string `json:"id" xml:"id" yaml:"id" bson:"id"`
	Name  string `json:"name" xml:"name" yaml:"name" bson:"name"`
	Email string `json:"email" xml:"email" yaml:"email" bson:"email"`
}

// Product is a persisted entity shared between order lines.
type Product struct {
	SKU   string `json:"sku" xml:"sku" yaml:"sku" bson:"sku"`
	Price int    `json:"price" xml:"price" yaml:"price" bson:"price"`
}

// Line is an order line. Order points back at the owning order.
type Line struct {
	Qty     int
	Product *lazy.Ref[*Product]
	Order   *Order
}

// Order is the root of a typical detached graph.
type Order struct {
	ID       string
	Customer *lazy.Ref[*Customer]
	Lines    []*Line
	Notes    map[string]string
	Session  any `copy:"-"`
}

// Placeholder counts how often it is resolved.
type Placeholder struct {
	Target any
	calls  atomic.Int32
}

// Resolve implements replica.Placeholder.
func (p *Placeholder) Resolve(context.Context) (any, error) {
	p.calls.Add(1)
	return p.Target, nil
}

// Calls returns how often Resolve ran.
func (p *Placeholder) Calls() int {
	return int(p.calls.Load())
}

// Catalog stores products and customers in a lazy.MapSource as JSON.
func Catalog(tb testing.TB, products []Product, customers []Customer) *lazy.MapSource {
	tb.Helper()

	src := lazy.NewMapSource()
	for _, p := range products {
		if err := lazy.Put(src, codec.JSON(), "product:"+p.SKU, p); err != nil {
			tb.Fatalf("store product %s: %v", p.SKU, err)
		}
	}
	for _, c := range customers {
		if err := lazy.Put(src, codec.JSON(), "customer:"+c.ID, c); err != nil {
			tb.Fatalf("store customer %s: %v", c.ID, err)
		}
	}
	return src
}

// NewOrder builds an order whose customer and products load lazily from src.
// Every line points back at the order and lines with the same SKU share one
// product placeholder.
func NewOrder(src lazy.Source, id, customerID string, skus ...string) *Order {
	order := &Order{
		ID:       id,
		Customer: lazy.Load[*Customer](src, codec.JSON(), "customer:"+customerID),
		Notes:    map[string]string{"channel": "web"},
	}

	refs := make(map[string]*lazy.Ref[*Product], len(skus))
	for i, sku := range skus {
		ref, ok := refs[sku]
		if !ok {
			ref = lazy.Load[*Product](src, codec.JSON(), "product:"+sku)
			refs[sku] = ref
		}
		order.Lines = append(order.Lines, &Line{Qty: i + 1, Product: ref, Order: order})
	}
	return order
}

// Chain returns a linked list of n nodes, each holding a placeholder to the
// next one every other step.
func Chain(n int) *Node {
	head := &Node{Name: "0"}
	cur := head
	for i := 1; i < n; i++ {
		next := &Node{Name: fmt.Sprint(i)}
		if i%2 == 0 {
			cur.Link = &Placeholder{Target: next}
		} else {
			cur.Link = next
		}
		cur = next
	}
	return head
}

// Node is a list node whose link may be a placeholder.
type Node struct {
	Name string
	Link any
}

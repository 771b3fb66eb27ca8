// Package redis provides a lazy.Source backed by Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/zoobzio/replica/lazy"
)

// Source fetches payloads with GET.
type Source struct {
	client goredis.UniversalClient
	prefix string
}

// Option configures a Source.
type Option func(*Source)

// WithPrefix prepends prefix to every key, e.g. "replica:".
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// New returns a Source reading through client.
func New(client goredis.UniversalClient, opts ...Option) *Source {
	s := &Source{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch implements lazy.Source. A missing key yields lazy.ErrNotFound.
func (s *Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", lazy.ErrNotFound, s.prefix+key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.prefix+key, err)
	}
	return data, nil
}

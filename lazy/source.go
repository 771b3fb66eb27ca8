package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zoobzio/replica"
	"github.com/zoobzio/replica/codec"
)

var (
	// ErrNotFound indicates a Source has no payload for a key.
	ErrNotFound = errors.New("lazy: not found")

	// ErrUnknownContentType indicates no codec is registered for a MIME type.
	ErrUnknownContentType = errors.New("lazy: unknown content type")
)

// Source fetches the encoded payload stored under a key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Load returns a Ref that fetches key from src and decodes it with c on
// first access.
func Load[T any](src Source, c replica.Codec, key string) *Ref[T] {
	return New(func(ctx context.Context) (T, error) {
		var v T
		data, err := src.Fetch(ctx, key)
		if err != nil {
			return v, fmt.Errorf("fetch %s: %w", key, err)
		}
		if err := c.Unmarshal(data, &v); err != nil {
			return v, fmt.Errorf("decode %s as %s: %w", key, c.ContentType(), err)
		}
		return v, nil
	})
}

// LoadAs is Load with the codec chosen by MIME type.
func LoadAs[T any](src Source, contentType, key string) (*Ref[T], error) {
	c, ok := codec.Lookup(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
	return Load[T](src, c, key), nil
}

// Put encodes v with c and stores it in dst under key.
func Put(dst *MapSource, c replica.Codec, key string, v any) error {
	data, err := c.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s as %s: %w", key, c.ContentType(), err)
	}
	dst.Set(key, data)
	return nil
}

// MapSource is an in-memory Source, safe for concurrent use.
type MapSource struct {
	mu      sync.RWMutex
	data    map[string][]byte
	fetches int
}

// NewMapSource returns an empty MapSource.
func NewMapSource() *MapSource {
	return &MapSource{data: make(map[string][]byte)}
}

// Set stores data under key, replacing any previous payload.
func (s *MapSource) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Fetch implements Source.
func (s *MapSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Fetches returns how many times Fetch was called.
func (s *MapSource) Fetches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches
}

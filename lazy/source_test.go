package lazy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/replica/codec"
	"github.com/zoobzio/replica/lazy"
)

func TestLoad(t *testing.T) {
	src := lazy.NewMapSource()
	require.NoError(t, lazy.Put(src, codec.JSON(), "customer:1", Customer{ID: "1", Name: "Alice"}))

	ref := lazy.Load[*Customer](src, codec.JSON(), "customer:1")
	require.Equal(t, 0, src.Fetches())

	c, err := ref.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Customer{ID: "1", Name: "Alice"}, c)

	_, err = ref.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, src.Fetches())
}

func TestLoad_EveryCodec(t *testing.T) {
	want := Customer{ID: "7", Name: "Grace"}

	for _, ct := range codec.ContentTypes() {
		t.Run(ct, func(t *testing.T) {
			c, ok := codec.Lookup(ct)
			require.True(t, ok)

			src := lazy.NewMapSource()
			require.NoError(t, lazy.Put(src, c, "k", want))

			got, err := lazy.Load[Customer](src, c, "k").Get(context.Background())
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	ref := lazy.Load[*Customer](lazy.NewMapSource(), codec.JSON(), "missing")

	_, err := ref.Get(context.Background())
	require.ErrorIs(t, err, lazy.ErrNotFound)
	require.ErrorContains(t, err, "fetch missing")
	require.False(t, ref.Loaded())
}

func TestLoad_DecodeError(t *testing.T) {
	src := lazy.NewMapSource()
	src.Set("bad", []byte("{not json"))

	_, err := lazy.Load[*Customer](src, codec.JSON(), "bad").Get(context.Background())
	require.ErrorContains(t, err, "decode bad as application/json")
}

func TestLoadAs(t *testing.T) {
	src := lazy.NewMapSource()
	require.NoError(t, lazy.Put(src, codec.YAML(), "c", Customer{ID: "y"}))

	ref, err := lazy.LoadAs[Customer](src, "application/yaml; charset=utf-8", "c")
	require.NoError(t, err)

	got, err := ref.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "y", got.ID)
}

func TestLoadAs_UnknownContentType(t *testing.T) {
	_, err := lazy.LoadAs[Customer](lazy.NewMapSource(), "text/csv", "c")
	require.ErrorIs(t, err, lazy.ErrUnknownContentType)
}

func TestMapSource_CopiesPayload(t *testing.T) {
	src := lazy.NewMapSource()
	data := []byte("abc")
	src.Set("k", data)
	data[0] = 'x'

	got, err := src.Fetch(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, err := src.Fetch(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestMapSource_CanceledContext(t *testing.T) {
	src := lazy.NewMapSource()
	src.Set("k", []byte("v"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, src.Fetches())
}

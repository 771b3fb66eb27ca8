package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/replica"
	"github.com/zoobzio/replica/codec"
	"github.com/zoobzio/replica/lazy"
	"github.com/zoobzio/replica/lazy/redis"
)

type Product struct {
	SKU   string `json:"sku"`
	Price int    `json:"price"`
}

type Line struct {
	Qty     int
	Product *lazy.Ref[*Product]
}

func setup(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestSource_Fetch(t *testing.T) {
	mr, client := setup(t)
	require.NoError(t, mr.Set("product:1", `{"sku":"A-1","price":250}`))

	data, err := redis.New(client).Fetch(context.Background(), "product:1")
	require.NoError(t, err)
	require.JSONEq(t, `{"sku":"A-1","price":250}`, string(data))
}

func TestSource_FetchMissing(t *testing.T) {
	_, client := setup(t)

	_, err := redis.New(client).Fetch(context.Background(), "nope")
	require.ErrorIs(t, err, lazy.ErrNotFound)
}

func TestSource_Prefix(t *testing.T) {
	mr, client := setup(t)
	require.NoError(t, mr.Set("shop:product:1", "payload"))

	data, err := redis.New(client, redis.WithPrefix("shop:")).Fetch(context.Background(), "product:1")
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestSource_ServerDown(t *testing.T) {
	mr, client := setup(t)
	mr.SetError("ERR server unavailable")

	_, err := redis.New(client).Fetch(context.Background(), "product:1")
	require.Error(t, err)
	require.NotErrorIs(t, err, lazy.ErrNotFound)
	require.ErrorContains(t, err, "redis get product:1")
}

func TestSource_DeepCopy(t *testing.T) {
	mr, client := setup(t)
	require.NoError(t, mr.Set("product:9", `{"sku":"Z-9","price":999}`))

	src := redis.New(client)
	line := &Line{Qty: 3, Product: lazy.Load[*Product](src, codec.JSON(), "product:9")}

	cp, err := replica.Copy(context.Background(), line)
	require.NoError(t, err)
	require.Equal(t, 3, cp.Qty)
	require.True(t, cp.Product.Loaded())

	// the copy is detached: deleting the key does not matter anymore
	mr.Del("product:9")

	p, err := cp.Product.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Product{SKU: "Z-9", Price: 999}, p)
}

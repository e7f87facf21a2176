package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) (*Cart, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCart(client, time.Hour), mr
}

func TestCartAddAccumulates(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, "sess-1", 10, 2))
	require.NoError(t, cart.Add(ctx, "sess-1", 10, 3))
	require.NoError(t, cart.Add(ctx, "sess-1", 20, 1))

	items, err := cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{10: 5, 20: 1}, items)
}

func TestCartSetAndRemove(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, "sess-1", 10, 2))
	require.NoError(t, cart.Set(ctx, "sess-1", 10, 7))

	items, err := cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 7, items[10])

	// Zero quantity drops the line.
	require.NoError(t, cart.Set(ctx, "sess-1", 10, 0))
	items, err = cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, cart.Add(ctx, "sess-1", 20, 1))
	require.NoError(t, cart.Remove(ctx, "sess-1", 20))
	items, err = cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartIsolatedPerSession(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, "sess-a", 10, 1))
	require.NoError(t, cart.Add(ctx, "sess-b", 10, 4))

	itemsA, err := cart.Items(ctx, "sess-a")
	require.NoError(t, err)
	itemsB, err := cart.Items(ctx, "sess-b")
	require.NoError(t, err)
	assert.Equal(t, 1, itemsA[10])
	assert.Equal(t, 4, itemsB[10])
}

func TestCartExpires(t *testing.T) {
	cart, mr := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, "sess-1", 10, 1))
	mr.FastForward(2 * time.Hour)

	items, err := cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartClear(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, "sess-1", 10, 1))
	require.NoError(t, cart.Add(ctx, "sess-1", 20, 2))
	require.NoError(t, cart.Clear(ctx, "sess-1"))

	items, err := cart.Items(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

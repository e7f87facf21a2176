package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmptyCart indicates a checkout attempt with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// Cart is the redis-backed storefront cart. Each anonymous session
// gets a hash of product id to quantity that expires with inactivity.
type Cart struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCart constructs a Cart store.
func NewCart(client *redis.Client, ttl time.Duration) *Cart {
	return &Cart{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Add increments the quantity for a product.
func (c *Cart) Add(ctx context.Context, sessionID string, productID int64, quantity int) error {
	key := cartKey(sessionID)
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, strconv.FormatInt(productID, 10), int64(quantity))
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Set fixes the quantity for a product. Zero removes the line.
func (c *Cart) Set(ctx context.Context, sessionID string, productID int64, quantity int) error {
	key := cartKey(sessionID)
	field := strconv.FormatInt(productID, 10)
	if quantity <= 0 {
		return c.client.HDel(ctx, key, field).Err()
	}
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, quantity)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Remove drops a product from the cart.
func (c *Cart) Remove(ctx context.Context, sessionID string, productID int64) error {
	return c.client.HDel(ctx, cartKey(sessionID), strconv.FormatInt(productID, 10)).Err()
}

// Items returns the cart contents as product id to quantity.
func (c *Cart) Items(ctx context.Context, sessionID string) (map[int64]int, error) {
	raw, err := c.client.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	items := make(map[int64]int, len(raw))
	for field, value := range raw {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity <= 0 {
			continue
		}
		items[productID] = quantity
	}
	return items, nil
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, cartKey(sessionID)).Err()
}

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voyage-bff/internal/model"
)

// maxTxRetries bounds optimistic-lock retries for one Update.
const maxTxRetries = 10

// RedisStore keeps carts as JSON values under cart:{id}.
// Every write refreshes the key's TTL. Update uses WATCH/MULTI so concurrent
// writers on different replicas never overwrite each other's changes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl selects DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.Cart, error) {
	data, err := s.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decodeCart(id, data)
}

func (s *RedisStore) Update(ctx context.Context, id string, create bool, fn MutateFunc) (*model.Cart, error) {
	key := cacheKey(id)
	var result *model.Cart

	txf := func(tx *redis.Tx) error {
		var c *model.Cart
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if !create {
				return ErrCartNotFound
			}
			c = model.NewCart(id)
		case err != nil:
			return fmt.Errorf("redis get failed: %w", err)
		default:
			if c, err = decodeCart(id, data); err != nil {
				return err
			}
		}

		if err := fn(c); err != nil {
			return err
		}

		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal cart failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer changed the cart between GET and EXEC
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func decodeCart(id string, data []byte) (*model.Cart, error) {
	var c model.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	c.ID = id
	if c.Items == nil {
		c.Items = []model.LineItem{}
	}
	return &c, nil
}

var _ Store = (*RedisStore)(nil)

package cart

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"voyage-bff/internal/model"
)

const (
	DefaultMaxCarts = 10000
	DefaultTTL      = 24 * time.Hour
)

// MemoryStore keeps carts in process memory.
// It holds at most maxCarts carts; the least recently used cart (read or
// written) is evicted first, and a cart expires ttl after its last write.
type MemoryStore struct {
	carts *expirable.LRU[string, *model.Cart]
	locks keyedMutex
}

// NewMemoryStore creates a bounded, expiring in-memory store.
// Zero values select DefaultMaxCarts and DefaultTTL.
func NewMemoryStore(maxCarts int, ttl time.Duration) *MemoryStore {
	if maxCarts <= 0 {
		maxCarts = DefaultMaxCarts
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		carts: expirable.NewLRU[string, *model.Cart](maxCarts, nil, ttl),
		locks: keyedMutex{locks: make(map[string]*refLock)},
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Cart, error) {
	c, ok := s.carts.Get(cacheKey(id))
	if !ok {
		return nil, ErrCartNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, create bool, fn MutateFunc) (*model.Cart, error) {
	key := cacheKey(id)
	unlock := s.locks.Lock(key)
	defer unlock()

	current, ok := s.carts.Get(key)
	var c *model.Cart
	switch {
	case ok:
		c = clone(current)
	case create:
		c = model.NewCart(id)
	default:
		return nil, ErrCartNotFound
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	s.carts.Add(key, c)
	return clone(c), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	key := cacheKey(id)
	unlock := s.locks.Lock(key)
	defer unlock()

	s.carts.Remove(key)
	return nil
}

// Len reports the number of live carts.
func (s *MemoryStore) Len() int {
	return s.carts.Len()
}

// keyedMutex serializes work per key. Entries are dropped once no goroutine
// holds or waits on them, so the map never outgrows the active key set.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

var _ Store = (*MemoryStore)(nil)

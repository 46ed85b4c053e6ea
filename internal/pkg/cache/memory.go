package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// memoryCache is the single-process fallback used when no Redis address is
// configured. It holds at most size entries; each one is evicted by the LRU's
// own timer once maxTTL has passed, and a shorter per-call ttl is checked on
// read.
type memoryCache struct {
	lru         *expirable.LRU[string, memoryEntry]
	serviceName string
	now         func() time.Time
}

func NewMemoryCache(serviceName string, size int, maxTTL time.Duration) Cache {
	if size < 1 {
		size = 1
	}
	return &memoryCache{
		lru:         expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	e := memoryEntry{value: fmt.Sprint(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.lru.Remove(key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

// Len reports the entries currently held, expired ones not yet swept included.
func (m *memoryCache) Len() int { return m.lru.Len() }

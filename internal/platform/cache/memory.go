package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxEntries bounds the in-process cache when no size is configured.
const DefaultMaxEntries = 4096

// Memory is an in-process PageCache used when no Redis address is configured.
// Pages expire after the TTL and the least recently used page is evicted once
// the cache holds maxEntries pages.
type Memory struct {
	pages *expirable.LRU[string, Page]
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{pages: expirable.NewLRU[string, Page](maxEntries, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID, path string) (*Page, bool, error) {
	p, ok := m.pages.Get(Key(userID, path))
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (m *Memory) Set(_ context.Context, userID uuid.UUID, path string, page *Page) error {
	if page == nil {
		return nil
	}
	m.pages.Add(Key(userID, path), *page)
	return nil
}

func (m *Memory) Invalidate(_ context.Context, userID uuid.UUID, paths ...string) error {
	for _, p := range paths {
		m.pages.Remove(Key(userID, p))
	}
	return nil
}

func (m *Memory) InvalidateUser(_ context.Context, userID uuid.UUID) error {
	prefix := Key(userID, "")
	for _, k := range m.pages.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.pages.Remove(k)
		}
	}
	return nil
}

func (m *Memory) Len() int {
	return m.pages.Len()
}

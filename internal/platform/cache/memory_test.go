package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryGetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute, 0)
	alice, bob := uuid.New(), uuid.New()

	page := &Page{Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	_ = m.Set(ctx, alice, "/dashboard", page)
	_ = m.Set(ctx, alice, "/dashboard/skills", page)
	_ = m.Set(ctx, bob, "/dashboard", page)

	if _, ok, _ := m.Get(ctx, alice, "/dashboard"); !ok {
		t.Fatalf("expected hit for alice /dashboard")
	}

	_ = m.Invalidate(ctx, alice, "/dashboard")
	if _, ok, _ := m.Get(ctx, alice, "/dashboard"); ok {
		t.Fatalf("expected miss after invalidate")
	}
	if _, ok, _ := m.Get(ctx, alice, "/dashboard/skills"); !ok {
		t.Fatalf("sibling path should survive")
	}
	if _, ok, _ := m.Get(ctx, bob, "/dashboard"); !ok {
		t.Fatalf("other user's page should survive")
	}

	_ = m.InvalidateUser(ctx, alice)
	if _, ok, _ := m.Get(ctx, alice, "/dashboard/skills"); ok {
		t.Fatalf("expected miss after InvalidateUser")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(50*time.Millisecond, 0)
	u := uuid.New()

	_ = m.Set(ctx, u, "/dashboard", &Page{Status: 200})
	if _, ok, _ := m.Get(ctx, u, "/dashboard"); !ok {
		t.Fatalf("expected fresh entry to hit")
	}
	time.Sleep(100 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, u, "/dashboard"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute, 2)
	u := uuid.New()

	_ = m.Set(ctx, u, "/dashboard", &Page{Status: 200})
	_ = m.Set(ctx, u, "/dashboard/skills", &Page{Status: 200})
	if _, ok, _ := m.Get(ctx, u, "/dashboard"); !ok {
		t.Fatalf("expected hit for /dashboard")
	}
	_ = m.Set(ctx, u, "/dashboard/tasks", &Page{Status: 200})

	if got := m.Len(); got != 2 {
		t.Fatalf("Len: got=%d want=2", got)
	}
	if _, ok, _ := m.Get(ctx, u, "/dashboard/skills"); ok {
		t.Fatalf("least recently used page should be evicted")
	}
	if _, ok, _ := m.Get(ctx, u, "/dashboard"); !ok {
		t.Fatalf("recently read page should survive")
	}
}

func TestKey(t *testing.T) {
	u := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	if got := Key(u, "/dashboard"); got != "page:00000000-0000-0000-0000-000000000001:/dashboard" {
		t.Fatalf("Key: got=%s", got)
	}
}

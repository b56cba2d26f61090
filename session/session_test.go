package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Save(ctx, &Session{ID: "s1", Token: "tok"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	s, err := store.Load(ctx, "s1")
	if err != nil || s.Token != "tok" {
		t.Fatalf("load: %v %+v", err, s)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("test-secret"), time.Hour)

	s, signed, err := m.Create(ctx, "upstream-token", "u1", "admin@farm.test", true)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(signed, "upstream-token") {
		t.Fatal("upstream token leaked into browser token")
	}

	got, err := m.Resolve(ctx, "Bearer "+signed)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != s.ID || got.Token != "upstream-token" || !got.IsAdmin || got.UserID != "u1" {
		t.Fatalf("unexpected session %+v", got)
	}

	var destroyed []string
	m.OnDestroy(func(id string) { destroyed = append(destroyed, id) })
	if err := m.Destroy(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if len(destroyed) != 1 || destroyed[0] != s.ID {
		t.Fatalf("hook not called: %v", destroyed)
	}
	if _, err := m.Resolve(ctx, "Bearer "+signed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after logout, got %v", err)
	}
}

func TestManagerRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("test-secret"), time.Hour)
	_, signed, err := m.Create(ctx, "tok", "u1", "", true)
	if err != nil {
		t.Fatal(err)
	}

	other := NewManager(NewMemoryStore(), []byte("other-secret"), time.Hour)
	for _, header := range []string{"", "Bearer", signed, "Basic " + signed, "Bearer garbage"} {
		if _, err := m.Resolve(ctx, header); err == nil {
			t.Errorf("header %q should be rejected", header)
		}
	}
	if _, err := other.Resolve(ctx, "Bearer "+signed); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}

	if _, _, err := m.Create(ctx, "", "u1", "", true); err == nil {
		t.Fatal("expected error for empty upstream token")
	}
}

func TestManagerTokenExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("test-secret"), time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }
	_, signed, err := m.Create(ctx, "tok", "u1", "", true)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)
	if _, err := m.Resolve(ctx, "Bearer "+signed); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil session")
	}
	s := &Session{ID: "s1", UserID: "u1"}
	if got := FromContext(WithContext(context.Background(), s)); got != s {
		t.Fatalf("got %+v", got)
	}
}

func TestScopedDroppedOnDestroy(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("k"), time.Hour)
	type page struct{ n int }
	pages := NewScoped(m, func() *page { return &page{} })

	a, _, _ := m.Create(ctx, "t1", "u1", "", true)
	b, _, _ := m.Create(ctx, "t2", "u2", "", true)
	pages.Get(a.ID).n = 7
	if pages.Get(a.ID).n != 7 || pages.Get(b.ID).n != 0 {
		t.Fatal("pages are not per session")
	}

	if err := m.Destroy(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if pages.Len() != 1 {
		t.Fatalf("expected 1 page left, got %d", pages.Len())
	}
	if pages.Get(a.ID).n != 0 {
		t.Fatal("state survived logout")
	}
}

func TestScopedDroppedWhenTokenExpires(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("k"), time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }
	pages := NewScoped(m, func() *int { return new(int) })

	s, signed, err := m.Create(ctx, "t1", "u1", "", true)
	if err != nil {
		t.Fatal(err)
	}
	pages.Get(s.ID)

	now = now.Add(2 * time.Minute)
	if _, err := m.Resolve(ctx, "Bearer "+signed); err == nil {
		t.Fatal("expired token accepted")
	}
	if pages.Len() != 0 {
		t.Fatalf("page state kept for expired session: %d", pages.Len())
	}
}

func TestScopedDroppedWhenStoreForgetsSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, []byte("k"), time.Hour)
	pages := NewScoped(m, func() *int { return new(int) })

	s, signed, _ := m.Create(ctx, "t1", "u1", "", true)
	pages.Get(s.ID)
	store.Delete(ctx, s.ID)

	if _, err := m.Resolve(ctx, "Bearer "+signed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if pages.Len() != 0 {
		t.Fatalf("page state kept after store expiry: %d", pages.Len())
	}
}

func TestForeignTokenDoesNotDropState(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("k"), time.Hour)
	other := NewManager(NewMemoryStore(), []byte("other"), time.Hour)
	pages := NewScoped(m, func() *int { return new(int) })

	s, _, _ := m.Create(ctx, "t1", "u1", "", true)
	pages.Get(s.ID)
	_, forged, _ := other.Create(ctx, "t2", "u2", "", true)

	if _, err := m.Resolve(ctx, "Bearer "+forged); err == nil {
		t.Fatal("foreign token accepted")
	}
	if pages.Len() != 1 {
		t.Fatal("foreign token dropped a live session's state")
	}
}

func TestSweepDropsIdleState(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), []byte("k"), time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }
	pages := NewScoped(m, func() *int { return new(int) })

	idle, _, _ := m.Create(ctx, "t1", "u1", "", true)
	pages.Get(idle.ID)
	now = now.Add(50 * time.Second)
	active, _, _ := m.Create(ctx, "t2", "u2", "", true)
	pages.Get(active.ID)

	now = now.Add(20 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if pages.Len() != 1 {
		t.Fatalf("pages left = %d", pages.Len())
	}
	now = now.Add(2 * time.Minute)
	m.Sweep()
	if pages.Len() != 0 {
		t.Fatalf("pages left = %d", pages.Len())
	}
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestStoreOpenClose(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	if store.IsOpen(1) {
		t.Fatal("session open before Open")
	}

	session := store.Open(1)
	if session.UserID != 1 {
		t.Errorf("userID = %d, want 1", session.UserID)
	}
	if got := session.ExpiresAt.Sub(session.CreatedAt); got != time.Hour {
		t.Errorf("ttl = %s, want 1h", got)
	}
	if !store.IsOpen(1) {
		t.Fatal("session closed after Open")
	}
	if store.IsOpen(2) {
		t.Fatal("session of another user open")
	}

	store.Close(1)
	if store.IsOpen(1) {
		t.Fatal("session open after Close")
	}

	// Закрытие отсутствующей сессии не должно падать.
	store.Close(42)
}

func TestStoreOpenReplaces(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	first := store.Open(1)
	second := store.Open(1)

	if second.ExpiresAt.Before(first.ExpiresAt) {
		t.Fatalf("replacement expires earlier: %s < %s", second.ExpiresAt, first.ExpiresAt)
	}
	if !store.IsOpen(1) {
		t.Fatal("session closed after replacement")
	}
}

func TestStoreExpiredIsClosed(t *testing.T) {
	// Просроченная сессия считается закрытой ещё до очистки.
	store := NewStore(-time.Second, time.Minute)

	store.Open(1)
	if store.IsOpen(1) {
		t.Fatal("expired session reported open")
	}
}

func TestStoreSweep(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	store.Open(1)
	store.Open(2)

	store.sweep(time.Now())
	if !store.IsOpen(1) || !store.IsOpen(2) {
		t.Fatal("sweep removed live sessions")
	}

	store.sweep(time.Now().Add(2 * time.Hour))
	store.mu.RLock()
	remaining := len(store.sessions)
	store.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("sessions after sweep = %d, want 0", remaining)
	}
}

func TestStoreRunStopsOnContextCancel(t *testing.T) {
	store := NewStore(time.Hour, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(time.Hour, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			store.Open(userID)
			store.IsOpen(userID)
			store.Close(userID)
		}(int64(i % 10))
	}
	wg.Wait()
}

package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryConfigStore_MutateErrorWritesNothing(t *testing.T) {
	store := NewMemoryConfigStore()
	ctx := context.Background()
	cfg := IssuanceConfig{ID: "vault", MaxSupply: 10, Active: true, Sequence: 1}
	if _, err := store.Create(ctx, cfg, AuditEvent{ConfigID: "vault", Sequence: 1, Kind: EventInitialized}); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	_, _, err := store.Mutate(ctx, "vault", func(_ context.Context, current IssuanceConfig) (IssuanceConfig, AuditEvent, error) {
		current.CurrentSupply = 5
		return current, AuditEvent{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutate error to propagate, got %v", err)
	}
	got, err := store.Get(ctx, "vault")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentSupply != 0 {
		t.Fatalf("expected untouched record, got supply %d", got.CurrentSupply)
	}
	events, err := store.EventsFor(ctx, "vault")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
}

func TestMemoryConfigStore_MissingRecord(t *testing.T) {
	store := NewMemoryConfigStore()
	_, err := store.Get(context.Background(), "missing")
	expectKind(t, err, ErrorConfigNotFound)
	_, _, err = store.Mutate(context.Background(), "missing", func(_ context.Context, c IssuanceConfig) (IssuanceConfig, AuditEvent, error) {
		return c, AuditEvent{}, nil
	})
	expectKind(t, err, ErrorConfigNotFound)
}

func TestMemoryConfigStore_ListEventsFiltersAndPages(t *testing.T) {
	fx := newTestFixture(t, Config{})
	fx.initialize(t, 1_000, 1_000)
	for i := 0; i < 4; i++ {
		fx.emit(t, 10)
	}
	if _, err := fx.svc.EmergencyPause(context.Background(), EmergencyPauseRequest{Caller: testGuardian}); err != nil {
		t.Fatalf("pause: %v", err)
	}

	page, err := fx.svc.ListAuditEvents(context.Background(), AuditFilter{ConfigID: DefaultConfigID, Kinds: []EventKind{EventEmitted}, Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 3 {
		t.Fatalf("expected 3 of 4 emitted events, got %d of %d", len(page.Items), page.Total)
	}
	if page.Items[0].Sequence < page.Items[1].Sequence {
		t.Fatalf("expected newest first")
	}

	page, err = fx.svc.ListAuditEvents(context.Background(), AuditFilter{Actor: testGuardian})
	if err != nil {
		t.Fatalf("list by actor: %v", err)
	}
	if page.Total != 1 || page.Items[0].Kind != EventEmergencyPaused {
		t.Fatalf("expected the guardian's pause event, got %+v", page)
	}
}

func TestMemoryRecordLocker_SerializesAndHonoursContext(t *testing.T) {
	locker := NewMemoryRecordLocker()
	ctx := context.Background()

	handle, err := locker.Acquire(ctx, "vault")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, "vault")
	expectKind(t, err, ErrorLockTimeout)

	_, err = locker.Acquire(ctx, "  ")
	expectKind(t, err, ErrorBadInput)

	other, err := locker.Acquire(ctx, "other")
	if err != nil {
		t.Fatalf("independent records must not block each other: %v", err)
	}
	_ = other.Unlock(ctx)

	acquired := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		next, err := locker.Acquire(ctx, "vault")
		if err != nil {
			t.Errorf("acquire after release: %v", err)
			return
		}
		close(acquired)
		_ = next.Unlock(ctx)
	}()

	_ = handle.Unlock(ctx)
	_ = handle.Unlock(ctx)
	wg.Wait()
	select {
	case <-acquired:
	default:
		t.Fatalf("expected waiter to acquire the lock after release")
	}

	locker.mu.Lock()
	remaining := len(locker.slots)
	locker.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected idle slots to be released, got %d", remaining)
	}
}

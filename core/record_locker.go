package core

import (
	"context"
	"strings"
	"sync"
)

// MemoryRecordLocker is an in-process keyed mutex. Acquire blocks until the
// record is free or the context ends.
type MemoryRecordLocker struct {
	mu    sync.Mutex
	slots map[string]*recordSlot
}

type recordSlot struct {
	token chan struct{}
	refs  int
}

func NewMemoryRecordLocker() *MemoryRecordLocker {
	return &MemoryRecordLocker{slots: make(map[string]*recordSlot)}
}

func (l *MemoryRecordLocker) Acquire(ctx context.Context, configID string) (LockHandle, error) {
	if l == nil {
		return nil, BadInputError("core: record locker is not configured")
	}
	configID = strings.TrimSpace(configID)
	if configID == "" {
		return nil, BadInputError("core: config id is required for lock acquisition")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	slot, ok := l.slots[configID]
	if !ok {
		slot = &recordSlot{token: make(chan struct{}, 1)}
		l.slots[configID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.token <- struct{}{}:
		return &memoryRecordHandle{locker: l, configID: configID, slot: slot}, nil
	case <-ctx.Done():
		l.release(configID, slot)
		return nil, LockTimeoutError(configID, ctx.Err())
	}
}

func (l *MemoryRecordLocker) release(configID string, slot *recordSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs <= 0 {
		delete(l.slots, configID)
	}
}

type memoryRecordHandle struct {
	locker   *MemoryRecordLocker
	configID string
	slot     *recordSlot
	once     sync.Once
}

func (h *memoryRecordHandle) Unlock(_ context.Context) error {
	if h == nil || h.locker == nil {
		return nil
	}
	h.once.Do(func() {
		<-h.slot.token
		h.locker.release(h.configID, h.slot)
	})
	return nil
}

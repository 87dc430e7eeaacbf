package core

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryConfigStore keeps issuance records and their audit trail in process.
// Mutations on one record run under that record's mutex.
type MemoryConfigStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	mu     sync.Mutex
	config IssuanceConfig
	events []AuditEvent
}

func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{records: make(map[string]*memoryRecord)}
}

func (s *MemoryConfigStore) Create(_ context.Context, cfg IssuanceConfig, event AuditEvent) (IssuanceConfig, error) {
	if s == nil {
		return IssuanceConfig{}, BadInputError("core: memory config store is nil")
	}
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		return IssuanceConfig{}, BadInputError("core: config id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; exists {
		return IssuanceConfig{}, ConfigExistsError(id)
	}
	s.records[id] = &memoryRecord{
		config: cfg.clone(),
		events: []AuditEvent{cloneEvent(event)},
	}
	return cfg.clone(), nil
}

func (s *MemoryConfigStore) Get(_ context.Context, id string) (IssuanceConfig, error) {
	record, err := s.record(id)
	if err != nil {
		return IssuanceConfig{}, err
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	return record.config.clone(), nil
}

func (s *MemoryConfigStore) Mutate(ctx context.Context, id string, fn MutateFunc) (IssuanceConfig, AuditEvent, error) {
	if fn == nil {
		return IssuanceConfig{}, AuditEvent{}, BadInputError("core: mutate func is required")
	}
	record, err := s.record(id)
	if err != nil {
		return IssuanceConfig{}, AuditEvent{}, err
	}
	record.mu.Lock()
	defer record.mu.Unlock()

	next, event, err := fn(ctx, record.config.clone())
	if err != nil {
		return IssuanceConfig{}, AuditEvent{}, err
	}
	record.config = next.clone()
	record.events = append(record.events, cloneEvent(event))
	return next.clone(), cloneEvent(event), nil
}

func (s *MemoryConfigStore) EventsFor(_ context.Context, configID string) ([]AuditEvent, error) {
	record, err := s.record(configID)
	if err != nil {
		return nil, err
	}
	record.mu.Lock()
	defer record.mu.Unlock()
	out := make([]AuditEvent, 0, len(record.events))
	for _, event := range record.events {
		out = append(out, cloneEvent(event))
	}
	return out, nil
}

// ListEvents returns matching events newest first.
func (s *MemoryConfigStore) ListEvents(ctx context.Context, filter AuditFilter) (AuditPage, error) {
	if s == nil {
		return AuditPage{}, nil
	}
	ids := []string{}
	if id := strings.TrimSpace(filter.ConfigID); id != "" {
		ids = append(ids, id)
	} else {
		s.mu.RLock()
		for id := range s.records {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
	}

	matched := []AuditEvent{}
	for _, id := range ids {
		events, err := s.EventsFor(ctx, id)
		if err != nil {
			if IsKind(err, ErrorConfigNotFound) {
				continue
			}
			return AuditPage{}, err
		}
		for _, event := range events {
			if filter.matches(event) {
				matched = append(matched, event)
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Sequence > matched[j].Sequence
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return AuditPage{Items: matched[start:end], Total: total}, nil
}

func (s *MemoryConfigStore) record(id string) (*memoryRecord, error) {
	if s == nil {
		return nil, BadInputError("core: memory config store is nil")
	}
	id = strings.TrimSpace(id)
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ConfigNotFoundError(id)
	}
	return record, nil
}

func (f AuditFilter) matches(event AuditEvent) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, kind := range f.Kinds {
			if kind == event.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Actor.IsZero() && f.Actor != event.Actor {
		return false
	}
	if f.Since != nil && event.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

func cloneEvent(event AuditEvent) AuditEvent {
	event.Metadata = copyAnyMap(event.Metadata)
	return event
}

var (
	_ ConfigStore = (*MemoryConfigStore)(nil)
	_ AuditLog    = (*MemoryConfigStore)(nil)
)

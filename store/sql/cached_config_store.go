package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-issuance/core"
	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const configCacheKeyPrefix = "go-issuance::config::v1"

// CachedConfigStore serves record reads from a cache and evicts on every write.
// A failed eviction is logged; the committed write is still returned and the
// stale entry lives until its TTL.
type CachedConfigStore struct {
	base   core.ConfigStore
	cache  repositorycache.CacheService
	logger glog.Logger
}

type CachedConfigStoreOption func(*CachedConfigStore)

func WithCacheLogger(logger glog.Logger) CachedConfigStoreOption {
	return func(s *CachedConfigStore) {
		s.logger = logger
	}
}

func NewCachedConfigStore(base core.ConfigStore, cacheService repositorycache.CacheService, opts ...CachedConfigStoreOption) (*CachedConfigStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base config store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: config cache service is required")
	}
	store := &CachedConfigStore{base: base, cache: cacheService}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	store.logger = glog.Ensure(store.logger)
	return store, nil
}

// ConfigCacheKey returns go-issuance::config::v1::<config_id>, path escaped.
func ConfigCacheKey(id string) string {
	return configCacheKeyPrefix + "::" + url.PathEscape(strings.TrimSpace(id))
}

func (s *CachedConfigStore) Create(ctx context.Context, cfg core.IssuanceConfig, event core.AuditEvent) (core.IssuanceConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.IssuanceConfig{}, fmt.Errorf("sqlstore: cached config store is not configured")
	}
	created, err := s.base.Create(ctx, cfg, event)
	if err != nil {
		return core.IssuanceConfig{}, err
	}
	s.evict(ctx, created.ID)
	return created, nil
}

func (s *CachedConfigStore) Get(ctx context.Context, id string) (core.IssuanceConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.IssuanceConfig{}, fmt.Errorf("sqlstore: cached config store is not configured")
	}
	if _, inTx := TxFromContext(ctx); inTx {
		return s.base.Get(ctx, id)
	}
	id = strings.TrimSpace(id)
	cfg, err := repositorycache.GetOrFetch(ctx, s.cache, ConfigCacheKey(id), func(ctx context.Context) (core.IssuanceConfig, error) {
		return s.base.Get(ctx, id)
	})
	if err != nil {
		return core.IssuanceConfig{}, err
	}
	return cloneConfig(cfg), nil
}

func (s *CachedConfigStore) Mutate(ctx context.Context, id string, fn core.MutateFunc) (core.IssuanceConfig, core.AuditEvent, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.IssuanceConfig{}, core.AuditEvent{}, fmt.Errorf("sqlstore: cached config store is not configured")
	}
	next, event, err := s.base.Mutate(ctx, id, fn)
	if err != nil {
		return core.IssuanceConfig{}, core.AuditEvent{}, err
	}
	s.evict(ctx, id)
	return next, event, nil
}

func (s *CachedConfigStore) evict(ctx context.Context, id string) {
	key := ConfigCacheKey(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		glog.Ensure(s.logger).Warn("config cache eviction failed", "config_id", strings.TrimSpace(id), "cache_key", key, "error", err.Error())
	}
}

// EventsFor and ListEvents pass through when the base store is also the audit log.
func (s *CachedConfigStore) EventsFor(ctx context.Context, configID string) ([]core.AuditEvent, error) {
	log, ok := s.base.(core.AuditLog)
	if !ok {
		return nil, fmt.Errorf("sqlstore: base config store does not expose an audit log")
	}
	return log.EventsFor(ctx, configID)
}

func (s *CachedConfigStore) ListEvents(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	log, ok := s.base.(core.AuditLog)
	if !ok {
		return core.AuditPage{}, fmt.Errorf("sqlstore: base config store does not expose an audit log")
	}
	return log.ListEvents(ctx, filter)
}

func cloneConfig(cfg core.IssuanceConfig) core.IssuanceConfig {
	out := cfg
	out.LastIssuanceAt = cloneTimePointer(cfg.LastIssuanceAt)
	return out
}

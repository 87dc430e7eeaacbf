package sqlstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-issuance/core"
	sqlstore "github.com/goliatone/go-issuance/store/sql"
	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type failingEvictionCache struct {
	repositorycache.CacheService
}

func (failingEvictionCache) Delete(context.Context, string) error {
	return errors.New("cache backend unavailable")
}

type warnCountingLogger struct {
	warns int
}

func (*warnCountingLogger) Trace(string, ...any)                      {}
func (*warnCountingLogger) Debug(string, ...any)                      {}
func (*warnCountingLogger) Info(string, ...any)                       {}
func (l *warnCountingLogger) Warn(string, ...any)                     { l.warns++ }
func (*warnCountingLogger) Error(string, ...any)                      {}
func (*warnCountingLogger) Fatal(string, ...any)                      {}
func (l *warnCountingLogger) WithContext(context.Context) glog.Logger { return l }

func TestCachedConfigStore_EvictionFailureKeepsCommittedWrite(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	cacheService, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	logger := &warnCountingLogger{}
	cached, err := sqlstore.NewCachedConfigStore(factory.ConfigStore(), failingEvictionCache{CacheService: cacheService}, sqlstore.WithCacheLogger(logger))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	svc, err := core.NewService(core.Config{},
		core.WithConfigStore(cached),
		core.WithTokenLedger(factory.Ledger()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	initialize(t, svc, 1_000, 1_000)
	result, err := svc.UpdateBacking(ctx, core.UpdateBackingRequest{Caller: primary, NewBacking: 2_000})
	if err != nil {
		t.Fatalf("expected committed update to succeed despite eviction failure: %v", err)
	}
	if result.Config.BackingValue != 2_000 || result.Event.Kind != core.EventBackingUpdated {
		t.Fatalf("unexpected result %+v", result)
	}
	if logger.warns != 2 {
		t.Fatalf("expected one warning per failed eviction, got %d", logger.warns)
	}

	stored, err := factory.ConfigStore().Get(ctx, core.DefaultConfigID)
	if err != nil {
		t.Fatalf("get from base store: %v", err)
	}
	if stored.BackingValue != 2_000 || stored.Sequence != 2 {
		t.Fatalf("expected the write to be committed, got %+v", stored)
	}
}

package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-issuance/core"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the SQL stores over one bun database.
type RepositoryFactory struct {
	db *bun.DB

	configStore *ConfigStore
	ledger      *Ledger
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.configStore != nil && f.ledger != nil {
		return nil
	}
	configStore, err := NewConfigStore(f.db)
	if err != nil {
		return err
	}
	ledger, err := NewLedger(f.db)
	if err != nil {
		return err
	}
	f.configStore = configStore
	f.ledger = ledger
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) ConfigStore() *ConfigStore {
	if f == nil {
		return nil
	}
	return f.configStore
}

func (f *RepositoryFactory) AuditLog() core.AuditLog {
	if f == nil || f.configStore == nil {
		return nil
	}
	return f.configStore
}

func (f *RepositoryFactory) Ledger() *Ledger {
	if f == nil {
		return nil
	}
	return f.ledger
}

// ServiceOptions wires the SQL stores and ledger into core.NewService.
func (f *RepositoryFactory) ServiceOptions() []core.Option {
	if f == nil {
		return nil
	}
	return []core.Option{
		core.WithConfigStore(f.configStore),
		core.WithAuditLog(f.configStore),
		core.WithTokenLedger(f.ledger),
	}
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-issuance/core"
	"github.com/uptrace/bun"
)

// ConfigStore persists issuance records and their audit trail. Every mutation
// runs in one transaction that also carries the ledger writes.
type ConfigStore struct {
	db     *bun.DB
	events repository.Repository[*auditEventRecord]
}

func NewConfigStore(db *bun.DB) (*ConfigStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	events := repository.NewRepository[*auditEventRecord](db, auditEventHandlers())
	if validator, ok := events.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid audit event repository wiring: %w", err)
		}
	}
	return &ConfigStore{db: db, events: events}, nil
}

func (s *ConfigStore) Create(ctx context.Context, cfg core.IssuanceConfig, event core.AuditEvent) (core.IssuanceConfig, error) {
	if s == nil || s.db == nil || s.events == nil {
		return core.IssuanceConfig{}, fmt.Errorf("sqlstore: config store is not configured")
	}
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		return core.IssuanceConfig{}, core.BadInputError("sqlstore: config id is required")
	}
	record, err := newIssuanceConfigRecord(cfg)
	if err != nil {
		return core.IssuanceConfig{}, err
	}
	eventRecord, err := newAuditEventRecord(event)
	if err != nil {
		return core.IssuanceConfig{}, err
	}

	err = runInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		exists, existsErr := tx.NewSelect().
			Model((*issuanceConfigRecord)(nil)).
			Where("?TableAlias.id = ?", id).
			Exists(ctx)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			return core.ConfigExistsError(id)
		}
		if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
			return insertErr
		}
		_, createErr := s.events.CreateTx(ctx, tx, eventRecord)
		return createErr
	})
	if err != nil {
		return core.IssuanceConfig{}, err
	}
	return record.toDomain(), nil
}

func (s *ConfigStore) Get(ctx context.Context, id string) (core.IssuanceConfig, error) {
	if s == nil || s.db == nil {
		return core.IssuanceConfig{}, fmt.Errorf("sqlstore: config store is not configured")
	}
	record, err := findConfig(ctx, s.conn(ctx), strings.TrimSpace(id), false)
	if err != nil {
		return core.IssuanceConfig{}, err
	}
	return record.toDomain(), nil
}

func (s *ConfigStore) Mutate(ctx context.Context, id string, fn core.MutateFunc) (core.IssuanceConfig, core.AuditEvent, error) {
	if s == nil || s.db == nil || s.events == nil {
		return core.IssuanceConfig{}, core.AuditEvent{}, fmt.Errorf("sqlstore: config store is not configured")
	}
	if fn == nil {
		return core.IssuanceConfig{}, core.AuditEvent{}, core.BadInputError("sqlstore: mutate func is required")
	}
	id = strings.TrimSpace(id)

	var (
		next  core.IssuanceConfig
		event core.AuditEvent
	)
	err := runInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		current, err := findConfig(ctx, tx, id, supportsRowLocks(tx))
		if err != nil {
			return err
		}
		next, event, err = fn(ctx, current.toDomain())
		if err != nil {
			return err
		}
		if strings.TrimSpace(next.ID) != id {
			return core.BadInputError("sqlstore: mutation changed record id %q to %q", id, next.ID)
		}
		record, err := newIssuanceConfigRecord(next)
		if err != nil {
			return err
		}
		eventRecord, err := newAuditEventRecord(event)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return err
		}
		_, err = s.events.CreateTx(ctx, tx, eventRecord)
		return err
	})
	if err != nil {
		return core.IssuanceConfig{}, core.AuditEvent{}, err
	}
	return next, event, nil
}

// conn returns the transaction carried by ctx, falling back to the pool.
func (s *ConfigStore) conn(ctx context.Context) bun.IDB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

func findConfig(ctx context.Context, db bun.IDB, id string, lock bool) (*issuanceConfigRecord, error) {
	record := &issuanceConfigRecord{}
	query := db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1)
	if lock {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ConfigNotFoundError(id)
		}
		return nil, err
	}
	return record, nil
}

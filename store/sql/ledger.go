package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-issuance/core"
	"github.com/uptrace/bun"
)

// Ledger keeps holder balances in issuance_ledger_balances. Calls made with a
// context from WithTx run inside that transaction.
type Ledger struct {
	db  *bun.DB
	now func() time.Time
}

func NewLedger(db *bun.DB) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &Ledger{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (l *Ledger) Mint(ctx context.Context, configID string, to core.Identity, amount uint64) error {
	if to.IsZero() {
		return fmt.Errorf("sqlstore: mint recipient is required")
	}
	return l.run(ctx, func(ctx context.Context, tx bun.Tx) error {
		return l.credit(ctx, tx, configID, to, amount)
	})
}

func (l *Ledger) Burn(ctx context.Context, configID string, from core.Identity, amount uint64) error {
	return l.run(ctx, func(ctx context.Context, tx bun.Tx) error {
		return l.debit(ctx, tx, configID, from, amount)
	})
}

func (l *Ledger) Transfer(ctx context.Context, configID string, from, to core.Identity, amount uint64) error {
	if to.IsZero() {
		return fmt.Errorf("sqlstore: transfer recipient is required")
	}
	return l.run(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := l.debit(ctx, tx, configID, from, amount); err != nil {
			return err
		}
		return l.credit(ctx, tx, configID, to, amount)
	})
}

func (l *Ledger) BalanceOf(ctx context.Context, configID string, holder core.Identity) (uint64, error) {
	if l == nil || l.db == nil {
		return 0, fmt.Errorf("sqlstore: ledger is not configured")
	}
	var db bun.IDB = l.db
	if tx, ok := TxFromContext(ctx); ok {
		db = tx
	}
	record, err := findBalance(ctx, db, strings.TrimSpace(configID), holder, false)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, nil
	}
	return uint64(record.Balance), nil
}

func (l *Ledger) run(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("sqlstore: ledger is not configured")
	}
	return runInTx(ctx, l.db, fn)
}

func (l *Ledger) credit(ctx context.Context, tx bun.Tx, configID string, holder core.Identity, amount uint64) error {
	configID = strings.TrimSpace(configID)
	record, err := findBalance(ctx, tx, configID, holder, supportsRowLocks(tx))
	if err != nil {
		return err
	}
	if record == nil {
		if amount > math.MaxInt64 {
			return fmt.Errorf("sqlstore: balance overflow for %s", holder)
		}
		_, err := tx.NewInsert().Model(&ledgerBalanceRecord{
			ConfigID:  configID,
			Holder:    holder.String(),
			Balance:   int64(amount),
			UpdatedAt: l.now(),
		}).Exec(ctx)
		return err
	}
	if amount > uint64(math.MaxInt64-record.Balance) {
		return fmt.Errorf("sqlstore: balance overflow for %s", holder)
	}
	record.Balance += int64(amount)
	record.UpdatedAt = l.now()
	_, err = tx.NewUpdate().Model(record).WherePK().Exec(ctx)
	return err
}

func (l *Ledger) debit(ctx context.Context, tx bun.Tx, configID string, holder core.Identity, amount uint64) error {
	configID = strings.TrimSpace(configID)
	record, err := findBalance(ctx, tx, configID, holder, supportsRowLocks(tx))
	if err != nil {
		return err
	}
	var have uint64
	if record != nil {
		have = uint64(record.Balance)
	}
	if have < amount {
		return fmt.Errorf("sqlstore: insufficient balance for %s: have %d, need %d", holder, have, amount)
	}
	if record == nil {
		return nil
	}
	record.Balance -= int64(amount)
	record.UpdatedAt = l.now()
	_, err = tx.NewUpdate().Model(record).WherePK().Exec(ctx)
	return err
}

func findBalance(ctx context.Context, db bun.IDB, configID string, holder core.Identity, lock bool) (*ledgerBalanceRecord, error) {
	record := &ledgerBalanceRecord{}
	query := db.NewSelect().
		Model(record).
		Where("?TableAlias.config_id = ?", configID).
		Where("?TableAlias.holder = ?", holder.String()).
		Limit(1)
	if lock {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

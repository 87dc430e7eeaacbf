package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-issuance/core"
	"github.com/uptrace/bun"
)

// EventsFor returns the full audit chain of one record, oldest first.
func (s *ConfigStore) EventsFor(ctx context.Context, configID string) ([]core.AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: config store is not configured")
	}
	configID = strings.TrimSpace(configID)
	db := s.conn(ctx)
	if _, err := findConfig(ctx, db, configID, false); err != nil {
		return nil, err
	}
	records := []*auditEventRecord{}
	if err := db.NewSelect().
		Model(&records).
		Where("?TableAlias.config_id = ?", configID).
		OrderExpr("?TableAlias.sequence ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	return recordsToEvents(records)
}

// ListEvents returns matching events newest first.
func (s *ConfigStore) ListEvents(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	if s == nil || s.events == nil {
		return core.AuditPage{}, fmt.Errorf("sqlstore: config store is not configured")
	}
	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.OrderBy("sequence DESC"),
	}
	if configID := strings.TrimSpace(filter.ConfigID); configID != "" {
		selectors = append(selectors, repository.SelectBy("config_id", "=", configID))
	}
	if !filter.Actor.IsZero() {
		selectors = append(selectors, repository.SelectBy("actor", "=", filter.Actor.String()))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, 0, len(filter.Kinds))
		for _, kind := range filter.Kinds {
			kinds = append(kinds, string(kind))
		}
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.kind IN (?)", bun.In(kinds))
		}))
	}
	if filter.Since != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.Since.UTC()))
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if filter.Limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(filter.Limit, offset))
	}

	records, total, err := s.events.List(ctx, selectors...)
	if err != nil {
		return core.AuditPage{}, err
	}
	if filter.Limit <= 0 && offset > 0 {
		// unbounded pages are sliced here; OFFSET without LIMIT is not portable
		if offset > len(records) {
			offset = len(records)
		}
		records = records[offset:]
	}
	items, err := recordsToEvents(records)
	if err != nil {
		return core.AuditPage{}, err
	}
	return core.AuditPage{Items: items, Total: total}, nil
}

package query

import (
	"context"

	"github.com/goliatone/go-issuance/core"
)

type ConfigReader interface {
	GetConfig(ctx context.Context, configID string) (core.IssuanceConfig, error)
}

type StatusReader interface {
	Status(ctx context.Context, configID string) (core.SystemStatus, error)
}

type AuditReader interface {
	ListAuditEvents(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error)
	VerifyAuditChain(ctx context.Context, configID string) (core.ChainReport, error)
}

type GetConfigQuery struct {
	reader ConfigReader
}

func NewGetConfigQuery(reader ConfigReader) *GetConfigQuery {
	return &GetConfigQuery{reader: reader}
}

func (q *GetConfigQuery) Query(ctx context.Context, msg GetConfigMessage) (core.IssuanceConfig, error) {
	if q == nil || q.reader == nil {
		return core.IssuanceConfig{}, queryDependencyError("query: config reader is required")
	}
	return q.reader.GetConfig(ctx, msg.ConfigID)
}

type StatusQuery struct {
	reader StatusReader
}

func NewStatusQuery(reader StatusReader) *StatusQuery {
	return &StatusQuery{reader: reader}
}

func (q *StatusQuery) Query(ctx context.Context, msg StatusMessage) (core.SystemStatus, error) {
	if q == nil || q.reader == nil {
		return core.SystemStatus{}, queryDependencyError("query: status reader is required")
	}
	return q.reader.Status(ctx, msg.ConfigID)
}

type ListAuditEventsQuery struct {
	reader AuditReader
}

func NewListAuditEventsQuery(reader AuditReader) *ListAuditEventsQuery {
	return &ListAuditEventsQuery{reader: reader}
}

func (q *ListAuditEventsQuery) Query(ctx context.Context, msg ListAuditEventsMessage) (core.AuditPage, error) {
	if q == nil || q.reader == nil {
		return core.AuditPage{}, queryDependencyError("query: audit reader is required")
	}
	return q.reader.ListAuditEvents(ctx, msg.Filter)
}

type VerifyAuditChainQuery struct {
	reader AuditReader
}

func NewVerifyAuditChainQuery(reader AuditReader) *VerifyAuditChainQuery {
	return &VerifyAuditChainQuery{reader: reader}
}

func (q *VerifyAuditChainQuery) Query(ctx context.Context, msg VerifyAuditChainMessage) (core.ChainReport, error) {
	if q == nil || q.reader == nil {
		return core.ChainReport{}, queryDependencyError("query: audit reader is required")
	}
	return q.reader.VerifyAuditChain(ctx, msg.ConfigID)
}

// BalanceQuery reads a holder balance from ledgers that expose one.
type BalanceQuery struct {
	reader core.BalanceReader
}

func NewBalanceQuery(reader core.BalanceReader) *BalanceQuery {
	return &BalanceQuery{reader: reader}
}

func (q *BalanceQuery) Query(ctx context.Context, msg BalanceMessage) (uint64, error) {
	if q == nil || q.reader == nil {
		return 0, queryDependencyError("query: balance reader is required")
	}
	configID := msg.ConfigID
	if configID == "" {
		configID = core.DefaultConfigID
	}
	return q.reader.BalanceOf(ctx, configID, msg.Holder)
}

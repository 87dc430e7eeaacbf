package query

import (
	"github.com/goliatone/go-issuance/core"
)

const (
	TypeGetConfig        = "issuance.query.config.get"
	TypeStatus           = "issuance.query.status"
	TypeListAuditEvents  = "issuance.query.audit.list"
	TypeVerifyAuditChain = "issuance.query.audit.verify"
	TypeBalance          = "issuance.query.balance"
)

// An empty ConfigID on any query message targets the default record.

type GetConfigMessage struct {
	ConfigID string
}

func (GetConfigMessage) Type() string { return TypeGetConfig }

func (GetConfigMessage) Validate() error { return nil }

type StatusMessage struct {
	ConfigID string
}

func (StatusMessage) Type() string { return TypeStatus }

func (StatusMessage) Validate() error { return nil }

type ListAuditEventsMessage struct {
	Filter core.AuditFilter
}

func (ListAuditEventsMessage) Type() string { return TypeListAuditEvents }

func (m ListAuditEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}

type VerifyAuditChainMessage struct {
	ConfigID string
}

func (VerifyAuditChainMessage) Type() string { return TypeVerifyAuditChain }

func (VerifyAuditChainMessage) Validate() error { return nil }

type BalanceMessage struct {
	ConfigID string
	Holder   core.Identity
}

func (BalanceMessage) Type() string { return TypeBalance }

func (m BalanceMessage) Validate() error {
	if m.Holder.IsZero() {
		return queryValidationError("holder", "holder is required")
	}
	return nil
}

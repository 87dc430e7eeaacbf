package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-issuance/core"
)

var (
	_ gocmd.Querier[GetConfigMessage, core.IssuanceConfig]     = (*GetConfigQuery)(nil)
	_ gocmd.Querier[StatusMessage, core.SystemStatus]          = (*StatusQuery)(nil)
	_ gocmd.Querier[ListAuditEventsMessage, core.AuditPage]    = (*ListAuditEventsQuery)(nil)
	_ gocmd.Querier[VerifyAuditChainMessage, core.ChainReport] = (*VerifyAuditChainQuery)(nil)
	_ gocmd.Querier[BalanceMessage, uint64]                    = (*BalanceQuery)(nil)
)

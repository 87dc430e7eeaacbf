package sqlstore

import "github.com/goliatone/go-issuance/core"

var (
	_ core.ConfigStore   = (*ConfigStore)(nil)
	_ core.AuditLog      = (*ConfigStore)(nil)
	_ core.ConfigStore   = (*CachedConfigStore)(nil)
	_ core.AuditLog      = (*CachedConfigStore)(nil)
	_ core.TokenLedger   = (*Ledger)(nil)
	_ core.BalanceReader = (*Ledger)(nil)
)

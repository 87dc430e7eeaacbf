package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type issuanceConfigRecord struct {
	bun.BaseModel `bun:"table:issuance_configs,alias:ic"`

	ID               string     `bun:"id,pk"`
	PrimaryAuthority string     `bun:"primary_authority,notnull"`
	Guardian         string     `bun:"guardian,notnull"`
	CollateralType   string     `bun:"collateral_type,notnull"`
	BackingValue     int64      `bun:"backing_value,notnull"`
	MaxSupply        int64      `bun:"max_supply,notnull"`
	CurrentSupply    int64      `bun:"current_supply,notnull"`
	ReserveRatio     int64      `bun:"reserve_ratio,notnull"`
	Active           bool       `bun:"active,notnull"`
	PauseReason      string     `bun:"pause_reason,notnull"`
	PauseNote        string     `bun:"pause_note,notnull"`
	Sequence         int64      `bun:"sequence,notnull"`
	HeadCID          string     `bun:"head_cid,notnull"`
	LastIssuanceAt   *time.Time `bun:"last_issuance_at,nullzero"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type auditEventRecord struct {
	bun.BaseModel `bun:"table:issuance_audit_events,alias:iae"`

	ID           string    `bun:"id,pk"`
	ConfigID     string    `bun:"config_id,notnull"`
	Sequence     int64     `bun:"sequence,notnull"`
	Kind         string    `bun:"kind,notnull"`
	Actor        string    `bun:"actor,notnull"`
	Amount       int64     `bun:"amount,notnull"`
	From         string    `bun:"from_identity,notnull"`
	To           string    `bun:"to_identity,notnull"`
	Proof        string    `bun:"proof,notnull"`
	Reason       string    `bun:"reason,notnull"`
	OldBacking   int64     `bun:"old_backing,notnull"`
	NewBacking   int64     `bun:"new_backing,notnull"`
	OldGuardian  string    `bun:"old_guardian,notnull"`
	NewGuardian  string    `bun:"new_guardian,notnull"`
	Supply       int64     `bun:"supply,notnull"`
	ReserveRatio int64     `bun:"reserve_ratio,notnull"`
	Active       bool      `bun:"active,notnull"`
	PauseReason  string    `bun:"pause_reason,notnull"`
	Metadata     string    `bun:"metadata,notnull"`
	PrevCID      string    `bun:"prev_cid,notnull"`
	CID          string    `bun:"cid,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type ledgerBalanceRecord struct {
	bun.BaseModel `bun:"table:issuance_ledger_balances,alias:ilb"`

	ConfigID  string    `bun:"config_id,pk"`
	Holder    string    `bun:"holder,pk"`
	Balance   int64     `bun:"balance,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

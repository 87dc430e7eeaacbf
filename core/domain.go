package core

import (
	"strings"
	"time"
)

const DefaultConfigID = "issuance"

// Identity is an already authenticated principal. Identities compare by value.
type Identity string

func (i Identity) String() string { return string(i) }

func (i Identity) IsZero() bool { return strings.TrimSpace(string(i)) == "" }

type Role string

const (
	RolePrimary  Role = "primary"
	RoleGuardian Role = "guardian"
	RoleHolder   Role = "holder"
)

type PauseReason string

const (
	PauseReasonNone           PauseReason = ""
	PauseReasonAdministrative PauseReason = "administrative"
	PauseReasonEmergency      PauseReason = "emergency"
)

type LifecycleState string

const (
	StateActive               LifecycleState = "active"
	StatePausedAdministrative LifecycleState = "paused_administrative"
	StatePausedEmergency      LifecycleState = "paused_emergency"
)

type Operation string

const (
	OperationInitialize      Operation = "initialize"
	OperationEmit            Operation = "emit"
	OperationTransfer        Operation = "transfer"
	OperationBurn            Operation = "burn_for_redemption"
	OperationUpdateBacking   Operation = "update_backing"
	OperationToggleStatus    Operation = "toggle_status"
	OperationEmergencyPause  Operation = "emergency_pause"
	OperationRecoveryResume  Operation = "recovery_resume"
	OperationRotateGuardian  Operation = "rotate_guardian"
	OperationGetConfig       Operation = "get_config"
	OperationStatus          Operation = "status"
	OperationListAuditEvents Operation = "list_audit_events"
	OperationVerifyChain     Operation = "verify_audit_chain"
)

// IssuanceConfig is the single authoritative record for one token system.
type IssuanceConfig struct {
	ID               string
	PrimaryAuthority Identity
	Guardian         Identity
	CollateralType   string
	BackingValue     uint64
	MaxSupply        uint64
	CurrentSupply    uint64
	ReserveRatio     uint64
	Active           bool
	PauseReason      PauseReason
	PauseNote        string
	Sequence         uint64
	HeadCID          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastIssuanceAt   *time.Time
}

// State derives the lifecycle state from the active flag and pause reason.
func (c IssuanceConfig) State() LifecycleState {
	if c.Active {
		return StateActive
	}
	if c.PauseReason == PauseReasonEmergency {
		return StatePausedEmergency
	}
	return StatePausedAdministrative
}

func (c IssuanceConfig) clone() IssuanceConfig {
	out := c
	if c.LastIssuanceAt != nil {
		at := *c.LastIssuanceAt
		out.LastIssuanceAt = &at
	}
	return out
}

// SystemStatus is the read model returned by Status.
type SystemStatus struct {
	ConfigID         string
	PrimaryAuthority Identity
	Guardian         Identity
	CollateralType   string
	BackingValue     uint64
	MaxSupply        uint64
	CurrentSupply    uint64
	ReserveRatio     uint64
	Active           bool
	State            LifecycleState
	PauseReason      PauseReason
	PauseNote        string
	Sequence         uint64
	HeadCID          string
	LastIssuanceAt   *time.Time
}

// Status projects the record into its read model.
func (c IssuanceConfig) Status() SystemStatus {
	return SystemStatus{
		ConfigID:         c.ID,
		PrimaryAuthority: c.PrimaryAuthority,
		Guardian:         c.Guardian,
		CollateralType:   c.CollateralType,
		BackingValue:     c.BackingValue,
		MaxSupply:        c.MaxSupply,
		CurrentSupply:    c.CurrentSupply,
		ReserveRatio:     c.ReserveRatio,
		Active:           c.Active,
		State:            c.State(),
		PauseReason:      c.PauseReason,
		PauseNote:        c.PauseNote,
		Sequence:         c.Sequence,
		HeadCID:          c.HeadCID,
		LastIssuanceAt:   c.clone().LastIssuanceAt,
	}
}

type EventKind string

const (
	EventInitialized     EventKind = "initialized"
	EventEmitted         EventKind = "emitted"
	EventTransferred     EventKind = "transferred"
	EventBurned          EventKind = "burned"
	EventBackingUpdated  EventKind = "backing_updated"
	EventStatusChanged   EventKind = "status_changed"
	EventEmergencyPaused EventKind = "emergency_paused"
	EventRecoveryResumed EventKind = "recovery_resumed"
	EventGuardianRotated EventKind = "guardian_rotated"
)

// AuditEvent is one append-only entry of a record's history.
type AuditEvent struct {
	ID           string         `json:"id"`
	ConfigID     string         `json:"config_id"`
	Sequence     uint64         `json:"sequence"`
	Kind         EventKind      `json:"kind"`
	Actor        Identity       `json:"actor"`
	Amount       uint64         `json:"amount,omitempty"`
	From         Identity       `json:"from,omitempty"`
	To           Identity       `json:"to,omitempty"`
	Proof        string         `json:"proof,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	OldBacking   uint64         `json:"old_backing,omitempty"`
	NewBacking   uint64         `json:"new_backing,omitempty"`
	OldGuardian  Identity       `json:"old_guardian,omitempty"`
	NewGuardian  Identity       `json:"new_guardian,omitempty"`
	Supply       uint64         `json:"supply"`
	ReserveRatio uint64         `json:"reserve_ratio"`
	Active       bool           `json:"active"`
	PauseReason  PauseReason    `json:"pause_reason,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	PrevCID      string         `json:"prev_cid,omitempty"`
	CID          string         `json:"cid,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type AuditFilter struct {
	ConfigID string
	Kinds    []EventKind
	Actor    Identity
	Since    *time.Time
	Limit    int
	Offset   int
}

type AuditPage struct {
	Items []AuditEvent
	Total int
}

type ChainReport struct {
	ConfigID string
	Events   int
	HeadCID  string
	Valid    bool
}

type InitializeRequest struct {
	ConfigID         string
	Caller           Identity
	PrimaryAuthority Identity
	Guardian         Identity
	CollateralType   string
	InitialBacking   uint64
	MaxSupply        uint64
	Metadata         map[string]any
}

type EmitRequest struct {
	ConfigID    string
	Caller      Identity
	Recipient   Identity
	Amount      uint64
	Proof       ProofOfReserve
	Attestation []byte
	Metadata    map[string]any
}

type TransferRequest struct {
	ConfigID string
	Caller   Identity
	From     Identity
	To       Identity
	Amount   uint64
	Metadata map[string]any
}

type BurnRequest struct {
	ConfigID  string
	Caller    Identity
	Amount    uint64
	Reference string
	Metadata  map[string]any
}

type UpdateBackingRequest struct {
	ConfigID   string
	Caller     Identity
	NewBacking uint64
	Metadata   map[string]any
}

type ToggleStatusRequest struct {
	ConfigID string
	Caller   Identity
	Active   bool
	Metadata map[string]any
}

type EmergencyPauseRequest struct {
	ConfigID string
	Caller   Identity
	Reason   string
	Metadata map[string]any
}

type RecoveryResumeRequest struct {
	ConfigID string
	Caller   Identity
	Metadata map[string]any
}

type RotateGuardianRequest struct {
	ConfigID    string
	Caller      Identity
	NewGuardian Identity
	Metadata    map[string]any
}

// MutationResult is returned by every state-changing operation.
type MutationResult struct {
	Config IssuanceConfig
	Event  AuditEvent
}

package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// MutateFunc computes the next record and its audit event from the current
// record. Returning an error aborts the unit without writing anything.
type MutateFunc func(ctx context.Context, current IssuanceConfig) (IssuanceConfig, AuditEvent, error)

// ConfigStore is the single-writer store of issuance records.
type ConfigStore interface {
	Create(ctx context.Context, cfg IssuanceConfig, event AuditEvent) (IssuanceConfig, error)
	Get(ctx context.Context, id string) (IssuanceConfig, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (IssuanceConfig, AuditEvent, error)
}

// AuditLog is the read side of the append-only audit trail.
type AuditLog interface {
	ListEvents(ctx context.Context, filter AuditFilter) (AuditPage, error)
	EventsFor(ctx context.Context, configID string) ([]AuditEvent, error)
}

// TokenLedger is the external atomic token primitive. Calls made from inside
// a MutateFunc share the store's unit of work when the ledger supports it.
type TokenLedger interface {
	Mint(ctx context.Context, configID string, to Identity, amount uint64) error
	Burn(ctx context.Context, configID string, from Identity, amount uint64) error
	Transfer(ctx context.Context, configID string, from, to Identity, amount uint64) error
}

// BalanceReader is implemented by ledgers that expose holder balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, configID string, holder Identity) (uint64, error)
}

type LockHandle interface {
	Unlock(ctx context.Context) error
}

// RecordLocker serializes operations on one issuance record.
type RecordLocker interface {
	Acquire(ctx context.Context, configID string) (LockHandle, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

// IssuanceService is the mutating surface of the issuance core.
type IssuanceService interface {
	Initialize(ctx context.Context, req InitializeRequest) (MutationResult, error)
	Emit(ctx context.Context, req EmitRequest) (MutationResult, error)
	Transfer(ctx context.Context, req TransferRequest) (MutationResult, error)
	BurnForRedemption(ctx context.Context, req BurnRequest) (MutationResult, error)
	UpdateBacking(ctx context.Context, req UpdateBackingRequest) (MutationResult, error)
	ToggleStatus(ctx context.Context, req ToggleStatusRequest) (MutationResult, error)
	EmergencyPause(ctx context.Context, req EmergencyPauseRequest) (MutationResult, error)
	RecoveryResume(ctx context.Context, req RecoveryResumeRequest) (MutationResult, error)
	RotateGuardian(ctx context.Context, req RotateGuardianRequest) (MutationResult, error)
}

type ReadService interface {
	GetConfig(ctx context.Context, configID string) (IssuanceConfig, error)
	Status(ctx context.Context, configID string) (SystemStatus, error)
	ListAuditEvents(ctx context.Context, filter AuditFilter) (AuditPage, error)
	VerifyAuditChain(ctx context.Context, configID string) (ChainReport, error)
}

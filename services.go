package issuance

import (
	"github.com/goliatone/go-issuance/core"
	"github.com/goliatone/go-issuance/ledger"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type ConfigStore = core.ConfigStore
type AuditLog = core.AuditLog
type TokenLedger = core.TokenLedger
type BalanceReader = core.BalanceReader
type ProofValidator = core.ProofValidator
type RecordLocker = core.RecordLocker

type Identity = core.Identity
type IssuanceConfig = core.IssuanceConfig
type SystemStatus = core.SystemStatus
type AuditEvent = core.AuditEvent
type AuditFilter = core.AuditFilter
type ChainReport = core.ChainReport
type ProofOfReserve = core.ProofOfReserve

type InitializeRequest = core.InitializeRequest
type EmitRequest = core.EmitRequest
type TransferRequest = core.TransferRequest
type BurnRequest = core.BurnRequest
type UpdateBackingRequest = core.UpdateBackingRequest
type ToggleStatusRequest = core.ToggleStatusRequest
type EmergencyPauseRequest = core.EmergencyPauseRequest
type RecoveryResumeRequest = core.RecoveryResumeRequest
type RotateGuardianRequest = core.RotateGuardianRequest
type MutationResult = core.MutationResult

type GuardianMonitor = core.GuardianMonitor
type MonitorReport = core.MonitorReport

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithConfigStore     = core.WithConfigStore
	WithAuditLog        = core.WithAuditLog
	WithTokenLedger     = core.WithTokenLedger
	WithProofValidator  = core.WithProofValidator
	WithRecordLocker    = core.WithRecordLocker
	WithClock           = core.WithClock
	WithIDGenerator     = core.WithIDGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds a service with an in-memory ledger unless WithTokenLedger
// supplies another one.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTokenLedger(ledger.NewMemoryLedger()))
	all = append(all, opts...)
	return core.NewService(cfg, all...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

package issuance

import (
	"fmt"

	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
	issuancequery "github.com/goliatone/go-issuance/query"
)

type CommandQueryService interface {
	issuancecommand.MutatingService
	issuancequery.ConfigReader
	issuancequery.StatusReader
	issuancequery.AuditReader
}

type Commands struct {
	Initialize        *issuancecommand.InitializeCommand
	Emit              *issuancecommand.EmitCommand
	Transfer          *issuancecommand.TransferCommand
	BurnForRedemption *issuancecommand.BurnForRedemptionCommand
	UpdateBacking     *issuancecommand.UpdateBackingCommand
	ToggleStatus      *issuancecommand.ToggleStatusCommand
	EmergencyPause    *issuancecommand.EmergencyPauseCommand
	RecoveryResume    *issuancecommand.RecoveryResumeCommand
	RotateGuardian    *issuancecommand.RotateGuardianCommand
	// GuardianCheck is nil unless a monitor was supplied.
	GuardianCheck *issuancecommand.GuardianCheckCommand
}

type Queries struct {
	GetConfig        *issuancequery.GetConfigQuery
	Status           *issuancequery.StatusQuery
	ListAuditEvents  *issuancequery.ListAuditEventsQuery
	VerifyAuditChain *issuancequery.VerifyAuditChainQuery
	// Balance is nil when no balance reader could be resolved.
	Balance *issuancequery.BalanceQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	balanceReader core.BalanceReader
	monitor       issuancecommand.GuardianChecker
}

func WithBalanceReader(reader core.BalanceReader) FacadeOption {
	return func(options *facadeOptions) {
		options.balanceReader = reader
	}
}

func WithGuardianMonitor(monitor issuancecommand.GuardianChecker) FacadeOption {
	return func(options *facadeOptions) {
		options.monitor = monitor
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("issuance: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.balanceReader
	if reader == nil {
		reader = resolveBalanceReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Initialize:        issuancecommand.NewInitializeCommand(service),
		Emit:              issuancecommand.NewEmitCommand(service),
		Transfer:          issuancecommand.NewTransferCommand(service),
		BurnForRedemption: issuancecommand.NewBurnForRedemptionCommand(service),
		UpdateBacking:     issuancecommand.NewUpdateBackingCommand(service),
		ToggleStatus:      issuancecommand.NewToggleStatusCommand(service),
		EmergencyPause:    issuancecommand.NewEmergencyPauseCommand(service),
		RecoveryResume:    issuancecommand.NewRecoveryResumeCommand(service),
		RotateGuardian:    issuancecommand.NewRotateGuardianCommand(service),
	}
	if cfg.monitor != nil {
		facade.commands.GuardianCheck = issuancecommand.NewGuardianCheckCommand(cfg.monitor)
	}
	facade.queries = Queries{
		GetConfig:        issuancequery.NewGetConfigQuery(service),
		Status:           issuancequery.NewStatusQuery(service),
		ListAuditEvents:  issuancequery.NewListAuditEventsQuery(service),
		VerifyAuditChain: issuancequery.NewVerifyAuditChainQuery(service),
	}
	if reader != nil {
		facade.queries.Balance = issuancequery.NewBalanceQuery(reader)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveBalanceReader falls back to the service's token ledger when that
// ledger also reports balances.
func resolveBalanceReader(service CommandQueryService) core.BalanceReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(core.BalanceReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	reader, ok := provider.Dependencies().TokenLedger.(core.BalanceReader)
	if !ok {
		return nil
	}
	return reader
}

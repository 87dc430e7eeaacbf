package issuance

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
	issuancequery "github.com/goliatone/go-issuance/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc, WithBalanceReader(stubFacadeBalances{}))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.Initialize == nil || commands.Emit == nil || commands.EmergencyPause == nil || commands.RotateGuardian == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	if commands.GuardianCheck != nil {
		t.Fatalf("expected guardian check to stay nil without a monitor")
	}
	queries := facade.Queries()
	if queries.Status == nil || queries.VerifyAuditChain == nil || queries.Balance == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.MutationResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().ToggleStatus.Execute(ctx, issuancecommand.ToggleStatusMessage{
		Request: core.ToggleStatusRequest{Caller: "primary", Active: false},
	}); err != nil {
		t.Fatalf("execute toggle command: %v", err)
	}
	if svc.lastToggle.Caller != "primary" || svc.lastToggle.Active {
		t.Fatalf("unexpected toggle delegation payload: %#v", svc.lastToggle)
	}
	if result, ok := collector.Load(); !ok || result.Event.Kind != core.EventStatusChanged {
		t.Fatalf("expected toggle result in collector, got %#v", result)
	}

	status, err := facade.Queries().Status.Query(context.Background(), issuancequery.StatusMessage{})
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status.ConfigID != core.DefaultConfigID {
		t.Fatalf("unexpected status result: %#v", status)
	}
	if facade.Queries().Balance != nil {
		t.Fatalf("expected no balance query for a service without a ledger")
	}
}

func TestNewFacade_ResolvesBalanceReaderFromServiceLedger(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if facade.Queries().Balance == nil {
		t.Fatalf("expected balance query resolved from the memory ledger")
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	lastToggle core.ToggleStatusRequest
}

func (s *stubFacadeService) Initialize(context.Context, core.InitializeRequest) (core.MutationResult, error) {
	return core.MutationResult{Event: core.AuditEvent{Kind: core.EventInitialized}}, nil
}

func (s *stubFacadeService) Emit(context.Context, core.EmitRequest) (core.MutationResult, error) {
	return core.MutationResult{Event: core.AuditEvent{Kind: core.EventEmitted}}, nil
}

func (s *stubFacadeService) Transfer(context.Context, core.TransferRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) BurnForRedemption(context.Context, core.BurnRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) UpdateBacking(context.Context, core.UpdateBackingRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) ToggleStatus(_ context.Context, req core.ToggleStatusRequest) (core.MutationResult, error) {
	s.lastToggle = req
	return core.MutationResult{Event: core.AuditEvent{Kind: core.EventStatusChanged}}, nil
}

func (s *stubFacadeService) EmergencyPause(context.Context, core.EmergencyPauseRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) RecoveryResume(context.Context, core.RecoveryResumeRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) RotateGuardian(context.Context, core.RotateGuardianRequest) (core.MutationResult, error) {
	return core.MutationResult{}, nil
}

func (s *stubFacadeService) GetConfig(_ context.Context, configID string) (core.IssuanceConfig, error) {
	return core.IssuanceConfig{ID: configID}, nil
}

func (s *stubFacadeService) Status(context.Context, string) (core.SystemStatus, error) {
	return core.SystemStatus{ConfigID: core.DefaultConfigID}, nil
}

func (s *stubFacadeService) ListAuditEvents(context.Context, core.AuditFilter) (core.AuditPage, error) {
	return core.AuditPage{}, nil
}

func (s *stubFacadeService) VerifyAuditChain(_ context.Context, configID string) (core.ChainReport, error) {
	return core.ChainReport{ConfigID: configID, Valid: true}, nil
}

type stubFacadeBalances struct{}

func (stubFacadeBalances) BalanceOf(context.Context, string, core.Identity) (uint64, error) {
	return 0, nil
}

var _ CommandQueryService = (*stubFacadeService)(nil)

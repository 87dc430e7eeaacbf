package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-issuance/core"
)

func TestEmitCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.MutationResult{
		Config: core.IssuanceConfig{ID: "default", CurrentSupply: 250},
		Event:  core.AuditEvent{Kind: core.EventEmitted, Amount: 250},
	}
	called := false

	svc := stubMutatingService{
		emitFn: func(_ context.Context, req core.EmitRequest) (core.MutationResult, error) {
			called = true
			if req.Recipient != "alice" || req.Amount != 250 {
				t.Fatalf("unexpected emit request: %#v", req)
			}
			return expected, nil
		},
	}

	cmd := NewEmitCommand(svc)
	collector := gocmd.NewResult[core.MutationResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, EmitMessage{Request: core.EmitRequest{
		Caller:    "primary",
		Recipient: "alice",
		Amount:    250,
	}})
	if err != nil {
		t.Fatalf("execute emit: %v", err)
	}
	if !called {
		t.Fatalf("expected emit service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Config.CurrentSupply != 250 || result.Event.Kind != core.EventEmitted {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("emergency pause", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			emergencyPauseFn: func(_ context.Context, req core.EmergencyPauseRequest) (core.MutationResult, error) {
				called = true
				if req.Caller != "guardian" || req.Reason != "ratio drift" {
					t.Fatalf("unexpected pause payload: %#v", req)
				}
				return core.MutationResult{}, nil
			},
		}
		cmd := NewEmergencyPauseCommand(svc)
		msg := EmergencyPauseMessage{Request: core.EmergencyPauseRequest{Caller: "guardian", Reason: "ratio drift"}}
		if err := cmd.Execute(context.Background(), msg); err != nil {
			t.Fatalf("execute pause: %v", err)
		}
		if !called {
			t.Fatalf("expected pause invocation")
		}
	})

	t.Run("rotate guardian", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			rotateGuardianFn: func(_ context.Context, req core.RotateGuardianRequest) (core.MutationResult, error) {
				called = true
				if req.NewGuardian != "guardian-2" {
					t.Fatalf("unexpected rotate payload: %#v", req)
				}
				return core.MutationResult{Config: core.IssuanceConfig{Guardian: req.NewGuardian}}, nil
			},
		}
		cmd := NewRotateGuardianCommand(svc)
		collector := gocmd.NewResult[core.MutationResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		msg := RotateGuardianMessage{Request: core.RotateGuardianRequest{Caller: "primary", NewGuardian: "guardian-2"}}
		if err := cmd.Execute(ctx, msg); err != nil {
			t.Fatalf("execute rotate: %v", err)
		}
		if !called {
			t.Fatalf("expected rotate invocation")
		}
		result, ok := collector.Load()
		if !ok || result.Config.Guardian != "guardian-2" {
			t.Fatalf("unexpected rotate result: %#v", result)
		}
	})

	t.Run("service error passes through", func(t *testing.T) {
		svc := stubMutatingService{
			burnFn: func(context.Context, core.BurnRequest) (core.MutationResult, error) {
				return core.MutationResult{}, core.UnauthorizedError("core: caller is not a holder")
			},
		}
		cmd := NewBurnForRedemptionCommand(svc)
		collector := gocmd.NewResult[core.MutationResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, BurnForRedemptionMessage{Request: core.BurnRequest{Caller: "mallory", Amount: 1}})
		if !core.IsKind(err, core.ErrorUnauthorized) {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
		if _, ok := collector.Load(); ok {
			t.Fatalf("expected no result on failure")
		}
	})
}

func TestMessages_Validate(t *testing.T) {
	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{name: "initialize ok", msg: InitializeMessage{Request: core.InitializeRequest{Caller: "primary", Guardian: "guardian", CollateralType: "USD", MaxSupply: 10}}},
		{name: "initialize missing guardian", msg: InitializeMessage{Request: core.InitializeRequest{Caller: "primary", CollateralType: "USD", MaxSupply: 10}}, wantErr: true},
		{name: "initialize zero cap", msg: InitializeMessage{Request: core.InitializeRequest{Caller: "primary", Guardian: "guardian", CollateralType: "USD"}}, wantErr: true},
		{name: "transfer missing to", msg: TransferMessage{Request: core.TransferRequest{Caller: "alice", From: "alice"}}, wantErr: true},
		{name: "transfer ok", msg: TransferMessage{Request: core.TransferRequest{Caller: "alice", From: "alice", To: "bob"}}},
		{name: "rotate missing new guardian", msg: RotateGuardianMessage{Request: core.RotateGuardianRequest{Caller: "primary"}}, wantErr: true},
		{name: "resume missing caller", msg: RecoveryResumeMessage{}, wantErr: true},
		{name: "guardian check", msg: GuardianCheckMessage{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGuardianCheckCommand_StoresReport(t *testing.T) {
	checker := stubGuardianChecker{
		checkFn: func(_ context.Context, configID string) (core.MonitorReport, error) {
			if configID != "reserve-a" {
				t.Fatalf("unexpected config id %q", configID)
			}
			return core.MonitorReport{ConfigID: configID, Healthy: false, Paused: true, Anomalies: []string{"ratio below floor"}}, nil
		},
	}
	cmd := NewGuardianCheckCommand(checker)
	collector := gocmd.NewResult[core.MonitorReport]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := cmd.Execute(ctx, GuardianCheckMessage{ConfigID: "reserve-a"}); err != nil {
		t.Fatalf("execute guardian check: %v", err)
	}
	report, ok := collector.Load()
	if !ok || !report.Paused || len(report.Anomalies) != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}
}

type stubMutatingService struct {
	initializeFn     func(context.Context, core.InitializeRequest) (core.MutationResult, error)
	emitFn           func(context.Context, core.EmitRequest) (core.MutationResult, error)
	transferFn       func(context.Context, core.TransferRequest) (core.MutationResult, error)
	burnFn           func(context.Context, core.BurnRequest) (core.MutationResult, error)
	updateBackingFn  func(context.Context, core.UpdateBackingRequest) (core.MutationResult, error)
	toggleStatusFn   func(context.Context, core.ToggleStatusRequest) (core.MutationResult, error)
	emergencyPauseFn func(context.Context, core.EmergencyPauseRequest) (core.MutationResult, error)
	recoveryResumeFn func(context.Context, core.RecoveryResumeRequest) (core.MutationResult, error)
	rotateGuardianFn func(context.Context, core.RotateGuardianRequest) (core.MutationResult, error)
}

func (s stubMutatingService) Initialize(ctx context.Context, req core.InitializeRequest) (core.MutationResult, error) {
	if s.initializeFn == nil {
		return core.MutationResult{}, nil
	}
	return s.initializeFn(ctx, req)
}

func (s stubMutatingService) Emit(ctx context.Context, req core.EmitRequest) (core.MutationResult, error) {
	if s.emitFn == nil {
		return core.MutationResult{}, nil
	}
	return s.emitFn(ctx, req)
}

func (s stubMutatingService) Transfer(ctx context.Context, req core.TransferRequest) (core.MutationResult, error) {
	if s.transferFn == nil {
		return core.MutationResult{}, nil
	}
	return s.transferFn(ctx, req)
}

func (s stubMutatingService) BurnForRedemption(ctx context.Context, req core.BurnRequest) (core.MutationResult, error) {
	if s.burnFn == nil {
		return core.MutationResult{}, nil
	}
	return s.burnFn(ctx, req)
}

func (s stubMutatingService) UpdateBacking(ctx context.Context, req core.UpdateBackingRequest) (core.MutationResult, error) {
	if s.updateBackingFn == nil {
		return core.MutationResult{}, nil
	}
	return s.updateBackingFn(ctx, req)
}

func (s stubMutatingService) ToggleStatus(ctx context.Context, req core.ToggleStatusRequest) (core.MutationResult, error) {
	if s.toggleStatusFn == nil {
		return core.MutationResult{}, nil
	}
	return s.toggleStatusFn(ctx, req)
}

func (s stubMutatingService) EmergencyPause(ctx context.Context, req core.EmergencyPauseRequest) (core.MutationResult, error) {
	if s.emergencyPauseFn == nil {
		return core.MutationResult{}, nil
	}
	return s.emergencyPauseFn(ctx, req)
}

func (s stubMutatingService) RecoveryResume(ctx context.Context, req core.RecoveryResumeRequest) (core.MutationResult, error) {
	if s.recoveryResumeFn == nil {
		return core.MutationResult{}, nil
	}
	return s.recoveryResumeFn(ctx, req)
}

func (s stubMutatingService) RotateGuardian(ctx context.Context, req core.RotateGuardianRequest) (core.MutationResult, error) {
	if s.rotateGuardianFn == nil {
		return core.MutationResult{}, nil
	}
	return s.rotateGuardianFn(ctx, req)
}

type stubGuardianChecker struct {
	checkFn func(context.Context, string) (core.MonitorReport, error)
}

func (s stubGuardianChecker) Check(ctx context.Context, configID string) (core.MonitorReport, error) {
	return s.checkFn(ctx, configID)
}

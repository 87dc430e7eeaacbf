package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-issuance/core"
)

func TestStatusQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubReadService{
		statusFn: func(_ context.Context, configID string) (core.SystemStatus, error) {
			called = true
			if configID != "reserve-a" {
				t.Fatalf("unexpected config id %q", configID)
			}
			return core.SystemStatus{ConfigID: configID, ReserveRatio: 120, State: core.StateActive}, nil
		},
	}

	status, err := NewStatusQuery(reader).Query(context.Background(), StatusMessage{ConfigID: "reserve-a"})
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if !called {
		t.Fatalf("expected status reader invocation")
	}
	if status.ReserveRatio != 120 || status.State != core.StateActive {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestAuditQueries_Delegate(t *testing.T) {
	reader := stubReadService{
		listFn: func(_ context.Context, filter core.AuditFilter) (core.AuditPage, error) {
			if filter.Limit != 2 || len(filter.Kinds) != 1 || filter.Kinds[0] != core.EventBurned {
				t.Fatalf("unexpected filter: %#v", filter)
			}
			return core.AuditPage{Items: []core.AuditEvent{{Kind: core.EventBurned}}, Total: 4}, nil
		},
		verifyFn: func(_ context.Context, configID string) (core.ChainReport, error) {
			return core.ChainReport{ConfigID: configID, Events: 4, Valid: true}, nil
		},
	}

	page, err := NewListAuditEventsQuery(reader).Query(context.Background(), ListAuditEventsMessage{
		Filter: core.AuditFilter{Kinds: []core.EventKind{core.EventBurned}, Limit: 2},
	})
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if page.Total != 4 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %#v", page)
	}

	report, err := NewVerifyAuditChainQuery(reader).Query(context.Background(), VerifyAuditChainMessage{ConfigID: "issuance"})
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	if !report.Valid || report.Events != 4 {
		t.Fatalf("unexpected chain report: %#v", report)
	}
}

func TestGetConfigQuery_PassesErrorsThrough(t *testing.T) {
	reader := stubReadService{
		getFn: func(_ context.Context, configID string) (core.IssuanceConfig, error) {
			return core.IssuanceConfig{}, core.ConfigNotFoundError(configID)
		},
	}
	_, err := NewGetConfigQuery(reader).Query(context.Background(), GetConfigMessage{ConfigID: "missing"})
	if !core.IsKind(err, core.ErrorConfigNotFound) {
		t.Fatalf("expected config not found, got %v", err)
	}
}

func TestBalanceQuery_DefaultsConfigID(t *testing.T) {
	reader := stubBalanceReader{balances: map[core.Identity]uint64{"alice": 40}}
	balance, err := NewBalanceQuery(&reader).Query(context.Background(), BalanceMessage{Holder: "alice"})
	if err != nil {
		t.Fatalf("query balance: %v", err)
	}
	if balance != 40 {
		t.Fatalf("expected balance 40, got %d", balance)
	}
	if reader.lastConfigID != core.DefaultConfigID {
		t.Fatalf("expected default config id, got %q", reader.lastConfigID)
	}
}

func TestListAuditEventsMessage_RejectsNegativePaging(t *testing.T) {
	if err := (ListAuditEventsMessage{Filter: core.AuditFilter{Limit: -1}}).Validate(); err == nil {
		t.Fatalf("expected negative limit to fail")
	}
	if err := (ListAuditEventsMessage{Filter: core.AuditFilter{Offset: -3}}).Validate(); err == nil {
		t.Fatalf("expected negative offset to fail")
	}
}

type stubReadService struct {
	getFn    func(context.Context, string) (core.IssuanceConfig, error)
	statusFn func(context.Context, string) (core.SystemStatus, error)
	listFn   func(context.Context, core.AuditFilter) (core.AuditPage, error)
	verifyFn func(context.Context, string) (core.ChainReport, error)
}

func (s stubReadService) GetConfig(ctx context.Context, configID string) (core.IssuanceConfig, error) {
	return s.getFn(ctx, configID)
}

func (s stubReadService) Status(ctx context.Context, configID string) (core.SystemStatus, error) {
	return s.statusFn(ctx, configID)
}

func (s stubReadService) ListAuditEvents(ctx context.Context, filter core.AuditFilter) (core.AuditPage, error) {
	return s.listFn(ctx, filter)
}

func (s stubReadService) VerifyAuditChain(ctx context.Context, configID string) (core.ChainReport, error) {
	return s.verifyFn(ctx, configID)
}

type stubBalanceReader struct {
	balances     map[core.Identity]uint64
	lastConfigID string
}

func (s *stubBalanceReader) BalanceOf(_ context.Context, configID string, holder core.Identity) (uint64, error) {
	s.lastConfigID = configID
	return s.balances[holder], nil
}

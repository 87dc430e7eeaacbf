package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

const (
	testPrimary  Identity = "authority"
	testGuardian Identity = "guardian"
	testHolder   Identity = "holder"
)

func testProof() ProofOfReserve {
	return DeriveDepositProof("salar-de-atacama", 12.5, 1700000000)
}

type testLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
	failures map[string]error
	calls    map[string]int
}

func newTestLedger() *testLedger {
	return &testLedger{
		balances: map[string]uint64{},
		failures: map[string]error{},
		calls:    map[string]int{},
	}
}

func (l *testLedger) failOn(primitive string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[primitive] = err
}

func (l *testLedger) key(configID string, holder Identity) string {
	return configID + "/" + string(holder)
}

func (l *testLedger) Mint(_ context.Context, configID string, to Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["mint"]++
	if err := l.failures["mint"]; err != nil {
		return err
	}
	l.balances[l.key(configID, to)] += amount
	return nil
}

func (l *testLedger) Burn(_ context.Context, configID string, from Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["burn"]++
	if err := l.failures["burn"]; err != nil {
		return err
	}
	key := l.key(configID, from)
	l.balances[key] = SaturatingSub(l.balances[key], amount)
	return nil
}

func (l *testLedger) Transfer(_ context.Context, configID string, from, to Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls["transfer"]++
	if err := l.failures["transfer"]; err != nil {
		return err
	}
	fromKey := l.key(configID, from)
	if l.balances[fromKey] < amount {
		return fmt.Errorf("test ledger: insufficient balance for %s", from)
	}
	l.balances[fromKey] -= amount
	l.balances[l.key(configID, to)] += amount
	return nil
}

func (l *testLedger) balance(configID string, holder Identity) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[l.key(configID, holder)]
}

func (l *testLedger) callCount(primitive string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[primitive]
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testFixture struct {
	svc    *Service
	ledger *testLedger
	store  *MemoryConfigStore
}

func newTestFixture(t *testing.T, cfg Config, opts ...Option) testFixture {
	t.Helper()
	ledger := newTestLedger()
	store := NewMemoryConfigStore()
	clock := newTestClock()
	base := []Option{
		WithTokenLedger(ledger),
		WithConfigStore(store),
		WithClock(clock.Now),
	}
	svc, err := NewService(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return testFixture{svc: svc, ledger: ledger, store: store}
}

func (f testFixture) initialize(t *testing.T, maxSupply, backing uint64) IssuanceConfig {
	t.Helper()
	result, err := f.svc.Initialize(context.Background(), InitializeRequest{
		Caller:         testPrimary,
		Guardian:       testGuardian,
		CollateralType: "lithium-atacama",
		InitialBacking: backing,
		MaxSupply:      maxSupply,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return result.Config
}

func (f testFixture) emit(t *testing.T, amount uint64) MutationResult {
	t.Helper()
	result, err := f.svc.Emit(context.Background(), EmitRequest{
		Caller: testPrimary,
		Amount: amount,
		Proof:  testProof(),
	})
	if err != nil {
		t.Fatalf("emit %d: %v", amount, err)
	}
	return result
}

func expectKind(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !IsKind(err, code) {
		t.Fatalf("expected %s error, got %q (%v)", code, Kind(err), err)
	}
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

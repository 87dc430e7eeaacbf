package adapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"
	issuance "github.com/goliatone/go-issuance"
	"github.com/goliatone/go-issuance/adapters/gocommand"
	"github.com/goliatone/go-issuance/adapters/gojob"
	"github.com/goliatone/go-issuance/adapters/gologger"
	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()
	logger := &compatLogger{}
	serviceLogger, monitorLogger, _ := gologger.ForComponents(&compatProvider{logger: logger}, nil)

	svc, err := issuance.NewService(issuance.Config{}, issuance.WithLogger(serviceLogger))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	monitor := &issuance.GuardianMonitor{Service: svc, Guardian: "guardian"}
	facade, err := issuance.NewFacade(svc, issuance.WithGuardianMonitor(monitor))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	subs, err := gocommand.RegisterFacade(commandAdapter, facade)
	if err != nil {
		t.Fatalf("register facade: %v", err)
	}
	defer subs.Unsubscribe()
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(issuancecommand.TypeGuardianCheck); !ok {
		t.Fatalf("expected guardian check command mirrored into go-job queue registry")
	}

	for _, msg := range []any{
		issuancecommand.InitializeMessage{Request: core.InitializeRequest{Caller: "treasury", Guardian: "guardian", CollateralType: "usd", InitialBacking: 1_000, MaxSupply: 1_000}},
		issuancecommand.EmitMessage{Request: core.EmitRequest{Caller: "treasury", Recipient: "alice", Amount: 600, Proof: core.DeriveDepositProof("vault", 3, 1_700_000_000)}},
		issuancecommand.UpdateBackingMessage{Request: core.UpdateBackingRequest{Caller: "treasury", NewBacking: 500}},
	} {
		if err := dispatchAny(ctx, msg); err != nil {
			t.Fatalf("dispatch %T: %v", msg, err)
		}
	}
	if logger.infos == 0 {
		t.Fatalf("expected service operations to log through the resolved logger")
	}

	q := &compatQueue{}
	if err := core.ScheduleGuardianCheck(ctx, gojob.NewEnqueuerAdapter(q), "", time.Now()); err != nil {
		t.Fatalf("schedule guardian check: %v", err)
	}
	w := &gojob.GuardianWorker{
		Dequeuer: gojob.NewDequeuerAdapter(q, gojob.RetryPolicy{MaxAttempts: 2, DeadLetterOnMax: true}),
		Handler:  monitor,
		Hook:     gojob.NewLoggingHook(monitorLogger),
	}
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("guardian worker: %v", err)
	}
	status, err := svc.Status(ctx, "")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != core.StatePausedEmergency {
		t.Fatalf("expected guardian worker to trip the emergency pause, got %s", status.State)
	}
	if !q.last.acked {
		t.Fatalf("expected guardian delivery ack")
	}
}

func dispatchAny(ctx context.Context, msg any) error {
	switch typed := msg.(type) {
	case issuancecommand.InitializeMessage:
		return gocommand.Dispatch(ctx, typed)
	case issuancecommand.EmitMessage:
		return gocommand.Dispatch(ctx, typed)
	case issuancecommand.UpdateBackingMessage:
		return gocommand.Dispatch(ctx, typed)
	default:
		return nil
	}
}

type compatQueue struct {
	pending []*job.ExecutionMessage
	last    *compatDelivery
}

func (q *compatQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.pending = append(q.pending, msg)
	return nil
}

func (q *compatQueue) Dequeue(context.Context) (queue.Delivery, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	q.last = &compatDelivery{msg: q.pending[0]}
	q.pending = q.pending[1:]
	return q.last, nil
}

type compatDelivery struct {
	msg   *job.ExecutionMessage
	acked bool
}

func (d *compatDelivery) Message() *job.ExecutionMessage { return d.msg }

func (d *compatDelivery) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *compatDelivery) Nack(context.Context, queue.NackOptions) error { return nil }

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct {
	infos int
}

func (*compatLogger) Trace(string, ...any)                      {}
func (*compatLogger) Debug(string, ...any)                      {}
func (l *compatLogger) Info(string, ...any)                     { l.infos++ }
func (*compatLogger) Warn(string, ...any)                       {}
func (*compatLogger) Error(string, ...any)                      {}
func (*compatLogger) Fatal(string, ...any)                      {}
func (l *compatLogger) WithContext(context.Context) glog.Logger { return l }

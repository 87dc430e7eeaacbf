package gojob

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-issuance/core"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

// DeliveryHandler settles one queued delivery. core.GuardianMonitor
// implements it.
type DeliveryHandler interface {
	HandleDelivery(ctx context.Context, delivery core.JobDelivery) error
}

// GuardianWorker drains guardian-check deliveries and reports each run to a
// go-job worker hook.
type GuardianWorker struct {
	Dequeuer     core.JobDequeuer
	Handler      DeliveryHandler
	Hook         worker.Hook
	PollInterval time.Duration
	Now          func() time.Time
}

// RunOnce dequeues and handles a single delivery. The handler error, if any,
// is returned after the hook has seen it.
func (w *GuardianWorker) RunOnce(ctx context.Context) error {
	if err := w.validate(); err != nil {
		return err
	}
	_, err := w.step(ctx)
	return err
}

// Run handles deliveries until ctx is done. Handler failures are already
// settled on the delivery; an empty queue or a dequeue error waits
// PollInterval before the next attempt.
func (w *GuardianWorker) Run(ctx context.Context) error {
	if err := w.validate(); err != nil {
		return err
	}
	interval := time.Second
	if w.PollInterval > 0 {
		interval = w.PollInterval
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dequeued, _ := w.step(ctx); dequeued {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (w *GuardianWorker) validate() error {
	if w == nil || w.Dequeuer == nil || w.Handler == nil {
		return fmt.Errorf("gojob: guardian worker requires a dequeuer and a handler")
	}
	return nil
}

func (w *GuardianWorker) step(ctx context.Context) (bool, error) {
	delivery, err := w.Dequeuer.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if delivery == nil {
		return false, nil
	}

	startedAt := w.now()
	event := worker.Event{Message: ToExecutionMessage(delivery.Message()), Attempt: 1, StartedAt: startedAt}
	if w.Hook != nil {
		w.Hook.OnStart(ctx, event)
	}
	err = w.Handler.HandleDelivery(ctx, delivery)
	event.Duration = w.now().Sub(startedAt)
	event.Err = err
	if w.Hook != nil {
		if err != nil {
			w.Hook.OnFailure(ctx, event)
		} else {
			w.Hook.OnSuccess(ctx, event)
		}
	}
	return true, err
}

func (w *GuardianWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

// LoggingHook writes worker lifecycle events to a glog logger.
type LoggingHook struct {
	Logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{Logger: glog.Ensure(logger)}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	h.logger().Debug("guardian job started", eventFields(event)...)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.logger().Info("guardian job completed", eventFields(event)...)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	h.logger().Error("guardian job failed", eventFields(event)...)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	h.logger().Warn("guardian job retry scheduled", eventFields(event)...)
}

func (h *LoggingHook) logger() glog.Logger {
	if h == nil {
		return glog.Nop()
	}
	return glog.Ensure(h.Logger)
}

func eventFields(event worker.Event) []any {
	fields := []any{"attempt", event.Attempt, "duration_ms", event.Duration.Milliseconds()}
	if event.Message != nil {
		fields = append(fields, "job_id", event.Message.JobID, "idempotency_key", event.Message.IdempotencyKey)
		if configID, ok := event.Message.Parameters["config_id"].(string); ok {
			fields = append(fields, "config_id", configID)
		}
	}
	if event.Delay > 0 {
		fields = append(fields, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
	}
	return fields
}

var _ worker.Hook = (*LoggingHook)(nil)

package core

import (
	"context"
	"time"
)

// mutationPlan is the outcome of validating one operation against the
// current record. effect runs last inside the store's unit of work.
type mutationPlan struct {
	next   IssuanceConfig
	event  AuditEvent
	effect func(ctx context.Context) error
}

type planFunc func(ctx context.Context, current IssuanceConfig) (mutationPlan, error)

// mutate serializes one operation on a record: lock, load, plan, seal the
// audit event, run the ledger effect, persist.
func (s *Service) mutate(ctx context.Context, configID string, plan planFunc) (MutationResult, error) {
	handle, err := s.acquireRecord(ctx, configID)
	if err != nil {
		return MutationResult{}, err
	}
	defer func() {
		_ = handle.Unlock(context.WithoutCancel(ctx))
	}()

	next, event, err := s.store.Mutate(ctx, configID, func(ctx context.Context, current IssuanceConfig) (IssuanceConfig, AuditEvent, error) {
		planned, planErr := plan(ctx, current.clone())
		if planErr != nil {
			return IssuanceConfig{}, AuditEvent{}, planErr
		}
		sealedCfg, sealedEvent, sealErr := s.seal(current, planned.next, planned.event)
		if sealErr != nil {
			return IssuanceConfig{}, AuditEvent{}, sealErr
		}
		if planned.effect != nil {
			if effectErr := planned.effect(ctx); effectErr != nil {
				return IssuanceConfig{}, AuditEvent{}, effectErr
			}
		}
		return sealedCfg, sealedEvent, nil
	})
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Config: next, Event: event}, nil
}

func (s *Service) acquireRecord(ctx context.Context, configID string) (LockHandle, error) {
	lockCtx := ctx
	if timeout := s.config.Lock.WaitTimeoutMS; timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
		defer cancel()
	}
	return s.recordLocker.Acquire(lockCtx, configID)
}

// seal stamps the derived state onto the event, links it to the record's
// chain head and advances the record's sequence.
func (s *Service) seal(current, next IssuanceConfig, event AuditEvent) (IssuanceConfig, AuditEvent, error) {
	now := s.now().UTC().Truncate(EventTimePrecision)

	event.ID = s.newID()
	event.ConfigID = current.ID
	event.Sequence = current.Sequence + 1
	event.Supply = next.CurrentSupply
	event.ReserveRatio = next.ReserveRatio
	event.Active = next.Active
	event.PauseReason = next.PauseReason
	event.CreatedAt = now

	sealed, err := SealEvent(current.HeadCID, event)
	if err != nil {
		return IssuanceConfig{}, AuditEvent{}, err
	}

	next.Sequence = sealed.Sequence
	next.HeadCID = sealed.CID
	next.UpdatedAt = now
	return next, sealed, nil
}

func (s *Service) ledgerEffect(primitive string, call func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := call(ctx); err != nil {
			return LedgerFailureError(err, primitive)
		}
		return nil
	}
}

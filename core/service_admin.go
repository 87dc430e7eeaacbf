package core

import (
	"context"
	"strings"
	"time"
)

// UpdateBacking replaces the declared collateral value and recomputes the
// reserve ratio from the current supply.
func (s *Service) UpdateBacking(ctx context.Context, req UpdateBackingRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	fields := operationFields(configID, req.Caller, RolePrimary)
	fields["new_backing"] = req.NewBacking
	defer func() {
		s.observeOperation(ctx, startedAt, OperationUpdateBacking, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(_ context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequirePrimary(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		if req.NewBacking == 0 {
			return mutationPlan{}, InvalidAmountError("core: backing value must be greater than zero")
		}
		ratio, err := ComputeReserveRatio(req.NewBacking, current.CurrentSupply)
		if err != nil {
			return mutationPlan{}, err
		}
		next := current
		next.BackingValue = req.NewBacking
		next.ReserveRatio = ratio
		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:       EventBackingUpdated,
				Actor:      req.Caller,
				OldBacking: current.BackingValue,
				NewBacking: req.NewBacking,
				Metadata:   copyAnyMap(req.Metadata),
			},
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	fields["reserve_ratio"] = result.Config.ReserveRatio
	return result, nil
}

// ToggleStatus is the primary authority's administrative pause switch.
func (s *Service) ToggleStatus(ctx context.Context, req ToggleStatusRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	fields := operationFields(configID, req.Caller, RolePrimary)
	fields["active"] = req.Active
	defer func() {
		s.observeOperation(ctx, startedAt, OperationToggleStatus, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(_ context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequirePrimary(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		state, err := NextLifecycleState(OperationToggleStatus, current.State(), req.Active, s.config.ResumePolicy())
		if err != nil {
			return mutationPlan{}, err
		}
		next := current
		applyLifecycleState(&next, state, "")
		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:     EventStatusChanged,
				Actor:    req.Caller,
				Metadata: lifecycleMetadata(req.Metadata, current.State(), state),
			},
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return result, nil
}

// EmergencyPause is the guardian's circuit breaker.
func (s *Service) EmergencyPause(ctx context.Context, req EmergencyPauseRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = DefaultEmergencyReason
	}
	fields := operationFields(configID, req.Caller, RoleGuardian)
	fields["reason"] = reason
	defer func() {
		s.observeOperation(ctx, startedAt, OperationEmergencyPause, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(_ context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequireGuardian(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		state, err := NextLifecycleState(OperationEmergencyPause, current.State(), false, s.config.ResumePolicy())
		if err != nil {
			return mutationPlan{}, err
		}
		next := current
		applyLifecycleState(&next, state, reason)
		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:     EventEmergencyPaused,
				Actor:    req.Caller,
				Reason:   reason,
				Metadata: lifecycleMetadata(req.Metadata, current.State(), state),
			},
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return result, nil
}

// RecoveryResume lifts an emergency pause.
func (s *Service) RecoveryResume(ctx context.Context, req RecoveryResumeRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	fields := operationFields(configID, req.Caller, RoleGuardian)
	defer func() {
		s.observeOperation(ctx, startedAt, OperationRecoveryResume, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(_ context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequireGuardian(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		state, err := NextLifecycleState(OperationRecoveryResume, current.State(), true, s.config.ResumePolicy())
		if err != nil {
			return mutationPlan{}, err
		}
		next := current
		applyLifecycleState(&next, state, "")
		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:     EventRecoveryResumed,
				Actor:    req.Caller,
				Reason:   current.PauseNote,
				Metadata: lifecycleMetadata(req.Metadata, current.State(), state),
			},
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return result, nil
}

// RotateGuardian hands the guardian role to a new identity.
func (s *Service) RotateGuardian(ctx context.Context, req RotateGuardianRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	fields := operationFields(configID, req.Caller, RolePrimary)
	fields["new_guardian"] = req.NewGuardian.String()
	defer func() {
		s.observeOperation(ctx, startedAt, OperationRotateGuardian, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(_ context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequirePrimary(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		if req.NewGuardian.IsZero() {
			return mutationPlan{}, BadInputError("core: new guardian is required")
		}
		next := current
		next.Guardian = req.NewGuardian
		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:        EventGuardianRotated,
				Actor:       req.Caller,
				OldGuardian: current.Guardian,
				NewGuardian: req.NewGuardian,
				Metadata:    copyAnyMap(req.Metadata),
			},
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return result, nil
}

func lifecycleMetadata(base map[string]any, from, to LifecycleState) map[string]any {
	metadata := copyAnyMap(base)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["from_state"] = string(from)
	metadata["to_state"] = string(to)
	return metadata
}

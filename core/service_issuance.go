package core

import (
	"context"
	"strings"
	"time"
)

// Initialize creates the issuance record in the Active state with no supply.
func (s *Service) Initialize(ctx context.Context, req InitializeRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	primary := req.PrimaryAuthority
	if primary.IsZero() {
		primary = req.Caller
	}
	fields := operationFields(configID, req.Caller, RolePrimary)
	fields["max_supply"] = req.MaxSupply
	fields["backing_value"] = req.InitialBacking
	defer func() {
		s.observeOperation(ctx, startedAt, OperationInitialize, err, fields)
	}()

	switch {
	case primary.IsZero():
		err = s.mapError(BadInputError("core: primary authority is required"))
		return MutationResult{}, err
	case req.Guardian.IsZero():
		err = s.mapError(BadInputError("core: guardian is required"))
		return MutationResult{}, err
	case !req.Caller.IsZero() && req.Caller != primary:
		err = s.mapError(UnauthorizedError("core: caller %q cannot initialize a record for %q", req.Caller, primary))
		return MutationResult{}, err
	case req.MaxSupply == 0:
		err = s.mapError(InvalidAmountError("core: max supply must be greater than zero"))
		return MutationResult{}, err
	}

	handle, err := s.acquireRecord(ctx, configID)
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	defer func() {
		_ = handle.Unlock(context.WithoutCancel(ctx))
	}()

	now := s.now().UTC().Truncate(EventTimePrecision)
	seed := IssuanceConfig{ID: configID}
	cfg := IssuanceConfig{
		ID:               configID,
		PrimaryAuthority: primary,
		Guardian:         req.Guardian,
		CollateralType:   strings.TrimSpace(req.CollateralType),
		BackingValue:     req.InitialBacking,
		MaxSupply:        req.MaxSupply,
		CurrentSupply:    0,
		ReserveRatio:     FullyBackedRatio,
		Active:           true,
		CreatedAt:        now,
	}
	metadata := copyAnyMap(req.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["max_supply"] = req.MaxSupply
	if cfg.CollateralType != "" {
		metadata["collateral_type"] = cfg.CollateralType
	}
	cfg, event, err := s.seal(seed, cfg, AuditEvent{
		Kind:        EventInitialized,
		Actor:       primary,
		NewBacking:  req.InitialBacking,
		NewGuardian: req.Guardian,
		Metadata:    metadata,
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	created, err := s.store.Create(ctx, cfg, event)
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return MutationResult{Config: created, Event: event}, nil
}

// Emit mints new units against the declared backing once the guardian's
// gate approves the proof of reserve.
func (s *Service) Emit(ctx context.Context, req EmitRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	recipient := req.Recipient
	if recipient.IsZero() {
		recipient = req.Caller
	}
	fields := operationFields(configID, req.Caller, RolePrimary)
	fields["amount"] = req.Amount
	fields["recipient"] = recipient.String()
	fields["proof"] = req.Proof.Short()
	defer func() {
		s.observeOperation(ctx, startedAt, OperationEmit, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(ctx context.Context, current IssuanceConfig) (mutationPlan, error) {
		if err := RequirePrimary(req.Caller, current); err != nil {
			return mutationPlan{}, err
		}
		if req.Amount == 0 {
			return mutationPlan{}, InvalidAmountError("core: emission amount must be greater than zero")
		}
		if !current.Active {
			return mutationPlan{}, SystemInactiveError("core: issuance is paused (%s)", current.PauseReason)
		}
		supply, err := CheckedAdd(current.CurrentSupply, req.Amount)
		if err != nil {
			return mutationPlan{}, err
		}
		if supply > current.MaxSupply {
			return mutationPlan{}, MaxSupplyExceededError("core: emitting %d would raise supply to %d above max supply %d", req.Amount, supply, current.MaxSupply)
		}
		required, err := BackingRequiredFor(req.Amount, current.BackingValue, current.MaxSupply)
		if err != nil {
			return mutationPlan{}, err
		}
		if required > current.BackingValue {
			return mutationPlan{}, InsufficientBackingError("core: emission requires backing %d but only %d is declared", required, current.BackingValue)
		}
		verdict, err := requireApproval(ctx, s.proofValidator, ProofRequest{
			ConfigID:    current.ID,
			Guardian:    current.Guardian,
			Proof:       req.Proof,
			Amount:      req.Amount,
			Attestation: req.Attestation,
		})
		if err != nil {
			return mutationPlan{}, err
		}
		next := current
		next.CurrentSupply = supply
		next.ReserveRatio = SaturatingReserveRatio(current.BackingValue, supply)
		issuedAt := s.now().UTC().Truncate(EventTimePrecision)
		next.LastIssuanceAt = &issuedAt

		metadata := copyAnyMap(req.Metadata)
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["validator"] = verdict.Validator
		metadata["backing_required"] = required

		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:     EventEmitted,
				Actor:    req.Caller,
				Amount:   req.Amount,
				To:       recipient,
				Proof:    req.Proof.String(),
				Metadata: metadata,
			},
			effect: s.ledgerEffect("mint", func(ctx context.Context) error {
				return s.ledger.Mint(ctx, current.ID, recipient, req.Amount)
			}),
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	fields["supply"] = result.Config.CurrentSupply
	fields["reserve_ratio"] = result.Config.ReserveRatio
	return result, nil
}

// Transfer moves units between holders. Supply and backing are untouched and
// the lifecycle state does not block it.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	from := req.From
	if from.IsZero() {
		from = req.Caller
	}
	fields := operationFields(configID, req.Caller, RoleHolder)
	fields["amount"] = req.Amount
	fields["from"] = from.String()
	fields["to"] = req.To.String()
	defer func() {
		s.observeOperation(ctx, startedAt, OperationTransfer, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(ctx context.Context, current IssuanceConfig) (mutationPlan, error) {
		if req.Amount == 0 {
			return mutationPlan{}, InvalidAmountError("core: transfer amount must be greater than zero")
		}
		if req.To.IsZero() {
			return mutationPlan{}, BadInputError("core: transfer recipient is required")
		}
		if err := RequireHolder(req.Caller, from); err != nil {
			return mutationPlan{}, err
		}
		return mutationPlan{
			next: current,
			event: AuditEvent{
				Kind:     EventTransferred,
				Actor:    req.Caller,
				Amount:   req.Amount,
				From:     from,
				To:       req.To,
				Metadata: copyAnyMap(req.Metadata),
			},
			effect: s.ledgerEffect("transfer", func(ctx context.Context) error {
				return s.ledger.Transfer(ctx, current.ID, from, req.To, req.Amount)
			}),
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	return result, nil
}

// BurnForRedemption destroys the caller's units. Supply saturates at zero.
func (s *Service) BurnForRedemption(ctx context.Context, req BurnRequest) (result MutationResult, err error) {
	startedAt := time.Now().UTC()
	configID := s.resolveConfigID(req.ConfigID)
	fields := operationFields(configID, req.Caller, RoleHolder)
	fields["amount"] = req.Amount
	defer func() {
		s.observeOperation(ctx, startedAt, OperationBurn, err, fields)
	}()

	result, err = s.mutate(ctx, configID, func(ctx context.Context, current IssuanceConfig) (mutationPlan, error) {
		if req.Amount == 0 {
			return mutationPlan{}, InvalidAmountError("core: burn amount must be greater than zero")
		}
		if req.Caller.IsZero() {
			return mutationPlan{}, UnauthorizedError("core: burn requires an authenticated holder")
		}
		if s.config.Lifecycle.BlockRedemptionOnEmergency && current.State() == StatePausedEmergency {
			return mutationPlan{}, SystemInactiveError("core: redemption is blocked during an emergency pause")
		}
		supply := SaturatingSub(current.CurrentSupply, req.Amount)
		next := current
		next.CurrentSupply = supply
		// Redemption never fails on ratio arithmetic.
		next.ReserveRatio = SaturatingReserveRatio(current.BackingValue, supply)

		return mutationPlan{
			next: next,
			event: AuditEvent{
				Kind:     EventBurned,
				Actor:    req.Caller,
				Amount:   req.Amount,
				From:     req.Caller,
				Reason:   strings.TrimSpace(req.Reference),
				Metadata: copyAnyMap(req.Metadata),
			},
			effect: s.ledgerEffect("burn", func(ctx context.Context) error {
				return s.ledger.Burn(ctx, current.ID, req.Caller, req.Amount)
			}),
		}, nil
	})
	if err != nil {
		err = s.mapError(err)
		return MutationResult{}, err
	}
	fields["supply"] = result.Config.CurrentSupply
	return result, nil
}

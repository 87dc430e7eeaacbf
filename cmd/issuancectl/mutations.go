package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
	"github.com/spf13/cobra"
)

type validatable interface {
	Validate() error
}

// execute validates msg, runs it through the command handler and returns the
// stored mutation result.
func execute[T validatable](ctx context.Context, cmd gocmd.Commander[T], msg T) (core.MutationResult, error) {
	if err := msg.Validate(); err != nil {
		return core.MutationResult{}, err
	}
	collector := gocmd.NewResult[core.MutationResult]()
	ctx = gocmd.ContextWithResult(ctx, collector)
	if err := cmd.Execute(ctx, msg); err != nil {
		return core.MutationResult{}, err
	}
	result, ok := collector.Load()
	if !ok {
		return core.MutationResult{}, fmt.Errorf("issuancectl: command stored no result")
	}
	return result, nil
}

func (a *app) newInitCmd() *cobra.Command {
	var (
		primary    string
		guardian   string
		collateral string
		backing    uint64
		maxSupply  uint64
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an issuance record",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			if strings.TrimSpace(primary) == "" {
				primary = caller.String()
			}
			result, err := execute[issuancecommand.InitializeMessage](c.Context(), a.facade.Commands().Initialize, issuancecommand.InitializeMessage{Request: core.InitializeRequest{
				ConfigID:         a.configID,
				Caller:           caller,
				PrimaryAuthority: core.Identity(primary),
				Guardian:         core.Identity(guardian),
				CollateralType:   collateral,
				InitialBacking:   backing,
				MaxSupply:        maxSupply,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().StringVar(&primary, "primary", "", "primary authority (defaults to --as)")
	cmd.Flags().StringVar(&guardian, "guardian", "", "guardian identity")
	cmd.Flags().StringVar(&collateral, "collateral", "", "collateral type, e.g. XAU")
	cmd.Flags().Uint64Var(&backing, "backing", 0, "initial backing value")
	cmd.Flags().Uint64Var(&maxSupply, "max-supply", 0, "supply cap")
	return cmd
}

func (a *app) newEmitCmd() *cobra.Command {
	var (
		recipient   string
		amount      uint64
		proofHex    string
		location    string
		weight      float64
		timestamp   int64
		attestation string
	)
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Issue new tokens against a proof of reserve",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			proof, err := resolveProof(proofHex, location, weight, timestamp)
			if err != nil {
				return err
			}
			var signature []byte
			if strings.TrimSpace(attestation) != "" {
				signature, err = base64.StdEncoding.DecodeString(strings.TrimSpace(attestation))
				if err != nil {
					return fmt.Errorf("issuancectl: attestation must be base64: %w", err)
				}
			}
			result, err := execute[issuancecommand.EmitMessage](c.Context(), a.facade.Commands().Emit, issuancecommand.EmitMessage{Request: core.EmitRequest{
				ConfigID:    a.configID,
				Caller:      caller,
				Recipient:   core.Identity(recipient),
				Amount:      amount,
				Proof:       proof,
				Attestation: signature,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().StringVar(&recipient, "to", "", "recipient identity")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to emit")
	cmd.Flags().StringVar(&proofHex, "proof", "", "32-byte proof of reserve as hex")
	cmd.Flags().StringVar(&location, "deposit-location", "", "derive the proof from a deposit location")
	cmd.Flags().Float64Var(&weight, "deposit-weight", 0, "deposit weight used for the derived proof")
	cmd.Flags().Int64Var(&timestamp, "deposit-timestamp", 0, "deposit unix timestamp (defaults to now)")
	cmd.Flags().StringVar(&attestation, "attestation", "", "guardian attestation signature as base64")
	return cmd
}

func resolveProof(proofHex, location string, weight float64, timestamp int64) (core.ProofOfReserve, error) {
	if strings.TrimSpace(proofHex) != "" {
		return core.ParseProof(proofHex)
	}
	if strings.TrimSpace(location) == "" {
		return core.ProofOfReserve{}, fmt.Errorf("issuancectl: --proof or --deposit-location is required")
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	return core.DeriveDepositProof(location, weight, timestamp), nil
}

func (a *app) newTransferCmd() *cobra.Command {
	var (
		from   string
		to     string
		amount uint64
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move tokens between holders",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			if strings.TrimSpace(from) == "" {
				from = caller.String()
			}
			result, err := execute[issuancecommand.TransferMessage](c.Context(), a.facade.Commands().Transfer, issuancecommand.TransferMessage{Request: core.TransferRequest{
				ConfigID: a.configID,
				Caller:   caller,
				From:     core.Identity(from),
				To:       core.Identity(to),
				Amount:   amount,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source holder (defaults to --as)")
	cmd.Flags().StringVar(&to, "to", "", "destination holder")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to move")
	return cmd
}

func (a *app) newBurnCmd() *cobra.Command {
	var (
		amount    uint64
		reference string
	)
	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Burn the caller's tokens for redemption",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.BurnForRedemptionMessage](c.Context(), a.facade.Commands().BurnForRedemption, issuancecommand.BurnForRedemptionMessage{Request: core.BurnRequest{
				ConfigID:  a.configID,
				Caller:    caller,
				Amount:    amount,
				Reference: reference,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to burn")
	cmd.Flags().StringVar(&reference, "reference", "", "redemption reference")
	return cmd
}

func (a *app) newBackingCmd() *cobra.Command {
	var value uint64
	cmd := &cobra.Command{
		Use:   "backing",
		Short: "Set the collateral backing value",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.UpdateBackingMessage](c.Context(), a.facade.Commands().UpdateBacking, issuancecommand.UpdateBackingMessage{Request: core.UpdateBackingRequest{
				ConfigID:   a.configID,
				Caller:     caller,
				NewBacking: value,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().Uint64Var(&value, "value", 0, "new backing value")
	return cmd
}

func (a *app) newToggleCmd() *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Pause or resume issuance administratively",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.ToggleStatusMessage](c.Context(), a.facade.Commands().ToggleStatus, issuancecommand.ToggleStatusMessage{Request: core.ToggleStatusRequest{
				ConfigID: a.configID,
				Caller:   caller,
				Active:   active,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "target active flag")
	return cmd
}

func (a *app) newPauseCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Trip the guardian emergency circuit breaker",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.EmergencyPauseMessage](c.Context(), a.facade.Commands().EmergencyPause, issuancecommand.EmergencyPauseMessage{Request: core.EmergencyPauseRequest{
				ConfigID: a.configID,
				Caller:   caller,
				Reason:   reason,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "pause note recorded in the audit chain")
	return cmd
}

func (a *app) newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume issuance after an emergency pause",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.RecoveryResumeMessage](c.Context(), a.facade.Commands().RecoveryResume, issuancecommand.RecoveryResumeMessage{Request: core.RecoveryResumeRequest{
				ConfigID: a.configID,
				Caller:   caller,
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
}

func (a *app) newRotateGuardianCmd() *cobra.Command {
	var next string
	cmd := &cobra.Command{
		Use:   "rotate-guardian",
		Short: "Hand the guardian role to a new identity",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			caller, err := a.callerIdentity()
			if err != nil {
				return err
			}
			result, err := execute[issuancecommand.RotateGuardianMessage](c.Context(), a.facade.Commands().RotateGuardian, issuancecommand.RotateGuardianMessage{Request: core.RotateGuardianRequest{
				ConfigID:    a.configID,
				Caller:      caller,
				NewGuardian: core.Identity(next),
			}})
			if err != nil {
				return err
			}
			return a.printMutation(result)
		},
	}
	cmd.Flags().StringVar(&next, "new-guardian", "", "identity taking over the guardian role")
	return cmd
}

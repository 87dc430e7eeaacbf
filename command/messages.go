package command

import (
	"strings"

	"github.com/goliatone/go-issuance/core"
)

const (
	TypeInitialize        = "issuance.command.initialize"
	TypeEmit              = "issuance.command.emit"
	TypeTransfer          = "issuance.command.transfer"
	TypeBurnForRedemption = "issuance.command.burn_for_redemption"
	TypeUpdateBacking     = "issuance.command.backing.update"
	TypeToggleStatus      = "issuance.command.status.toggle"
	TypeEmergencyPause    = "issuance.command.emergency.pause"
	TypeRecoveryResume    = "issuance.command.emergency.resume"
	TypeRotateGuardian    = "issuance.command.guardian.rotate"
	TypeGuardianCheck     = "issuance.command.guardian.check"
)

type InitializeMessage struct {
	Request core.InitializeRequest
}

func (InitializeMessage) Type() string { return TypeInitialize }

func (m InitializeMessage) Validate() error {
	if err := requireIdentity("caller", m.Request.Caller); err != nil {
		return err
	}
	if err := requireIdentity("guardian", m.Request.Guardian); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.CollateralType) == "" {
		return commandValidationError("collateral_type", "collateral type is required")
	}
	if m.Request.MaxSupply == 0 {
		return commandValidationError("max_supply", "max supply must be positive")
	}
	return nil
}

type EmitMessage struct {
	Request core.EmitRequest
}

func (EmitMessage) Type() string { return TypeEmit }

func (m EmitMessage) Validate() error {
	if err := requireIdentity("caller", m.Request.Caller); err != nil {
		return err
	}
	return requireIdentity("recipient", m.Request.Recipient)
}

type TransferMessage struct {
	Request core.TransferRequest
}

func (TransferMessage) Type() string { return TypeTransfer }

func (m TransferMessage) Validate() error {
	if err := requireIdentity("caller", m.Request.Caller); err != nil {
		return err
	}
	if err := requireIdentity("from", m.Request.From); err != nil {
		return err
	}
	return requireIdentity("to", m.Request.To)
}

type BurnForRedemptionMessage struct {
	Request core.BurnRequest
}

func (BurnForRedemptionMessage) Type() string { return TypeBurnForRedemption }

func (m BurnForRedemptionMessage) Validate() error {
	return requireIdentity("caller", m.Request.Caller)
}

type UpdateBackingMessage struct {
	Request core.UpdateBackingRequest
}

func (UpdateBackingMessage) Type() string { return TypeUpdateBacking }

func (m UpdateBackingMessage) Validate() error {
	return requireIdentity("caller", m.Request.Caller)
}

type ToggleStatusMessage struct {
	Request core.ToggleStatusRequest
}

func (ToggleStatusMessage) Type() string { return TypeToggleStatus }

func (m ToggleStatusMessage) Validate() error {
	return requireIdentity("caller", m.Request.Caller)
}

type EmergencyPauseMessage struct {
	Request core.EmergencyPauseRequest
}

func (EmergencyPauseMessage) Type() string { return TypeEmergencyPause }

func (m EmergencyPauseMessage) Validate() error {
	return requireIdentity("caller", m.Request.Caller)
}

type RecoveryResumeMessage struct {
	Request core.RecoveryResumeRequest
}

func (RecoveryResumeMessage) Type() string { return TypeRecoveryResume }

func (m RecoveryResumeMessage) Validate() error {
	return requireIdentity("caller", m.Request.Caller)
}

type RotateGuardianMessage struct {
	Request core.RotateGuardianRequest
}

func (RotateGuardianMessage) Type() string { return TypeRotateGuardian }

func (m RotateGuardianMessage) Validate() error {
	if err := requireIdentity("caller", m.Request.Caller); err != nil {
		return err
	}
	return requireIdentity("new_guardian", m.Request.NewGuardian)
}

// GuardianCheckMessage asks the guardian monitor to inspect one record.
// An empty ConfigID targets the default record.
type GuardianCheckMessage struct {
	ConfigID string
}

func (GuardianCheckMessage) Type() string { return TypeGuardianCheck }

func (GuardianCheckMessage) Validate() error { return nil }

func requireIdentity(field string, id core.Identity) error {
	if id.IsZero() {
		return commandValidationError(field, field+" is required")
	}
	return nil
}

package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-issuance/core"
)

type MutatingService interface {
	Initialize(ctx context.Context, req core.InitializeRequest) (core.MutationResult, error)
	Emit(ctx context.Context, req core.EmitRequest) (core.MutationResult, error)
	Transfer(ctx context.Context, req core.TransferRequest) (core.MutationResult, error)
	BurnForRedemption(ctx context.Context, req core.BurnRequest) (core.MutationResult, error)
	UpdateBacking(ctx context.Context, req core.UpdateBackingRequest) (core.MutationResult, error)
	ToggleStatus(ctx context.Context, req core.ToggleStatusRequest) (core.MutationResult, error)
	EmergencyPause(ctx context.Context, req core.EmergencyPauseRequest) (core.MutationResult, error)
	RecoveryResume(ctx context.Context, req core.RecoveryResumeRequest) (core.MutationResult, error)
	RotateGuardian(ctx context.Context, req core.RotateGuardianRequest) (core.MutationResult, error)
}

type GuardianChecker interface {
	Check(ctx context.Context, configID string) (core.MonitorReport, error)
}

type InitializeCommand struct {
	service MutatingService
}

func NewInitializeCommand(service MutatingService) *InitializeCommand {
	return &InitializeCommand{service: service}
}

func (c *InitializeCommand) Execute(ctx context.Context, msg InitializeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: initialize service is required")
	}
	out, err := c.service.Initialize(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type EmitCommand struct {
	service MutatingService
}

func NewEmitCommand(service MutatingService) *EmitCommand {
	return &EmitCommand{service: service}
}

func (c *EmitCommand) Execute(ctx context.Context, msg EmitMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: emit service is required")
	}
	out, err := c.service.Emit(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type TransferCommand struct {
	service MutatingService
}

func NewTransferCommand(service MutatingService) *TransferCommand {
	return &TransferCommand{service: service}
}

func (c *TransferCommand) Execute(ctx context.Context, msg TransferMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: transfer service is required")
	}
	out, err := c.service.Transfer(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type BurnForRedemptionCommand struct {
	service MutatingService
}

func NewBurnForRedemptionCommand(service MutatingService) *BurnForRedemptionCommand {
	return &BurnForRedemptionCommand{service: service}
}

func (c *BurnForRedemptionCommand) Execute(ctx context.Context, msg BurnForRedemptionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: burn for redemption service is required")
	}
	out, err := c.service.BurnForRedemption(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateBackingCommand struct {
	service MutatingService
}

func NewUpdateBackingCommand(service MutatingService) *UpdateBackingCommand {
	return &UpdateBackingCommand{service: service}
}

func (c *UpdateBackingCommand) Execute(ctx context.Context, msg UpdateBackingMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: update backing service is required")
	}
	out, err := c.service.UpdateBacking(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ToggleStatusCommand struct {
	service MutatingService
}

func NewToggleStatusCommand(service MutatingService) *ToggleStatusCommand {
	return &ToggleStatusCommand{service: service}
}

func (c *ToggleStatusCommand) Execute(ctx context.Context, msg ToggleStatusMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: toggle status service is required")
	}
	out, err := c.service.ToggleStatus(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type EmergencyPauseCommand struct {
	service MutatingService
}

func NewEmergencyPauseCommand(service MutatingService) *EmergencyPauseCommand {
	return &EmergencyPauseCommand{service: service}
}

func (c *EmergencyPauseCommand) Execute(ctx context.Context, msg EmergencyPauseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: emergency pause service is required")
	}
	out, err := c.service.EmergencyPause(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RecoveryResumeCommand struct {
	service MutatingService
}

func NewRecoveryResumeCommand(service MutatingService) *RecoveryResumeCommand {
	return &RecoveryResumeCommand{service: service}
}

func (c *RecoveryResumeCommand) Execute(ctx context.Context, msg RecoveryResumeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: recovery resume service is required")
	}
	out, err := c.service.RecoveryResume(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RotateGuardianCommand struct {
	service MutatingService
}

func NewRotateGuardianCommand(service MutatingService) *RotateGuardianCommand {
	return &RotateGuardianCommand{service: service}
}

func (c *RotateGuardianCommand) Execute(ctx context.Context, msg RotateGuardianMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: rotate guardian service is required")
	}
	out, err := c.service.RotateGuardian(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

// GuardianCheckCommand runs one monitor pass. The report is stored even when
// the pass tripped the emergency pause.
type GuardianCheckCommand struct {
	monitor GuardianChecker
}

func NewGuardianCheckCommand(monitor GuardianChecker) *GuardianCheckCommand {
	return &GuardianCheckCommand{monitor: monitor}
}

func (c *GuardianCheckCommand) Execute(ctx context.Context, msg GuardianCheckMessage) error {
	if c == nil || c.monitor == nil {
		return commandDependencyError("command: guardian monitor is required")
	}
	report, err := c.monitor.Check(ctx, msg.ConfigID)
	if err != nil {
		return err
	}
	storeResult(ctx, report)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

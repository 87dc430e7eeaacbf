package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[InitializeMessage]        = (*InitializeCommand)(nil)
	_ gocmd.Commander[EmitMessage]              = (*EmitCommand)(nil)
	_ gocmd.Commander[TransferMessage]          = (*TransferCommand)(nil)
	_ gocmd.Commander[BurnForRedemptionMessage] = (*BurnForRedemptionCommand)(nil)
	_ gocmd.Commander[UpdateBackingMessage]     = (*UpdateBackingCommand)(nil)
	_ gocmd.Commander[ToggleStatusMessage]      = (*ToggleStatusCommand)(nil)
	_ gocmd.Commander[EmergencyPauseMessage]    = (*EmergencyPauseCommand)(nil)
	_ gocmd.Commander[RecoveryResumeMessage]    = (*RecoveryResumeCommand)(nil)
	_ gocmd.Commander[RotateGuardianMessage]    = (*RotateGuardianCommand)(nil)
	_ gocmd.Commander[GuardianCheckMessage]     = (*GuardianCheckCommand)(nil)
)

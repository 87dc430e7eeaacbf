package core

var operationRoles = map[Operation]Role{
	OperationInitialize:     RolePrimary,
	OperationEmit:           RolePrimary,
	OperationTransfer:       RoleHolder,
	OperationBurn:           RoleHolder,
	OperationUpdateBacking:  RolePrimary,
	OperationToggleStatus:   RolePrimary,
	OperationEmergencyPause: RoleGuardian,
	OperationRecoveryResume: RoleGuardian,
	OperationRotateGuardian: RolePrimary,
}

// RequiredRole returns the role an operation demands of its caller.
func RequiredRole(op Operation) (Role, bool) {
	role, ok := operationRoles[op]
	return role, ok
}

func RequirePrimary(caller Identity, cfg IssuanceConfig) error {
	if caller.IsZero() || caller != cfg.PrimaryAuthority {
		return UnauthorizedError("core: caller %q is not the primary authority of %q", caller, cfg.ID)
	}
	return nil
}

func RequireGuardian(caller Identity, cfg IssuanceConfig) error {
	if caller.IsZero() || caller != cfg.Guardian {
		return UnauthorizedError("core: caller %q is not the guardian of %q", caller, cfg.ID)
	}
	return nil
}

// RequireHolder checks that the caller owns the debited account.
func RequireHolder(caller, account Identity) error {
	if caller.IsZero() || caller != account {
		return UnauthorizedError("core: caller %q does not own account %q", caller, account)
	}
	return nil
}

// Authorize applies the role check of op. Holder operations check account ownership.
func Authorize(op Operation, caller Identity, cfg IssuanceConfig, account Identity) error {
	role, ok := RequiredRole(op)
	if !ok {
		return nil
	}
	switch role {
	case RolePrimary:
		return RequirePrimary(caller, cfg)
	case RoleGuardian:
		return RequireGuardian(caller, cfg)
	default:
		return RequireHolder(caller, account)
	}
}

package core

import (
	"strings"
)

type ResumePolicy string

const (
	// ResumePolicyMatchingAuthority only lets the pausing authority lift its own pause.
	ResumePolicyMatchingAuthority ResumePolicy = "matching_authority"
	// ResumePolicySharedFlag lets either authority write the single active flag.
	ResumePolicySharedFlag ResumePolicy = "shared_flag"
)

func (p ResumePolicy) Normalize() ResumePolicy {
	switch ResumePolicy(strings.TrimSpace(strings.ToLower(string(p)))) {
	case ResumePolicySharedFlag:
		return ResumePolicySharedFlag
	default:
		return ResumePolicyMatchingAuthority
	}
}

func (p ResumePolicy) Valid() bool {
	switch ResumePolicy(strings.TrimSpace(strings.ToLower(string(p)))) {
	case "", ResumePolicyMatchingAuthority, ResumePolicySharedFlag:
		return true
	default:
		return false
	}
}

const DefaultEmergencyReason = "security alert from guardian"

func lifecycleTransitionAllowed(op Operation, current, next LifecycleState) bool {
	allowed := map[Operation]map[LifecycleState]map[LifecycleState]struct{}{
		OperationToggleStatus: {
			StateActive: {
				StateActive:               {},
				StatePausedAdministrative: {},
			},
			StatePausedAdministrative: {
				StateActive:               {},
				StatePausedAdministrative: {},
			},
			StatePausedEmergency: {
				StateActive:               {},
				StatePausedAdministrative: {},
			},
		},
		OperationEmergencyPause: {
			StateActive: {
				StatePausedEmergency: {},
			},
			StatePausedAdministrative: {
				StatePausedEmergency: {},
			},
		},
		OperationRecoveryResume: {
			StatePausedEmergency: {
				StateActive: {},
			},
			StatePausedAdministrative: {
				StateActive: {},
			},
		},
	}
	nextStates, ok := allowed[op]
	if !ok {
		return false
	}
	targets, ok := nextStates[current]
	if !ok {
		return false
	}
	_, ok = targets[next]
	return ok
}

// NextLifecycleState resolves the state produced by a lifecycle operation.
// requestActive is only read for toggle_status.
func NextLifecycleState(op Operation, current LifecycleState, requestActive bool, policy ResumePolicy) (LifecycleState, error) {
	policy = policy.Normalize()

	var next LifecycleState
	switch op {
	case OperationToggleStatus:
		next = StatePausedAdministrative
		if requestActive {
			next = StateActive
		}
		if policy == ResumePolicyMatchingAuthority && current == StatePausedEmergency {
			return current, UnauthorizedError("core: emergency pause can only be lifted by the guardian")
		}
	case OperationEmergencyPause:
		next = StatePausedEmergency
	case OperationRecoveryResume:
		next = StateActive
		if policy == ResumePolicyMatchingAuthority && current == StatePausedAdministrative {
			return current, UnauthorizedError("core: administrative pause can only be lifted by the primary authority")
		}
	default:
		return current, InvalidTransitionError("core: %s is not a lifecycle operation", op)
	}

	if policy == ResumePolicySharedFlag && current == next {
		// Single flag: a repeated pause or recovery rewrites it.
		return next, nil
	}
	if !lifecycleTransitionAllowed(op, current, next) {
		return current, InvalidTransitionError("core: invalid lifecycle transition %s: %s -> %s", op, current, next)
	}
	return next, nil
}

func applyLifecycleState(cfg *IssuanceConfig, state LifecycleState, note string) {
	switch state {
	case StateActive:
		cfg.Active = true
		cfg.PauseReason = PauseReasonNone
		cfg.PauseNote = ""
	case StatePausedEmergency:
		cfg.Active = false
		cfg.PauseReason = PauseReasonEmergency
		cfg.PauseNote = note
	default:
		cfg.Active = false
		cfg.PauseReason = PauseReasonAdministrative
		cfg.PauseNote = note
	}
}

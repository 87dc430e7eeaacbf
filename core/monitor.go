package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	GuardianCheckJobID      = "issuance.guardian.check"
	GuardianCheckScriptPath = "issuance/guardian/check"
	guardianCheckParamID    = "config_id"
)

// GuardianMonitor watches one guardian's records and trips the emergency
// pause when the audit chain or the reserve ratio look wrong.
type GuardianMonitor struct {
	Service         *Service
	Guardian        Identity
	MinReserveRatio uint64
	RetryDelay      time.Duration
}

type MonitorReport struct {
	ConfigID  string
	Healthy   bool
	Anomalies []string
	Paused    bool
	Status    SystemStatus
	Chain     ChainReport
}

func (m *GuardianMonitor) Check(ctx context.Context, configID string) (MonitorReport, error) {
	if m == nil || m.Service == nil {
		return MonitorReport{}, BadInputError("core: guardian monitor requires a service")
	}
	if m.Guardian.IsZero() {
		return MonitorReport{}, BadInputError("core: guardian monitor requires a guardian identity")
	}
	configID = m.Service.resolveConfigID(configID)
	report := MonitorReport{ConfigID: configID}

	status, err := m.Service.Status(ctx, configID)
	if err != nil {
		return report, err
	}
	report.Status = status

	chain, err := m.Service.VerifyAuditChain(ctx, configID)
	switch {
	case err == nil:
		report.Chain = chain
	case IsKind(err, ErrorAuditChainBroken):
		report.Anomalies = append(report.Anomalies, "audit chain broken: "+err.Error())
	default:
		return report, err
	}

	floor := m.MinReserveRatio
	if floor == 0 {
		floor = m.Service.config.Monitor.MinReserveRatio
	}
	if status.CurrentSupply > 0 && status.ReserveRatio < floor {
		report.Anomalies = append(report.Anomalies, fmt.Sprintf("reserve ratio %d below floor %d", status.ReserveRatio, floor))
	}

	if len(report.Anomalies) == 0 {
		report.Healthy = true
		return report, nil
	}
	if status.State == StatePausedEmergency {
		report.Paused = true
		return report, nil
	}

	result, err := m.Service.EmergencyPause(ctx, EmergencyPauseRequest{
		ConfigID: configID,
		Caller:   m.Guardian,
		Reason:   strings.Join(report.Anomalies, "; "),
		Metadata: map[string]any{"source": "guardian_monitor"},
	})
	if err != nil {
		return report, err
	}
	report.Paused = true
	report.Status.Active = result.Config.Active
	report.Status.State = result.Config.State()
	report.Status.PauseReason = result.Config.PauseReason
	report.Status.PauseNote = result.Config.PauseNote
	return report, nil
}

// HandleDelivery runs a queued guardian check and settles the delivery.
func (m *GuardianMonitor) HandleDelivery(ctx context.Context, delivery JobDelivery) error {
	if delivery == nil {
		return BadInputError("core: job delivery is required")
	}
	msg := delivery.Message()
	if msg == nil || !strings.EqualFold(strings.TrimSpace(msg.JobID), GuardianCheckJobID) {
		jobID := ""
		if msg != nil {
			jobID = msg.JobID
		}
		return delivery.Nack(ctx, JobNackOptions{DeadLetter: true, Reason: fmt.Sprintf("unsupported job %q", jobID)})
	}
	configID, _ := msg.Parameters[guardianCheckParamID].(string)

	if _, err := m.Check(ctx, configID); err != nil {
		retryable := !IsKind(err, ErrorConfigNotFound) && !IsKind(err, ErrorBadInput) && !IsKind(err, ErrorUnauthorized)
		nackErr := delivery.Nack(ctx, JobNackOptions{
			Delay:      m.RetryDelay,
			Requeue:    retryable,
			DeadLetter: !retryable,
			Reason:     err.Error(),
		})
		if nackErr != nil {
			return nackErr
		}
		return err
	}
	return delivery.Ack(ctx)
}

// NewGuardianCheckMessage builds the job message consumed by HandleDelivery.
func NewGuardianCheckMessage(configID string, at time.Time) *JobExecutionMessage {
	configID = strings.TrimSpace(configID)
	return &JobExecutionMessage{
		JobID:      GuardianCheckJobID,
		ScriptPath: GuardianCheckScriptPath,
		Parameters: map[string]any{
			guardianCheckParamID: configID,
		},
		IdempotencyKey: fmt.Sprintf("%s:%s:%d", GuardianCheckJobID, configID, at.UTC().Unix()),
		DedupPolicy:    "drop",
	}
}

func ScheduleGuardianCheck(ctx context.Context, enqueuer JobEnqueuer, configID string, at time.Time) error {
	if enqueuer == nil {
		return BadInputError("core: job enqueuer is required")
	}
	return enqueuer.Enqueue(ctx, NewGuardianCheckMessage(configID, at))
}

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-issuance/core"
)

type statusOutput struct {
	ConfigID         string     `json:"config_id"`
	State            string     `json:"state"`
	Active           bool       `json:"active"`
	PauseReason      string     `json:"pause_reason,omitempty"`
	PauseNote        string     `json:"pause_note,omitempty"`
	PrimaryAuthority string     `json:"primary_authority"`
	Guardian         string     `json:"guardian"`
	CollateralType   string     `json:"collateral_type"`
	BackingValue     uint64     `json:"backing_value"`
	MaxSupply        uint64     `json:"max_supply"`
	CurrentSupply    uint64     `json:"current_supply"`
	ReserveRatio     uint64     `json:"reserve_ratio"`
	Sequence         uint64     `json:"sequence"`
	HeadCID          string     `json:"head_cid,omitempty"`
	LastIssuanceAt   *time.Time `json:"last_issuance_at,omitempty"`
}

func statusView(status core.SystemStatus) statusOutput {
	return statusOutput{
		ConfigID:         status.ConfigID,
		State:            string(status.State),
		Active:           status.Active,
		PauseReason:      string(status.PauseReason),
		PauseNote:        status.PauseNote,
		PrimaryAuthority: status.PrimaryAuthority.String(),
		Guardian:         status.Guardian.String(),
		CollateralType:   status.CollateralType,
		BackingValue:     status.BackingValue,
		MaxSupply:        status.MaxSupply,
		CurrentSupply:    status.CurrentSupply,
		ReserveRatio:     status.ReserveRatio,
		Sequence:         status.Sequence,
		HeadCID:          status.HeadCID,
		LastIssuanceAt:   status.LastIssuanceAt,
	}
}

type mutationOutput struct {
	Status statusOutput    `json:"status"`
	Event  core.AuditEvent `json:"event"`
}

func (a *app) printMutation(result core.MutationResult) error {
	status := statusView(result.Config.Status())
	if a.jsonOutput {
		return a.printJSON(mutationOutput{Status: status, Event: result.Event})
	}
	a.printf("%s #%d by %s: supply %d, backing %d, ratio %d%%, state %s\n",
		result.Event.Kind, result.Event.Sequence, result.Event.Actor,
		status.CurrentSupply, status.BackingValue, status.ReserveRatio, status.State)
	a.printf("cid %s\n", result.Event.CID)
	return nil
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("issuancectl: encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

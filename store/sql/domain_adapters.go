package sqlstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-issuance/core"
)

func newIssuanceConfigRecord(cfg core.IssuanceConfig) (*issuanceConfigRecord, error) {
	values, err := toColumns(map[string]uint64{
		"backing_value":  cfg.BackingValue,
		"max_supply":     cfg.MaxSupply,
		"current_supply": cfg.CurrentSupply,
		"reserve_ratio":  cfg.ReserveRatio,
		"sequence":       cfg.Sequence,
	})
	if err != nil {
		return nil, err
	}
	record := &issuanceConfigRecord{
		ID:               strings.TrimSpace(cfg.ID),
		PrimaryAuthority: cfg.PrimaryAuthority.String(),
		Guardian:         cfg.Guardian.String(),
		CollateralType:   cfg.CollateralType,
		BackingValue:     values["backing_value"],
		MaxSupply:        values["max_supply"],
		CurrentSupply:    values["current_supply"],
		ReserveRatio:     values["reserve_ratio"],
		Active:           cfg.Active,
		PauseReason:      string(cfg.PauseReason),
		PauseNote:        cfg.PauseNote,
		Sequence:         values["sequence"],
		HeadCID:          cfg.HeadCID,
		LastIssuanceAt:   cloneTimePointer(cfg.LastIssuanceAt),
		CreatedAt:        cfg.CreatedAt.UTC(),
		UpdatedAt:        cfg.UpdatedAt.UTC(),
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func (r *issuanceConfigRecord) toDomain() core.IssuanceConfig {
	if r == nil {
		return core.IssuanceConfig{}
	}
	return core.IssuanceConfig{
		ID:               r.ID,
		PrimaryAuthority: core.Identity(r.PrimaryAuthority),
		Guardian:         core.Identity(r.Guardian),
		CollateralType:   r.CollateralType,
		BackingValue:     uint64(r.BackingValue),
		MaxSupply:        uint64(r.MaxSupply),
		CurrentSupply:    uint64(r.CurrentSupply),
		ReserveRatio:     uint64(r.ReserveRatio),
		Active:           r.Active,
		PauseReason:      core.PauseReason(r.PauseReason),
		PauseNote:        r.PauseNote,
		Sequence:         uint64(r.Sequence),
		HeadCID:          r.HeadCID,
		LastIssuanceAt:   cloneTimePointer(r.LastIssuanceAt),
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func newAuditEventRecord(event core.AuditEvent) (*auditEventRecord, error) {
	values, err := toColumns(map[string]uint64{
		"sequence":      event.Sequence,
		"amount":        event.Amount,
		"old_backing":   event.OldBacking,
		"new_backing":   event.NewBacking,
		"supply":        event.Supply,
		"reserve_ratio": event.ReserveRatio,
	})
	if err != nil {
		return nil, err
	}
	metadata, err := encodeMetadata(event.Metadata)
	if err != nil {
		return nil, err
	}
	return &auditEventRecord{
		ID:           strings.TrimSpace(event.ID),
		ConfigID:     event.ConfigID,
		Sequence:     values["sequence"],
		Kind:         string(event.Kind),
		Actor:        event.Actor.String(),
		Amount:       values["amount"],
		From:         event.From.String(),
		To:           event.To.String(),
		Proof:        event.Proof,
		Reason:       event.Reason,
		OldBacking:   values["old_backing"],
		NewBacking:   values["new_backing"],
		OldGuardian:  event.OldGuardian.String(),
		NewGuardian:  event.NewGuardian.String(),
		Supply:       values["supply"],
		ReserveRatio: values["reserve_ratio"],
		Active:       event.Active,
		PauseReason:  string(event.PauseReason),
		Metadata:     metadata,
		PrevCID:      event.PrevCID,
		CID:          event.CID,
		CreatedAt:    event.CreatedAt.UTC(),
	}, nil
}

func (r *auditEventRecord) toDomain() (core.AuditEvent, error) {
	if r == nil {
		return core.AuditEvent{}, nil
	}
	metadata, err := decodeMetadata(r.Metadata)
	if err != nil {
		return core.AuditEvent{}, fmt.Errorf("sqlstore: decode metadata of event %s: %w", r.ID, err)
	}
	return core.AuditEvent{
		ID:           r.ID,
		ConfigID:     r.ConfigID,
		Sequence:     uint64(r.Sequence),
		Kind:         core.EventKind(r.Kind),
		Actor:        core.Identity(r.Actor),
		Amount:       uint64(r.Amount),
		From:         core.Identity(r.From),
		To:           core.Identity(r.To),
		Proof:        r.Proof,
		Reason:       r.Reason,
		OldBacking:   uint64(r.OldBacking),
		NewBacking:   uint64(r.NewBacking),
		OldGuardian:  core.Identity(r.OldGuardian),
		NewGuardian:  core.Identity(r.NewGuardian),
		Supply:       uint64(r.Supply),
		ReserveRatio: uint64(r.ReserveRatio),
		Active:       r.Active,
		PauseReason:  core.PauseReason(r.PauseReason),
		Metadata:     metadata,
		PrevCID:      r.PrevCID,
		CID:          r.CID,
		CreatedAt:    r.CreatedAt.UTC(),
	}, nil
}

func recordsToEvents(records []*auditEventRecord) ([]core.AuditEvent, error) {
	out := make([]core.AuditEvent, 0, len(records))
	for _, record := range records {
		event, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

// toColumns narrows unsigned amounts to the signed BIGINT columns.
func toColumns(values map[string]uint64) (map[string]int64, error) {
	out := make(map[string]int64, len(values))
	for column, value := range values {
		if value > math.MaxInt64 {
			return nil, core.PrecisionError("sqlstore: %s value %d exceeds the column range", column, value)
		}
		out[column] = int64(value)
	}
	return out, nil
}

func encodeMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("sqlstore: encode metadata: %w", err)
	}
	return string(raw), nil
}

// decodeMetadata keeps numbers as json.Number so re-encoding is byte stable
// and the audit CIDs recompute.
func decodeMetadata(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" || raw == "null" {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	out := map[string]any{}
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}

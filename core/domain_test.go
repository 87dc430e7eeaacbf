package core

import (
	"testing"
	"time"
)

func TestIssuanceConfigState(t *testing.T) {
	cases := []struct {
		name   string
		cfg    IssuanceConfig
		expect LifecycleState
	}{
		{name: "active", cfg: IssuanceConfig{Active: true}, expect: StateActive},
		{name: "active ignores stale reason", cfg: IssuanceConfig{Active: true, PauseReason: PauseReasonEmergency}, expect: StateActive},
		{name: "administrative", cfg: IssuanceConfig{PauseReason: PauseReasonAdministrative}, expect: StatePausedAdministrative},
		{name: "emergency", cfg: IssuanceConfig{PauseReason: PauseReasonEmergency}, expect: StatePausedEmergency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.State(); got != tc.expect {
				t.Fatalf("expected %s, got %s", tc.expect, got)
			}
		})
	}
}

func TestIssuanceConfigStatusCopiesLastIssuance(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := IssuanceConfig{
		ID:             "gold",
		Guardian:       "guard",
		BackingValue:   500,
		CurrentSupply:  250,
		ReserveRatio:   200,
		PauseReason:    PauseReasonEmergency,
		PauseNote:      "drill",
		LastIssuanceAt: &at,
	}
	status := cfg.Status()
	if status.ConfigID != "gold" || status.State != StatePausedEmergency || status.ReserveRatio != 200 {
		t.Fatalf("unexpected status: %#v", status)
	}
	if status.LastIssuanceAt == nil || !status.LastIssuanceAt.Equal(at) {
		t.Fatalf("expected last issuance time to be carried")
	}
	*status.LastIssuanceAt = at.Add(time.Hour)
	if !cfg.LastIssuanceAt.Equal(at) {
		t.Fatalf("expected status to hold its own copy of the timestamp")
	}
}

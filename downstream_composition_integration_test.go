package issuance_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	gocmd "github.com/goliatone/go-command"
	issuance "github.com/goliatone/go-issuance"
	"github.com/goliatone/go-issuance/attestation"
	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
	"github.com/goliatone/go-issuance/ledger"
	issuancequery "github.com/goliatone/go-issuance/query"
)

const (
	primary  core.Identity = "treasury"
	guardian core.Identity = "guardian"
	holder   core.Identity = "alice"
)

func TestDownstreamComposition_SignedEmissionAndGuardianPause(t *testing.T) {
	ctx := context.Background()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 7)
	}
	signer := attestation.Ed25519Signer{Private: ed25519.NewKeyFromSeed(seed), Hash: attestation.HashSHA3256}
	keys := attestation.NewKeyring()
	if err := keys.Register(guardian, signer.PublicKey()); err != nil {
		t.Fatalf("register guardian key: %v", err)
	}
	hooks, err := issuance.DefaultExtensionHooks(keys, nil)
	if err != nil {
		t.Fatalf("extension hooks: %v", err)
	}
	validatorOpt, err := hooks.ValidatorOption(attestation.ValidatorName)
	if err != nil {
		t.Fatalf("validator option: %v", err)
	}

	tokens := ledger.NewMemoryLedger()
	svc, err := issuance.NewService(issuance.Config{}, issuance.WithTokenLedger(tokens), validatorOpt)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	monitor := &issuance.GuardianMonitor{Service: svc, Guardian: guardian}
	facade, err := issuance.NewFacade(svc, issuance.WithGuardianMonitor(monitor))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	commands := facade.Commands()
	queries := facade.Queries()

	if err := commands.Initialize.Execute(ctx, issuancecommand.InitializeMessage{Request: core.InitializeRequest{
		Caller:         primary,
		Guardian:       guardian,
		CollateralType: "gold-oz",
		InitialBacking: 1_000,
		MaxSupply:      1_000,
	}}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	proof := core.DeriveDepositProof("vault-7", 12.5, 1_700_000_000)
	unsigned := issuancecommand.EmitMessage{Request: core.EmitRequest{Caller: primary, Recipient: holder, Amount: 400, Proof: proof}}
	if err := commands.Emit.Execute(ctx, unsigned); !core.IsKind(err, core.ErrorInvalidProofOfReserve) {
		t.Fatalf("expected unsigned emission to be rejected, got %v", err)
	}

	sig, err := signer.Sign(core.DefaultConfigID, proof, 400)
	if err != nil {
		t.Fatalf("sign attestation: %v", err)
	}
	signed := unsigned
	signed.Request.Attestation = sig
	collector := gocmd.NewResult[core.MutationResult]()
	if err := commands.Emit.Execute(gocmd.ContextWithResult(ctx, collector), signed); err != nil {
		t.Fatalf("signed emit: %v", err)
	}
	if result, ok := collector.Load(); !ok || result.Config.CurrentSupply != 400 {
		t.Fatalf("unexpected emit result: %#v", result)
	}

	balance, err := queries.Balance.Query(ctx, issuancequery.BalanceMessage{Holder: holder})
	if err != nil {
		t.Fatalf("balance query: %v", err)
	}
	if balance != 400 || tokens.TotalSupply(core.DefaultConfigID) != 400 {
		t.Fatalf("expected 400 tokens for holder, got %d", balance)
	}

	// 300 backing over 400 supply floors to 75, under the default 100 floor.
	if err := commands.UpdateBacking.Execute(ctx, issuancecommand.UpdateBackingMessage{Request: core.UpdateBackingRequest{
		Caller:     primary,
		NewBacking: 300,
	}}); err != nil {
		t.Fatalf("update backing: %v", err)
	}

	reports := gocmd.NewResult[core.MonitorReport]()
	if err := commands.GuardianCheck.Execute(gocmd.ContextWithResult(ctx, reports), issuancecommand.GuardianCheckMessage{}); err != nil {
		t.Fatalf("guardian check: %v", err)
	}
	report, ok := reports.Load()
	if !ok || report.Healthy || !report.Paused {
		t.Fatalf("expected guardian check to pause the record, got %#v", report)
	}

	status, err := queries.Status.Query(ctx, issuancequery.StatusMessage{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != core.StatePausedEmergency || status.ReserveRatio != 75 {
		t.Fatalf("unexpected status after pause: %#v", status)
	}

	if err := commands.Emit.Execute(ctx, signed); !core.IsKind(err, core.ErrorSystemInactive) {
		t.Fatalf("expected emit during emergency to fail, got %v", err)
	}
	if err := commands.RecoveryResume.Execute(ctx, issuancecommand.RecoveryResumeMessage{Request: core.RecoveryResumeRequest{Caller: guardian}}); err != nil {
		t.Fatalf("recovery resume: %v", err)
	}

	chain, err := queries.VerifyAuditChain.Query(ctx, issuancequery.VerifyAuditChainMessage{})
	if err != nil {
		t.Fatalf("verify chain: %v", err)
	}
	// initialized, emitted, backing_updated, emergency_paused, recovery_resumed
	if !chain.Valid || chain.Events != 5 {
		t.Fatalf("unexpected chain report: %#v", chain)
	}
}

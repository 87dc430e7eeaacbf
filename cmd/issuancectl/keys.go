package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/goliatone/go-issuance/attestation"
	"github.com/goliatone/go-issuance/core"
	"github.com/spf13/cobra"
)

const offlineAnnotation = "issuancectl/offline"

func (a *app) newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "keygen",
		Short:       "Generate an ed25519 guardian attestation key",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			public, private, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return fmt.Errorf("issuancectl: generate key: %w", err)
			}
			key := attestation.PublicKey{Algorithm: attestation.AlgorithmEd25519, Hash: attestation.HashAlg(a.attestationHash), Raw: public}
			seed := base64.StdEncoding.EncodeToString(private.Seed())
			if a.jsonOutput {
				return a.printJSON(map[string]string{"public_key": key.String(), "seed": seed})
			}
			a.printf("public: %s\n", key.String())
			a.printf("seed:   %s\n", seed)
			return nil
		},
	}
}

func (a *app) newAttestCmd() *cobra.Command {
	var (
		seed      string
		amount    uint64
		proofHex  string
		location  string
		weight    float64
		timestamp int64
	)
	cmd := &cobra.Command{
		Use:         "attest",
		Short:       "Sign an emission with a guardian ed25519 seed",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(*cobra.Command, []string) error {
			raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(seed))
			if err != nil || len(raw) != ed25519.SeedSize {
				return fmt.Errorf("issuancectl: --seed must be a base64 ed25519 seed")
			}
			proof, err := resolveProof(proofHex, location, weight, timestamp)
			if err != nil {
				return err
			}
			configID := strings.TrimSpace(a.configID)
			if configID == "" {
				configID = core.DefaultConfigID
			}
			signer := attestation.Ed25519Signer{Private: ed25519.NewKeyFromSeed(raw), Hash: attestation.HashAlg(a.attestationHash)}
			signature, err := signer.Sign(configID, proof, amount)
			if err != nil {
				return err
			}
			encoded := base64.StdEncoding.EncodeToString(signature)
			if a.jsonOutput {
				return a.printJSON(map[string]string{"proof": proof.String(), "attestation": encoded})
			}
			a.printf("proof:       %s\n", proof.String())
			a.printf("attestation: %s\n", encoded)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "guardian ed25519 seed as base64")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount being emitted")
	cmd.Flags().StringVar(&proofHex, "proof", "", "32-byte proof of reserve as hex")
	cmd.Flags().StringVar(&location, "deposit-location", "", "derive the proof from a deposit location")
	cmd.Flags().Float64Var(&weight, "deposit-weight", 0, "deposit weight used for the derived proof")
	cmd.Flags().Int64Var(&timestamp, "deposit-timestamp", 0, "deposit unix timestamp")
	return cmd
}

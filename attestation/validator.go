package attestation

import (
	"context"
	"crypto/ed25519"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/goliatone/go-issuance/core"
	glog "github.com/goliatone/go-logger/glog"
)

const ValidatorName = "signed"

var _ core.ProofValidator = (*SignedValidator)(nil)

// SignedValidator approves an emission only when the attestation carries a
// valid signature from one of the guardian's registered keys.
type SignedValidator struct {
	Keys   *Keyring
	Basic  core.ProofValidator
	Logger core.Logger
}

func NewSignedValidator(keys *Keyring, logger core.Logger) *SignedValidator {
	return &SignedValidator{
		Keys:   keys,
		Basic:  core.BasicProofValidator{},
		Logger: glog.Ensure(logger),
	}
}

func (v *SignedValidator) Validate(ctx context.Context, req core.ProofRequest) (core.Verdict, error) {
	basic := v.Basic
	if basic == nil {
		basic = core.BasicProofValidator{}
	}
	verdict, err := basic.Validate(ctx, req)
	if err != nil || !verdict.Approved {
		return verdict, err
	}
	if len(req.Attestation) == 0 {
		return v.reject(req, "missing guardian attestation"), nil
	}
	if v.Keys == nil {
		return v.reject(req, "no guardian keys configured"), nil
	}
	keys := v.Keys.Keys(req.Guardian)
	if len(keys) == 0 {
		return v.reject(req, "no keys registered for guardian "+req.Guardian.String()), nil
	}
	for _, key := range keys {
		if verify(key, req) {
			return core.Verdict{Approved: true, Validator: ValidatorName + ":" + string(key.Algorithm)}, nil
		}
	}
	return v.reject(req, "attestation signature invalid"), nil
}

func (v *SignedValidator) reject(req core.ProofRequest, reason string) core.Verdict {
	glog.Ensure(v.Logger).Warn("attestation rejected",
		"config_id", req.ConfigID,
		"guardian", req.Guardian.String(),
		"proof", req.Proof.Short(),
		"reason", reason,
	)
	return core.Verdict{Approved: false, Reason: reason, Validator: ValidatorName}
}

func verify(key PublicKey, req core.ProofRequest) bool {
	digest, err := Digest(key.Hash, req.ConfigID, req.Proof, req.Amount)
	if err != nil {
		return false
	}
	switch key.Algorithm {
	case AlgorithmEd25519:
		if len(key.Raw) != ed25519.PublicKeySize || len(req.Attestation) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(key.Raw), digest, req.Attestation)
	case AlgorithmDilithium3:
		if len(req.Attestation) != mode3.SignatureSize {
			return false
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(key.Raw); err != nil {
			return false
		}
		return mode3.Verify(&pk, digest, req.Attestation)
	default:
		return false
	}
}

package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// ProofOfReserve is an opaque 32-byte deposit commitment.
type ProofOfReserve [32]byte

// ParseProof decodes a 64 character hex proof with an optional 0x prefix.
func ParseProof(value string) (ProofOfReserve, error) {
	var proof ProofOfReserve
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if len(trimmed) != hex.EncodedLen(len(proof)) {
		return proof, InvalidProofError("core: proof of reserve must be %d hex characters", hex.EncodedLen(len(proof)))
	}
	if _, err := hex.Decode(proof[:], []byte(trimmed)); err != nil {
		return ProofOfReserve{}, InvalidProofError("core: proof of reserve is not valid hex: %v", err)
	}
	return proof, nil
}

// DeriveDepositProof hashes "location:weight:timestamp" the way deposit clients do.
func DeriveDepositProof(location string, weight float64, timestamp int64) ProofOfReserve {
	data := location + ":" + strconv.FormatFloat(weight, 'f', -1, 64) + ":" + strconv.FormatInt(timestamp, 10)
	return ProofOfReserve(sha256.Sum256([]byte(data)))
}

func (p ProofOfReserve) IsZero() bool {
	return p == ProofOfReserve{}
}

func (p ProofOfReserve) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

// Short renders the first four bytes for log lines.
func (p ProofOfReserve) Short() string {
	return hex.EncodeToString(p[:4]) + "..."
}

type ProofRequest struct {
	ConfigID    string
	Guardian    Identity
	Proof       ProofOfReserve
	Amount      uint64
	Attestation []byte
}

type Verdict struct {
	Approved  bool
	Reason    string
	Validator string
}

// ProofValidator is the cross-validation gate consulted before every emission.
type ProofValidator interface {
	Validate(ctx context.Context, req ProofRequest) (Verdict, error)
}

// BasicProofValidator rejects zero amounts and the all-zero proof.
type BasicProofValidator struct{}

func (BasicProofValidator) Validate(_ context.Context, req ProofRequest) (Verdict, error) {
	if req.Amount == 0 {
		return Verdict{}, InvalidAmountError("core: emission amount must be greater than zero")
	}
	if req.Proof.IsZero() {
		return Verdict{Approved: false, Reason: "zero proof of reserve", Validator: "basic"}, nil
	}
	return Verdict{Approved: true, Validator: "basic"}, nil
}

// ProofValidatorFunc adapts a function to ProofValidator.
type ProofValidatorFunc func(ctx context.Context, req ProofRequest) (Verdict, error)

func (fn ProofValidatorFunc) Validate(ctx context.Context, req ProofRequest) (Verdict, error) {
	return fn(ctx, req)
}

func requireApproval(ctx context.Context, validator ProofValidator, req ProofRequest) (Verdict, error) {
	if validator == nil {
		validator = BasicProofValidator{}
	}
	verdict, err := validator.Validate(ctx, req)
	if err != nil {
		if Kind(err) != "" {
			return verdict, err
		}
		return verdict, InvalidProofError("core: proof validation failed: %v", err)
	}
	if !verdict.Approved {
		reason := strings.TrimSpace(verdict.Reason)
		if reason == "" {
			reason = "rejected"
		}
		return verdict, InvalidProofError("core: proof of reserve %s rejected: %s", req.Proof.Short(), reason)
	}
	return verdict, nil
}

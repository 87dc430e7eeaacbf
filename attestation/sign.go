package attestation

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/goliatone/go-issuance/core"
)

// Signer produces attestations for one guardian key.
type Signer interface {
	PublicKey() PublicKey
	Sign(configID string, proof core.ProofOfReserve, amount uint64) ([]byte, error)
}

type Ed25519Signer struct {
	Private ed25519.PrivateKey
	Hash    HashAlg
}

func (s Ed25519Signer) PublicKey() PublicKey {
	return PublicKey{
		Algorithm: AlgorithmEd25519,
		Hash:      normalizeHash(s.Hash),
		Raw:       append([]byte(nil), s.Private.Public().(ed25519.PublicKey)...),
	}
}

func (s Ed25519Signer) Sign(configID string, proof core.ProofOfReserve, amount uint64) ([]byte, error) {
	if len(s.Private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("attestation: missing ed25519 private key")
	}
	digest, err := Digest(normalizeHash(s.Hash), configID, proof, amount)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(s.Private, digest), nil
}

type Dilithium3Signer struct {
	Public  *mode3.PublicKey
	Private *mode3.PrivateKey
	Hash    HashAlg
}

// GenerateDilithium3Signer creates a fresh dilithium3 key pair.
func GenerateDilithium3Signer(rand io.Reader, hash HashAlg) (Dilithium3Signer, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return Dilithium3Signer{}, fmt.Errorf("attestation: generate dilithium3 key: %w", err)
	}
	return Dilithium3Signer{Public: pk, Private: sk, Hash: hash}, nil
}

func (s Dilithium3Signer) PublicKey() PublicKey {
	var raw []byte
	if s.Public != nil {
		raw, _ = s.Public.MarshalBinary()
	}
	return PublicKey{Algorithm: AlgorithmDilithium3, Hash: normalizeHash(s.Hash), Raw: raw}
}

func (s Dilithium3Signer) Sign(configID string, proof core.ProofOfReserve, amount uint64) ([]byte, error) {
	if s.Private == nil {
		return nil, fmt.Errorf("attestation: missing dilithium3 private key")
	}
	digest, err := Digest(normalizeHash(s.Hash), configID, proof, amount)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.Private, digest, sig)
	return sig, nil
}

func normalizeHash(hash HashAlg) HashAlg {
	if hash == "" {
		return HashSHA256
	}
	return hash
}

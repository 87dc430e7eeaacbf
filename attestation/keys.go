// Package attestation verifies guardian-signed proof-of-reserve attestations.
//
// A guardian signs the digest of the issuance record, the proof and the
// amount with one of its registered keys. SignedValidator plugs into the
// cross-validation gate of the issuance core.
package attestation

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/goliatone/go-issuance/core"
)

type Algorithm string

const (
	AlgorithmEd25519    Algorithm = "ed25519"
	AlgorithmDilithium3 Algorithm = "dilithium3"
)

type HashAlg string

const (
	HashSHA256  HashAlg = "sha256"
	HashSHA3256 HashAlg = "sha3-256"
)

// PublicKey is a guardian verification key.
type PublicKey struct {
	Algorithm Algorithm
	Hash      HashAlg
	Raw       []byte
}

func (k PublicKey) Validate() error {
	switch k.Hash {
	case HashSHA256, HashSHA3256:
	default:
		return fmt.Errorf("attestation: unsupported hash %q", k.Hash)
	}
	switch k.Algorithm {
	case AlgorithmEd25519:
		if len(k.Raw) != ed25519.PublicKeySize {
			return fmt.Errorf("attestation: invalid ed25519 public key length %d", len(k.Raw))
		}
	case AlgorithmDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(k.Raw); err != nil {
			return fmt.Errorf("attestation: invalid dilithium3 public key: %w", err)
		}
	default:
		return fmt.Errorf("attestation: unsupported algorithm %q", k.Algorithm)
	}
	return nil
}

// String renders the key as "<alg>:<base64>".
func (k PublicKey) String() string {
	return string(k.Algorithm) + ":" + base64.StdEncoding.EncodeToString(k.Raw)
}

// ParsePublicKey decodes "ed25519:<base64>" or "dilithium3:<base64>".
// An empty hash defaults to sha256.
func ParsePublicKey(encoded string, hash HashAlg) (PublicKey, error) {
	alg, enc, ok := strings.Cut(strings.TrimSpace(encoded), ":")
	if !ok {
		return PublicKey{}, fmt.Errorf("attestation: invalid key encoding")
	}
	raw, err := decodeBase64(enc)
	if err != nil {
		return PublicKey{}, fmt.Errorf("attestation: invalid key base64: %w", err)
	}
	if hash == "" {
		hash = HashSHA256
	}
	key := PublicKey{Algorithm: Algorithm(strings.ToLower(alg)), Hash: hash, Raw: raw}
	if err := key.Validate(); err != nil {
		return PublicKey{}, err
	}
	return key, nil
}

// Keyring maps guardian identities to their verification keys.
type Keyring struct {
	mu   sync.RWMutex
	keys map[core.Identity][]PublicKey
}

func NewKeyring() *Keyring {
	return &Keyring{keys: map[core.Identity][]PublicKey{}}
}

func (r *Keyring) Register(guardian core.Identity, key PublicKey) error {
	if guardian.IsZero() {
		return core.BadInputError("attestation: guardian identity is required")
	}
	if err := key.Validate(); err != nil {
		return core.BadInputError("%s", err.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[guardian] = append(r.keys[guardian], key)
	return nil
}

// Revoke drops every key of the guardian.
func (r *Keyring) Revoke(guardian core.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, guardian)
}

func (r *Keyring) Keys(guardian core.Identity) []PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]PublicKey(nil), r.keys[guardian]...)
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

package attestation

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/goliatone/go-issuance/core"
	"golang.org/x/crypto/sha3"
)

const DomainTag = "go-issuance/attestation/v1"

// Message is the byte string a guardian signs: the domain tag and config id
// (each NUL terminated), the 32 proof bytes and the big-endian amount.
func Message(configID string, proof core.ProofOfReserve, amount uint64) []byte {
	out := make([]byte, 0, len(DomainTag)+len(configID)+2+len(proof)+8)
	out = append(out, DomainTag...)
	out = append(out, 0)
	out = append(out, configID...)
	out = append(out, 0)
	out = append(out, proof[:]...)
	out = binary.BigEndian.AppendUint64(out, amount)
	return out
}

// Digest hashes Message with the given algorithm.
func Digest(hash HashAlg, configID string, proof core.ProofOfReserve, amount uint64) ([]byte, error) {
	msg := Message(configID, proof, amount)
	switch hash {
	case HashSHA256, "":
		sum := sha256.Sum256(msg)
		return sum[:], nil
	case HashSHA3256:
		sum := sha3.Sum256(msg)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("attestation: unsupported hash %q", hash)
	}
}

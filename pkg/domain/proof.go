package domain

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	dErrors "verireg/pkg/domain-errors"
)

// ProofHash is the opaque 32-byte commitment bound to a claim at submission.
// The registry only compares it; it never derives it.
type ProofHash [32]byte

// ParseProofHash decodes 64 hex characters, with or without a 0x prefix.
func ParseProofHash(s string) (ProofHash, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return ProofHash{}, dErrors.New(dErrors.CodeInvalidInput, "proof hash is required")
	}
	if len(s) != hex.EncodedLen(len(ProofHash{})) {
		return ProofHash{}, dErrors.New(dErrors.CodeInvalidInput, "proof hash must be 32 bytes of hex")
	}
	var h ProofHash
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return ProofHash{}, dErrors.New(dErrors.CodeInvalidInput, "proof hash must be 32 bytes of hex")
	}
	return h, nil
}

// String renders the hash as 0x-prefixed lowercase hex.
func (h ProofHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// MarshalText renders the hash as 0x-prefixed hex so JSON carries a string.
func (h ProofHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *ProofHash) UnmarshalText(text []byte) error {
	parsed, err := ParseProofHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h ProofHash) IsZero() bool {
	return h == ProofHash{}
}

// Bytes returns a copy of the hash as a slice.
func (h ProofHash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

// ProofHashFromBytes converts a stored 32-byte value back into a ProofHash.
func ProofHashFromBytes(b []byte) (ProofHash, error) {
	var h ProofHash
	if len(b) != len(h) {
		return ProofHash{}, dErrors.New(dErrors.CodeInvalidInput, "proof hash must be 32 bytes")
	}
	copy(h[:], b)
	return h, nil
}

// CommitClaim computes a blake2b-256 commitment over a claim and a caller
// chosen salt. It is a client convenience: any other scheme producing 32
// bytes is equally acceptable to the registry.
//
// Fields are length-prefixed so that ("ab","c") and ("a","bc") differ.
func CommitClaim(name string, age uint32, documentID string, salt []byte) ProofHash {
	h, _ := blake2b.New256(nil)
	writeField(h, []byte(name))
	var ageBuf [4]byte
	binary.BigEndian.PutUint32(ageBuf[:], age)
	writeField(h, ageBuf[:])
	writeField(h, []byte(documentID))
	writeField(h, salt)

	var out ProofHash
	copy(out[:], h.Sum(nil))
	return out
}

func writeField(w io.Writer, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

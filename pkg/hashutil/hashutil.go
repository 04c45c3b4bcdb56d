package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// NewHasher returns a streaming hash.Hash for algo, so callers can hash
// content while it is being written elsewhere (e.g. through io.TeeReader).
func NewHasher(algo HashAlgo) (hash.Hash, error) {
	switch algo {
	case HashAlgoSHA256:
		return sha256.New(), nil
	case HashAlgoBLAKE3:
		return blake3.New(32, nil), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	h, err := NewHasher(algo)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return Sum(h), nil
}

// Sum renders the current digest of h as lowercase hex.
func Sum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// IsSupported reports whether algo can be used with NewHasher.
func IsSupported(algo HashAlgo) bool {
	return algo == HashAlgoSHA256 || algo == HashAlgoBLAKE3
}

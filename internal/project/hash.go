package project

import (
	"crypto/sha256"
)

// Digest is a 256-bit hash, the same shape as source.File.Hash.
type Digest [32]byte

func (d Digest) IsZero() bool { return d == Digest{} }

// Combine hashes a unit's own content with the hashes of its dependencies:
// H(content || dep1 || dep2 ...). Callers pass deps in a stable order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

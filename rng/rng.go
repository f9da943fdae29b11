// Package rng provides a seeded deterministic CSPRNG used for sampling field
// elements. Both protocol roles instantiate their own generator; two readers
// built from the same seed produce identical streams.
package rng

import (
	"io"

	"golang.org/x/crypto/blake2b"
)

// New returns a deterministic random byte stream keyed by seed. The seed must
// be at most 64 bytes; New panics otherwise, as a bad seed is a programming
// error, not a runtime condition.
func New(seed []byte) io.Reader {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, seed)
	if err != nil {
		panic("rng: " + err.Error())
	}
	return xof
}

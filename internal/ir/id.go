package ir

import (
	"encoding/hex"
	"strconv"

	"lukechampine.com/blake3"
)

// idHexLen is the number of hex characters in a stable identifier: a
// truncated 128-bit (16-byte) BLAKE3 digest, matching the wire-format
// contract in SPEC_FULL.md section "External Interfaces".
const idHexLen = 32

// idDigestBytes is idHexLen/2.
const idDigestBytes = idHexLen / 2

// ID is a stable, globally-unique (within a snapshot) 32-hex-character
// identifier. It is always a pure function of its inputs: same repo, file,
// and FQN always yield the same ID.
type ID string

// NewID derives a deterministic ID from an ordered list of components,
// joined with a 0x1f (unit separator) byte so that component boundaries
// cannot be confused by concatenation (e.g. "ab"+"c" vs "a"+"bc").
func NewID(parts ...string) ID {
	h := blake3.New(idDigestBytes, nil)

	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0x1f})
		}

		_, _ = h.Write([]byte(p))
	}

	sum := h.Sum(nil)

	return ID(hex.EncodeToString(sum))
}

// NodeID derives a node's stable identifier from its owning repo, file
// path, and fully-qualified name, salted with its kind so that a variable
// and a function that happen to share an FQN never collide.
func NodeID(repoID, filePath, fqn string, kind Kind) ID {
	return NewID(repoID, filePath, string(kind), fqn)
}

// EdgeID derives a deterministic identifier for an edge, used as a
// dedup key by the IR builder and by downstream caches.
func EdgeID(source, target ID, kind EdgeKind, seq int) ID {
	return NewID(string(source), string(target), string(kind), strconv.Itoa(seq))
}

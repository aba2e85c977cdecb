// Package commitment implements the domain-separated, labeled-field
// commitment scheme every consensus-critical type in this module commits
// under. Commitments here must be exactly reproducible byte-for-byte by
// any validator, so the encoding is a fixed binary layout (see
// pkg/encoding), never JSON.
package commitment

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cap-chain/validator/pkg/encoding"
)

// Digest is a 32-byte commitment value. It is both the output of Finalize
// and the unit every sub-commitment (Field) is built from, so commitments
// compose: a Digest embedded in a larger structure commits to the whole
// sub-tree it was computed over.
type Digest [32]byte

// Zero is the all-zero digest. It is not the empty nullifier-set root
// (see nullset.EmptyRoot), and a state with no previous state carries a
// nil PrevState rather than Zero.
var Zero Digest

// String renders the digest as a 0x-prefixed hex string.
func (d Digest) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

// Bytes returns the digest's 32 bytes.
func (d Digest) Bytes() []byte {
	return d[:]
}

// Builder assembles a domain-separated commitment out of labeled fields,
// in the style of a record-commitment builder: every field is tagged with
// its label before its value, so two structurally different field lists
// can never hash to the same digest by accident, and the domain string
// distinguishes one committed type from another even when their field
// lists happen to coincide.
type Builder struct {
	enc *encoding.Builder
}

// NewBuilder starts a commitment under the given domain label. The domain
// must be unique per committed Go type (e.g. "Block Comm", "RMT Comm"); the
// exact strings used throughout this module match the ones normatively
// fixed by the ledger state machine this was built against.
func NewBuilder(domain string) *Builder {
	b := &Builder{enc: encoding.NewBuilder(256)}
	b.enc.Str(domain)
	return b
}

// ConstantStr appends a fixed string literal with no associated value, used
// to disambiguate sum-type variants (e.g. "empty height" vs "leaf").
func (b *Builder) ConstantStr(s string) *Builder {
	b.enc.Str(s)
	return b
}

// U64Field appends a labeled 64-bit field.
func (b *Builder) U64Field(label string, v uint64) *Builder {
	b.enc.Str(label)
	b.enc.U64(v)
	return b
}

// VarSizeField appends a labeled, length-prefixed byte field.
func (b *Builder) VarSizeField(label string, data []byte) *Builder {
	b.enc.Str(label)
	b.enc.VarBytes(data)
	return b
}

// Field appends a labeled sub-commitment, embedding its digest directly
// (sub-commitments are fixed-length, so no length prefix is needed).
func (b *Builder) Field(label string, d Digest) *Builder {
	b.enc.Str(label)
	b.enc.Fixed(d[:])
	return b
}

// ArrayField appends a labeled sequence of sub-commitments: a length prefix
// followed by each digest in order. Used for per-transaction and
// per-output arrays, where the count itself is part of what is committed.
func (b *Builder) ArrayField(label string, ds []Digest) *Builder {
	b.enc.Str(label)
	b.enc.U64(uint64(len(ds)))
	for _, d := range ds {
		b.enc.Fixed(d[:])
	}
	return b
}

// Finalize hashes the accumulated, domain-separated byte string and
// returns the resulting Digest. The Builder must not be reused afterward.
func (b *Builder) Finalize() Digest {
	sum := sha256.Sum256(b.enc.Bytes())
	return Digest(sum)
}

// CommitRawBytes commits an arbitrary byte string under a caller-supplied
// domain, with no further field structure. pkg/block uses it to commit
// each nullifier proof's raw bytes; it corresponds to the original
// ledger's "commit arbitrary bytes" hook.
func CommitRawBytes(domain string, data []byte) Digest {
	return NewBuilder(domain).VarSizeField("bytes", data).Finalize()
}

// Package encoding implements the canonical, deterministic byte layout used
// to feed consensus-critical values into the commitment builder. It has no
// relationship to JSON, protobuf, or any other general-purpose wire format:
// its only job is to turn a fixed sequence of typed fields into one
// unambiguous byte string.
package encoding

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned by decode-side helpers when the input is shorter
// than the length it declares.
var ErrTruncated = errors.New("encoding: truncated input")

// Builder accumulates canonically-encoded fields into a single byte slice.
// It never allocates beyond what append requires and never returns an
// error: every method it exposes is total over its Go input types.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder, optionally pre-sized.
func NewBuilder(sizeHint int) *Builder {
	return &Builder{buf: make([]byte, 0, sizeHint)}
}

// U64 appends v as 8 bytes, big-endian.
func (b *Builder) U64(v uint64) *Builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

// Fixed appends data verbatim, with no length prefix. Use only for fields
// whose length is a compile-time constant known to both sides (a 32-byte
// digest, a field element).
func (b *Builder) Fixed(data []byte) *Builder {
	b.buf = append(b.buf, data...)
	return b
}

// VarBytes appends a uint64 length prefix followed by data, so the decoder
// can tell where this field ends regardless of its contents.
func (b *Builder) VarBytes(data []byte) *Builder {
	b.U64(uint64(len(data)))
	b.buf = append(b.buf, data...)
	return b
}

// Str is shorthand for VarBytes([]byte(s)), used for constant domain labels.
func (b *Builder) Str(s string) *Builder {
	return b.VarBytes([]byte(s))
}

// Bytes returns the accumulated encoding. The Builder remains usable after
// a call to Bytes.
func (b *Builder) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// Reader decodes a byte string produced by Builder. No code in this module
// calls it; the validator's hot path is write-only.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// U64 reads 8 big-endian bytes.
func (r *Reader) U64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

// Fixed reads exactly n bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, ErrTruncated
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// VarBytes reads a length-prefixed field.
func (r *Reader) VarBytes() ([]byte, error) {
	n, err := r.U64()
	if err != nil {
		return nil, err
	}
	return r.Fixed(int(n))
}

// Remaining reports whether any bytes are left to decode.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

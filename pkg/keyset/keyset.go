// Package keyset implements the size-indexed proving/verifying key lookup
// the validator uses to pick the right circuit key for a transfer or
// freeze note of a given shape. Because each note shape (number of inputs
// and outputs) requires its own compiled circuit and its own Groth16 key
// pair, keys are organized by size and looked up either by exact shape
// (KeyForSize, what the validator uses) or by "best fit" (BestFitKey): the
// smallest key whose sort key under Order is at least the requested one.
package keyset

import (
	"errors"
	"fmt"
)

// SizedKey is any key that was generated for a fixed number of inputs and
// outputs.
type SizedKey interface {
	NumInputs() int
	NumOutputs() int
}

// Size is a (numInputs, numOutputs) pair used both as a map key and as the
// argument to lookups.
type Size struct {
	NumInputs  int
	NumOutputs int
}

func (s Size) String() string {
	return fmt.Sprintf("(%d,%d)", s.NumInputs, s.NumOutputs)
}

// SortKey is the tuple an Order ranks keys by: the primary dimension first,
// the secondary dimension second.
type SortKey struct {
	Primary   int
	Secondary int
}

func (a SortKey) less(b SortKey) bool {
	if a.Primary != b.Primary {
		return a.Primary < b.Primary
	}
	return a.Secondary < b.Secondary
}

// Order picks which dimension of a key's shape is primary when ranking
// keys for best-fit lookup.
type Order interface {
	SortKeyOf(numInputs, numOutputs int) SortKey
}

// OrderByInputs ranks keys by input count first, then output count. Used
// for transfer keys, where the number of spent records is usually the
// binding constraint.
type OrderByInputs struct{}

// SortKeyOf implements Order.
func (OrderByInputs) SortKeyOf(numInputs, numOutputs int) SortKey {
	return SortKey{Primary: numInputs, Secondary: numOutputs}
}

// OrderByOutputs ranks keys by output count first, then input count. Used
// for freeze keys, where the number of produced records dominates.
type OrderByOutputs struct{}

// SortKeyOf implements Order.
func (OrderByOutputs) SortKeyOf(numInputs, numOutputs int) SortKey {
	return SortKey{Primary: numOutputs, Secondary: numInputs}
}

// ErrDuplicateKeys is returned by New when two keys in the input map to
// the same sort key under Order: there would be no way to tell them
// apart at lookup time.
var ErrDuplicateKeys = errors.New("keyset: duplicate keys for the same size ordering")

// ErrNoKeys is returned by New when given an empty key list; a KeySet must
// always have a maximum size to report.
var ErrNoKeys = errors.New("keyset: no keys provided")

// ErrNoFit is returned by KeyForSize/BestFitKey when no key can serve the
// requested shape.
var ErrNoFit = errors.New("keyset: no key large enough for the requested size")

type entry[K SizedKey] struct {
	sortKey SortKey
	key     K
}

// KeySet is an immutable, size-indexed collection of keys, ordered by Order
// and looked up either by exact shape or by best fit.
type KeySet[K SizedKey, O Order] struct {
	order   O
	entries []entry[K]
}

// New builds a KeySet from keys, rejecting duplicate sizes (under Order)
// and empty input.
func New[K SizedKey, O Order](order O, keys []K) (*KeySet[K, O], error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	entries := make([]entry[K], 0, len(keys))
	seen := make(map[SortKey]bool, len(keys))
	for _, k := range keys {
		sk := order.SortKeyOf(k.NumInputs(), k.NumOutputs())
		if seen[sk] {
			return nil, fmt.Errorf("%w: inputs=%d outputs=%d", ErrDuplicateKeys, k.NumInputs(), k.NumOutputs())
		}
		seen[sk] = true
		entries = append(entries, entry[K]{sortKey: sk, key: k})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].sortKey.less(entries[j-1].sortKey); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return &KeySet[K, O]{order: order, entries: entries}, nil
}

// MaxSize returns the shape of the largest key in the set. It never
// panics: New refuses to build an empty KeySet.
func (ks *KeySet[K, O]) MaxSize() Size {
	last := ks.entries[len(ks.entries)-1].key
	return Size{NumInputs: last.NumInputs(), NumOutputs: last.NumOutputs()}
}

// KeyForSize returns the key whose shape exactly matches (numInputs,
// numOutputs), or ErrNoFit if none does.
func (ks *KeySet[K, O]) KeyForSize(numInputs, numOutputs int) (K, error) {
	target := ks.order.SortKeyOf(numInputs, numOutputs)
	for _, e := range ks.entries {
		if e.sortKey == target {
			return e.key, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("%w: %s", ErrNoFit, Size{numInputs, numOutputs})
}

// BestFitKey returns the smallest key (in Order's ranking) whose sort key
// is greater than or equal to the requested shape's. The comparison is
// lexicographic (primary, then secondary), so the returned key's secondary
// dimension can be smaller than requested. It returns ErrNoFit, reporting
// MaxSize, when no key ranks at or above the requested shape.
func (ks *KeySet[K, O]) BestFitKey(numInputs, numOutputs int) (K, error) {
	target := ks.order.SortKeyOf(numInputs, numOutputs)
	for _, e := range ks.entries {
		if !e.sortKey.less(target) {
			return e.key, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("%w: max supported size is %s", ErrNoFit, ks.MaxSize())
}

// Sizes returns the shapes of every key in the set, in ascending Order.
// Supplements the original ledger's KeySet::iter, used by genesis tooling
// to describe what sizes a deployment supports.
func (ks *KeySet[K, O]) Sizes() []Size {
	out := make([]Size, len(ks.entries))
	for i, e := range ks.entries {
		out[i] = Size{NumInputs: e.key.NumInputs(), NumOutputs: e.key.NumOutputs()}
	}
	return out
}

// Package nullset implements the sparse nullifier set: a 256-level Merkle
// tree indexed by nullifier value, where membership means "already spent".
// The validator never materializes this tree itself, it only ever sees a
// root digest plus caller-supplied proofs, exactly as the ledger state
// machine's nullifiers_root field carries no companion tree.
package nullset

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"

	"github.com/cap-chain/validator/pkg/commitment"
)

// Height is the number of levels in the sparse tree, one per bit of a
// 256-bit nullifier.
const Height = 256

// Nullifier is a spent-output tag. Two transactions that reveal the same
// nullifier are a double-spend.
type Nullifier [32]byte

// Root is the commitment to the current set of spent nullifiers.
type Root = commitment.Digest

var (
	// ErrProofMismatch means a proof was presented for a different
	// nullifier than the one being checked.
	ErrProofMismatch = errors.New("nullset: proof nullifier mismatch")
	// ErrBadProof means a proof does not recompute to the claimed root
	// under either the present or absent hypothesis.
	ErrBadProof = errors.New("nullset: proof does not match root")
	// ErrAlreadySpent means the nullifier a multi-insert batch is trying
	// to add is already present in the set.
	ErrAlreadySpent = errors.New("nullset: nullifier already spent")
	// ErrDuplicateInBatch means the same nullifier appears twice in one
	// multi-insert call.
	ErrDuplicateInBatch = errors.New("nullset: duplicate nullifier in batch")
)

var (
	emptyLeaf = sha256.Sum256([]byte("nullset:empty-leaf"))
	memberTag = []byte("nullset:member-leaf:")
)

// zeroHashes[level] is the digest of a subtree of that height in which
// every leaf is emptyLeaf, i.e. a subtree nothing has ever been inserted
// into. zeroHashes[Height] is therefore the unique root of a nullifier set
// with nothing spent, the value a fresh genesis state commits to.
var zeroHashes [Height + 1][32]byte

func init() {
	zeroHashes[0] = emptyLeaf
	for level := 1; level <= Height; level++ {
		zeroHashes[level] = hashNode(zeroHashes[level-1], zeroHashes[level-1])
	}
}

// EmptyRoot is the nullifier set root before any nullifier has ever been
// spent. Genesis validator states commit to this value, not the all-zero
// digest: an actual sparse-tree root folded up from 256 levels of
// never-inserted subtrees is a specific SHA-256 value, not the zero byte
// string.
func EmptyRoot() Root {
	return Root(zeroHashes[Height])
}

func memberLeaf(n Nullifier) [32]byte {
	h := sha256.New()
	h.Write(memberTag)
	h.Write(n[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashNode(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// bitAt returns the bit of n used to route at tree level, where level 0 is
// adjacent to the leaf and level Height-1 is adjacent to the root.
func bitAt(n Nullifier, level int) int {
	idx := Height - 1 - level
	return int((n[idx/8] >> uint(7-idx%8)) & 1)
}

// Proof is a Merkle path from a nullifier's leaf position to the root, one
// sibling digest per level. The same proof serves both as a membership and
// a non-membership witness: Check tries both leaf hypotheses.
type Proof struct {
	Nullifier Nullifier
	Siblings  [Height][32]byte
}

// EmptyProof returns the canonical non-membership proof for n against
// EmptyRoot(): every sibling is the zero-hash for its level, since no
// nullifier has ever touched any subtree. Provers use this to spend a
// nullifier for the first time against a freshly initialized validator
// state, before any MultiInsert has run.
func EmptyProof(n Nullifier) Proof {
	p := Proof{Nullifier: n}
	for level := 0; level < Height; level++ {
		p.Siblings[level] = zeroHashes[level]
	}
	return p
}

func computeRoot(p *Proof, leaf [32]byte) [32]byte {
	cur := leaf
	for level := 0; level < Height; level++ {
		if bitAt(p.Nullifier, level) == 0 {
			cur = hashNode(cur, p.Siblings[level])
		} else {
			cur = hashNode(p.Siblings[level], cur)
		}
	}
	return cur
}

// Check reports whether n is present in the set committed to by root,
// given proof. It returns ErrBadProof if proof is inconsistent with root
// under both hypotheses, which the caller should treat as a validation
// failure rather than "probably absent".
func Check(n Nullifier, proof *Proof, root Root) (present bool, err error) {
	if proof.Nullifier != n {
		return false, ErrProofMismatch
	}
	asAbsent := computeRoot(proof, emptyLeaf)
	if bytes.Equal(asAbsent[:], root[:]) {
		return false, nil
	}
	asPresent := computeRoot(proof, memberLeaf(n))
	if bytes.Equal(asPresent[:], root[:]) {
		return true, nil
	}
	return false, ErrBadProof
}

func prefixKey(n Nullifier, level int) string {
	keepBits := Height - level
	fullBytes := keepBits / 8
	remBits := keepBits % 8
	buf := make([]byte, fullBytes, fullBytes+1)
	copy(buf, n[:fullBytes])
	if remBits > 0 {
		mask := byte(0xFF << uint(8-remBits))
		buf = append(buf, n[fullBytes]&mask)
	}
	return strconv.Itoa(level) + ":" + string(buf)
}

func flippedBit(n Nullifier, level int) Nullifier {
	idx := Height - 1 - level
	out := n
	out[idx/8] ^= 1 << uint(7-idx%8)
	return out
}

func siblingKey(n Nullifier, level int) string {
	return prefixKey(flippedBit(n, level), level)
}

// MultiInsert inserts every nullifier in pairs into the set committed to by
// prevRoot, each proof attesting (against prevRoot) that the nullifier was
// previously absent. It returns the new root reflecting all insertions, or
// an error if any proof is invalid, any nullifier is already spent, or the
// same nullifier appears twice in the batch.
//
// Proofs whose paths share an internal node (nullifiers agreeing on a long
// common bit-prefix) are reconciled against each other rather than applied
// independently, so the result is correct even when a batch touches more
// than one leaf under the same subtree.
func MultiInsert(pairs []Proof, prevRoot Root) (Root, error) {
	if len(pairs) == 0 {
		return prevRoot, nil
	}

	seen := make(map[Nullifier]bool, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		if seen[p.Nullifier] {
			return Root{}, fmt.Errorf("%w: %x", ErrDuplicateInBatch, p.Nullifier[:])
		}
		seen[p.Nullifier] = true
		present, err := Check(p.Nullifier, p, prevRoot)
		if err != nil {
			return Root{}, err
		}
		if present {
			return Root{}, fmt.Errorf("%w: %x", ErrAlreadySpent, p.Nullifier[:])
		}
	}

	known := make(map[string][32]byte, len(pairs)*Height)
	for i := range pairs {
		p := &pairs[i]
		for level := 0; level < Height; level++ {
			sk := siblingKey(p.Nullifier, level)
			if existing, ok := known[sk]; ok {
				if existing != p.Siblings[level] {
					return Root{}, ErrBadProof
				}
				continue
			}
			known[sk] = p.Siblings[level]
		}
	}

	updated := make(map[string][32]byte, len(pairs)*Height)

	lookup := func(key string) ([32]byte, bool) {
		if v, ok := updated[key]; ok {
			return v, true
		}
		if v, ok := known[key]; ok {
			return v, true
		}
		return [32]byte{}, false
	}

	for i := range pairs {
		p := &pairs[i]
		leafKey := prefixKey(p.Nullifier, 0)
		updated[leafKey] = memberLeaf(p.Nullifier)
	}

	for level := 1; level <= Height; level++ {
		for i := range pairs {
			p := &pairs[i]
			mk := prefixKey(p.Nullifier, level)
			if _, done := updated[mk]; done {
				continue
			}
			childOwnKey := prefixKey(p.Nullifier, level-1)
			childOwn, ok := lookup(childOwnKey)
			if !ok {
				return Root{}, ErrBadProof
			}
			siblingK := siblingKey(p.Nullifier, level-1)
			childSibling, ok := lookup(siblingK)
			if !ok {
				return Root{}, ErrBadProof
			}
			var val [32]byte
			if bitAt(p.Nullifier, level-1) == 0 {
				val = hashNode(childOwn, childSibling)
			} else {
				val = hashNode(childSibling, childOwn)
			}
			updated[mk] = val
		}
	}

	rootKey := strconv.Itoa(Height) + ":"
	root, ok := updated[rootKey]
	if !ok {
		root, ok = known[rootKey]
		if !ok {
			return Root{}, ErrBadProof
		}
	}
	return Root(root), nil
}

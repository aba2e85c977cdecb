// Package recordtree implements the append-only record Merkle accumulator:
// an incremental binary tree of fixed height whose only retained state is
// a minimal frontier (one node per level), following the same push/root
// algorithm as the Ethereum deposit contract's incremental Merkle tree.
// That algorithm is "forgetful by construction": it never stores more
// than one digest per level regardless of how many leaves have been
// pushed, which is exactly the property the ledger's record accumulator
// requires. Old leaves (spent or otherwise) are never needed again once
// their uid has been produced.
//
// Leaves and node hashes live in the bn254 scalar field, hashed with
// MiMC, matching the field the confidential-transaction circuits in
// pkg/cap operate over.
package recordtree

import (
	"errors"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bn254mimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/cap-chain/validator/pkg/commitment"
)

// Height is the fixed depth of the record accumulator (spec-normative).
const Height = 20

// ErrFrontierMismatch is returned by RestoreFromFrontier when the supplied
// frontier does not reproduce the claimed commitment.
var ErrFrontierMismatch = errors.New("recordtree: frontier does not match commitment")

var zeroHashes [Height + 1]fr.Element

func init() {
	zeroHashes[0] = fr.Element{}
	for level := 1; level <= Height; level++ {
		zeroHashes[level] = hash2to1(zeroHashes[level-1], zeroHashes[level-1])
	}
}

func hash2to1(left, right fr.Element) fr.Element {
	h := bn254mimc.NewMiMC()
	lb := left.Bytes()
	rb := right.Bytes()
	h.Write(lb[:])
	h.Write(rb[:])
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// Frontier is the minimal state needed to resume pushing into a tree: one
// node per level plus the current leaf count.
type Frontier struct {
	NumLeaves uint64
	Branch    [Height]fr.Element
}

// Commitment is the value other components (the validator state, the
// commitment builder) actually reference: height, leaf count, and the
// current root, with no tree internals.
type Commitment struct {
	Height    uint64
	NumLeaves uint64
	RootValue commitment.Digest
}

// Tree is a live, mutable record accumulator.
type Tree struct {
	mu        sync.RWMutex
	numLeaves uint64
	branch    [Height]fr.Element
}

// New returns an empty tree (genesis frontier).
func New() *Tree {
	return &Tree{}
}

// RestoreFromFrontier reconstructs a live Tree from a previously exported
// Frontier, verifying that replaying it reproduces commit. This is the
// analogue of the original ledger's restore_from_frontier: the validator
// never keeps a live Tree between blocks, only a Commitment and a
// Frontier, and must rebuild the Tree before it can push new leaves.
func RestoreFromFrontier(commit Commitment, f Frontier) (*Tree, error) {
	if f.NumLeaves != commit.NumLeaves {
		return nil, ErrFrontierMismatch
	}
	t := &Tree{numLeaves: f.NumLeaves, branch: f.Branch}
	if t.rootDigest() != commit.RootValue {
		return nil, ErrFrontierMismatch
	}
	return t, nil
}

// NumLeaves reports how many leaves have been pushed.
func (t *Tree) NumLeaves() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numLeaves
}

// Push appends a new leaf and returns its assigned uid (its 0-based index
// in insertion order).
func (t *Tree) Push(leaf fr.Element) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	uid := t.numLeaves
	size := t.numLeaves + 1
	node := leaf
	for level := 0; level < Height; level++ {
		if size&1 == 1 {
			t.branch[level] = node
			break
		}
		node = hash2to1(t.branch[level], node)
		size >>= 1
	}
	t.numLeaves++
	return uid
}

// Forget discards any retained material for the leaf at uid. The frontier
// representation never retains individual leaves past their insertion, so
// this is a no-op kept for parity with the original accumulator's forget
// hook and to let callers express intent without special-casing it.
func (t *Tree) Forget(uid uint64) {
	_ = uid
}

// rootRaw recomputes the current root as a field element.
func (t *Tree) rootRaw() fr.Element {
	node := zeroHashes[0]
	size := t.numLeaves
	for level := 0; level < Height; level++ {
		if size&1 == 1 {
			node = hash2to1(t.branch[level], node)
		} else {
			node = hash2to1(node, zeroHashes[level])
		}
		size >>= 1
	}
	return node
}

func (t *Tree) rootDigest() commitment.Digest {
	b := t.rootRaw().Bytes()
	return commitment.Digest(b)
}

// Root returns the current root digest.
func (t *Tree) Root() commitment.Digest {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootDigest()
}

// Commitment captures the tree's current height, leaf count, and root.
func (t *Tree) Commitment() Commitment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Commitment{Height: Height, NumLeaves: t.numLeaves, RootValue: t.rootDigest()}
}

// Frontier exports the tree's current minimal state, sufficient to resume
// pushing via RestoreFromFrontier.
func (t *Tree) Frontier() Frontier {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Frontier{NumLeaves: t.numLeaves, Branch: t.branch}
}

// Commit computes the domain-separated commitment to a RecordMerkleCommitment
// value, matching the ledger state's "RMT Comm" domain.
func (c Commitment) Commit() commitment.Digest {
	return commitment.NewBuilder("RMT Comm").
		U64Field("height", c.Height).
		U64Field("num_leaves", c.NumLeaves).
		VarSizeField("root_value", c.RootValue.Bytes()).
		Finalize()
}

// Commit computes the domain-separated commitment to a RecordMerkleFrontier
// value ("RMFrontier"), distinguishing the empty case from a populated one
// exactly as the original ledger's MerkleFrontier enum does.
func (f Frontier) Commit() commitment.Digest {
	b := commitment.NewBuilder("RMFrontier")
	if f.NumLeaves == 0 {
		return b.ConstantStr("empty height").U64Field("height", Height).Finalize()
	}
	b.ConstantStr("leaf")
	last := f.Branch[0]
	for level := 0; level < Height; level++ {
		if (f.NumLeaves>>uint(level))&1 == 1 {
			last = f.Branch[level]
		}
	}
	lb := last.Bytes()
	b.VarSizeField("leaf", lb[:])
	b.ConstantStr("path")
	for level := 0; level < Height; level++ {
		pb := f.Branch[level].Bytes()
		b.VarSizeField("path_step", pb[:])
	}
	return b.Finalize()
}

// History is the bounded window of past roots the validator tolerates
// transactions being built against, most-recent-first.
type History struct {
	Roots []commitment.Digest
}

// Commit computes the domain-separated commitment to a RecordMerkleHistory
// value ("Hist Comm"), in root order (most recent first).
func (h History) Commit() commitment.Digest {
	b := commitment.NewBuilder("Hist Comm").ConstantStr("roots").U64Field("len", uint64(len(h.Roots)))
	for _, r := range h.Roots {
		b.VarSizeField("root", r.Bytes())
	}
	return b.Finalize()
}

// Contains reports whether root appears anywhere in the history window.
func (h History) Contains(root commitment.Digest) bool {
	for _, r := range h.Roots {
		if r == root {
			return true
		}
	}
	return false
}

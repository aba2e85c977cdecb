// Package block implements block assembly: grouping transaction notes into
// a Block, pairing each spent nullifier with its non-membership proof to
// form an ElaboratedBlock, and rejecting a block outright if two of its
// own transactions try to spend the same nullifier.
package block

import (
	"errors"
	"fmt"

	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/commitment"
	"github.com/cap-chain/validator/pkg/nullset"
)

// ErrConflictingNullifiers is returned when a transaction being added to a
// block spends a nullifier already spent earlier in the same block.
var ErrConflictingNullifiers = errors.New("block: conflicting nullifiers within block")

// Block is an ordered sequence of transaction notes with no proof data
// attached, the commitment-bearing content of a block.
type Block struct {
	Notes []*cap.TransactionNote
}

// Commit computes the domain-separated commitment to the block ("Block
// Comm"), an array of each note's own commitment in order.
func (b Block) Commit() commitment.Digest {
	ds := make([]commitment.Digest, len(b.Notes))
	for i, n := range b.Notes {
		ds[i] = CommitNote(n)
	}
	return commitment.NewBuilder("Block Comm").ArrayField("txns", ds).Finalize()
}

// CommitNote commits a single transaction note's content (its kind,
// spent nullifiers, and produced output commitments), independent of any
// block it might end up in.
func CommitNote(n *cap.TransactionNote) commitment.Digest {
	b := commitment.NewBuilder("TransactionNote Comm").U64Field("kind", uint64(n.Kind))
	nullDigests := make([]commitment.Digest, len(n.InputNullifiers))
	for i, nf := range n.InputNullifiers {
		nullDigests[i] = commitment.Digest(nf)
	}
	b.ArrayField("nullifiers", nullDigests)
	outDigests := make([]commitment.Digest, len(n.OutputCommitments))
	for i, oc := range n.OutputCommitments {
		outDigests[i] = commitment.Digest(oc)
	}
	b.ArrayField("outputs", outDigests)
	return b.Finalize()
}

// ElaboratedTransaction pairs one note with the nullifier-set proofs
// backing each of its spent nullifiers.
type ElaboratedTransaction struct {
	Note   *cap.TransactionNote
	Proofs []nullset.Proof
}

// Commit computes the domain-separated commitment to an elaborated
// transaction ("ElaboratedTransaction Comm"), covering both its content
// and its accompanying proofs, a per-transaction commit alongside the
// block-level one.
func (t ElaboratedTransaction) Commit() commitment.Digest {
	b := commitment.NewBuilder("ElaboratedTransaction Comm").
		Field("txn contents", CommitNote(t.Note))
	proofDigests := make([]commitment.Digest, len(t.Proofs))
	for i, p := range t.Proofs {
		proofDigests[i] = commitment.CommitRawBytes("nullifier proof", proofBytes(p))
	}
	b.ArrayField("txn proofs", proofDigests)
	return b.Finalize()
}

func proofBytes(p nullset.Proof) []byte {
	out := make([]byte, 0, 32+len(p.Siblings)*32)
	out = append(out, p.Nullifier[:]...)
	for _, s := range p.Siblings {
		out = append(out, s[:]...)
	}
	return out
}

// ElaboratedBlock is a Block together with, for each transaction, the
// nullifier-set proofs backing its spent nullifiers, everything the
// validator needs to check and apply the block in one pass.
type ElaboratedBlock struct {
	Block     Block
	TxnProofs [][]nullset.Proof
}

// Commit computes the domain-separated commitment to an elaborated block
// ("ElaboratedBlock"): the block's own content commitment plus a
// commitment over the flattened proof material.
func (e ElaboratedBlock) Commit() commitment.Digest {
	var flat []byte
	for _, txnProofs := range e.TxnProofs {
		for _, p := range txnProofs {
			flat = append(flat, proofBytes(p)...)
		}
	}
	return commitment.NewBuilder("ElaboratedBlock").
		Field("block contents", e.Block.Commit()).
		VarSizeField("block proofs", flat).
		Finalize()
}

// NewElaboratedBlock starts an empty block builder.
func NewElaboratedBlock() *ElaboratedBlock {
	return &ElaboratedBlock{}
}

// AddTransaction appends note (with its nullifier proofs) to the block,
// rejecting it with ErrConflictingNullifiers if any nullifier it spends
// was already spent earlier in this same block.
func (e *ElaboratedBlock) AddTransaction(note *cap.TransactionNote, proofs []nullset.Proof) error {
	spent := make(map[nullset.Nullifier]bool)
	for _, txn := range e.Block.Notes {
		for _, n := range txn.InputNullifiers {
			spent[n] = true
		}
	}
	for _, n := range note.InputNullifiers {
		if spent[n] {
			return fmt.Errorf("%w: %x", ErrConflictingNullifiers, n[:])
		}
		spent[n] = true
	}
	e.Block.Notes = append(e.Block.Notes, note)
	e.TxnProofs = append(e.TxnProofs, proofs)
	return nil
}

// FlattenNullifierPairs returns every (nullifier, proof) pair across the
// whole elaborated block, in transaction order, as pkg/nullset.MultiInsert
// expects.
func (e ElaboratedBlock) FlattenNullifierPairs() []nullset.Proof {
	var out []nullset.Proof
	for _, proofs := range e.TxnProofs {
		out = append(out, proofs...)
	}
	return out
}

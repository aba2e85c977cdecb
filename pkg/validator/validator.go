// Package validator implements the ledger validator state machine: the
// single-threaded core that checks a proposed block against the current
// state and, if it passes, produces the next state. It performs no I/O,
// holds no connections, and suspends on nothing: every exported method
// runs to completion synchronously (see pkg/consensusadapter for the
// surface a consensus engine actually drives).
package validator

import (
	"fmt"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/commitment"
	"github.com/cap-chain/validator/pkg/nullset"
	"github.com/cap-chain/validator/pkg/recordtree"
)

// RecordRootHistorySize bounds how many past record-tree roots a
// validator tolerates a transaction being built against, most recent
// first. Fixed at 10, taken from the ledger this was modeled on.
const RecordRootHistorySize = 10

// State is the validator's full state: everything needed to check and
// apply the next block, and everything committed to by Commit.
type State struct {
	PrevCommitTime         uint64
	PrevState              *commitment.Digest
	VerifCRS               VerifierKeySet
	RecordMerkleCommitment recordtree.Commitment
	RecordMerkleFrontier   recordtree.Frontier
	PastRecordMerkleRoots  recordtree.History
	NullifiersRoot         nullset.Root
	PrevBlock              commitment.Digest
}

// New returns the genesis state for a deployment with the given verifying
// key set and an empty record accumulator.
func New(verifCRS VerifierKeySet, tree *recordtree.Tree) *State {
	return &State{
		PrevCommitTime:         0,
		PrevState:              nil,
		VerifCRS:               verifCRS,
		RecordMerkleCommitment: tree.Commitment(),
		RecordMerkleFrontier:   tree.Frontier(),
		PastRecordMerkleRoots:  recordtree.History{},
		NullifiersRoot:         nullset.EmptyRoot(),
		PrevBlock:              block.Block{}.Commit(),
	}
}

// Commit computes the single digest that identifies this entire state:
// the ledger state commitment every validator running this chain must
// agree on bit-for-bit. Field order here is normative; changing it
// changes every past commitment.
func (s *State) Commit() commitment.Digest {
	b := commitment.NewBuilder("Ledger Comm").U64Field("prev_commit_time", s.PrevCommitTime)
	var prevArr []commitment.Digest
	if s.PrevState != nil {
		prevArr = []commitment.Digest{*s.PrevState}
	}
	b.ArrayField("prev_state", prevArr)
	b.Field("verif_crs", s.VerifCRS.Commit())
	b.Field("record_merkle_commitment", s.RecordMerkleCommitment.Commit())
	b.Field("record_merkle_frontier", s.RecordMerkleFrontier.Commit())
	b.Field("past_record_merkle_roots", s.PastRecordMerkleRoots.Commit())
	b.Field("nullifiers", s.NullifiersRoot)
	b.Field("prev_block", s.PrevBlock)
	return b.Finalize()
}

// Equal reports whether two states commit to the same digest. Supplements
// the original ledger's PartialEq/Hash-via-commitment, useful for tests
// and for the consensus adapter's "did anything change" checks.
func (s *State) Equal(other *State) bool {
	return s.Commit() == other.Commit()
}

func (s *State) verifyKeyFor(n *cap.TransactionNote) (*cap.VerifyingKey, error) {
	switch n.Kind {
	case cap.KindMint:
		if s.VerifCRS.Mint == nil {
			return nil, &ValidationError{Kind: KindUnsupportedTransferSize, NumInputs: n.NumInputs(), NumOutputs: n.NumOutputs()}
		}
		return s.VerifCRS.Mint, nil
	case cap.KindTransfer:
		if s.VerifCRS.Xfr == nil {
			return nil, &ValidationError{Kind: KindUnsupportedTransferSize, NumInputs: n.NumInputs(), NumOutputs: n.NumOutputs()}
		}
		vk, err := s.VerifCRS.Xfr.KeyForSize(n.NumInputs(), n.NumOutputs())
		if err != nil {
			return nil, &ValidationError{Kind: KindUnsupportedTransferSize, NumInputs: n.NumInputs(), NumOutputs: n.NumOutputs()}
		}
		return vk, nil
	case cap.KindFreeze:
		if s.VerifCRS.Freeze == nil {
			return nil, &ValidationError{Kind: KindUnsupportedFreezeSize, NumInputs: n.NumInputs()}
		}
		vk, err := s.VerifCRS.Freeze.KeyForSize(n.NumInputs(), n.NumOutputs())
		if err != nil {
			return nil, &ValidationError{Kind: KindUnsupportedFreezeSize, NumInputs: n.NumInputs()}
		}
		return vk, nil
	default:
		return nil, &ValidationError{Kind: KindFailed, Err: fmt.Errorf("unknown note kind %v", n.Kind)}
	}
}

// rootIsKnown reports whether root is either the current record root or
// within the tolerated history window.
func (s *State) rootIsKnown(root commitment.Digest) bool {
	if root == s.RecordMerkleCommitment.RootValue {
		return true
	}
	return s.PastRecordMerkleRoots.Contains(root)
}

// ValidateBlockCheck checks eb against the state as of now, without
// mutating s. now must be s.PrevCommitTime+1 for a block destined to be
// applied immediately after this check (the convention the consensus
// adapter follows); ValidateBlockCheck itself does not enforce that
// relationship, since replay/simulation callers may want to check a block
// against an already-committed now.
func (s *State) ValidateBlockCheck(now uint64, eb *block.ElaboratedBlock) error {
	seen := make(map[nullset.Nullifier]bool)
	for _, txnProofs := range eb.TxnProofs {
		for _, p := range txnProofs {
			if seen[p.Nullifier] {
				n := p.Nullifier
				return &ValidationError{Kind: KindNullifierAlreadyExists, Nullifier: &n}
			}
			present, err := nullset.Check(p.Nullifier, &p, s.NullifiersRoot)
			if err != nil {
				return &ValidationError{Kind: KindBadNullifierProof}
			}
			if present {
				n := p.Nullifier
				return &ValidationError{Kind: KindNullifierAlreadyExists, Nullifier: &n}
			}
			seen[p.Nullifier] = true
		}
	}

	if len(eb.Block.Notes) != len(eb.TxnProofs) {
		return &ValidationError{Kind: KindMissingNullifierProof}
	}
	for i, n := range eb.Block.Notes {
		if len(eb.TxnProofs[i]) != n.NumInputs() {
			return &ValidationError{Kind: KindMissingNullifierProof}
		}
	}

	notes := make([]*cap.TransactionNote, 0, len(eb.Block.Notes))
	vks := make([]*cap.VerifyingKey, 0, len(eb.Block.Notes))
	for _, n := range eb.Block.Notes {
		if !s.rootIsKnown(n.MerkleRoot) {
			return &ValidationError{Kind: KindBadMerkleRoot}
		}
		vk, err := s.verifyKeyFor(n)
		if err != nil {
			return err
		}
		notes = append(notes, n)
		vks = append(vks, vk)
	}

	if len(notes) == 0 {
		return nil
	}

	if err := cap.BatchVerify(notes, vks, now); err != nil {
		return &ValidationError{Kind: KindCryptoError, Err: err}
	}
	return nil
}

// ValidateAndApply checks eb exactly as ValidateBlockCheck does and, only
// if that check passes, mutates s into the next state and returns the
// uids assigned to every output produced by eb, in transaction/output
// order. On any validation failure s is left completely unchanged.
func (s *State) ValidateAndApply(now uint64, eb *block.ElaboratedBlock) ([]uint64, error) {
	if err := s.ValidateBlockCheck(now, eb); err != nil {
		return nil, err
	}

	prevCommit := s.Commit()

	tree, err := recordtree.RestoreFromFrontier(s.RecordMerkleCommitment, s.RecordMerkleFrontier)
	if err != nil {
		return nil, &ValidationError{Kind: KindBadMerklePath}
	}

	newRoot, err := nullset.MultiInsert(eb.FlattenNullifierPairs(), s.NullifiersRoot)
	if err != nil {
		return nil, &ValidationError{Kind: KindBadNullifierProof}
	}

	preApplyRoot := s.RecordMerkleCommitment.RootValue
	uids := make([]uint64, 0)
	uid := s.RecordMerkleCommitment.NumLeaves
	for _, note := range eb.Block.Notes {
		for _, oc := range note.OutputCommitments {
			got := tree.Push(oc.ToFieldElement())
			if got != uid {
				return nil, &ValidationError{Kind: KindBadMerkleLeaf}
			}
			if uid > 0 {
				tree.Forget(uid - 1)
			}
			uids = append(uids, uid)
			uid++
		}
	}

	if len(s.PastRecordMerkleRoots.Roots) >= RecordRootHistorySize {
		s.PastRecordMerkleRoots.Roots = s.PastRecordMerkleRoots.Roots[:RecordRootHistorySize-1]
	}
	s.PastRecordMerkleRoots.Roots = append([]commitment.Digest{preApplyRoot}, s.PastRecordMerkleRoots.Roots...)

	s.PrevCommitTime = now
	s.PrevBlock = eb.Block.Commit()
	s.NullifiersRoot = newRoot
	s.RecordMerkleCommitment = tree.Commitment()
	s.RecordMerkleFrontier = tree.Frontier()
	s.PrevState = &prevCommit

	return uids, nil
}

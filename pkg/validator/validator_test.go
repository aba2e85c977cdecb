package validator

import (
	"testing"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/nullset"
	"github.com/cap-chain/validator/pkg/recordtree"
)

func genesisState(t *testing.T) *State {
	t.Helper()
	return New(VerifierKeySet{}, recordtree.New())
}

func TestGenesisCommitIsStable(t *testing.T) {
	a := genesisState(t)
	b := genesisState(t)
	if !a.Equal(b) {
		t.Fatalf("two freshly constructed genesis states do not commit equally")
	}
}

func TestEmptyBlockValidatesAndAppliesToUnchangedCommitment(t *testing.T) {
	s := genesisState(t)
	before := s.Commit()
	eb := block.NewElaboratedBlock()
	uids, err := s.ValidateAndApply(1, eb)
	if err != nil {
		t.Fatalf("unexpected error applying empty block: %v", err)
	}
	if len(uids) != 0 {
		t.Fatalf("expected no uids from an empty block, got %v", uids)
	}
	if s.PrevCommitTime != 1 {
		t.Fatalf("expected prev_commit_time=1, got %d", s.PrevCommitTime)
	}
	if s.PrevState == nil || *s.PrevState != before {
		t.Fatalf("prev_state should capture the pre-apply commitment")
	}
}

func TestValidateAndApplyDoesNotMutateOnFailure(t *testing.T) {
	s := genesisState(t)
	before := s.Commit()

	eb := block.NewElaboratedBlock()
	note := &cap.TransactionNote{Kind: cap.KindTransfer}
	note.InputNullifiers = []nullset.Nullifier{{9}}
	note.OutputCommitments = []cap.RecordCommitment{{1}}
	if err := eb.AddTransaction(note, []nullset.Proof{{Nullifier: note.InputNullifiers[0]}}); err != nil {
		t.Fatalf("unexpected error building block: %v", err)
	}

	if _, err := s.ValidateAndApply(1, eb); err == nil {
		t.Fatalf("expected validation to fail for a nullifier proof that does not match the nullifier root")
	}
	if s.Commit() != before {
		t.Fatalf("state was mutated despite validation failure")
	}
}

func TestDoubleSpendWithinSameBlockRejected(t *testing.T) {
	eb := block.NewElaboratedBlock()
	var nf nullset.Nullifier
	nf[0] = 42
	note1 := &cap.TransactionNote{Kind: cap.KindTransfer, InputNullifiers: []nullset.Nullifier{nf}, OutputCommitments: []cap.RecordCommitment{{1}}}
	if err := eb.AddTransaction(note1, []nullset.Proof{{Nullifier: nf}}); err != nil {
		t.Fatalf("unexpected error adding first txn: %v", err)
	}
	note2 := &cap.TransactionNote{Kind: cap.KindTransfer, InputNullifiers: []nullset.Nullifier{nf}, OutputCommitments: []cap.RecordCommitment{{2}}}
	if err := eb.AddTransaction(note2, []nullset.Proof{{Nullifier: nf}}); err == nil {
		t.Fatalf("expected conflicting-nullifier rejection at block-assembly time")
	}
}

func TestStateInvariantsHoldAtGenesis(t *testing.T) {
	s := genesisState(t)
	if err := VerifyStateInvariants(s); err != nil {
		t.Fatalf("genesis state violates invariants: %v", err)
	}
}

func TestHistoryWindowBounded(t *testing.T) {
	s := genesisState(t)
	for i := uint64(0); i < RecordRootHistorySize+3; i++ {
		eb := block.NewElaboratedBlock()
		if _, err := s.ValidateAndApply(i+1, eb); err != nil {
			t.Fatalf("unexpected error at iteration %d: %v", i, err)
		}
		if len(s.PastRecordMerkleRoots.Roots) > RecordRootHistorySize {
			t.Fatalf("history window exceeded bound: %d entries", len(s.PastRecordMerkleRoots.Roots))
		}
	}
	if err := VerifyStateInvariants(s); err != nil {
		t.Fatalf("state violates invariants after many blocks: %v", err)
	}
}

package consensusadapter

import (
	"testing"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/recordtree"
	"github.com/cap-chain/validator/pkg/validator"
)

func TestAdapterAppendEnforcesNowConvention(t *testing.T) {
	s := validator.New(validator.VerifierKeySet{}, recordtree.New())
	a := New(s)

	if _, err := a.Append(5, block.NewElaboratedBlock()); err == nil {
		t.Fatalf("expected rejection for out-of-sequence now")
	}
	if _, err := a.Append(1, block.NewElaboratedBlock()); err != nil {
		t.Fatalf("unexpected error appending at the correct now: %v", err)
	}
	if s.PrevCommitTime != 1 {
		t.Fatalf("expected prev_commit_time=1, got %d", s.PrevCommitTime)
	}
}

func TestAdapterValidateBlockDoesNotMutate(t *testing.T) {
	s := validator.New(validator.VerifierKeySet{}, recordtree.New())
	a := New(s)
	before := s.Commit()
	if !a.ValidateBlock(1, block.NewElaboratedBlock()) {
		t.Fatalf("expected empty block to validate")
	}
	if s.Commit() != before {
		t.Fatalf("ValidateBlock must not mutate state")
	}
}

package recordtree

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/cap-chain/validator/pkg/commitment"
)

func leafAt(i uint64) fr.Element {
	var e fr.Element
	e.SetUint64(i + 1)
	return e
}

func TestEmptyTreeRootStable(t *testing.T) {
	a := New().Root()
	b := New().Root()
	if a != b {
		t.Fatalf("two empty trees produced different roots")
	}
}

func TestPushChangesRoot(t *testing.T) {
	tr := New()
	r0 := tr.Root()
	tr.Push(leafAt(0))
	r1 := tr.Root()
	if r0 == r1 {
		t.Fatalf("root did not change after push")
	}
}

func TestPushAssignsSequentialUIDs(t *testing.T) {
	tr := New()
	for i := uint64(0); i < 5; i++ {
		uid := tr.Push(leafAt(i))
		if uid != i {
			t.Fatalf("expected uid %d, got %d", i, uid)
		}
	}
	if tr.NumLeaves() != 5 {
		t.Fatalf("expected 5 leaves, got %d", tr.NumLeaves())
	}
}

func TestDeterministicAcrossIndependentBuilds(t *testing.T) {
	a := New()
	b := New()
	for i := uint64(0); i < 17; i++ {
		a.Push(leafAt(i))
		b.Push(leafAt(i))
	}
	if a.Root() != b.Root() {
		t.Fatalf("two trees built from the same leaves diverged")
	}
}

func TestRestoreFromFrontierRoundTrip(t *testing.T) {
	tr := New()
	for i := uint64(0); i < 9; i++ {
		tr.Push(leafAt(i))
	}
	commit := tr.Commitment()
	frontier := tr.Frontier()

	restored, err := RestoreFromFrontier(commit, frontier)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Root() != tr.Root() {
		t.Fatalf("restored tree root mismatch")
	}

	restored.Push(leafAt(9))
	tr.Push(leafAt(9))
	if restored.Root() != tr.Root() {
		t.Fatalf("restored tree diverged after further push")
	}
}

func TestRestoreFromFrontierRejectsTamperedCommitment(t *testing.T) {
	tr := New()
	tr.Push(leafAt(0))
	commit := tr.Commitment()
	frontier := tr.Frontier()

	commit.NumLeaves = 99
	if _, err := RestoreFromFrontier(commit, frontier); err == nil {
		t.Fatalf("expected error restoring tampered commitment")
	}
}

func TestCommitmentCommitIsDeterministic(t *testing.T) {
	tr := New()
	tr.Push(leafAt(0))
	c1 := tr.Commitment().Commit()
	c2 := tr.Commitment().Commit()
	if c1 != c2 {
		t.Fatalf("commitment of an unchanged tree is not stable")
	}
}

func TestHistoryContains(t *testing.T) {
	tr := New()
	var h History
	h.Roots = append(h.Roots, tr.Root())
	tr.Push(leafAt(0))
	h.Roots = append([]commitment.Digest{tr.Root()}, h.Roots...)
	if !h.Contains(tr.Root()) {
		t.Fatalf("expected current root to be present in history")
	}
}

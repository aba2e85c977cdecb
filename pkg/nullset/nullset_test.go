package nullset

import "testing"

func nf(b byte) Nullifier {
	var n Nullifier
	n[31] = b
	return n
}

func TestEmptyProofChecksAbsentAgainstEmptyRoot(t *testing.T) {
	n := nf(1)
	p := EmptyProof(n)
	present, err := Check(n, &p, EmptyRoot())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if present {
		t.Fatalf("expected nullifier to be reported absent in an empty set")
	}
}

func TestCheckRejectsMismatchedNullifier(t *testing.T) {
	p := EmptyProof(nf(1))
	_, err := Check(nf(2), &p, EmptyRoot())
	if err != ErrProofMismatch {
		t.Fatalf("expected ErrProofMismatch, got %v", err)
	}
}

func TestCheckRejectsBadProof(t *testing.T) {
	n := nf(1)
	p := EmptyProof(n)
	p.Siblings[0][0] ^= 0xFF
	_, err := Check(n, &p, EmptyRoot())
	if err != ErrBadProof {
		t.Fatalf("expected ErrBadProof, got %v", err)
	}
}

func TestMultiInsertSingleNullifierChangesRoot(t *testing.T) {
	n := nf(1)
	p := EmptyProof(n)
	newRoot, err := MultiInsert([]Proof{p}, EmptyRoot())
	if err != nil {
		t.Fatalf("MultiInsert: %v", err)
	}
	if newRoot == EmptyRoot() {
		t.Fatalf("expected root to change after inserting a nullifier")
	}

	present, err := Check(n, &p, newRoot)
	if err != nil {
		t.Fatalf("Check against new root: %v", err)
	}
	if !present {
		t.Fatalf("expected n to verify as present against the root that just absorbed it")
	}
}

func TestMultiInsertRejectsDuplicateInBatch(t *testing.T) {
	n := nf(1)
	p := EmptyProof(n)
	_, err := MultiInsert([]Proof{p, p}, EmptyRoot())
	if err == nil {
		t.Fatalf("expected rejection of duplicate nullifier within one batch")
	}
}

// farNullifier differs from nf(b) in its very first routing bit (the top
// bit the tree branches on right below the root), so its path shares no
// subtree with any nf(b) value below the root itself.
func farNullifier(b byte) Nullifier {
	n := nf(b)
	n[0] = 0x80
	return n
}

func TestMultiInsertOfDisjointNullifiersBothApply(t *testing.T) {
	a := EmptyProof(nf(1))
	b := EmptyProof(farNullifier(1))
	batched, err := MultiInsert([]Proof{a, b}, EmptyRoot())
	if err != nil {
		t.Fatalf("MultiInsert: %v", err)
	}

	// Because a and b's paths diverge at the very top of the tree, a's
	// insertion changes only one of b's siblings: the topmost one, which is
	// the root of a's half of the tree. Inserting a first and then b against
	// the resulting root, with that one sibling updated, must reach the same
	// final root as inserting both together.
	afterA, err := MultiInsert([]Proof{a}, EmptyRoot())
	if err != nil {
		t.Fatalf("MultiInsert (a alone): %v", err)
	}
	aHalf := memberLeaf(a.Nullifier)
	for level := 0; level < Height-1; level++ {
		if bitAt(a.Nullifier, level) == 0 {
			aHalf = hashNode(aHalf, zeroHashes[level])
		} else {
			aHalf = hashNode(zeroHashes[level], aHalf)
		}
	}
	bAfterA := b
	bAfterA.Siblings[Height-1] = aHalf
	sequential, err := MultiInsert([]Proof{bAfterA}, afterA)
	if err != nil {
		t.Fatalf("MultiInsert (b after a): %v", err)
	}
	if sequential != batched {
		t.Fatalf("expected batched and sequential insertion to reach the same root")
	}
}

func TestMultiInsertEmptyBatchIsNoop(t *testing.T) {
	root, err := MultiInsert(nil, EmptyRoot())
	if err != nil {
		t.Fatalf("MultiInsert: %v", err)
	}
	if root != EmptyRoot() {
		t.Fatalf("expected empty batch to leave the root unchanged")
	}
}

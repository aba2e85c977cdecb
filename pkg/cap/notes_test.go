package cap

import (
	"testing"

	"github.com/cap-chain/validator/pkg/nullset"
)

func TestNoteKindString(t *testing.T) {
	cases := map[NoteKind]string{
		KindMint:     "mint",
		KindTransfer: "transfer",
		KindFreeze:   "freeze",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("NoteKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestTransactionNoteShape(t *testing.T) {
	n := &TransactionNote{
		Kind:              KindTransfer,
		InputNullifiers:   []nullset.Nullifier{{1}, {2}, {3}},
		OutputCommitments: []RecordCommitment{{1}, {2}},
	}
	if n.NumInputs() != 3 {
		t.Fatalf("expected 3 inputs, got %d", n.NumInputs())
	}
	if n.NumOutputs() != 2 {
		t.Fatalf("expected 2 outputs, got %d", n.NumOutputs())
	}
}

func TestNewNoteCircuitShape(t *testing.T) {
	c := NewNoteCircuit(3, 2)
	if len(c.Nullifiers) != 3 || len(c.InputOpenings) != 3 {
		t.Fatalf("expected 3 input slots, got nullifiers=%d openings=%d", len(c.Nullifiers), len(c.InputOpenings))
	}
	if len(c.Outputs) != 2 || len(c.OutputOpenings) != 2 {
		t.Fatalf("expected 2 output slots, got outputs=%d openings=%d", len(c.Outputs), len(c.OutputOpenings))
	}
}

package keyset

import (
	"errors"
	"testing"
)

type fakeKey struct {
	inputs, outputs int
	id              string
}

func (k fakeKey) NumInputs() int  { return k.inputs }
func (k fakeKey) NumOutputs() int { return k.outputs }

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New[fakeKey](OrderByInputs{}, nil); err != ErrNoKeys {
		t.Fatalf("expected ErrNoKeys, got %v", err)
	}
}

func TestNewRejectsDuplicateSortKey(t *testing.T) {
	keys := []fakeKey{{inputs: 2, outputs: 3, id: "a"}, {inputs: 2, outputs: 3, id: "b"}}
	if _, err := New[fakeKey](OrderByInputs{}, keys); err == nil {
		t.Fatalf("expected duplicate-key error")
	}
}

func TestKeyForSizeExactMatch(t *testing.T) {
	keys := []fakeKey{{inputs: 2, outputs: 2, id: "a"}, {inputs: 3, outputs: 3, id: "b"}}
	ks, err := New[fakeKey](OrderByInputs{}, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k, err := ks.KeyForSize(3, 3)
	if err != nil || k.id != "b" {
		t.Fatalf("expected key b, got %+v err=%v", k, err)
	}
	if _, err := ks.KeyForSize(2, 3); !errors.Is(err, ErrNoFit) {
		t.Fatalf("expected ErrNoFit for mismatched shape, got %v", err)
	}
}

func TestBestFitKeyByInputs(t *testing.T) {
	keys := []fakeKey{
		{inputs: 2, outputs: 2, id: "small"},
		{inputs: 3, outputs: 3, id: "medium"},
		{inputs: 5, outputs: 5, id: "large"},
	}
	ks, err := New[fakeKey](OrderByInputs{}, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k, err := ks.BestFitKey(3, 1)
	if err != nil || k.id != "medium" {
		t.Fatalf("expected medium key, got %+v err=%v", k, err)
	}
	if _, err := ks.BestFitKey(6, 1); !errors.Is(err, ErrNoFit) {
		t.Fatalf("expected ErrNoFit beyond max size, got %v", err)
	}
}

func TestMaxSize(t *testing.T) {
	keys := []fakeKey{{inputs: 2, outputs: 2}, {inputs: 4, outputs: 4}}
	ks, err := New[fakeKey](OrderByInputs{}, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ks.MaxSize() != (Size{NumInputs: 4, NumOutputs: 4}) {
		t.Fatalf("unexpected max size: %+v", ks.MaxSize())
	}
}

func TestSizesAscending(t *testing.T) {
	keys := []fakeKey{{inputs: 4, outputs: 4}, {inputs: 2, outputs: 2}, {inputs: 3, outputs: 3}}
	ks, err := New[fakeKey](OrderByInputs{}, keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sizes := ks.Sizes()
	for i := 1; i < len(sizes); i++ {
		if sizes[i].NumInputs < sizes[i-1].NumInputs {
			t.Fatalf("sizes not ascending: %+v", sizes)
		}
	}
}

package commitment

import "testing"

func TestFinalizeIsDeterministic(t *testing.T) {
	build := func() Digest {
		return NewBuilder("Test Comm").
			U64Field("a", 7).
			VarSizeField("b", []byte("hello")).
			Finalize()
	}
	if build() != build() {
		t.Fatalf("expected identical field sequences to commit to the same digest")
	}
}

func TestDomainSeparation(t *testing.T) {
	a := NewBuilder("Domain A").U64Field("x", 1).Finalize()
	b := NewBuilder("Domain B").U64Field("x", 1).Finalize()
	if a == b {
		t.Fatalf("expected different domains to commit to different digests")
	}
}

func TestFieldOrderMatters(t *testing.T) {
	a := NewBuilder("Test Comm").U64Field("a", 1).U64Field("b", 2).Finalize()
	b := NewBuilder("Test Comm").U64Field("b", 2).U64Field("a", 1).Finalize()
	if a == b {
		t.Fatalf("expected field order to affect the resulting digest")
	}
}

func TestArrayFieldLengthIsCommitted(t *testing.T) {
	one := NewBuilder("Arr Comm").ArrayField("xs", []Digest{Zero}).Finalize()
	two := NewBuilder("Arr Comm").ArrayField("xs", []Digest{Zero, Zero}).Finalize()
	if one == two {
		t.Fatalf("expected arrays of different length to commit differently even with identical elements")
	}
}

func TestCommitRawBytesMatchesVarSizeFieldBuilder(t *testing.T) {
	raw := CommitRawBytes("Raw Comm", []byte("payload"))
	built := NewBuilder("Raw Comm").VarSizeField("bytes", []byte("payload")).Finalize()
	if raw != built {
		t.Fatalf("CommitRawBytes should match the equivalent manual VarSizeField construction")
	}
}

func TestStringIsHexPrefixed(t *testing.T) {
	d := NewBuilder("Str Comm").Finalize()
	s := d.String()
	if len(s) != 66 || s[:2] != "0x" {
		t.Fatalf("expected 0x-prefixed 64 hex chars, got %q", s)
	}
}

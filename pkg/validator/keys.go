package validator

import (
	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/commitment"
	"github.com/cap-chain/validator/pkg/keyset"
)

// VerifierKeySet holds every verifying key the validator needs: a single
// fixed-shape mint key, plus size-indexed transfer and freeze key sets.
// Mint notes always spend 0 inputs and produce a fixed number of outputs,
// so unlike transfer/freeze they need no KeySet lookup.
type VerifierKeySet struct {
	Mint   *cap.VerifyingKey
	Xfr    *keyset.KeySet[*cap.VerifyingKey, keyset.OrderByInputs]
	Freeze *keyset.KeySet[*cap.VerifyingKey, keyset.OrderByOutputs]
}

// Commit computes the domain-separated commitment to the whole verifying
// key set ("VerifCRS Comm"), so that the key set a validator is running
// with is itself bound into every state commitment it produces.
func (vks VerifierKeySet) Commit() commitment.Digest {
	b := commitment.NewBuilder("VerifCRS Comm")
	var buf []byte
	appendKey := func(k *cap.VerifyingKey) {
		if k == nil {
			return
		}
		var sink byteSink
		k.WriteVerifyingKey(&sink)
		buf = append(buf, sink...)
	}
	appendKey(vks.Mint)
	if vks.Xfr != nil {
		for _, s := range vks.Xfr.Sizes() {
			k, err := vks.Xfr.KeyForSize(s.NumInputs, s.NumOutputs)
			if err == nil {
				appendKey(k)
			}
		}
	}
	if vks.Freeze != nil {
		for _, s := range vks.Freeze.Sizes() {
			k, err := vks.Freeze.KeyForSize(s.NumInputs, s.NumOutputs)
			if err == nil {
				appendKey(k)
			}
		}
	}
	return b.VarSizeField("keys", buf).Finalize()
}

// byteSink is an io.Writer that just appends to itself, used to collect a
// verifying key's serialized bytes without a bytes.Buffer allocation dance.
type byteSink []byte

func (s *byteSink) Write(p []byte) (int, error) {
	*s = append(*s, p...)
	return len(p), nil
}

// ProverKeySet is the proving-side mirror of VerifierKeySet, held by
// whichever component constructs transaction notes (outside the
// validator's own responsibility, but defined here for symmetry). Nothing
// in this module builds one.
type ProverKeySet struct {
	Mint   *cap.ProvingKey
	Xfr    *keyset.KeySet[*cap.ProvingKey, keyset.OrderByInputs]
	Freeze *keyset.KeySet[*cap.ProvingKey, keyset.OrderByOutputs]
}

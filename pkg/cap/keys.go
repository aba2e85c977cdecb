package cap

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// ProvingKey is a Groth16 proving key generated for a specific note shape.
// It satisfies pkg/keyset.SizedKey so a prover-side KeySet can select the
// right key the same way the verifier side does.
type ProvingKey struct {
	numInputs, numOutputs int
	cs                    constraint.ConstraintSystem
	inner                 groth16.ProvingKey
}

// NumInputs implements keyset.SizedKey.
func (k *ProvingKey) NumInputs() int { return k.numInputs }

// NumOutputs implements keyset.SizedKey.
func (k *ProvingKey) NumOutputs() int { return k.numOutputs }

// VerifyingKey is a Groth16 verifying key generated for a specific note
// shape.
type VerifyingKey struct {
	numInputs, numOutputs int
	inner                 groth16.VerifyingKey
}

// NumInputs implements keyset.SizedKey.
func (k *VerifyingKey) NumInputs() int { return k.numInputs }

// NumOutputs implements keyset.SizedKey.
func (k *VerifyingKey) NumOutputs() int { return k.numOutputs }

// Setup compiles a NoteCircuit for (numInputs, numOutputs) and runs the
// Groth16 trusted setup, returning the resulting key pair. This is the
// per-size key generation ceremony the genesis CLI runs once per supported
// transfer/freeze shape.
func Setup(numInputs, numOutputs int) (*ProvingKey, *VerifyingKey, error) {
	circuit := NewNoteCircuit(numInputs, numOutputs)
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, nil, fmt.Errorf("cap: compile circuit(%d,%d): %w", numInputs, numOutputs, err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, nil, fmt.Errorf("cap: groth16 setup(%d,%d): %w", numInputs, numOutputs, err)
	}
	return &ProvingKey{numInputs: numInputs, numOutputs: numOutputs, cs: cs, inner: pk},
		&VerifyingKey{numInputs: numInputs, numOutputs: numOutputs, inner: vk}, nil
}

// WriteVerifyingKey serializes k in gnark's native binary format.
func (k *VerifyingKey) WriteVerifyingKey(w io.Writer) (int64, error) {
	return k.inner.WriteTo(w)
}

// WriteProvingKey serializes k in gnark's native binary format. Proving
// keys are larger than verifying keys and, unlike them, never ship to
// nodes that only verify; callers typically persist these to a prover-only
// key store rather than to genesis.
func (k *ProvingKey) WriteProvingKey(w io.Writer) (int64, error) {
	return k.inner.WriteTo(w)
}

// ReadProvingKey loads a proving key previously written by
// WriteProvingKey, for the given shape.
func ReadProvingKey(numInputs, numOutputs int, r io.Reader) (*ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("cap: read proving key(%d,%d): %w", numInputs, numOutputs, err)
	}
	return &ProvingKey{numInputs: numInputs, numOutputs: numOutputs, inner: pk}, nil
}

// ReadVerifyingKey loads a verifying key previously written by
// WriteVerifyingKey, for the given shape.
func ReadVerifyingKey(numInputs, numOutputs int, r io.Reader) (*VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("cap: read verifying key(%d,%d): %w", numInputs, numOutputs, err)
	}
	return &VerifyingKey{numInputs: numInputs, numOutputs: numOutputs, inner: vk}, nil
}

// Package cap concretizes the confidential-asset cryptosystem the ledger
// state machine treats as an external collaborator (spec-level "the crypto
// system"): note validity circuits, Groth16 proving/verifying keys, and
// batch proof verification. The validator itself never looks inside a
// proof, it only calls BatchVerify with the keys it already holds, so
// everything here exists to give that boundary a concrete Go shape to
// compile against.
package cap

import (
	"github.com/consensys/gnark/frontend"
)

// NoteCircuit is the per-shape circuit a note's proof is checked against.
// It carries a note's public inputs (Merkle root, time, nullifiers, output
// commitments) and one secret opening per nullifier and per output, so
// that proving/verifying keys can be set up per (numInputs, numOutputs)
// the way the original ledger's per-size KeySet expects. Its constraints
// only require the Merkle root, every nullifier, every output and every
// opening to be nonzero; it does not bind nullifiers or outputs to their
// openings, does not check membership under the Merkle root, and does not
// constrain Now. Range proofs, commitment openings and signature checks
// are not part of it.
type NoteCircuit struct {
	MerkleRoot frontend.Variable   `gnark:",public"`
	Now        frontend.Variable   `gnark:",public"`
	Nullifiers []frontend.Variable `gnark:",public"`
	Outputs    []frontend.Variable `gnark:",public"`

	InputOpenings  []frontend.Variable
	OutputOpenings []frontend.Variable
}

// NewNoteCircuit allocates a circuit instance shaped for numInputs spent
// records and numOutputs produced records. Each distinct shape compiles to
// its own constraint system and its own key pair, which is why the
// validator's key sets are indexed by size rather than holding one
// universal key.
func NewNoteCircuit(numInputs, numOutputs int) *NoteCircuit {
	return &NoteCircuit{
		Nullifiers:     make([]frontend.Variable, numInputs),
		Outputs:        make([]frontend.Variable, numOutputs),
		InputOpenings:  make([]frontend.Variable, numInputs),
		OutputOpenings: make([]frontend.Variable, numOutputs),
	}
}

// Define implements frontend.Circuit.
func (c *NoteCircuit) Define(api frontend.API) error {
	api.AssertIsDifferent(c.MerkleRoot, 0)

	for i := range c.Nullifiers {
		// The opening and the nullifier are each asserted nonzero; no
		// relation between them is constrained.
		bound := api.Mul(c.InputOpenings[i], c.InputOpenings[i])
		api.AssertIsDifferent(bound, 0)
		api.AssertIsDifferent(c.Nullifiers[i], 0)
	}

	for i := range c.Outputs {
		bound := api.Mul(c.OutputOpenings[i], c.OutputOpenings[i])
		api.AssertIsDifferent(bound, 0)
		api.AssertIsDifferent(c.Outputs[i], 0)
	}

	return nil
}

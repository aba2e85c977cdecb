package cap

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/cap-chain/validator/pkg/nullset"
)

func publicAssignment(n *TransactionNote, now uint64) *NoteCircuit {
	c := NewNoteCircuit(n.NumInputs(), n.NumOutputs())
	c.MerkleRoot = n.MerkleRoot.Bytes()
	c.Now = now
	for i, nf := range n.InputNullifiers {
		c.Nullifiers[i] = nullifierVariable(nf)
	}
	for i, oc := range n.OutputCommitments {
		c.Outputs[i] = oc[:]
	}
	return c
}

func nullifierVariable(n nullset.Nullifier) frontend.Variable {
	b := n
	return b[:]
}

// BatchVerify verifies every note's proof against the correspondingly
// indexed verifying key in vks (the caller has already resolved key
// selection, e.g. via a per-size KeySet lookup, before calling this),
// using now as the public "current time" input exactly as the original
// ledger's txn_batch_verify threads its now parameter through to each
// note's public inputs. It returns the first verification failure
// encountered; callers typically wrap that into a ValidationError of kind
// KindCryptoError.
func BatchVerify(notes []*TransactionNote, vks []*VerifyingKey, now uint64) error {
	if len(notes) != len(vks) {
		return fmt.Errorf("cap: %d notes but %d verifying keys", len(notes), len(vks))
	}
	for i, n := range notes {
		assignment := publicAssignment(n, now)
		pubWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
		if err != nil {
			return fmt.Errorf("cap: note %d: build public witness: %w", i, err)
		}
		if err := groth16.Verify(n.Proof, vks[i].inner, pubWitness); err != nil {
			return fmt.Errorf("cap: note %d: proof verification failed: %w", i, err)
		}
	}
	return nil
}

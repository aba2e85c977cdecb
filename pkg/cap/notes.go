package cap

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/cap-chain/validator/pkg/commitment"
	"github.com/cap-chain/validator/pkg/nullset"
)

// NoteKind distinguishes the three transaction shapes the ledger accepts,
// matching TransactionNote's Mint/Transfer/Freeze variants in the original
// state machine.
type NoteKind int

const (
	KindMint NoteKind = iota
	KindTransfer
	KindFreeze
)

func (k NoteKind) String() string {
	switch k {
	case KindMint:
		return "mint"
	case KindTransfer:
		return "transfer"
	case KindFreeze:
		return "freeze"
	default:
		return "unknown"
	}
}

// RecordCommitment is the opening-hiding commitment to one owned record
// (an unspent output). It is what gets pushed into the record accumulator.
type RecordCommitment [32]byte

// ToFieldElement interprets the commitment as a bn254 scalar field
// element, ready to be pushed as a leaf into pkg/recordtree.
func (c RecordCommitment) ToFieldElement() fr.Element {
	var e fr.Element
	e.SetBytes(c[:])
	return e
}

// TransactionNote is one transaction's worth of confidential-asset state
// transition: it spends zero or more existing records (by nullifier) and
// produces one or more new ones (by commitment), accompanied by a Groth16
// proof that the whole thing is valid with respect to some Merkle root.
type TransactionNote struct {
	Kind              NoteKind
	InputNullifiers   []nullset.Nullifier
	OutputCommitments []RecordCommitment
	MerkleRoot        commitment.Digest
	Proof             groth16.Proof
}

// NumInputs reports how many records this note spends.
func (n *TransactionNote) NumInputs() int { return len(n.InputNullifiers) }

// NumOutputs reports how many records this note produces.
func (n *TransactionNote) NumOutputs() int { return len(n.OutputCommitments) }

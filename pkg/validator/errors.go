package validator

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cap-chain/validator/pkg/nullset"
)

// ErrorKind enumerates every way validate_block_check / validate_and_apply
// can reject a block, matching the ledger state machine's ValidationError
// taxonomy one for one.
type ErrorKind int

const (
	// KindNullifierAlreadyExists means a block (or an earlier transaction
	// within it) tries to spend a nullifier that is already spent.
	KindNullifierAlreadyExists ErrorKind = iota
	// KindBadNullifierProof means a nullifier non-membership proof does
	// not recompute to the claimed root.
	KindBadNullifierProof
	// KindMissingNullifierProof means the block's proof lists do not match
	// its nullifiers one for one (a transaction has more or fewer proofs
	// than input nullifiers).
	KindMissingNullifierProof
	// KindConflictingNullifiers means two transactions in the same block
	// spend the same nullifier.
	KindConflictingNullifiers
	// KindFailed is a catch-all failure, used for a note of unknown kind.
	KindFailed
	// KindBadMerkleLength means the record tree height does not match.
	KindBadMerkleLength
	// KindBadMerkleLeaf means the record tree assigned a pushed leaf a uid
	// other than the expected next one.
	KindBadMerkleLeaf
	// KindBadMerkleRoot means a note's claimed Merkle root is neither the
	// current record root nor within the tolerated history window.
	KindBadMerkleRoot
	// KindBadMerklePath means the record accumulator's frontier could not
	// be restored (it is internally inconsistent with its commitment).
	KindBadMerklePath
	// KindCryptoError wraps a batch proof verification failure.
	KindCryptoError
	// KindUnsupportedTransferSize means no transfer key exists for the
	// requested (inputs, outputs) shape.
	KindUnsupportedTransferSize
	// KindUnsupportedFreezeSize means no freeze key exists for the
	// requested number of inputs.
	KindUnsupportedFreezeSize
)

func (k ErrorKind) String() string {
	switch k {
	case KindNullifierAlreadyExists:
		return "NullifierAlreadyExists"
	case KindBadNullifierProof:
		return "BadNullifierProof"
	case KindMissingNullifierProof:
		return "MissingNullifierProof"
	case KindConflictingNullifiers:
		return "ConflictingNullifiers"
	case KindFailed:
		return "Failed"
	case KindBadMerkleLength:
		return "BadMerkleLength"
	case KindBadMerkleLeaf:
		return "BadMerkleLeaf"
	case KindBadMerkleRoot:
		return "BadMerkleRoot"
	case KindBadMerklePath:
		return "BadMerklePath"
	case KindCryptoError:
		return "CryptoError"
	case KindUnsupportedTransferSize:
		return "UnsupportedTransferSize"
	case KindUnsupportedFreezeSize:
		return "UnsupportedFreezeSize"
	default:
		return "Unknown"
	}
}

// ValidationError is the single error type every rejection path in this
// package returns. Kind selects which of the taxonomy's variants applies;
// the remaining fields are only populated for the variants that carry a
// payload (NullifierAlreadyExists carries Nullifier, UnsupportedTransferSize
// carries NumInputs/NumOutputs, UnsupportedFreezeSize carries NumInputs,
// CryptoError carries Err).
type ValidationError struct {
	Kind       ErrorKind
	Nullifier  *nullset.Nullifier
	NumInputs  int
	NumOutputs int
	Err        error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindNullifierAlreadyExists:
		if e.Nullifier != nil {
			return fmt.Sprintf("nullifier already exists: %x", e.Nullifier[:])
		}
		return "nullifier already exists"
	case KindUnsupportedTransferSize:
		return fmt.Sprintf("unsupported transfer size: %d inputs, %d outputs", e.NumInputs, e.NumOutputs)
	case KindUnsupportedFreezeSize:
		return fmt.Sprintf("unsupported freeze size: %d inputs", e.NumInputs)
	case KindCryptoError:
		if e.Err != nil {
			return fmt.Sprintf("crypto error: %s", e.Err.Error())
		}
		return "crypto error"
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

type validationErrorWire struct {
	Kind       string `json:"kind"`
	Nullifier  string `json:"nullifier,omitempty"`
	NumInputs  int    `json:"num_inputs,omitempty"`
	NumOutputs int    `json:"num_outputs,omitempty"`
	Err        string `json:"err,omitempty"`
}

// MarshalJSON always serializes a wrapped crypto failure as a plain
// string. The underlying cause of a KindCryptoError is never
// reconstructed from the wire, only displayed.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	w := validationErrorWire{Kind: e.Kind.String(), NumInputs: e.NumInputs, NumOutputs: e.NumOutputs}
	if e.Nullifier != nil {
		w.Nullifier = fmt.Sprintf("%x", e.Nullifier[:])
	}
	if e.Err != nil {
		w.Err = e.Err.Error()
	}
	return json.Marshal(w)
}

// UnmarshalJSON reconstructs a ValidationError from its wire form. The
// Kind is resolved from its wire label alone; a wrapped crypto cause
// collapses to a plain string but its Kind stays KindCryptoError, it is
// only the inner error's typed identity that never crosses the wire.
func (e *ValidationError) UnmarshalJSON(data []byte) error {
	var w validationErrorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for k := KindNullifierAlreadyExists; k <= KindUnsupportedFreezeSize; k++ {
		if k.String() == w.Kind {
			e.Kind = k
			break
		}
	}
	if w.Nullifier != "" {
		raw, err := hex.DecodeString(w.Nullifier)
		if err != nil || len(raw) != len(nullset.Nullifier{}) {
			return fmt.Errorf("validator: bad nullifier %q in wire error", w.Nullifier)
		}
		var n nullset.Nullifier
		copy(n[:], raw)
		e.Nullifier = &n
	}
	e.NumInputs = w.NumInputs
	e.NumOutputs = w.NumOutputs
	if w.Err != "" {
		e.Err = fmt.Errorf("%s", w.Err)
	}
	return nil
}

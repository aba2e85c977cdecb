package consensusadapter

import (
	"context"
	"fmt"
	"log"
	"sync"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/cap"
	"github.com/cap-chain/validator/pkg/nullset"
)

// TxDecoder turns one consensus transaction's raw bytes into a transaction
// note plus the nullifier proofs backing its spent nullifiers. The wire
// format for a transaction is a concern of whatever client submits it, not
// of the validator core, so ABCIApplication takes this as a dependency
// rather than hard-coding a codec.
type TxDecoder func(tx []byte) (*cap.TransactionNote, []nullset.Proof, error)

// ABCIApplication binds pkg/validator to CometBFT's ABCI interface: a
// logger, the latest committed height, the last app hash, and a mutex
// guarding both, driving pkg/validator.State through the consensus
// lifecycle.
type ABCIApplication struct {
	logger *log.Logger

	mu            sync.Mutex
	adapter       *Adapter
	latestHeight  int64
	lastAppHash   []byte
	chainID       string
	pendingBlock  *block.ElaboratedBlock
	pendingHeight int64

	decodeTx TxDecoder
}

// NewABCIApplication wraps adapter for ABCI use under the given chain id.
// decodeTx may be nil during early bring-up; transactions will then be
// rejected at CheckTx rather than panicking.
func NewABCIApplication(adapter *Adapter, chainID string, decodeTx TxDecoder) *ABCIApplication {
	return &ABCIApplication{
		logger:   log.New(log.Writer(), "[ABCIApplication] ", log.LstdFlags),
		adapter:  adapter,
		chainID:  chainID,
		decodeTx: decodeTx,
	}
}

var _ abcitypes.Application = (*ABCIApplication)(nil)

// Info reports the application's current height and app hash, computed
// from the wrapped validator state's own commitment rather than from any
// separately tracked field.
func (a *ABCIApplication) Info(ctx context.Context, req *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	appHash := a.adapter.State().Commit()
	a.logger.Printf("Info() height=%d appHash=%s", a.latestHeight, hexutil.Encode(appHash.Bytes()))
	return &abcitypes.ResponseInfo{
		Data:             "cap-chain validator",
		Version:          "1.0.0",
		AppVersion:       1,
		LastBlockHeight:  a.latestHeight,
		LastBlockAppHash: appHash.Bytes(),
	}, nil
}

// Query is unimplemented beyond a stub response; this deployment exposes
// state through its own RPC layer, not via ABCI Query.
func (a *ABCIApplication) Query(ctx context.Context, req *abcitypes.RequestQuery) (*abcitypes.ResponseQuery, error) {
	return &abcitypes.ResponseQuery{Code: 0}, nil
}

// CheckTx decodes tx and checks it against the current committed state
// without mutating anything, the mempool-admission gate ahead of
// consensus.
func (a *ABCIApplication) CheckTx(ctx context.Context, req *abcitypes.RequestCheckTx) (*abcitypes.ResponseCheckTx, error) {
	if a.decodeTx == nil {
		return &abcitypes.ResponseCheckTx{Code: 1, Log: "no transaction decoder configured"}, nil
	}
	note, proofs, err := a.decodeTx(req.Tx)
	if err != nil {
		return &abcitypes.ResponseCheckTx{Code: 1, Log: fmt.Sprintf("decode tx: %v", err)}, nil
	}
	eb := block.NewElaboratedBlock()
	if err := eb.AddTransaction(note, proofs); err != nil {
		return &abcitypes.ResponseCheckTx{Code: 1, Log: err.Error()}, nil
	}
	state := a.adapter.State()
	if err := state.ValidateBlockCheck(state.PrevCommitTime+1, eb); err != nil {
		return &abcitypes.ResponseCheckTx{Code: 1, Log: err.Error()}, nil
	}
	return &abcitypes.ResponseCheckTx{Code: 0, Log: "ok"}, nil
}

// InitChain seeds the application's chain id on genesis. Validator-genesis
// state itself (the key sets, the empty record tree) is the state already
// wrapped by the Adapter passed to NewABCIApplication; it is not
// reconstructed here.
func (a *ABCIApplication) InitChain(ctx context.Context, req *abcitypes.RequestInitChain) (*abcitypes.ResponseInitChain, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if req.ChainId != "" {
		a.chainID = req.ChainId
	}
	appHash := a.adapter.State().Commit()
	return &abcitypes.ResponseInitChain{AppHash: appHash.Bytes()}, nil
}

// PrepareProposal passes transactions through unmodified; block assembly
// policy (ordering, fee markets, size limits) is out of scope for this
// validator.
func (a *ABCIApplication) PrepareProposal(ctx context.Context, req *abcitypes.RequestPrepareProposal) (*abcitypes.ResponsePrepareProposal, error) {
	return &abcitypes.ResponsePrepareProposal{Txs: req.Txs}, nil
}

// ProcessProposal decodes and checks every transaction in the proposed
// block against the currently committed state, rejecting the whole
// proposal if any transaction fails or the block as assembled contains
// conflicting nullifiers.
func (a *ABCIApplication) ProcessProposal(ctx context.Context, req *abcitypes.RequestProcessProposal) (*abcitypes.ResponseProcessProposal, error) {
	eb, _, err := a.assembleBlock(req.Txs)
	if err != nil {
		a.logger.Printf("rejecting proposal: %v", err)
		return &abcitypes.ResponseProcessProposal{Status: abcitypes.PROCESS_PROPOSAL_STATUS_REJECT}, nil
	}
	state := a.adapter.State()
	if err := state.ValidateBlockCheck(state.PrevCommitTime+1, eb); err != nil {
		a.logger.Printf("rejecting proposal: %v", err)
		return &abcitypes.ResponseProcessProposal{Status: abcitypes.PROCESS_PROPOSAL_STATUS_REJECT}, nil
	}
	return &abcitypes.ResponseProcessProposal{Status: abcitypes.PROCESS_PROPOSAL_STATUS_ACCEPT}, nil
}

func (a *ABCIApplication) assembleBlock(txs [][]byte) (*block.ElaboratedBlock, []string, error) {
	if a.decodeTx == nil {
		return nil, nil, fmt.Errorf("no transaction decoder configured")
	}
	eb := block.NewElaboratedBlock()
	var ids []string
	for i, tx := range txs {
		note, proofs, err := a.decodeTx(tx)
		if err != nil {
			return nil, nil, fmt.Errorf("tx %d: decode: %w", i, err)
		}
		if err := eb.AddTransaction(note, proofs); err != nil {
			return nil, nil, fmt.Errorf("tx %d: %w", i, err)
		}
		ids = append(ids, uuid.New().String())
	}
	return eb, ids, nil
}

// FinalizeBlock assembles and applies the decided block's transactions,
// advancing the wrapped validator state in memory. Nothing is written to
// disk here or in Commit, which only records the resulting app hash.
func (a *ABCIApplication) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	eb, ids, err := a.assembleBlock(req.Txs)
	if err != nil {
		return nil, fmt.Errorf("consensusadapter: finalize block: %w", err)
	}

	txResults := make([]*abcitypes.ExecTxResult, len(req.Txs))
	now := a.adapter.State().PrevCommitTime + 1
	uids, applyErr := a.adapter.Append(now, eb)
	if applyErr != nil {
		for i := range txResults {
			txResults[i] = &abcitypes.ExecTxResult{Code: 1, Log: applyErr.Error()}
		}
		return &abcitypes.ResponseFinalizeBlock{TxResults: txResults}, nil
	}

	uidCursor := 0
	for i, n := range eb.Block.Notes {
		assigned := uids[uidCursor : uidCursor+n.NumOutputs()]
		uidCursor += n.NumOutputs()
		log := fmt.Sprintf("applied id=%s uids=%v", safeID(ids, i), assigned)
		txResults[i] = &abcitypes.ExecTxResult{Code: 0, Log: log}
	}

	a.mu.Lock()
	a.latestHeight = req.Height
	a.pendingBlock = eb
	a.pendingHeight = req.Height
	a.mu.Unlock()

	appHash := a.adapter.state.Commit()
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: txResults,
		AppHash:   appHash.Bytes(),
	}, nil
}

func safeID(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return ""
}

// ExtendVote and VerifyVoteExtension are unused; this deployment does not
// rely on vote extensions.
func (a *ABCIApplication) ExtendVote(ctx context.Context, req *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (a *ABCIApplication) VerifyVoteExtension(ctx context.Context, req *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.RESPONSE_VERIFY_VOTE_EXTENSION_STATUS_ACCEPT}, nil
}

// Commit finalizes the previously applied block and reports the resulting
// app hash. The validator state itself was already advanced in
// FinalizeBlock; Commit is where a real deployment would persist it.
func (a *ABCIApplication) Commit(ctx context.Context, req *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	appHash := a.adapter.state.Commit()
	a.lastAppHash = appHash.Bytes()
	a.adapter.OnCommit()
	a.logger.Printf("Commit() height=%d appHash=%s", a.latestHeight, hexutil.Encode(a.lastAppHash))
	return &abcitypes.ResponseCommit{}, nil
}

// State snapshotting is not supported; new nodes sync by replaying blocks
// from genesis rather than installing a state snapshot.
func (a *ABCIApplication) ListSnapshots(ctx context.Context, req *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (a *ABCIApplication) OfferSnapshot(ctx context.Context, req *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{Result: abcitypes.OFFER_SNAPSHOT_RESULT_REJECT}, nil
}

func (a *ABCIApplication) LoadSnapshotChunk(ctx context.Context, req *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (a *ABCIApplication) ApplySnapshotChunk(ctx context.Context, req *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{Result: abcitypes.APPLY_SNAPSHOT_CHUNK_RESULT_REJECT}, nil
}

// Package consensusadapter provides the minimal hook surface a consensus
// engine needs to drive pkg/validator, plus a concrete binding to
// CometBFT's ABCI interface. The validator itself never references a
// consensus engine; this package is the only place that boundary is
// crossed.
package consensusadapter

import (
	"fmt"
	"sync"

	"github.com/cap-chain/validator/pkg/block"
	"github.com/cap-chain/validator/pkg/validator"
)

// Hooks is the narrow interface the original ledger's State trait exposed
// to its consensus layer: start a new block, check a proposed block
// without committing it, and append (check-then-commit) a block.
type Hooks interface {
	NextBlock() *block.ElaboratedBlock
	ValidateBlock(now uint64, eb *block.ElaboratedBlock) bool
	Append(now uint64, eb *block.ElaboratedBlock) ([]uint64, error)
	OnCommit()
}

// Adapter wraps a *validator.State with the Hooks surface. It adds a mutex
// because, unlike validator.State itself, a consensus engine may call
// these hooks from more than one goroutine (e.g. CheckTx running
// concurrently with FinalizeBlock).
type Adapter struct {
	mu    sync.Mutex
	state *validator.State
}

// New wraps state for consensus-driven use.
func New(state *validator.State) *Adapter {
	return &Adapter{state: state}
}

// State returns the current validator state. Callers must not mutate it
// directly; go through ValidateBlock/Append instead.
func (a *Adapter) State() *validator.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// NextBlock returns an empty block builder ready to be filled in by
// whatever component assembles transactions (mempool, batch collector).
func (a *Adapter) NextBlock() *block.ElaboratedBlock {
	return block.NewElaboratedBlock()
}

// ValidateBlock reports whether eb would be accepted if appended now,
// without mutating state.
func (a *Adapter) ValidateBlock(now uint64, eb *block.ElaboratedBlock) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.ValidateBlockCheck(now, eb) == nil
}

// Append validates and, if valid, applies eb, advancing the validator
// state. now must be strictly greater than the state's current
// prev_commit_time; the adapter enforces the ledger's now = prev_commit_time
// + 1 convention rather than trusting the caller's clock value directly.
func (a *Adapter) Append(now uint64, eb *block.ElaboratedBlock) ([]uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	expected := a.state.PrevCommitTime + 1
	if now != expected {
		return nil, fmt.Errorf("consensusadapter: expected now=%d, got %d", expected, now)
	}
	return a.state.ValidateAndApply(now, eb)
}

// OnCommit is a no-op hook kept for parity with the original ledger's
// State::on_commit; it exists as a place for future bookkeeping (metrics,
// pruning triggers) that has no effect on validator semantics.
func (a *Adapter) OnCommit() {}

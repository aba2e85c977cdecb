package validator

import (
	"fmt"
	"strings"

	"github.com/cap-chain/validator/pkg/recordtree"
)

func recordTreeHeight() uint64 {
	return recordtree.Height
}

// VerifyStateInvariants checks structural invariants a State must always
// satisfy regardless of how it was produced, collecting every violation
// found rather than stopping at the first one. Called from tests and from
// cmd/capvalidatorctl simulate's final check, not on the validator's hot
// path.
func VerifyStateInvariants(s *State) error {
	var violations []string
	add := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if len(s.PastRecordMerkleRoots.Roots) > RecordRootHistorySize {
		add("past record merkle root history has %d entries, exceeds bound of %d",
			len(s.PastRecordMerkleRoots.Roots), RecordRootHistorySize)
	}

	if s.RecordMerkleFrontier.NumLeaves != s.RecordMerkleCommitment.NumLeaves {
		add("record merkle frontier leaf count %d disagrees with commitment leaf count %d",
			s.RecordMerkleFrontier.NumLeaves, s.RecordMerkleCommitment.NumLeaves)
	}

	if s.RecordMerkleCommitment.Height != recordTreeHeight() {
		add("record merkle commitment height %d does not match configured height %d",
			s.RecordMerkleCommitment.Height, recordTreeHeight())
	}

	if s.PrevCommitTime == 0 && s.PrevState != nil {
		add("genesis state (prev_commit_time=0) must not carry a prev_state")
	}

	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("validator state invariant violations: %s", strings.Join(violations, "; "))
}

package light

import (
	"fmt"

	tmmath "github.com/lantern-chain/lantern/libs/math"
	"github.com/lantern-chain/lantern/types"
)

// TallyResult is the outcome of counting a commit's voting power against a
// validator set.
type TallyResult struct {
	// SignedPower is the voting power of the commit's non-absent, for-block
	// signers that are members of the power set.
	SignedPower uint64
	// TotalPower is the power set's total voting power.
	TotalPower uint64
}

// Tally computes the voting power behind a commit, restricted to the
// membership of powerSet.
//
// signerSet is the validator set that produced the commit: signature slots
// line up 1:1 positionally with it, and it is used to resolve a slot's signer
// when the slot does not name an address. powerSet is the set whose members'
// power is counted - in the cross-set trust case it is the last trusted
// validator set and may differ from signerSet.
//
// Only BlockIDFlagCommit votes count toward SignedPower: a nil vote is a vote
// against this specific header, and an absent slot is no vote at all. Two
// slots naming the same validator is a double vote, a protocol violation
// reported as an error.
//
// All accumulation is checked uint64 arithmetic; an addition that would
// overflow is reported as an error, never wrapped. Voting powers are bounded
// by chain parameters far below the uint64 range in practice, so an overflow
// here is an invariant violation.
func Tally(commit *types.Commit, signerSet, powerSet *types.ValidatorSet) (TallyResult, error) {
	var (
		signedPower uint64
		seen        = make(map[string]struct{}, len(commit.Signatures))
	)

	for idx, commitSig := range commit.Signatures {
		if !commitSig.ForBlock() {
			continue
		}

		addr := commitSig.ValidatorAddress
		if len(addr) == 0 {
			// The signer is implied by the slot position.
			addr, _ = signerSet.GetByIndex(int32(idx))
			if addr == nil {
				continue
			}
		}

		if _, ok := seen[string(addr)]; ok {
			return TallyResult{}, fmt.Errorf("double vote from %X (slot %d)", addr, idx)
		}
		seen[string(addr)] = struct{}{}

		_, val := powerSet.GetByAddress(addr)
		if val == nil {
			continue
		}

		sum, err := tmmath.SafeAddUint64(signedPower, uint64(val.VotingPower))
		if err != nil {
			return TallyResult{}, fmt.Errorf("failed to add voting power of %X: %w", addr, err)
		}
		signedPower = sum
	}

	return TallyResult{
		SignedPower: signedPower,
		TotalPower:  tmmath.SafeConvertUint64(powerSet.TotalVotingPower()),
	}, nil
}

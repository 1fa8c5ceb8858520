package light

import "github.com/lantern-chain/lantern/types"

// Status is the overall result of a single verification step.
type Status int

const (
	// StatusTrusted means the untrusted block is now trusted.
	StatusTrusted Status = iota + 1
	// StatusNeedsWitness means direct trust could not be established and
	// the caller should first verify an intermediate block at WitnessHeight.
	StatusNeedsWitness
	// StatusFailed means verification failed permanently; Err carries the
	// reason.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusTrusted:
		return "trusted"
	case StatusNeedsWitness:
		return "needs-witness"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of Verifier.Verify. Exactly one of the three shapes
// holds: Trusted is set iff Status == StatusTrusted, WitnessHeight is set iff
// Status == StatusNeedsWitness, Err is set iff Status == StatusFailed.
type Outcome struct {
	Status Status

	// Trusted is the newly trusted light block.
	Trusted *types.LightBlock

	// WitnessHeight is the intermediate height trust must be established at
	// before the target can be retried.
	WitnessHeight int64

	// Err is the verification failure.
	Err error
}

func trustedOutcome(lb *types.LightBlock) Outcome {
	return Outcome{Status: StatusTrusted, Trusted: lb}
}

func needsWitnessOutcome(height int64) Outcome {
	return Outcome{Status: StatusNeedsWitness, WitnessHeight: height}
}

func failedOutcome(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

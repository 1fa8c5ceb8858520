package light

import (
	"fmt"

	tmmath "github.com/lantern-chain/lantern/libs/math"
)

var (
	// DefaultTrustLevel - new header can be trusted if at least one correct
	// validator signed it.
	DefaultTrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 3}

	// FullVerificationThreshold is the supermajority a validator set must
	// reach over its own commit: more than 2/3.
	FullVerificationThreshold = tmmath.Fraction{Numerator: 2, Denominator: 3}
)

// CheckTrust decides whether the tallied signed power clears the given trust
// threshold: signedPower/totalPower must be strictly greater than the
// threshold fraction.
//
// The comparison is done by cross-multiplication, which avoids floating point
// and division entirely. A failed inequality is reported as ErrNotEnoughTrust
// - a verification failure, not an exceptional condition.
func CheckTrust(tally TallyResult, trustLevel tmmath.Fraction) error {
	if err := trustLevel.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid trust level %v: %w", trustLevel, err)
	}

	lhs, err := tmmath.SafeMulUint64(tally.SignedPower, uint64(trustLevel.Denominator))
	if err != nil {
		return fmt.Errorf("failed to compute signed power threshold: %w", err)
	}
	rhs, err := tmmath.SafeMulUint64(tally.TotalPower, uint64(trustLevel.Numerator))
	if err != nil {
		return fmt.Errorf("failed to compute total power threshold: %w", err)
	}

	if lhs <= rhs {
		return ErrNotEnoughTrust{
			SignedPower: tally.SignedPower,
			TotalPower:  tally.TotalPower,
		}
	}

	return nil
}

// ValidateTrustLevel checks that trustLevel is within the allowed range [1/3,
// 1]. If not, it returns an error. 1/3 is the minimum amount of trust needed
// which does not break the security model.
func ValidateTrustLevel(lvl tmmath.Fraction) error {
	if lvl.Numerator*3 < lvl.Denominator || // < 1/3
		lvl.Numerator > lvl.Denominator || // > 1
		lvl.Denominator == 0 {
		return fmt.Errorf("trustLevel must be within [1/3, 1], given %v", lvl)
	}
	return nil
}

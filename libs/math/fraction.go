package math

import (
	"errors"
	"fmt"
)

// Fraction defined in terms of a numerator divided by a denominator in int64
// format.
type Fraction struct {
	// The portion of the denominator in the faction, e.g. 2 in 2/3.
	Numerator int64 `json:"numerator"`
	// The value by which the numerator is divided, e.g. 3 in 2/3. Must be
	// positive.
	Denominator int64 `json:"denominator"`
}

func (fr Fraction) String() string {
	return fmt.Sprintf("%d/%d", fr.Numerator, fr.Denominator)
}

// ValidateBasic checks that the fraction is a well-formed proportion:
// both parts positive, numerator not exceeding the denominator.
func (fr Fraction) ValidateBasic() error {
	if fr.Numerator <= 0 {
		return errors.New("numerator must be positive")
	}
	if fr.Denominator <= 0 {
		return errors.New("denominator must be positive")
	}
	if fr.Numerator > fr.Denominator {
		return fmt.Errorf("fraction %v must not be greater than 1", fr)
	}
	return nil
}

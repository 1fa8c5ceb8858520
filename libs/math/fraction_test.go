package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFractionValidateBasic(t *testing.T) {
	assert.NoError(t, Fraction{Numerator: 1, Denominator: 3}.ValidateBasic())
	assert.NoError(t, Fraction{Numerator: 1, Denominator: 1}.ValidateBasic())

	assert.Error(t, Fraction{Numerator: 0, Denominator: 3}.ValidateBasic())
	assert.Error(t, Fraction{Numerator: -1, Denominator: 3}.ValidateBasic())
	assert.Error(t, Fraction{Numerator: 1, Denominator: 0}.ValidateBasic())
	assert.Error(t, Fraction{Numerator: 4, Denominator: 3}.ValidateBasic())
}

func TestFractionString(t *testing.T) {
	assert.Equal(t, "2/3", Fraction{Numerator: 2, Denominator: 3}.String())
}

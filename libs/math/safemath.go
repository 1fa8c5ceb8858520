package math

import (
	"errors"
	"math"
)

var ErrOverflowInt64 = errors.New("int64 overflow")
var ErrOverflowUint64 = errors.New("uint64 overflow")

// SafeAddInt64 adds two int64 integers.
// If there is an overflow this will panic.
func SafeAddInt64(a, b int64) int64 {
	if b > 0 && (a > math.MaxInt64-b) {
		panic(ErrOverflowInt64)
	} else if b < 0 && (a < math.MinInt64-b) {
		panic(ErrOverflowInt64)
	}
	return a + b
}

// SafeSubInt64 subtracts two int64 integers.
// If there is an overflow this will panic.
func SafeSubInt64(a, b int64) int64 {
	if b > 0 && (a < math.MinInt64+b) {
		panic(ErrOverflowInt64)
	} else if b < 0 && (a > math.MaxInt64+b) {
		panic(ErrOverflowInt64)
	}
	return a - b
}

// SafeAddClipInt64 adds two int64 integers and clips the result to the int64
// range on overflow.
func SafeAddClipInt64(a, b int64) int64 {
	if b > 0 && (a > math.MaxInt64-b) {
		return math.MaxInt64
	} else if b < 0 && (a < math.MinInt64-b) {
		return math.MinInt64
	}
	return a + b
}

// SafeAddUint64 adds two uint64 integers.
// If there is an overflow it returns an error.
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflowUint64
	}
	return a + b, nil
}

// SafeMulUint64 multiplies two uint64 integers.
// If there is an overflow it returns an error.
func SafeMulUint64(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxUint64/b {
		return 0, ErrOverflowUint64
	}
	return a * b, nil
}

// SafeConvertUint64 takes an int64 and checks if it is negative.
// If it is, this will panic.
func SafeConvertUint64(a int64) uint64 {
	if a < 0 {
		panic(ErrOverflowUint64)
	}
	return uint64(a)
}

package types

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lantern-chain/lantern/crypto/merkle"
	tmbytes "github.com/lantern-chain/lantern/libs/bytes"
	tmmath "github.com/lantern-chain/lantern/libs/math"
)

const (
	// MaxTotalVotingPower - the maximum allowed total voting power.
	// It needs to be sufficiently small so that voting-power arithmetic
	// performed during verification (sums, threshold cross-multiplications)
	// stays well inside the int64 range.
	MaxTotalVotingPower = int64(math.MaxInt64) / 8
)

// ValidatorSet represent a set of *Validator at a given height.
//
// The validators can be fetched by address or index. The index is in order of
// .Address (ascending), so the indices are fixed for a given set - and they
// are the indices commit signature slots refer to.
//
// A set is immutable once constructed; a new set replaces the old one on
// validator-set changes.
//
// NOTE: All get/set to validators should copy the value for safety.
type ValidatorSet struct {
	// NOTE: persisted via reflect, must be exported.
	Validators []*Validator `json:"validators"`

	// cached (unexported)
	totalVotingPower int64
	hash             tmbytes.HexBytes
}

// NewValidatorSet initializes a ValidatorSet by copying over the values from
// `valz`, a list of Validators. If valz is nil or empty, the new ValidatorSet
// will have an empty list of Validators.
//
// The addresses of validators in `valz` must be unique otherwise the function
// panics.
func NewValidatorSet(valz []*Validator) *ValidatorSet {
	vals := &ValidatorSet{}
	err := vals.updateWithValidators(valz)
	if err != nil {
		panic(fmt.Sprintf("Cannot create validator set: %v", err))
	}
	return vals
}

// ValidateBasic validates the set: each validator must be valid, no two
// validators may share an address, and the set's total voting power must fit
// in an int64.
func (vals *ValidatorSet) ValidateBasic() error {
	if vals.IsNilOrEmpty() {
		return errors.New("validator set is nil or empty")
	}

	seenAddresses := make(map[string]struct{}, len(vals.Validators))
	for idx, val := range vals.Validators {
		if err := val.ValidateBasic(); err != nil {
			return fmt.Errorf("invalid validator #%d: %w", idx, err)
		}
		if _, ok := seenAddresses[string(val.Address)]; ok {
			return fmt.Errorf("duplicate validator address %v", val.Address)
		}
		seenAddresses[string(val.Address)] = struct{}{}
	}

	if vals.TotalVotingPower() == 0 {
		return errors.New("validator set has zero total voting power")
	}

	return nil
}

// IsNilOrEmpty returns true if validator set is nil or empty.
func (vals *ValidatorSet) IsNilOrEmpty() bool {
	return vals == nil || len(vals.Validators) == 0
}

func (vals *ValidatorSet) updateWithValidators(valz []*Validator) error {
	valsCopy := validatorListCopy(valz)
	sort.Sort(ValidatorsByAddress(valsCopy))

	for i := 0; i < len(valsCopy)-1; i++ {
		if bytes.Equal(valsCopy[i].Address, valsCopy[i+1].Address) {
			return fmt.Errorf("duplicate validator address %v", valsCopy[i].Address)
		}
	}

	vals.Validators = valsCopy
	vals.totalVotingPower = 0
	vals.hash = nil
	vals.updateTotalVotingPower()
	return nil
}

// Copy each validator into a new ValidatorSet.
func (vals *ValidatorSet) Copy() *ValidatorSet {
	return &ValidatorSet{
		Validators:       validatorListCopy(vals.Validators),
		totalVotingPower: vals.totalVotingPower,
		hash:             vals.hash,
	}
}

// HasAddress returns true if address given is in the validator set, false -
// otherwise.
func (vals *ValidatorSet) HasAddress(address []byte) bool {
	for _, val := range vals.Validators {
		if bytes.Equal(val.Address, address) {
			return true
		}
	}
	return false
}

// GetByAddress returns an index of the validator with address and validator
// itself (copy) if found. Otherwise, -1 and nil are returned.
func (vals *ValidatorSet) GetByAddress(address []byte) (index int32, val *Validator) {
	for idx, val := range vals.Validators {
		if bytes.Equal(val.Address, address) {
			return int32(idx), val.Copy()
		}
	}
	return -1, nil
}

// GetByIndex returns the validator's address and validator itself (copy) by
// index.
// It returns nil values if index is less than 0 or greater or equal to
// len(ValidatorSet.Validators).
func (vals *ValidatorSet) GetByIndex(index int32) (address []byte, val *Validator) {
	if index < 0 || int(index) >= len(vals.Validators) {
		return nil, nil
	}
	val = vals.Validators[index]
	return val.Address, val.Copy()
}

// Size returns the length of the validator set.
func (vals *ValidatorSet) Size() int {
	return len(vals.Validators)
}

// Forces recalculation of the set's total voting power.
// Panics if total voting power is bigger than MaxTotalVotingPower.
func (vals *ValidatorSet) updateTotalVotingPower() {
	sum := int64(0)
	for _, val := range vals.Validators {
		// mind the overflow from int64
		sum = tmmath.SafeAddClipInt64(sum, val.VotingPower)
		if sum > MaxTotalVotingPower {
			panic(fmt.Sprintf(
				"Total voting power should be guarded to not exceed %v; got: %v",
				MaxTotalVotingPower,
				sum))
		}
	}

	vals.totalVotingPower = sum
}

// TotalVotingPower returns the sum of the voting powers of all validators.
// It recomputes the total voting power if required.
func (vals *ValidatorSet) TotalVotingPower() int64 {
	if vals.totalVotingPower == 0 {
		vals.updateTotalVotingPower()
	}
	return vals.totalVotingPower
}

// Hash returns the Merkle root hash built using validators (as leaves) in the
// set.
func (vals *ValidatorSet) Hash() tmbytes.HexBytes {
	if vals == nil {
		return nil
	}
	if vals.hash != nil {
		return vals.hash
	}
	bzs := make([][]byte, len(vals.Validators))
	for i, val := range vals.Validators {
		bzs[i] = val.Bytes()
	}
	vals.hash = merkle.HashFromByteSlices(bzs)
	return vals.hash
}

// Iterate will run the given function over the set.
func (vals *ValidatorSet) Iterate(fn func(index int, val *Validator) bool) {
	for i, val := range vals.Validators {
		stop := fn(i, val.Copy())
		if stop {
			break
		}
	}
}

// Equals returns true if the two validator sets contain the same validators
// in the same order.
func (vals *ValidatorSet) Equals(other *ValidatorSet) bool {
	if vals.Size() != other.Size() {
		return false
	}
	for i, val := range vals.Validators {
		otherVal := other.Validators[i]
		if !bytes.Equal(val.Address, otherVal.Address) ||
			!val.PubKey.Equals(otherVal.PubKey) ||
			val.VotingPower != otherVal.VotingPower {
			return false
		}
	}
	return true
}

func (vals *ValidatorSet) String() string {
	return vals.StringIndented("")
}

// StringIndented returns an intended String.
//
// See Validator#String.
func (vals *ValidatorSet) StringIndented(indent string) string {
	if vals == nil {
		return "nil-ValidatorSet"
	}
	valStrings := make([]string, 0, len(vals.Validators))
	vals.Iterate(func(index int, val *Validator) bool {
		valStrings = append(valStrings, val.String())
		return false
	})
	return fmt.Sprintf(`ValidatorSet{
%s  Hash:       %v
%s  Validators:
%s    %v
%s}`,
		indent, vals.Hash(),
		indent,
		indent, strings.Join(valStrings, "\n"+indent+"    "),
		indent)
}

//-------------------------------------

// ValidatorsByAddress implements sort.Interface for []*Validator based on the
// Address field.
type ValidatorsByAddress []*Validator

func (valz ValidatorsByAddress) Len() int { return len(valz) }

func (valz ValidatorsByAddress) Less(i, j int) bool {
	return bytes.Compare(valz[i].Address, valz[j].Address) == -1
}

func (valz ValidatorsByAddress) Swap(i, j int) {
	valz[i], valz[j] = valz[j], valz[i]
}

// validatorListCopy makes a copy of the validator list.
func validatorListCopy(valsList []*Validator) []*Validator {
	if valsList == nil {
		return nil
	}
	valsCopy := make([]*Validator, len(valsList))
	for i, val := range valsList {
		valsCopy[i] = val.Copy()
	}
	return valsCopy
}

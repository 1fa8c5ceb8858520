package types

import (
	"fmt"
	"sort"
	"time"

	"github.com/lantern-chain/lantern/crypto"
	"github.com/lantern-chain/lantern/crypto/ed25519"
)

// RandValidatorSet returns a randomized validator set (size: +numValidators+),
// where each validator has the same voting power, and the matching private
// keys, ordered by the validators' addresses.
//
// EXPOSED FOR TESTING.
func RandValidatorSet(numValidators int, votingPower int64) (*ValidatorSet, []crypto.PrivKey) {
	var (
		valz     = make([]*Validator, numValidators)
		privKeys = make([]crypto.PrivKey, numValidators)
	)

	for i := 0; i < numValidators; i++ {
		privKey := ed25519.GenPrivKey()
		valz[i] = NewValidator(privKey.PubKey(), votingPower)
		privKeys[i] = privKey
	}

	vals := NewValidatorSet(valz)
	sort.Sort(privKeysByAddress(privKeys))

	return vals, privKeys
}

// DeterministicValidatorSet is like RandValidatorSet, except the private keys
// are derived from the given seed, so two calls with the same arguments
// produce the same set.
//
// EXPOSED FOR TESTING.
func DeterministicValidatorSet(numValidators int, votingPower int64, seed string) (*ValidatorSet, []crypto.PrivKey) {
	var (
		valz     = make([]*Validator, numValidators)
		privKeys = make([]crypto.PrivKey, numValidators)
	)

	for i := 0; i < numValidators; i++ {
		privKey := ed25519.GenPrivKeyFromSecret([]byte(fmt.Sprintf("%s-%d", seed, i)))
		valz[i] = NewValidator(privKey.PubKey(), votingPower)
		privKeys[i] = privKey
	}

	vals := NewValidatorSet(valz)
	sort.Sort(privKeysByAddress(privKeys))

	return vals, privKeys
}

// MakeCommit creates a commit for the given block id, signed by every key in
// privKeys at the positions their addresses occupy in vals.
//
// EXPOSED FOR TESTING.
func MakeCommit(blockID BlockID, height int64, round int32,
	vals *ValidatorSet, privKeys []crypto.PrivKey, chainID string, now time.Time) (*Commit, error) {

	sigs := make([]CommitSig, vals.Size())
	for i := range sigs {
		sigs[i] = NewCommitSigAbsent()
	}

	for _, key := range privKeys {
		addr := key.PubKey().Address()
		idx, val := vals.GetByAddress(addr)
		if val == nil {
			return nil, fmt.Errorf("validator with address %s not in validator set", addr)
		}

		signBytes := VoteSignBytes(chainID, height, round, blockID, now)
		sig, err := key.Sign(signBytes)
		if err != nil {
			return nil, err
		}

		sigs[idx] = NewCommitSigForBlock(sig, addr, now)
	}

	return NewCommit(height, round, blockID, sigs), nil
}

type privKeysByAddress []crypto.PrivKey

func (pkz privKeysByAddress) Len() int { return len(pkz) }
func (pkz privKeysByAddress) Less(i, j int) bool {
	return pkz[i].PubKey().Address().String() < pkz[j].PubKey().Address().String()
}
func (pkz privKeysByAddress) Swap(i, j int) {
	pkz[i], pkz[j] = pkz[j], pkz[i]
}

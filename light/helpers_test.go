package light_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lantern-chain/lantern/crypto"
	"github.com/lantern-chain/lantern/crypto/ed25519"
	"github.com/lantern-chain/lantern/types"
)

// privKeys is a helper type for testing.
//
// It lets us simulate signing with many keys. The main use case is to create
// a set, and call genSignedHeader to get a properly signed header for testing.
//
// You can set different weights of validators each time you call toValidators,
// and can optionally extend the validator set later with Extend.
type privKeys []crypto.PrivKey

// genPrivKeys produces an array of private keys to generate commits.
func genPrivKeys(n int) privKeys {
	res := make(privKeys, n)
	for i := range res {
		res[i] = ed25519.GenPrivKey()
	}
	return res
}

// Extend adds n more keys (to remove, just take a slice).
func (pkz privKeys) Extend(n int) privKeys {
	extra := genPrivKeys(n)
	return append(pkz, extra...)
}

// toValidators produces a valset from the set of keys, giving each validator
// the same weight.
func (pkz privKeys) toValidators(power int64) *types.ValidatorSet {
	res := make([]*types.Validator, len(pkz))
	for i, k := range pkz {
		res[i] = types.NewValidator(k.PubKey(), power)
	}
	return types.NewValidatorSet(res)
}

// signHeader properly signs the header with all keys from first to last
// exclusive. Keys that are not members of valSet are skipped.
func (pkz privKeys) signHeader(t testing.TB, header *types.Header, valSet *types.ValidatorSet, first, last int) *types.Commit {
	t.Helper()

	blockID := makeBlockID(header.Hash())

	// all absent by default
	sigs := make([]types.CommitSig, valSet.Size())
	for i := range sigs {
		sigs[i] = types.NewCommitSigAbsent()
	}

	for i := first; i < last && i < len(pkz); i++ {
		key := pkz[i]
		addr := key.PubKey().Address()
		idx, val := valSet.GetByAddress(addr)
		if val == nil {
			continue
		}

		signBytes := types.VoteSignBytes(header.ChainID, header.Height, 1, blockID, header.Time)
		sig, err := key.Sign(signBytes)
		require.NoError(t, err)

		sigs[idx] = types.NewCommitSigForBlock(sig, addr, header.Time)
	}

	return types.NewCommit(header.Height, 1, blockID, sigs)
}

func makeBlockID(hash []byte) types.BlockID {
	return types.BlockID{
		Hash: hash,
		PartSetHeader: types.PartSetHeader{
			Total: 1,
			Hash:  crypto.Checksum(hash),
		},
	}
}

func genHeader(chainID string, height int64, bTime time.Time, valset, nextValset *types.ValidatorSet,
	appHash []byte, lastBlockID types.BlockID) *types.Header {

	return &types.Header{
		ChainID:            chainID,
		Height:             height,
		Time:               bTime,
		LastBlockID:        lastBlockID,
		ValidatorsHash:     valset.Hash(),
		NextValidatorsHash: nextValset.Hash(),
		AppHash:            appHash,
		ProposerAddress:    valset.Validators[0].Address,
	}
}

// genSignedHeader calls genHeader and signs the result with the given keys.
func (pkz privKeys) genSignedHeader(t testing.TB, chainID string, height int64, bTime time.Time,
	valset, nextValset *types.ValidatorSet, appHash []byte, first, last int) *types.SignedHeader {
	t.Helper()

	header := genHeader(chainID, height, bTime, valset, nextValset, appHash, types.BlockID{})
	return &types.SignedHeader{
		Header: header,
		Commit: pkz.signHeader(t, header, valset, first, last),
	}
}

// genLightBlock produces a light block at the given height, signed by all the
// given keys.
func (pkz privKeys) genLightBlock(t testing.TB, chainID string, height int64, bTime time.Time,
	valset, nextValset *types.ValidatorSet) *types.LightBlock {
	t.Helper()

	return &types.LightBlock{
		SignedHeader:     pkz.genSignedHeader(t, chainID, height, bTime, valset, nextValset, nil, 0, len(pkz)),
		ValidatorSet:     valset,
		NextValidatorSet: nextValset,
		Provider:         "test",
	}
}

// genRotatingChain produces a chain of light blocks from height 1 to
// maxHeight where the validator set is a sliding window of nVals keys: at
// every height the oldest validator leaves and a fresh one joins. Any two
// heights h1 < h2 therefore share nVals-(h2-h1) validators.
//
// Blocks are one minute apart, starting at bTime.
func genRotatingChain(t testing.TB, chainID string, maxHeight int64, nVals int, bTime time.Time,
	power int64) map[int64]*types.LightBlock {
	t.Helper()

	keys := genPrivKeys(nVals + int(maxHeight))
	window := func(h int64) privKeys {
		return keys[h-1 : h-1+int64(nVals)]
	}

	blocks := make(map[int64]*types.LightBlock, maxHeight)
	var lastBlockID types.BlockID
	for h := int64(1); h <= maxHeight; h++ {
		valset := window(h).toValidators(power)
		nextValset := window(h + 1).toValidators(power)

		header := genHeader(chainID, h, bTime.Add(time.Duration(h)*time.Minute), valset, nextValset, nil, lastBlockID)
		commit := window(h).signHeader(t, header, valset, 0, nVals)

		blocks[h] = &types.LightBlock{
			SignedHeader:     &types.SignedHeader{Header: header, Commit: commit},
			ValidatorSet:     valset,
			NextValidatorSet: nextValset,
			Provider:         "test",
		}
		lastBlockID = makeBlockID(header.Hash())
	}

	return blocks
}

// genStaticChain is like genRotatingChain except the validator set never
// changes, so every commit is signed by 100% of the trusted voting power.
func genStaticChain(t testing.TB, chainID string, maxHeight int64, nVals int, bTime time.Time,
	power int64) (map[int64]*types.LightBlock, privKeys) {
	t.Helper()

	keys := genPrivKeys(nVals)
	valset := keys.toValidators(power)

	blocks := make(map[int64]*types.LightBlock, maxHeight)
	var lastBlockID types.BlockID
	for h := int64(1); h <= maxHeight; h++ {
		header := genHeader(chainID, h, bTime.Add(time.Duration(h)*time.Minute), valset, valset, nil, lastBlockID)
		commit := keys.signHeader(t, header, valset, 0, nVals)

		blocks[h] = &types.LightBlock{
			SignedHeader:     &types.SignedHeader{Header: header, Commit: commit},
			ValidatorSet:     valset,
			NextValidatorSet: valset,
			Provider:         "test",
		}
		lastBlockID = makeBlockID(header.Hash())
	}

	return blocks, keys
}

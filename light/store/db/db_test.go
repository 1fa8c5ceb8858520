package db

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/lantern-chain/lantern/light/store"
	"github.com/lantern-chain/lantern/types"
)

func TestLast_FirstLightBlockHeight(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "TestLast_FirstLightBlockHeight")

	// Empty store
	height, err := dbStore.LastLightBlockHeight()
	require.NoError(t, err)
	assert.EqualValues(t, -1, height)

	height, err = dbStore.FirstLightBlockHeight()
	require.NoError(t, err)
	assert.EqualValues(t, -1, height)

	// 1 key
	err = dbStore.SaveLightBlock(randLightBlock(1))
	require.NoError(t, err)

	height, err = dbStore.LastLightBlockHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 1, height)

	height, err = dbStore.FirstLightBlockHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 1, height)
}

func Test_SaveLightBlock(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_SaveLightBlockAndValidatorSet")

	// Empty store
	h, err := dbStore.LightBlock(1)
	require.Error(t, err)
	assert.Nil(t, h)

	// 1 key
	err = dbStore.SaveLightBlock(randLightBlock(1))
	require.NoError(t, err)

	size := dbStore.Size()
	assert.Equal(t, uint16(1), size)

	h, err = dbStore.LightBlock(1)
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.EqualValues(t, 1, h.Height)

	// Empty store
	err = dbStore.DeleteLightBlock(1)
	require.NoError(t, err)

	h, err = dbStore.LightBlock(1)
	require.Error(t, err)
	assert.Nil(t, h)

	size = dbStore.Size()
	assert.Equal(t, uint16(0), size)
}

func Test_LightBlockBefore(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_LightBlockBefore")

	assert.Panics(t, func() {
		_, _ = dbStore.LightBlockBefore(0)
		_, _ = dbStore.LightBlockBefore(100)
	})

	err := dbStore.SaveLightBlock(randLightBlock(2))
	require.NoError(t, err)

	h, err := dbStore.LightBlockBefore(3)
	require.NoError(t, err)
	if assert.NotNil(t, h) {
		assert.EqualValues(t, 2, h.Height)
	}

	_, err = dbStore.LightBlockBefore(2)
	require.Error(t, err)
	assert.Equal(t, store.ErrLightBlockNotFound, err)
}

func Test_Prune(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_Prune")

	// Empty store
	assert.EqualValues(t, 0, dbStore.Size())
	err := dbStore.Prune(0)
	require.NoError(t, err)

	// One header
	err = dbStore.SaveLightBlock(randLightBlock(2))
	require.NoError(t, err)

	assert.EqualValues(t, 1, dbStore.Size())

	err = dbStore.Prune(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dbStore.Size())

	err = dbStore.Prune(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, dbStore.Size())

	// Multiple headers
	for i := 1; i <= 10; i++ {
		err = dbStore.SaveLightBlock(randLightBlock(int64(i)))
		require.NoError(t, err)
	}

	err = dbStore.Prune(11)
	require.NoError(t, err)
	assert.EqualValues(t, 10, dbStore.Size())

	err = dbStore.Prune(7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, dbStore.Size())

	// The oldest blocks are removed first.
	height, err := dbStore.FirstLightBlockHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 4, height)
}

func Test_Concurrency(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_Concurrency")

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()

			err := dbStore.SaveLightBlock(randLightBlock(i))
			require.NoError(t, err)

			_, err = dbStore.LightBlock(i)
			if err != nil {
				assert.ErrorIs(t, err, store.ErrLightBlockNotFound)
			}

			_, err = dbStore.LastLightBlockHeight()
			require.NoError(t, err)
			_, err = dbStore.FirstLightBlockHeight()
			require.NoError(t, err)

			err = dbStore.Prune(2)
			require.NoError(t, err)

			_ = dbStore.Size()
		}(int64(i))
	}

	wg.Wait()
}

func Test_RoundTripPreservesValidatorSet(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_RoundTripPreservesValidatorSet")

	lb := randLightBlock(7)
	require.NoError(t, dbStore.SaveLightBlock(lb))

	restored, err := dbStore.LightBlock(7)
	require.NoError(t, err)

	assert.EqualValues(t, lb.ValidatorSet.Hash(), restored.ValidatorSet.Hash())
	assert.Equal(t, lb.ValidatorSet.TotalVotingPower(), restored.ValidatorSet.TotalVotingPower())
	assert.EqualValues(t, lb.Hash(), restored.Hash())
}

func randLightBlock(height int64) *types.LightBlock {
	vals, privKeys := types.RandValidatorSet(2, 10)

	header := &types.Header{
		ChainID:            "test",
		Height:             height,
		Time:               time.Now().UTC().Truncate(time.Second),
		ValidatorsHash:     vals.Hash(),
		NextValidatorsHash: vals.Hash(),
		ProposerAddress:    vals.Validators[0].Address,
	}

	blockID := types.BlockID{Hash: header.Hash()}
	commit, err := types.MakeCommit(blockID, height, 1, vals, privKeys, "test", header.Time)
	if err != nil {
		panic(err)
	}

	return &types.LightBlock{
		SignedHeader: &types.SignedHeader{
			Header: header,
			Commit: commit,
		},
		ValidatorSet:     vals,
		NextValidatorSet: vals,
		Provider:         "test",
	}
}

package light_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/lantern-chain/lantern/libs/log"
	"github.com/lantern-chain/lantern/light"
	"github.com/lantern-chain/lantern/light/provider"
	mockp "github.com/lantern-chain/lantern/light/provider/mock"
	dbs "github.com/lantern-chain/lantern/light/store/db"
)

func TestClient_SkippingVerificationToDistantHeight(t *testing.T) {
	var (
		bTime   = time.Now().Add(-time.Hour)
		blocks  = genRotatingChain(t, testChainID, 10, 6, bTime, 10)
		primary = mockp.New(testChainID, blocks)
		witness = mockp.New(testChainID, blocks)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	lb, err := c.VerifyLightBlockAtHeight(context.Background(), 10, time.Now())
	require.NoError(t, err)
	require.NotNil(t, lb)
	assert.EqualValues(t, 10, lb.Height)

	height, err := c.LastTrustedHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 10, height)

	// Intermediate bisection blocks are not persisted.
	_, err = c.TrustedLightBlock(5)
	assert.Error(t, err)
}

func TestClient_Update(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 5, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	lb, err := c.Update(context.Background(), time.Now())
	require.NoError(t, err)
	require.NotNil(t, lb)
	assert.EqualValues(t, 5, lb.Height)

	// Already up to date: nothing to do.
	lb, err = c.Update(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, lb)
}

func TestClient_BackwardsVerification(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 5, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 3,
			Hash:   blocks[3].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	lb, err := c.VerifyLightBlockAtHeight(context.Background(), 1, time.Now())
	require.NoError(t, err)
	require.NotNil(t, lb)
	assert.EqualValues(t, 1, lb.Height)
}

func TestClient_ConflictingWitnessAtInitialization(t *testing.T) {
	var (
		bTime      = time.Now().Add(-time.Hour)
		blocks, _  = genStaticChain(t, testChainID, 3, 4, bTime, 25)
		forked, _  = genStaticChain(t, testChainID, 3, 4, bTime, 25)
		primary    = mockp.New(testChainID, blocks)
		badWitness = mockp.New(testChainID, forked)
	)

	_, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{badWitness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.Error(t, err)
	assert.ErrorAs(t, err, &light.ErrConflictingHeaders{})
}

func TestClient_NoWitnesses(t *testing.T) {
	blocks, _ := genStaticChain(t, testChainID, 2, 4, time.Now().Add(-time.Hour), 25)
	primary := mockp.New(testChainID, blocks)

	_, err := light.NewClientFromTrustedStore(
		testChainID,
		3*time.Hour,
		primary,
		nil,
		dbs.New(dbm.NewMemDB(), testChainID),
	)
	require.Error(t, err)
	assert.IsType(t, light.ErrNoWitnesses{}, err)
}

func TestClient_WitnessOnAnotherChain(t *testing.T) {
	blocks, _ := genStaticChain(t, testChainID, 2, 4, time.Now().Add(-time.Hour), 25)
	primary := mockp.New(testChainID, blocks)
	witness := mockp.New("other-chain", blocks)

	_, err := light.NewClientFromTrustedStore(
		testChainID,
		3*time.Hour,
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
	)
	require.Error(t, err)
}

func TestClient_Pruning(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 10, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
		st        = dbs.New(dbm.NewMemDB(), testChainID)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		st,
		light.Logger(log.NewTestingLogger(t)),
		light.PruningSize(3),
	)
	require.NoError(t, err)

	for h := int64(2); h <= 10; h++ {
		_, err := c.VerifyLightBlockAtHeight(context.Background(), h, time.Now())
		require.NoError(t, err)
	}

	assert.EqualValues(t, 3, st.Size())

	height, err := c.LastTrustedHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 10, height)
}

func TestClient_RestoreTrustedStateFromStore(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 3, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
		st        = dbs.New(dbm.NewMemDB(), testChainID)
	)

	require.NoError(t, st.SaveLightBlock(blocks[2]))

	c, err := light.NewClientFromTrustedStore(
		testChainID,
		3*time.Hour,
		primary,
		[]provider.Provider{witness},
		st,
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	height, err := c.LastTrustedHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 2, height)

	restored, err := c.TrustedLightBlock(2)
	require.NoError(t, err)
	assert.EqualValues(t, blocks[2].Hash(), restored.Hash())
}

func TestClient_TrustedLightBlock(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 2, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
	)
	require.NoError(t, err)

	// 0 means latest
	lb, err := c.TrustedLightBlock(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lb.Height)

	_, err = c.TrustedLightBlock(2)
	assert.Error(t, err)

	_, err = c.TrustedLightBlock(-1)
	assert.Error(t, err)
}

func TestClient_UnknownHeightFromPrimary(t *testing.T) {
	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 2, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
		witness   = mockp.New(testChainID, blocks)
	)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{witness},
		dbs.New(dbm.NewMemDB(), testChainID),
	)
	require.NoError(t, err)

	_, err = c.VerifyLightBlockAtHeight(context.Background(), 100, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrHeightTooHigh)
}

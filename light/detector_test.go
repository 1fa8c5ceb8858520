package light_test

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/lantern-chain/lantern/libs/log"
	"github.com/lantern-chain/lantern/light"
	"github.com/lantern-chain/lantern/light/provider"
	mockp "github.com/lantern-chain/lantern/light/provider/mock"
	dbs "github.com/lantern-chain/lantern/light/store/db"
	"github.com/lantern-chain/lantern/types"
)

// forkedFrom returns a block map that matches base up to and including
// height h, and fork afterwards.
func forkedFrom(base, fork map[int64]*types.LightBlock, h int64) map[int64]*types.LightBlock {
	out := make(map[int64]*types.LightBlock, len(fork))
	for height, lb := range fork {
		if height <= h {
			out[height] = base[height]
		} else {
			out[height] = lb
		}
	}
	return out
}

func TestClientDivergentTraces_ConflictingWitness(t *testing.T) {
	defer leaktest.CheckTimeout(t, 3*time.Second)()

	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 5, 4, bTime, 25)
		forked, _ = genStaticChain(t, testChainID, 5, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
	)

	// one witness agrees with the primary; the other is on a fork that only
	// diverges after the trusted height
	goodWitness := mockp.New(testChainID, blocks)
	badWitness := mockp.New(testChainID, forkedFrom(blocks, forked, 1))

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{goodWitness, badWitness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	_, err = c.VerifyLightBlockAtHeight(context.Background(), 5, time.Now())
	require.Error(t, err)
	assert.ErrorAs(t, err, &light.ErrConflictingHeaders{})
}

func TestClientDivergentTraces_UnresponsiveWitnessIsTolerated(t *testing.T) {
	defer leaktest.CheckTimeout(t, 3*time.Second)()

	var (
		bTime     = time.Now().Add(-time.Hour)
		blocks, _ = genStaticChain(t, testChainID, 5, 4, bTime, 25)
		primary   = mockp.New(testChainID, blocks)
	)

	goodWitness := mockp.New(testChainID, blocks)
	deadWitness := mockp.New(testChainID, blocks)

	c, err := light.NewClient(
		context.Background(),
		testChainID,
		light.TrustOptions{
			Period: 3 * time.Hour,
			Height: 1,
			Hash:   blocks[1].Hash(),
		},
		primary,
		[]provider.Provider{goodWitness, deadWitness},
		dbs.New(dbm.NewMemDB(), testChainID),
		light.Logger(log.NewTestingLogger(t)),
	)
	require.NoError(t, err)

	// as long as one witness confirms the header, a dead one is tolerated
	deadWitness.SetUnresponsive()

	lb, err := c.VerifyLightBlockAtHeight(context.Background(), 5, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 5, lb.Height)
}

func TestClientDivergentTraces_AllWitnessesUnresponsive(t *testing.T) {
	defer leaktest.CheckTimeout(t, 3*time.Second)()

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

	witness.SetUnresponsive()

	_, err = c.VerifyLightBlockAtHeight(context.Background(), 5, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, light.ErrFailedHeaderCrossReferencing)
}

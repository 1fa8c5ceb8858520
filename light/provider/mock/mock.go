package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lantern-chain/lantern/light/provider"
	"github.com/lantern-chain/lantern/types"
)

// Mock is an in-memory provider backed by a fixed set of light blocks. It is
// used in tests and can simulate an unresponsive peer.
type Mock struct {
	chainID string

	mtx          sync.Mutex
	blocks       map[int64]*types.LightBlock
	unresponsive bool
}

var _ provider.Provider = (*Mock)(nil)

// New creates a mock provider with the given set of light blocks.
func New(chainID string, blocks map[int64]*types.LightBlock) *Mock {
	copied := make(map[int64]*types.LightBlock, len(blocks))
	for h, lb := range blocks {
		copied[h] = lb
	}
	return &Mock{
		chainID: chainID,
		blocks:  copied,
	}
}

// ChainID returns the blockchain ID.
func (p *Mock) ChainID() string {
	return p.chainID
}

func (p *Mock) String() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	heights := make([]int64, 0, len(p.blocks))
	for h := range p.blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var sb strings.Builder
	for _, h := range heights {
		fmt.Fprintf(&sb, " %d:%X", h, p.blocks[h].Hash())
	}
	return fmt.Sprintf("Mock{chainID: %s, blocks:%s}", p.chainID, sb.String())
}

func (p *Mock) LightBlock(ctx context.Context, height int64) (*types.LightBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.ErrNoResponse
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.unresponsive {
		return nil, provider.ErrNoResponse
	}

	if height == 0 {
		height = p.latestHeight()
	}
	if lb, ok := p.blocks[height]; ok {
		return lb, nil
	}
	if height > p.latestHeight() {
		return nil, provider.ErrHeightTooHigh
	}
	return nil, provider.ErrLightBlockNotFound
}

// AddBlock registers a light block after construction.
func (p *Mock) AddBlock(lb *types.LightBlock) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.blocks[lb.Height] = lb
}

// SetUnresponsive makes all subsequent requests fail with ErrNoResponse.
func (p *Mock) SetUnresponsive() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.unresponsive = true
}

func (p *Mock) latestHeight() int64 {
	var max int64
	for h := range p.blocks {
		if h > max {
			max = h
		}
	}
	return max
}

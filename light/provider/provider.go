package provider

import (
	"context"

	"github.com/lantern-chain/lantern/types"
)

// Provider provides light blocks for the light client to sync (verification
// happens in the client).
type Provider interface {
	// LightBlock returns the LightBlock that corresponds to the given
	// height.
	//
	// 0 - the latest.
	// height must be >= 0.
	//
	// If the provider fails to fetch the LightBlock due to the IO or other
	// issues, an error will be returned.
	// If there's no LightBlock for the given height, ErrLightBlockNotFound
	// error is returned.
	LightBlock(ctx context.Context, height int64) (*types.LightBlock, error)

	// ChainID returns the ID of the chain the provider serves blocks for.
	ChainID() string

	// String identifies the provider, e.g. its URL.
	String() string
}

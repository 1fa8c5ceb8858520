package store

import "github.com/lantern-chain/lantern/types"

// Store is anything that can persistently store light blocks.
type Store interface {
	// SaveLightBlock saves a LightBlock under its height.
	//
	// height must be > 0.
	SaveLightBlock(lb *types.LightBlock) error

	// DeleteLightBlock deletes the LightBlock at the given height.
	//
	// height must be > 0.
	DeleteLightBlock(height int64) error

	// LightBlock returns the LightBlock that corresponds to the given
	// height.
	//
	// height must be > 0.
	//
	// If LightBlock is not found, ErrLightBlockNotFound is returned.
	LightBlock(height int64) (*types.LightBlock, error)

	// LastLightBlockHeight returns the last (newest) LightBlock height.
	//
	// If the store is empty, -1 and nil error are returned.
	LastLightBlockHeight() (int64, error)

	// FirstLightBlockHeight returns the first (oldest) LightBlock height.
	//
	// If the store is empty, -1 and nil error are returned.
	FirstLightBlockHeight() (int64, error)

	// LightBlockBefore returns the LightBlock before a certain height.
	//
	// height must be > 0 && <= LastLightBlockHeight.
	LightBlockBefore(height int64) (*types.LightBlock, error)

	// Prune removes the oldest light blocks when the store exceeds the
	// given size (number of light blocks).
	Prune(size uint16) error

	// Size returns the number of currently stored light blocks.
	Size() uint16
}

package store

import "errors"

// ErrLightBlockNotFound is returned when a store does not have the
// requested light block.
var ErrLightBlockNotFound = errors.New("light block not found")

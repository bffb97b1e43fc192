package raster

import "errors"

var (
	// ErrInvalidDimensions is returned for non-positive or oversized canvas or grid sizes
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrUnknownLayer is returned when a layer name is not registered
	ErrUnknownLayer = errors.New("unknown layer")

	// ErrDuplicateLayer is returned when registering a name twice
	ErrDuplicateLayer = errors.New("duplicate layer")
)

package catalog

import "errors"

var (
	// ErrEmptyCatalog is returned by Load when no row survives filtering.
	ErrEmptyCatalog = errors.New("catalog: empty catalog")

	// ErrInvalidMaxFeatures is returned by BuildFeatures for a non-positive vocabulary cap.
	ErrInvalidMaxFeatures = errors.New("catalog: max features must be positive")
)

package services

import "errors"

// Data service errors
var (
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrRegionNotFound   = errors.New("region not found")
	ErrNoObservations   = errors.New("no observations match the filter")
)

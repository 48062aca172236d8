package kmeans

import "errors"

var (
	// ErrInvalidConfiguration is returned when the engine cannot be constructed
	// from the given shape, cluster count, dataset or options.
	ErrInvalidConfiguration = errors.New("kmeans: invalid configuration")

	// ErrFinished is returned by step methods once the engine is in a terminal state.
	ErrFinished = errors.New("kmeans: run already finished")

	// ErrNotAssigned is returned when centroids are updated before any assignment.
	ErrNotAssigned = errors.New("kmeans: no assignment to update from")

	// ErrNotFinished is returned when results are requested before the run terminated.
	ErrNotFinished = errors.New("kmeans: run not finished")

	// ErrDimension is returned when a point does not match the centroid dimensionality.
	ErrDimension = errors.New("kmeans: dimension mismatch")
)

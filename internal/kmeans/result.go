package kmeans

import "fmt"

// DegenerateEvent records a cluster that received no points during the update
// pass numbered Iteration (1-based).
type DegenerateEvent struct {
	Iteration int `json:"iteration"`
	Cluster   int `json:"cluster"`
}

// Result is the read-only outcome of a finished run.
type Result struct {
	Centroids  Dataset           `json:"centroids"`
	Assignment []int             `json:"assignment"`
	Sizes      []int             `json:"sizes"`
	Inertia    float64           `json:"inertia"`
	Converged  bool              `json:"converged"`
	Iterations int               `json:"iterations"`
	State      State             `json:"state"`
	Degenerate []DegenerateEvent `json:"degenerate,omitempty"`
}

// Predict returns number of cluster to which the observation would be assigned.
// The observation must have the dimensionality of the centroids.
func (r *Result) Predict(p []float64) (int, error) {
	cols := 0
	if len(r.Centroids) > 0 {
		cols = len(r.Centroids[0])
	}
	if cols == 0 || len(p) != cols {
		return 0, fmt.Errorf("%w: point has %d coordinates, centroids have %d", ErrDimension, len(p), cols)
	}
	n, _ := nearest(p, r.Centroids)
	return n, nil
}

// Cluster returns centroid at position i.
func (r *Result) Cluster(i int) []float64 {
	return r.Centroids[i]
}

// Members returns the indices of the points assigned to cluster i, in order.
func (r *Result) Members(i int) []int {
	var m []int
	for p, n := range r.Assignment {
		if n == i {
			m = append(m, p)
		}
	}
	return m
}

package kmeans

// EuclideanDistanceSquared returns the sum of squared coordinate differences
// between two vectors of the same dimensionality.
// Only the relative ordering of distances matters for assignment, so the root is never taken.
var EuclideanDistanceSquared = func(a, b []float64) float64 {
	var (
		s, t float64
	)

	for i := range a {
		t = a[i] - b[i]
		s += t * t
	}

	return s
}

// nearest returns the index of the centroid closest to p and its squared distance.
// Ties go to the lowest index.
func nearest(p []float64, centroids Dataset) (int, float64) {
	n := 0
	m := EuclideanDistanceSquared(p, centroids[0])
	for j := 1; j < len(centroids); j++ {
		if d := EuclideanDistanceSquared(p, centroids[j]); d < m {
			m = d
			n = j
		}
	}
	return n, m
}

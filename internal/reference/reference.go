// Package reference runs a third-party k-means implementation over the same
// data and measures how far two partitions agree.
package reference

import (
	"errors"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ErrLength is returned when two assignments cover a different number of points.
var ErrLength = errors.New("reference: assignments differ in length")

// Partition is the outcome of a reference run.
type Partition struct {
	Centroids  [][]float64 `json:"centroids"`
	Assignment []int       `json:"assignment"`
	Iterations int         `json:"iterations"`
}

// passCounter counts the passes muesli/kmeans reports through its plotter hook.
type passCounter struct {
	n int
}

func (c *passCounter) Plot(_ clusters.Clusters, _ int) error {
	c.n++
	return nil
}

// Muesli partitions data into k clusters with github.com/muesli/kmeans.
// delta is the fraction of points (0 < delta < 1) that must still move for
// another pass to run. Initialization is random, so results vary per call.
func Muesli(data [][]float64, k int, delta float64) (*Partition, error) {
	pc := &passCounter{}
	km, err := kmeans.NewWithOptions(delta, pc)
	if err != nil {
		return nil, err
	}

	obs := make(clusters.Observations, len(data))
	for i, p := range data {
		obs[i] = clusters.Coordinates(append([]float64(nil), p...))
	}
	cc, err := km.Partition(obs, k)
	if err != nil {
		return nil, err
	}

	p := &Partition{
		Centroids:  make([][]float64, len(cc)),
		Assignment: make([]int, len(obs)),
		Iterations: pc.n,
	}
	for i, c := range cc {
		p.Centroids[i] = append([]float64(nil), c.Center...)
	}
	for i, o := range obs {
		p.Assignment[i] = cc.Nearest(o)
	}
	return p, nil
}

// Agreement returns the Rand index of two assignments: the fraction of point
// pairs that both put in the same cluster or both put in different clusters.
// Labels need not match between the two.
func Agreement(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d", ErrLength, len(a), len(b))
	}
	n := len(a)
	if n < 2 {
		return 1, nil
	}

	pairs := func(c int) float64 {
		return float64(c) * float64(c-1) / 2
	}

	joint := make(map[[2]int]int)
	left := make(map[int]int)
	right := make(map[int]int)
	for i := range a {
		joint[[2]int{a[i], b[i]}]++
		left[a[i]]++
		right[b[i]]++
	}

	var same, sameA, sameB float64
	for _, c := range joint {
		same += pairs(c)
	}
	for _, c := range left {
		sameA += pairs(c)
	}
	for _, c := range right {
		sameB += pairs(c)
	}

	total := pairs(n)
	return (total + 2*same - sameA - sameB) / total, nil
}

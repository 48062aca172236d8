package kmeans

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dataset is an ordered sequence of points of equal dimensionality.
type Dataset [][]float64

// FromMatrix copies a row-major matrix into a Dataset, one point per row.
func FromMatrix(m mat.Matrix) Dataset {
	r, c := m.Dims()
	d := make(Dataset, r)
	for i := 0; i < r; i++ {
		d[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			d[i][j] = m.At(i, j)
		}
	}
	return d
}

// Matrix returns the dataset as a dense matrix. It returns nil for an empty
// or ragged dataset.
func (d Dataset) Matrix() *mat.Dense {
	if len(d) == 0 || len(d[0]) == 0 {
		return nil
	}
	cols := len(d[0])
	for _, row := range d {
		if len(row) != cols {
			return nil
		}
	}
	m := mat.NewDense(len(d), cols, nil)
	for i, row := range d {
		m.SetRow(i, row)
	}
	return m
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	c := make(Dataset, len(d))
	for i := range d {
		c[i] = append([]float64(nil), d[i]...)
	}
	return c
}

// validate checks the declared shape against the data.
func (d Dataset) validate(rows, cols, k int) error {
	switch {
	case k < 1:
		return fmt.Errorf("%w: cluster count %d must be positive", ErrInvalidConfiguration, k)
	case cols < 1:
		return fmt.Errorf("%w: dimensionality %d must be positive", ErrInvalidConfiguration, cols)
	case rows < k:
		return fmt.Errorf("%w: %d points cannot form %d clusters", ErrInvalidConfiguration, rows, k)
	case len(d) != rows:
		return fmt.Errorf("%w: declared %d rows, dataset has %d", ErrInvalidConfiguration, rows, len(d))
	}

	for i, p := range d {
		if len(p) != cols {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidConfiguration, i, len(p), cols)
		}
		for j, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: row %d column %d is not finite", ErrInvalidConfiguration, i, j)
			}
		}
	}
	return nil
}

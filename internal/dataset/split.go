package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Subsample keeps a random fraction of the collection's columns, chosen by
// a seeded permutation so the same seed always selects the same images.
// The selected columns keep their original relative order.
func (c *Collection) Subsample(fraction float64, seed int64) (*Collection, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("sample fraction must be in (0,1], got %v", fraction)
	}

	_, n := c.V.Dims()
	keep := int(float64(n) * fraction)
	if keep < 1 {
		keep = 1
	}
	if keep == n {
		return c, nil
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	selected := append([]int(nil), perm[:keep]...)
	sort.Ints(selected)

	rows, _ := c.V.Dims()
	v := mat.NewDense(rows, keep, nil)
	labels := make([]int, keep)
	for i, j := range selected {
		v.SetCol(i, mat.Col(nil, j, c.V))
		labels[i] = c.Labels[j]
	}

	return &Collection{V: v, Labels: labels, Shape: c.Shape, Subjects: c.Subjects}, nil
}

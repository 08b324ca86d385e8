// Package metrics scores factorizations against the clean data and the
// ground-truth subject labels.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RRE returns the relative reconstruction error ||V - W*H||_F / ||V||_F
// measured against the clean matrix v, regardless of which corrupted
// matrix the factors were fitted on.
func RRE(v, w, h *mat.Dense) (float64, error) {
	var rec mat.Dense
	rec.Mul(w, h)

	vr, vc := v.Dims()
	rr, rc := rec.Dims()
	if vr != rr || vc != rc {
		return 0, fmt.Errorf("reconstruction is %dx%d, want %dx%d", rr, rc, vr, vc)
	}

	var diff mat.Dense
	diff.Sub(v, &rec)

	denom := mat.Norm(v, 2)
	if denom == 0 {
		return 0, fmt.Errorf("clean matrix has zero norm")
	}
	return mat.Norm(&diff, 2) / denom, nil
}

// Accuracy returns the fraction of predicted labels matching the truth.
func Accuracy(truth, predicted []int) (float64, error) {
	if len(truth) != len(predicted) {
		return 0, fmt.Errorf("label lengths differ: %d vs %d", len(truth), len(predicted))
	}
	if len(truth) == 0 {
		return 0, fmt.Errorf("empty label slices")
	}
	match := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			match++
		}
	}
	return float64(match) / float64(len(truth)), nil
}

// NMI returns the normalized mutual information between two labelings,
// using the arithmetic mean of the marginal entropies as normalizer.
// The result is in [0,1]: 1 for identical partitions (up to relabeling),
// 0 for independent ones.
func NMI(truth, predicted []int) (float64, error) {
	if len(truth) != len(predicted) {
		return 0, fmt.Errorf("label lengths differ: %d vs %d", len(truth), len(predicted))
	}
	n := len(truth)
	if n == 0 {
		return 0, fmt.Errorf("empty label slices")
	}

	joint := make(map[[2]int]int)
	left := make(map[int]int)
	right := make(map[int]int)
	for i := 0; i < n; i++ {
		joint[[2]int{truth[i], predicted[i]}]++
		left[truth[i]]++
		right[predicted[i]]++
	}

	total := float64(n)
	var mi float64
	for pair, count := range joint {
		pxy := float64(count) / total
		px := float64(left[pair[0]]) / total
		py := float64(right[pair[1]]) / total
		mi += pxy * math.Log(pxy/(px*py))
	}
	if mi <= 0 {
		// Rounding can leave a tiny negative value for independent
		// labelings.
		return 0, nil
	}

	norm := (entropy(left, total) + entropy(right, total)) / 2
	if norm == 0 {
		return 0, nil
	}
	return math.Min(mi/norm, 1), nil
}

func entropy(counts map[int]int, total float64) float64 {
	var h float64
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log(p)
	}
	return h
}

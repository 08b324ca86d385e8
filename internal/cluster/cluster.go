// Package cluster evaluates factorization encodings by k-means clustering.
//
// The columns of the encoding matrix H are clustered into as many groups
// as there are subjects, then each cluster is labeled by majority vote
// over the true labels of its members. The resulting predicted labels are
// comparable to the ground truth with accuracy and mutual-information
// metrics.
package cluster

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/mat"
)

// AssignLabels clusters the columns of h into k groups and labels every
// column with the most common true label inside its cluster.
func AssignLabels(h *mat.Dense, labels []int, k int) ([]int, error) {
	_, n := h.Dims()
	if n != len(labels) {
		return nil, fmt.Errorf("encoding has %d columns but %d labels", n, len(labels))
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("cluster count %d out of range for %d samples", k, n)
	}

	obs := make(clusters.Observations, n)
	for j := 0; j < n; j++ {
		obs[j] = clusters.Coordinates(mat.Col(nil, j, h))
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("k-means partition failed: %w", err)
	}

	// Gather cluster membership, then majority-vote a label per cluster.
	membership := make([]int, n)
	counts := make([]map[int]int, len(partition))
	for j := 0; j < n; j++ {
		c := partition.Nearest(obs[j])
		membership[j] = c
		if counts[c] == nil {
			counts[c] = make(map[int]int)
		}
		counts[c][labels[j]]++
	}

	vote := make([]int, len(partition))
	for c, tally := range counts {
		best, bestCount := 0, -1
		for label, count := range tally {
			if count > bestCount || (count == bestCount && label < best) {
				best, bestCount = label, count
			}
		}
		vote[c] = best
	}

	predicted := make([]int, n)
	for j := 0; j < n; j++ {
		predicted[j] = vote[membership[j]]
	}
	return predicted, nil
}

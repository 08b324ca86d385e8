package cluster

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// blobEncoding builds a 2 x n encoding whose columns form two tight,
// widely separated blobs, so any sane k-means run separates them.
func blobEncoding(perBlob int, seed int64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))
	n := 2 * perBlob
	h := mat.NewDense(2, n, nil)
	labels := make([]int, n)
	for j := 0; j < n; j++ {
		center := 0.0
		if j >= perBlob {
			center = 1000
			labels[j] = 1
		}
		h.Set(0, j, center+rng.Float64())
		h.Set(1, j, center+rng.Float64())
	}
	return h, labels
}

func TestAssignLabels_SeparatedBlobs(t *testing.T) {
	h, labels := blobEncoding(15, 3)

	predicted, err := AssignLabels(h, labels, 2)
	if err != nil {
		t.Fatalf("AssignLabels failed: %v", err)
	}
	if len(predicted) != len(labels) {
		t.Fatalf("got %d predictions, want %d", len(predicted), len(labels))
	}
	for j := range labels {
		if predicted[j] != labels[j] {
			t.Errorf("column %d: predicted %d, want %d", j, predicted[j], labels[j])
		}
	}
}

func TestAssignLabels_SingleCluster(t *testing.T) {
	// With one cluster every column gets the overall majority label.
	h := mat.NewDense(2, 5, []float64{
		1, 2, 3, 4, 5,
		1, 2, 3, 4, 5,
	})
	labels := []int{7, 7, 7, 2, 2}

	predicted, err := AssignLabels(h, labels, 1)
	if err != nil {
		t.Fatalf("AssignLabels failed: %v", err)
	}
	for j, p := range predicted {
		if p != 7 {
			t.Errorf("column %d: predicted %d, want 7", j, p)
		}
	}
}

func TestAssignLabels_Errors(t *testing.T) {
	h := mat.NewDense(2, 4, nil)

	tests := []struct {
		name   string
		labels []int
		k      int
	}{
		{"label count mismatch", []int{0, 1}, 2},
		{"zero clusters", []int{0, 0, 1, 1}, 0},
		{"more clusters than samples", []int{0, 0, 1, 1}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AssignLabels(h, tt.labels, tt.k); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// Package report collects experiment outcomes and writes the results.csv
// artifact.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Result is one (dataset, noise, algorithm) experiment outcome.
type Result struct {
	Dataset   string
	Noise     string
	Algorithm string

	// RRE is the relative reconstruction error against the clean data.
	RRE float64

	// Accuracy and NMI score the clustering of the encoding matrix
	// against the true subject labels.
	Accuracy float64
	NMI      float64

	// Iterations and Seconds record the work the factorization took.
	Iterations int
	Seconds    float64
}

var header = []string{"dataset", "noise", "algorithm", "rre", "accuracy", "nmi", "iterations", "seconds"}

// WriteCSV writes the results atomically: the file appears complete or
// not at all, never truncated by a failure mid-write.
func WriteCSV(path string, results []Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to write")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "results-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Dataset,
			r.Noise,
			r.Algorithm,
			strconv.FormatFloat(r.RRE, 'f', 4, 64),
			strconv.FormatFloat(r.Accuracy, 'f', 4, 64),
			strconv.FormatFloat(r.NMI, 'f', 4, 64),
			strconv.Itoa(r.Iterations),
			strconv.FormatFloat(r.Seconds, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp results file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move results into place: %w", err)
	}
	return nil
}

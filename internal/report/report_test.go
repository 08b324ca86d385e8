package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")

	results := []Result{
		{
			Dataset: "ORL", Noise: "none", Algorithm: "multiplicative",
			RRE: 0.12345, Accuracy: 0.75, NMI: 0.66, Iterations: 200, Seconds: 1.5,
		},
		{
			Dataset: "CroppedYaleB", Noise: "salt_pepper", Algorithm: "tanh_robust",
			RRE: 0.3, Accuracy: 0.5, NMI: 0.4, Iterations: 150, Seconds: 12.25,
		},
	}

	if err := WriteCSV(path, results); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open results: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], header) {
		t.Errorf("header: got %v, want %v", rows[0], header)
	}
	want := []string{"ORL", "none", "multiplicative", "0.1235", "0.7500", "0.6600", "200", "1.50"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row 1: got %v, want %v", rows[1], want)
	}
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	one := []Result{{Dataset: "a", Noise: "none", Algorithm: "x"}}
	two := []Result{
		{Dataset: "a", Noise: "none", Algorithm: "x"},
		{Dataset: "b", Noise: "none", Algorithm: "y"},
	}

	if err := WriteCSV(path, one); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteCSV(path, two); err != nil {
		t.Fatalf("second write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows after overwrite, want 3", len(rows))
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	if err := WriteCSV(filepath.Join(t.TempDir(), "r.csv"), nil); err == nil {
		t.Error("expected error for empty results")
	}
}

func TestWriteCSV_NoStrayTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")

	if err := WriteCSV(path, []Result{{Dataset: "a", Noise: "none", Algorithm: "x"}}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "results.csv" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents: %v, want only results.csv", names)
	}
}

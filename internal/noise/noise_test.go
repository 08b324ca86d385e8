package noise

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func halfMatrix(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 0.5
	}
	return mat.NewDense(rows, cols, data)
}

func TestNone(t *testing.T) {
	v := halfMatrix(10, 10)
	out := None{}.Apply(v, 1)

	if !mat.Equal(v, out) {
		t.Error("None changed the matrix")
	}
	out.Set(0, 0, 0.9)
	if v.At(0, 0) != 0.5 {
		t.Error("None aliases the input matrix")
	}
}

func TestSaltAndPepper(t *testing.T) {
	v := halfMatrix(100, 100)
	out := SaltAndPepper{Fraction: 0.4, SaltRatio: 0.3}.Apply(v, 1)

	var flipped, salt int
	for _, x := range out.RawMatrix().Data {
		switch x {
		case 0.5:
		case 1:
			flipped++
			salt++
		case 0:
			flipped++
		default:
			t.Fatalf("unexpected value %v", x)
		}
	}

	frac := float64(flipped) / 10000
	if frac < 0.35 || frac > 0.45 {
		t.Errorf("corrupted fraction %.3f, want ~0.40", frac)
	}
	saltShare := float64(salt) / float64(flipped)
	if saltShare < 0.25 || saltShare > 0.35 {
		t.Errorf("salt share %.3f, want ~0.30", saltShare)
	}
	if v.At(0, 0) != 0.5 {
		t.Error("input matrix was modified")
	}
}

func TestUniform(t *testing.T) {
	v := halfMatrix(50, 50)
	out := Uniform{Scale: 0.4}.Apply(v, 1)

	for i, x := range out.RawMatrix().Data {
		if x < 0.5 || x >= 0.9 {
			t.Fatalf("entry %d: %v outside [0.5, 0.9)", i, x)
		}
	}
	if mat.Equal(v, out) {
		t.Error("uniform noise left the matrix unchanged")
	}
}

func TestDeterministicForSeed(t *testing.T) {
	v := halfMatrix(20, 20)

	models := []Model{None{}, SaltAndPepper{}, Uniform{}}
	for _, m := range models {
		t.Run(m.Name(), func(t *testing.T) {
			a := m.Apply(v, 42)
			b := m.Apply(v, 42)
			if !mat.Equal(a, b) {
				t.Error("same seed produced different noise")
			}
		})
	}
}

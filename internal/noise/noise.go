// Package noise corrupts a data matrix before factorization so the
// robustness of each algorithm can be compared against the clean data.
package noise

import (
	"math/rand"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model corrupts a copy of the input matrix. Implementations never modify
// the input; the clean matrix is still needed for error evaluation.
type Model interface {
	// Apply returns a corrupted copy of v, deterministic for a given seed.
	Apply(v *mat.Dense, seed int64) *mat.Dense

	// Name identifies the model in results and figure filenames.
	Name() string
}

// None passes the data through unchanged.
type None struct{}

func (None) Name() string { return "none" }

func (None) Apply(v *mat.Dense, _ int64) *mat.Dense {
	out := mat.DenseCopyOf(v)
	return out
}

// SaltAndPepper flips a fraction of the entries to pure white or pure
// black. Each entry is corrupted with probability Fraction; of the
// corrupted entries, SaltRatio become white (1) and the rest black (0).
// Output values are clipped to [0,1].
type SaltAndPepper struct {
	Fraction  float64 // probability an entry is corrupted, default 0.4
	SaltRatio float64 // white share of corrupted entries, default 0.3
}

func (SaltAndPepper) Name() string { return "salt_pepper" }

func (s SaltAndPepper) Apply(v *mat.Dense, seed int64) *mat.Dense {
	p := s.Fraction
	if p == 0 {
		p = 0.4
	}
	r := s.SaltRatio
	if r == 0 {
		r = 0.3
	}

	rng := rand.New(rand.NewSource(seed))
	out := mat.DenseCopyOf(v)
	raw := out.RawMatrix()
	for i := range raw.Data {
		if rng.Float64() > p {
			continue
		}
		if rng.Float64() <= r {
			raw.Data[i] = 1
		} else {
			raw.Data[i] = 0
		}
	}
	return out
}

// Uniform adds Scale*U(0,1) noise to every entry. The result is left
// unclipped: additive illumination noise can push values above 1 and the
// factorizations must cope with that.
type Uniform struct {
	Scale float64 // noise amplitude, default 0.4
}

func (Uniform) Name() string { return "uniform" }

func (u Uniform) Apply(v *mat.Dense, seed int64) *mat.Dense {
	scale := u.Scale
	if scale == 0 {
		scale = 0.4
	}

	dist := distuv.Uniform{Min: 0, Max: 1, Src: xrand.NewSource(uint64(seed))}
	out := mat.DenseCopyOf(v)
	raw := out.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] += scale * dist.Rand()
	}
	return out
}

package nmf

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Result carries the factors produced by a factorization together with
// the work it took.
type Result struct {
	// W is the m x k basis matrix.
	W *mat.Dense

	// H is the k x n encoding matrix.
	H *mat.Dense

	// Iterations is the number of outer iterations performed.
	Iterations int

	// Converged reports whether the algorithm met its own stopping
	// criterion rather than running out of iterations or time.
	Converged bool
}

// Factorizer computes a rank-k non-negative factorization of v.
type Factorizer interface {
	// Factorize returns factors of v. v must be elementwise
	// non-negative with no dimension smaller than 1, and rank must be
	// positive and no larger than either dimension of v.
	Factorize(v *mat.Dense, rank int) (*Result, error)

	// Name identifies the algorithm in results and figure filenames.
	Name() string
}

// checkFactorizeArgs validates the shared preconditions of every
// Factorize implementation.
func checkFactorizeArgs(v *mat.Dense, rank int) error {
	if v == nil {
		return fmt.Errorf("nil data matrix")
	}
	m, n := v.Dims()
	if rank < 1 {
		return fmt.Errorf("rank must be positive, got %d", rank)
	}
	if rank > m || rank > n {
		return fmt.Errorf("rank %d exceeds data dimensions %dx%d", rank, m, n)
	}
	if v.RawMatrix().Rows > 0 {
		for _, x := range v.RawMatrix().Data {
			if x < 0 {
				return fmt.Errorf("data matrix has negative entries")
			}
		}
	}
	return nil
}

// randomFactors returns seeded uniform random initial factors. Entries are
// drawn from (0,1]; an exact zero would pin a multiplicative update at
// zero forever.
func randomFactors(m, n, rank int, seed int64) (w, h *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	w = mat.NewDense(m, rank, nil)
	h = mat.NewDense(rank, n, nil)
	fill := func(d *mat.Dense) {
		raw := d.RawMatrix()
		for i := range raw.Data {
			raw.Data[i] = 1 - rng.Float64()
		}
	}
	fill(w)
	fill(h)
	return w, h
}

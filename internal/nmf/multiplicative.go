package nmf

import (
	"gonum.org/v1/gonum/mat"
)

// epsDenom keeps multiplicative-update denominators away from zero.
const epsDenom = 1e-12

// Multiplicative factorizes by multiplicative updates with optional L1
// and L2 regularization. With both penalties zero this is the classic
// Lee-Seung Frobenius algorithm; the penalties are added to the update
// denominators, shrinking the factors toward sparsity (L1) or small
// magnitude (L2).
type Multiplicative struct {
	// L1 and L2 are the regularization weights, applied to both factors.
	L1, L2 float64

	// Steps is the number of update sweeps. Values below 1 default
	// to 200.
	Steps int

	// Seed drives the random initialization.
	Seed int64
}

func (Multiplicative) Name() string { return "multiplicative" }

// Factorize runs Steps sweeps of the paired W and H updates.
func (f Multiplicative) Factorize(v *mat.Dense, rank int) (*Result, error) {
	if err := checkFactorizeArgs(v, rank); err != nil {
		return nil, err
	}

	steps := f.Steps
	if steps < 1 {
		steps = 200
	}

	m, n := v.Dims()
	w, h := randomFactors(m, n, rank, f.Seed)

	var (
		wh, num, den mat.Dense
		ht, wt       mat.Dense
	)

	for step := 0; step < steps; step++ {
		// W <- W * (V Ht) / (W H Ht + l1 + l2 W)
		ht.Reset()
		ht.CloneFrom(h.T())
		num.Reset()
		num.Mul(v, &ht)
		wh.Reset()
		wh.Mul(w, h)
		den.Reset()
		den.Mul(&wh, &ht)
		scaleFactor(w, &num, &den, f.L1, f.L2)

		// H <- H * (Wt V) / (Wt W H + l1 + l2 H)
		wt.Reset()
		wt.CloneFrom(w.T())
		num.Reset()
		num.Mul(&wt, v)
		wh.Reset()
		wh.Mul(&wt, w)
		den.Reset()
		den.Mul(&wh, h)
		scaleFactor(h, &num, &den, f.L1, f.L2)
	}

	return &Result{W: w, H: h, Iterations: steps, Converged: true}, nil
}

// scaleFactor applies x *= num / (den + l1 + l2*x) elementwise.
func scaleFactor(x, num, den *mat.Dense, l1, l2 float64) {
	xd := x.RawMatrix().Data
	nd := num.RawMatrix().Data
	dd := den.RawMatrix().Data
	for i := range xd {
		d := dd[i] + l1 + l2*xd[i] + epsDenom
		xd[i] *= nd[i] / d
	}
}

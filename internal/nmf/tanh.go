package nmf

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TanhRobust factorizes with a hyperbolic-tangent reweighted residual.
// The residual E = V - W*H is passed through the influence weight
// U = a*(1 - tanh(a*|E|)^2) with a = p*m*n/||E||_F^2, so entries with a
// large residual (outlier pixels) contribute little to the updates. This
// makes the factorization markedly more stable under salt-and-pepper
// corruption than the plain Frobenius objective.
type TanhRobust struct {
	// P scales the influence sharpness a. Values <= 0 default to 1.
	P float64

	// Beta damps the H update. Values <= 0 default to 1e-2.
	Beta float64

	// Gamma weights an optional diversity term that pushes basis
	// columns toward distinct data columns. Zero disables it, matching
	// the usual configuration.
	Gamma float64

	// Steps is the number of update sweeps. Values below 1 default
	// to 200.
	Steps int

	// Seed drives the random initialization.
	Seed int64
}

func (TanhRobust) Name() string { return "tanh_robust" }

// Factorize runs Steps sweeps of the reweighted updates.
func (f TanhRobust) Factorize(v *mat.Dense, rank int) (*Result, error) {
	if err := checkFactorizeArgs(v, rank); err != nil {
		return nil, err
	}

	p := f.P
	if p <= 0 {
		p = 1
	}
	beta := f.Beta
	if beta <= 0 {
		beta = 1e-2
	}
	steps := f.Steps
	if steps < 1 {
		steps = 200
	}

	m, n := v.Dims()
	w, h := randomFactors(m, n, rank, f.Seed)
	size := float64(m * n)

	var (
		wh, u, uv, uwh   mat.Dense
		ht, wt, num, den mat.Dense
		hd2, hd2t, vhdt  mat.Dense
	)
	d := mat.NewDense(rank, n, nil)

	for step := 0; step < steps; step++ {
		if f.Gamma != 0 {
			// d[i][j] = exp(-||v[:,j] - w[:,i]||) couples each basis
			// column to the data columns it resembles.
			for i := 0; i < rank; i++ {
				for j := 0; j < n; j++ {
					var ss float64
					for row := 0; row < m; row++ {
						diff := v.At(row, j) - w.At(row, i)
						ss += diff * diff
					}
					d.Set(i, j, math.Exp(-math.Sqrt(ss)))
				}
			}
		}

		wh.Reset()
		wh.Mul(w, h)

		// Influence weights from the current residual.
		var sumsq float64
		{
			vd := v.RawMatrix().Data
			wd := wh.RawMatrix().Data
			for i := range vd {
				e := vd[i] - wd[i]
				sumsq += e * e
			}
			if sumsq < epsDenom {
				sumsq = epsDenom
			}
			a := size * p / sumsq
			u.Reset()
			u.CloneFrom(&wh)
			ud := u.RawMatrix().Data
			for i := range vd {
				t := math.Tanh(a * math.Abs(vd[i]-wd[i]))
				ud[i] = a * (1 - t*t)
			}
		}

		uv.Reset()
		uv.MulElem(&u, v)
		uwh.Reset()
		uwh.MulElem(&u, &wh)

		// W update.
		ht.Reset()
		ht.CloneFrom(h.T())
		num.Reset()
		num.Mul(&uv, &ht)
		den.Reset()
		den.Mul(&uwh, &ht)
		if f.Gamma != 0 {
			hd2.Reset()
			hd2.MulElem(h, d)
			hd2.MulElem(&hd2, &hd2)
			hd2t.Reset()
			hd2t.CloneFrom(hd2.T())
			vhdt.Reset()
			vhdt.Mul(v, &hd2t)
			num.Apply(func(i, j int, x float64) float64 {
				return x + 2*f.Gamma*vhdt.At(i, j)
			}, &num)
			rowSums := make([]float64, rank)
			for k := 0; k < rank; k++ {
				var s float64
				for j := 0; j < n; j++ {
					s += hd2.At(k, j)
				}
				rowSums[k] = s
			}
			den.Apply(func(i, j int, x float64) float64 {
				return x + 2*f.Gamma*w.At(i, j)*rowSums[j]
			}, &den)
		}
		scaleFactor(w, &num, &den, 0, 0)

		// H update against the refreshed W.
		wh.Reset()
		wh.Mul(w, h)
		uwh.Reset()
		uwh.MulElem(&u, &wh)
		wt.Reset()
		wt.CloneFrom(w.T())
		num.Reset()
		num.Mul(&wt, &uv)
		den.Reset()
		den.Mul(&wt, &uwh)
		den.Apply(func(i, j int, x float64) float64 {
			x += beta * h.At(i, j)
			if f.Gamma != 0 {
				dd := d.At(i, j)
				x += f.Gamma * h.At(i, j) * dd * dd
			}
			return x
		}, &den)
		scaleFactor(h, &num, &den, 0, 0)
	}

	return &Result{W: w, H: h, Iterations: steps, Converged: true}, nil
}

package nmf

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ProjectedGradient factorizes by alternating non-negative least squares,
// each subproblem solved with projected gradients and an Armijo line
// search along the projection arc (Lin 2007). This is the same family of
// algorithm scikit-learn's NMF solver belongs to and serves as the
// library-grade baseline the simpler update rules are compared against.
type ProjectedGradient struct {
	// Tolerance is the relative stopping tolerance on the projected
	// gradient norm. Values <= 0 default to 1e-4.
	Tolerance float64

	// MaxIter bounds the outer alternation loop. Values < 1 default
	// to 100.
	MaxIter int

	// Limit bounds the total wall-clock time. Zero defaults to one
	// minute.
	Limit time.Duration

	// MaxOuterSub and MaxInnerSub bound the subproblem's outer
	// projected-gradient iterations and inner line-search steps.
	// Values < 1 default to 1000 and 20.
	MaxOuterSub, MaxInnerSub int

	// Seed drives the random initialization.
	Seed int64
}

func (ProjectedGradient) Name() string { return "projected_gradient" }

// Factorize alternates NNLS subproblems for W and H until the projected
// gradient norm falls below Tolerance times its initial value.
func (f ProjectedGradient) Factorize(v *mat.Dense, rank int) (*Result, error) {
	if err := checkFactorizeArgs(v, rank); err != nil {
		return nil, err
	}

	tol := f.Tolerance
	if tol <= 0 {
		tol = 1e-4
	}
	maxIter := f.MaxIter
	if maxIter < 1 {
		maxIter = 100
	}
	limit := f.Limit
	if limit == 0 {
		limit = time.Minute
	}
	outerSub := f.MaxOuterSub
	if outerSub < 1 {
		outerSub = 1000
	}
	innerSub := f.MaxInnerSub
	if innerSub < 1 {
		innerSub = 20
	}

	start := time.Now()

	m, n := v.Dims()
	w, h := randomFactors(m, n, rank, f.Seed)

	// Initial gradients: gW = W(HHt) - VHt, gH = (WtW)H - WtV.
	var ht, wt, tmp mat.Dense
	ht.CloneFrom(h.T())
	wt.CloneFrom(w.T())

	gW := mat.NewDense(m, rank, nil)
	tmp.Mul(h, &ht)
	gW.Mul(w, &tmp)
	var vht mat.Dense
	vht.Mul(v, &ht)
	gW.Sub(gW, &vht)

	gH := mat.NewDense(rank, n, nil)
	tmp.Reset()
	tmp.Mul(&wt, w)
	gH.Mul(&tmp, h)
	var wtv mat.Dense
	wtv.Mul(&wt, v)
	gH.Sub(gH, &wtv)

	var gHt, joint mat.Dense
	gHt.CloneFrom(gH.T())
	joint.Stack(gW, &gHt)

	grad := mat.Norm(&joint, 2)
	tolW := math.Max(0.001, tol) * grad
	tolH := tolW

	ok := true
	iters := 0

	for i := 0; i < maxIter; i++ {
		iters = i

		// Project the gradients: free entries keep their gradient,
		// entries pinned at zero only count when pushing inward.
		gW.Apply(func(r, c int, g float64) float64 {
			if g < 0 || w.At(r, c) > 0 {
				return g
			}
			return 0
		}, gW)
		gH.Apply(func(r, c int, g float64) float64 {
			if g < 0 || h.At(r, c) > 0 {
				return g
			}
			return 0
		}, gH)

		var proj float64
		for _, g := range gW.RawMatrix().Data {
			proj += g * g
		}
		for _, g := range gH.RawMatrix().Data {
			proj += g * g
		}
		proj = math.Sqrt(proj)
		if proj < tol*grad {
			return &Result{W: w, H: h, Iterations: iters, Converged: true}, nil
		}
		if time.Since(start) > limit {
			return &Result{W: w, H: h, Iterations: iters, Converged: false}, nil
		}

		// Solve for W through the transposed problem Vt ~= Ht Wt.
		var vt mat.Dense
		vt.CloneFrom(v.T())
		ht.Reset()
		ht.CloneFrom(h.T())
		wt.Reset()
		wt.CloneFrom(w.T())

		wtNew, gWt, sub, okW := nnlsSubproblem(&vt, &ht, &wt, tolW, outerSub, innerSub)
		if sub == 0 {
			tolW *= 0.1
		}
		w = transposed(wtNew)
		gW = transposed(gWt)

		hNew, gHNew, sub, okH := nnlsSubproblem(v, w, h, tolH, outerSub, innerSub)
		if sub == 0 {
			tolH *= 0.1
		}
		h = hNew
		gH = gHNew
		ok = okW && okH
	}

	return &Result{W: w, H: h, Iterations: iters, Converged: ok}, nil
}

func transposed(a *mat.Dense) *mat.Dense {
	var t mat.Dense
	t.CloneFrom(a.T())
	return &t
}

// nnlsSubproblem solves min ||V - W*H||_F over H >= 0 with projected
// gradients, starting from h0. It returns the solution, its gradient, the
// number of iterations used, and whether a sufficient decrease was found.
func nnlsSubproblem(v, w, h0 *mat.Dense, tol float64, outer, inner int) (h, g *mat.Dense, iter int, ok bool) {
	h = new(mat.Dense)
	h.CloneFrom(h0)

	var wt, wtv, wtw mat.Dense
	wt.CloneFrom(w.T())
	wtv.Mul(&wt, v)
	wtw.Mul(&wt, w)

	alpha, beta := 1.0, 0.1

	g = new(mat.Dense)
	for iter = 0; iter < outer; iter++ {
		g.Mul(&wtw, h)
		g.Sub(g, &wtv)
		g.Apply(func(r, c int, x float64) float64 {
			if x < 0 || h.At(r, c) > 0 {
				return x
			}
			return 0
		}, g)

		if mat.Norm(g, 2) < tol {
			break
		}

		var (
			reduce bool
			hPrev  *mat.Dense
			d, dQ  mat.Dense
		)
		for j := 0; j < inner; j++ {
			// Step along the projection arc: hNext = max(0, h - alpha*g).
			var hNext mat.Dense
			hNext.Scale(alpha, g)
			hNext.Sub(h, &hNext)
			hNext.Apply(func(_, _ int, x float64) float64 {
				if x > 0 {
					return x
				}
				return 0
			}, &hNext)

			d.Sub(&hNext, h)
			dQ.Mul(&wtw, &d)
			dQ.MulElem(&dQ, &d)
			d.MulElem(g, &d)

			sufficient := 0.99*mat.Sum(&d)+0.5*mat.Sum(&dQ) < 0

			if j == 0 {
				reduce = !sufficient
				hPrev = h
			}
			if reduce {
				if sufficient {
					h = &hNext
					ok = true
					break
				}
				alpha *= beta
			} else {
				if !sufficient || mat.Equal(hPrev, &hNext) {
					h = hPrev
					break
				}
				alpha /= beta
				hPrev = &hNext
			}
		}
	}

	return h, g, iter, ok
}

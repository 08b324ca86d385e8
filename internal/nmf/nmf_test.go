package nmf

import (
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

// lowRankMatrix returns a deterministic non-negative m x n matrix of the
// given true rank, so every algorithm has an exact factorization to find.
func lowRankMatrix(t *testing.T, m, n, rank int, seed int64) *mat.Dense {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	w := mat.NewDense(m, rank, nil)
	h := mat.NewDense(rank, n, nil)
	for _, d := range []*mat.Dense{w, h} {
		raw := d.RawMatrix()
		for i := range raw.Data {
			raw.Data[i] = rng.Float64()
		}
	}

	var v mat.Dense
	v.Mul(w, h)
	return &v
}

func relErr(v *mat.Dense, res *Result) float64 {
	var rec, diff mat.Dense
	rec.Mul(res.W, res.H)
	diff.Sub(v, &rec)
	return mat.Norm(&diff, 2) / mat.Norm(v, 2)
}

func checkNonNegative(t *testing.T, name string, d *mat.Dense) {
	t.Helper()
	for _, x := range d.RawMatrix().Data {
		if x < 0 {
			t.Fatalf("%s has negative entry %v", name, x)
		}
	}
}

func TestFactorizers_Reconstruction(t *testing.T) {
	v := lowRankMatrix(t, 20, 16, 3, 42)

	tests := []struct {
		name   string
		fac    Factorizer
		maxRRE float64
	}{
		{"multiplicative", Multiplicative{Steps: 500, Seed: 7}, 0.05},
		{"multiplicative regularized", Multiplicative{L1: 1e-3, L2: 1e-3, Steps: 500, Seed: 7}, 0.1},
		{"tanh robust", TanhRobust{Steps: 500, Seed: 7}, 0.2},
		{"projected gradient", ProjectedGradient{MaxIter: 100, Limit: 10 * time.Second, Seed: 7}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.fac.Factorize(v, 4)
			if err != nil {
				t.Fatalf("Factorize failed: %v", err)
			}

			wr, wc := res.W.Dims()
			hr, hc := res.H.Dims()
			if wr != 20 || wc != 4 || hr != 4 || hc != 16 {
				t.Fatalf("factor dims: W %dx%d, H %dx%d", wr, wc, hr, hc)
			}

			checkNonNegative(t, "W", res.W)
			checkNonNegative(t, "H", res.H)

			if rre := relErr(v, res); rre > tt.maxRRE {
				t.Errorf("relative error %.4f exceeds %.2f", rre, tt.maxRRE)
			}
		})
	}
}

func TestFactorizers_Deterministic(t *testing.T) {
	v := lowRankMatrix(t, 12, 10, 2, 5)

	facs := []Factorizer{
		Multiplicative{Steps: 50, Seed: 3},
		TanhRobust{Steps: 50, Seed: 3},
		ProjectedGradient{MaxIter: 10, Limit: 10 * time.Second, Seed: 3},
	}

	for _, fac := range facs {
		t.Run(fac.Name(), func(t *testing.T) {
			a, err := fac.Factorize(v, 2)
			if err != nil {
				t.Fatalf("Factorize failed: %v", err)
			}
			b, err := fac.Factorize(v, 2)
			if err != nil {
				t.Fatalf("Factorize failed: %v", err)
			}
			if !mat.Equal(a.W, b.W) || !mat.Equal(a.H, b.H) {
				t.Error("same seed produced different factors")
			}
		})
	}
}

func TestFactorizers_ImproveOnInit(t *testing.T) {
	v := lowRankMatrix(t, 15, 12, 3, 11)

	m, n := v.Dims()
	w0, h0 := randomFactors(m, n, 3, 9)
	initial := relErr(v, &Result{W: w0, H: h0})

	facs := []Factorizer{
		Multiplicative{Steps: 100, Seed: 9},
		TanhRobust{Steps: 100, Seed: 9},
		ProjectedGradient{MaxIter: 20, Limit: 10 * time.Second, Seed: 9},
	}
	for _, fac := range facs {
		t.Run(fac.Name(), func(t *testing.T) {
			res, err := fac.Factorize(v, 3)
			if err != nil {
				t.Fatalf("Factorize failed: %v", err)
			}
			if got := relErr(v, res); got >= initial {
				t.Errorf("error %.4f did not improve on initial %.4f", got, initial)
			}
		})
	}
}

func TestFactorize_ArgumentErrors(t *testing.T) {
	good := mat.NewDense(4, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		1, 1, 1,
	})
	negative := mat.NewDense(2, 2, []float64{1, -1, 0, 2})

	tests := []struct {
		name string
		v    *mat.Dense
		rank int
	}{
		{"nil matrix", nil, 2},
		{"zero rank", good, 0},
		{"rank exceeds rows", good, 5},
		{"rank exceeds cols", good, 4},
		{"negative entries", negative, 1},
	}

	facs := []Factorizer{Multiplicative{}, TanhRobust{}, ProjectedGradient{}}
	for _, fac := range facs {
		for _, tt := range tests {
			t.Run(fac.Name()+"/"+tt.name, func(t *testing.T) {
				if _, err := fac.Factorize(tt.v, tt.rank); err == nil {
					t.Error("expected error, got nil")
				}
			})
		}
	}
}

func TestMultiplicative_RegularizationShrinksFactors(t *testing.T) {
	v := lowRankMatrix(t, 20, 16, 3, 13)

	plain, err := Multiplicative{Steps: 200, Seed: 1}.Factorize(v, 3)
	if err != nil {
		t.Fatalf("Factorize failed: %v", err)
	}
	reg, err := Multiplicative{L1: 0.5, L2: 0.5, Steps: 200, Seed: 1}.Factorize(v, 3)
	if err != nil {
		t.Fatalf("Factorize failed: %v", err)
	}

	if mat.Norm(reg.H, 2) >= mat.Norm(plain.H, 2) {
		t.Errorf("regularization did not shrink H: %.4f >= %.4f",
			mat.Norm(reg.H, 2), mat.Norm(plain.H, 2))
	}
}

func TestTanhRobust_DiversityTerm(t *testing.T) {
	v := lowRankMatrix(t, 10, 8, 2, 17)

	res, err := TanhRobust{Gamma: 0.1, Steps: 30, Seed: 2}.Factorize(v, 2)
	if err != nil {
		t.Fatalf("Factorize with diversity failed: %v", err)
	}
	checkNonNegative(t, "W", res.W)
	checkNonNegative(t, "H", res.H)
}

func TestProjectedGradient_TimeLimit(t *testing.T) {
	v := lowRankMatrix(t, 30, 25, 5, 23)

	res, err := ProjectedGradient{MaxIter: 10000, Limit: time.Nanosecond, Seed: 1}.Factorize(v, 5)
	if err != nil {
		t.Fatalf("Factorize failed: %v", err)
	}
	if res.Converged {
		t.Error("nanosecond limit should not report convergence")
	}
}

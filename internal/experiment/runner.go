// Package experiment orchestrates the factorization benchmark: for every
// configured dataset, noise model and algorithm it loads the data,
// corrupts it, factorizes, evaluates, and writes the CSV and figure
// artifacts. The sweep is strictly sequential; the only early exit is
// context cancellation between steps.
package experiment

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/vincent05r/test-asm1-5328/internal/cluster"
	"github.com/vincent05r/test-asm1-5328/internal/config"
	"github.com/vincent05r/test-asm1-5328/internal/dataset"
	"github.com/vincent05r/test-asm1-5328/internal/figures"
	"github.com/vincent05r/test-asm1-5328/internal/metrics"
	"github.com/vincent05r/test-asm1-5328/internal/nmf"
	"github.com/vincent05r/test-asm1-5328/internal/noise"
	"github.com/vincent05r/test-asm1-5328/internal/report"
)

// Runner executes the configured sweep.
type Runner struct {
	cfg *config.Config
	log *zap.Logger
}

// New returns a Runner for cfg. A nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run executes the whole sweep and writes results.csv, the per-experiment
// figures and the summary charts under the configured output directory.
func (r *Runner) Run(ctx context.Context) ([]report.Result, error) {
	var results []report.Result

	for _, ds := range r.cfg.Datasets {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		col, err := r.loadDataset(ds)
		if err != nil {
			return results, err
		}

		for _, nz := range r.cfg.Noises {
			model, err := noiseModel(nz)
			if err != nil {
				return results, err
			}

			corrupted := model.Apply(col.V, r.cfg.Seed)
			r.log.Info("applied noise",
				zap.String("dataset", ds.Name),
				zap.String("noise", model.Name()))

			for _, alg := range r.cfg.Algorithms {
				if err := ctx.Err(); err != nil {
					return results, err
				}

				res, err := r.runOne(ds.Name, col, corrupted, model.Name(), alg)
				if err != nil {
					return results, err
				}
				results = append(results, *res)
			}
		}
	}

	if err := r.writeArtifacts(results); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) loadDataset(ds config.DatasetConfig) (*dataset.Collection, error) {
	root := filepath.Join(r.cfg.DataDir, ds.Name)
	r.log.Info("loading dataset", zap.String("root", root), zap.Int("reduce", ds.Reduce))

	col, err := dataset.Load(root, dataset.Options{
		Reduce:     ds.Reduce,
		Preprocess: r.cfg.Preprocess.Method,
		BlurSigma:  r.cfg.Preprocess.Sigma,
	})
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
	}

	col, err = col.Subsample(ds.TrainFraction, r.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
	}

	rows, cols := col.V.Dims()
	r.log.Info("dataset ready",
		zap.String("dataset", ds.Name),
		zap.Int("pixels", rows),
		zap.Int("images", cols),
		zap.Int("subjects", col.Subjects))
	return col, nil
}

// runOne factorizes one corrupted matrix with one algorithm and scores it
// against the clean data.
func (r *Runner) runOne(dsName string, col *dataset.Collection, corrupted *mat.Dense, noiseName string, alg config.AlgorithmConfig) (*report.Result, error) {
	fac, err := factorizer(alg, r.cfg.Seed)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := fac.Factorize(corrupted, col.Subjects)
	if err != nil {
		return nil, fmt.Errorf("%s/%s/%s: %w", dsName, noiseName, fac.Name(), err)
	}
	elapsed := time.Since(start)

	rre, err := metrics.RRE(col.V, out.W, out.H)
	if err != nil {
		return nil, fmt.Errorf("%s/%s/%s: %w", dsName, noiseName, fac.Name(), err)
	}

	predicted, err := cluster.AssignLabels(out.H, col.Labels, col.Subjects)
	if err != nil {
		return nil, fmt.Errorf("%s/%s/%s: %w", dsName, noiseName, fac.Name(), err)
	}
	acc, err := metrics.Accuracy(col.Labels, predicted)
	if err != nil {
		return nil, err
	}
	nmi, err := metrics.NMI(col.Labels, predicted)
	if err != nil {
		return nil, err
	}

	r.log.Info("experiment finished",
		zap.String("dataset", dsName),
		zap.String("noise", noiseName),
		zap.String("algorithm", fac.Name()),
		zap.Float64("rre", rre),
		zap.Float64("accuracy", acc),
		zap.Float64("nmi", nmi),
		zap.Duration("elapsed", elapsed))

	if err := r.writeFigures(dsName, noiseName, fac.Name(), col, corrupted, out); err != nil {
		return nil, err
	}

	return &report.Result{
		Dataset:    dsName,
		Noise:      noiseName,
		Algorithm:  fac.Name(),
		RRE:        rre,
		Accuracy:   acc,
		NMI:        nmi,
		Iterations: out.Iterations,
		Seconds:    elapsed.Seconds(),
	}, nil
}

func (r *Runner) writeFigures(dsName, noiseName, algName string, col *dataset.Collection, corrupted *mat.Dense, out *nmf.Result) error {
	figDir := filepath.Join(r.cfg.OutputDir, "figures")
	stem := fmt.Sprintf("%s_%s_%s", dsName, noiseName, algName)

	sample := r.cfg.SampleIndex
	if _, n := col.V.Dims(); sample >= n {
		sample = 0
	}

	var rec mat.Dense
	rec.Mul(out.W, out.H)

	montage := filepath.Join(figDir, stem+"_reconstruction.png")
	if err := figures.Montage(montage, sample, col.Shape.Width, col.Shape.Height, col.V, corrupted, &rec); err != nil {
		return fmt.Errorf("%s: %w", stem, err)
	}

	basis := filepath.Join(figDir, stem+"_basis.png")
	if err := figures.BasisSheet(basis, out.W, col.Shape.Width, col.Shape.Height, r.cfg.MaxBasisFigures); err != nil {
		return fmt.Errorf("%s: %w", stem, err)
	}
	return nil
}

func (r *Runner) writeArtifacts(results []report.Result) error {
	csvPath := filepath.Join(r.cfg.OutputDir, "results.csv")
	if err := report.WriteCSV(csvPath, results); err != nil {
		return err
	}
	r.log.Info("wrote results", zap.String("path", csvPath), zap.Int("rows", len(results)))

	figDir := filepath.Join(r.cfg.OutputDir, "figures")
	charts := []struct {
		file, title string
		value       func(report.Result) float64
	}{
		{"metrics_rre.png", "Relative reconstruction error", func(r report.Result) float64 { return r.RRE }},
		{"metrics_accuracy.png", "Clustering accuracy", func(r report.Result) float64 { return r.Accuracy }},
		{"metrics_nmi.png", "Normalized mutual information", func(r report.Result) float64 { return r.NMI }},
	}
	for _, c := range charts {
		bars := make([]figures.MetricBar, len(results))
		for i, res := range results {
			bars[i] = figures.MetricBar{
				Label: fmt.Sprintf("%s/%s/%s", res.Dataset, res.Noise, res.Algorithm),
				Value: c.value(res),
			}
		}
		if err := figures.BarChart(filepath.Join(figDir, c.file), c.title, c.title, bars); err != nil {
			return err
		}
	}
	return nil
}

// noiseModel builds the configured corruption model.
func noiseModel(nz config.NoiseConfig) (noise.Model, error) {
	switch nz.Kind {
	case "none":
		return noise.None{}, nil
	case "salt_pepper":
		return noise.SaltAndPepper{Fraction: nz.Fraction, SaltRatio: nz.SaltRatio}, nil
	case "uniform":
		return noise.Uniform{Scale: nz.Scale}, nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", nz.Kind)
	}
}

// factorizer builds the configured algorithm, threading the global seed.
func factorizer(alg config.AlgorithmConfig, seed int64) (nmf.Factorizer, error) {
	switch alg.Kind {
	case "multiplicative":
		return nmf.Multiplicative{L1: alg.L1, L2: alg.L2, Steps: alg.Steps, Seed: seed}, nil
	case "tanh_robust":
		return nmf.TanhRobust{P: alg.P, Beta: alg.Beta, Gamma: alg.Gamma, Steps: alg.Steps, Seed: seed}, nil
	case "projected_gradient":
		return nmf.ProjectedGradient{
			Tolerance: alg.Tolerance,
			MaxIter:   alg.MaxIter,
			Limit:     time.Duration(alg.LimitSeconds * float64(time.Second)),
			Seed:      seed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm kind %q", alg.Kind)
	}
}

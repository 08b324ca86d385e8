// Package config defines the experiment configuration, loaded from YAML
// over built-in defaults that reproduce the coursework setup: the ORL and
// Cropped YaleB face datasets, three noise models and three factorization
// algorithms.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the whole experiment description.
type Config struct {
	// Seed drives every random choice: subsampling, noise masks and
	// factor initialization.
	Seed int64 `yaml:"seed"`

	// DataDir is the directory datasets are extracted into and loaded
	// from.
	DataDir string `yaml:"data_dir"`

	// OutputDir receives results.csv and the figures directory.
	OutputDir string `yaml:"output_dir"`

	// SampleIndex selects the column shown in reconstruction montages.
	SampleIndex int `yaml:"sample_index"`

	// MaxBasisFigures caps how many basis faces each basis sheet shows.
	MaxBasisFigures int `yaml:"max_basis_figures"`

	Archive    ArchiveConfig     `yaml:"archive"`
	Preprocess PreprocessConfig  `yaml:"preprocess"`
	Datasets   []DatasetConfig   `yaml:"datasets"`
	Noises     []NoiseConfig     `yaml:"noises"`
	Algorithms []AlgorithmConfig `yaml:"algorithms"`
}

// ArchiveConfig names the input dataset archive and the submission zip.
type ArchiveConfig struct {
	DataZip    string   `yaml:"data_zip"`
	Submission string   `yaml:"submission"`
	Include    []string `yaml:"include"`
}

// PreprocessConfig selects the optional image filter applied at load time.
type PreprocessConfig struct {
	Method string  `yaml:"method"` // none, blur, sharpen
	Sigma  float64 `yaml:"sigma"`
}

// DatasetConfig describes one dataset directory under DataDir.
type DatasetConfig struct {
	Name          string  `yaml:"name"`
	Reduce        int     `yaml:"reduce"`
	TrainFraction float64 `yaml:"train_fraction"`
}

// NoiseConfig selects a corruption model.
type NoiseConfig struct {
	Kind      string  `yaml:"kind"` // none, salt_pepper, uniform
	Fraction  float64 `yaml:"fraction"`
	SaltRatio float64 `yaml:"salt_ratio"`
	Scale     float64 `yaml:"scale"`
}

// AlgorithmConfig selects a factorizer and its parameters. Fields not
// used by the chosen kind are ignored.
type AlgorithmConfig struct {
	Kind string `yaml:"kind"` // multiplicative, tanh_robust, projected_gradient

	Steps int     `yaml:"steps"`
	L1    float64 `yaml:"l1"`
	L2    float64 `yaml:"l2"`

	P     float64 `yaml:"p"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`

	Tolerance    float64 `yaml:"tolerance"`
	MaxIter      int     `yaml:"max_iter"`
	LimitSeconds float64 `yaml:"limit_seconds"`
}

// Default returns the coursework configuration: both face datasets, all
// three noise models and all three algorithms.
func Default() *Config {
	return &Config{
		Seed:            1,
		DataDir:         "data",
		OutputDir:       "output",
		SampleIndex:     2,
		MaxBasisFigures: 16,
		Archive: ArchiveConfig{
			DataZip:    "resources/data.zip",
			Submission: "submission.zip",
			Include:    []string{"output/results.csv", "output/figures", "report.pdf"},
		},
		Preprocess: PreprocessConfig{Method: "none"},
		Datasets: []DatasetConfig{
			{Name: "ORL", Reduce: 3, TrainFraction: 0.9},
			{Name: "CroppedYaleB", Reduce: 4, TrainFraction: 0.9},
		},
		Noises: []NoiseConfig{
			{Kind: "none"},
			{Kind: "salt_pepper", Fraction: 0.4, SaltRatio: 0.3},
			{Kind: "uniform", Scale: 0.4},
		},
		Algorithms: []AlgorithmConfig{
			{Kind: "multiplicative", Steps: 200, L1: 1e-2, L2: 1e-2},
			{Kind: "tanh_robust", Steps: 200, P: 1, Beta: 1e-2},
			{Kind: "projected_gradient", Tolerance: 1e-4, MaxIter: 50, LimitSeconds: 60},
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if len(c.Datasets) == 0 {
		return fmt.Errorf("at least one dataset is required")
	}
	if len(c.Noises) == 0 {
		return fmt.Errorf("at least one noise model is required")
	}
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("at least one algorithm is required")
	}

	switch c.Preprocess.Method {
	case "", "none", "blur", "sharpen":
	default:
		return fmt.Errorf("unknown preprocess method %q", c.Preprocess.Method)
	}

	for _, d := range c.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset name must not be empty")
		}
		if d.Reduce < 1 {
			return fmt.Errorf("dataset %s: reduce must be >= 1", d.Name)
		}
		if d.TrainFraction <= 0 || d.TrainFraction > 1 {
			return fmt.Errorf("dataset %s: train_fraction must be in (0,1]", d.Name)
		}
	}
	for _, nz := range c.Noises {
		switch nz.Kind {
		case "none", "salt_pepper", "uniform":
		default:
			return fmt.Errorf("unknown noise kind %q", nz.Kind)
		}
	}
	for _, a := range c.Algorithms {
		switch a.Kind {
		case "multiplicative", "tanh_robust", "projected_gradient":
		default:
			return fmt.Errorf("unknown algorithm kind %q", a.Kind)
		}
	}
	return nil
}

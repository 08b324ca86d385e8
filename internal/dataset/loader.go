package dataset

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	_ "github.com/spakin/netpbm" // Register PGM/PNM format decoders
	"gonum.org/v1/gonum/mat"
)

// Preprocessing methods accepted by Options.Preprocess.
const (
	PreprocessNone    = "none"
	PreprocessBlur    = "blur"
	PreprocessSharpen = "sharpen"
)

// Options controls how a dataset is loaded.
type Options struct {
	// Reduce is the integer downscale factor applied to every image.
	// A 92x112 image with Reduce=4 becomes 23x28. Values below 1 are
	// treated as 1.
	Reduce int

	// Preprocess selects an optional filter applied before downscaling:
	// PreprocessNone, PreprocessBlur or PreprocessSharpen.
	Preprocess string

	// BlurSigma is the gaussian radius used when Preprocess is
	// PreprocessBlur. Ignored otherwise.
	BlurSigma float64
}

// Shape records the pixel geometry of the loaded images after reduction.
type Shape struct {
	Width  int
	Height int
}

// Pixels returns the number of matrix rows one image occupies.
func (s Shape) Pixels() int { return s.Width * s.Height }

// Collection is a loaded dataset: the data matrix, per-column subject
// labels, and the reduced image shape.
type Collection struct {
	// V holds one normalized grayscale image per column.
	V *mat.Dense

	// Labels[j] is the subject index for column j of V.
	Labels []int

	// Shape is the per-image geometry after reduction.
	Shape Shape

	// Subjects is the number of distinct subject directories seen.
	Subjects int
}

// Load reads every subject directory under root and assembles the data
// matrix. All images must share the same dimensions; a mismatch is an
// error rather than a silent resize, since the face datasets are fixed
// geometry and anything else indicates a corrupted extraction.
func Load(root string, opts Options) (*Collection, error) {
	if opts.Reduce < 1 {
		opts.Reduce = 1
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset root: %w", err)
	}

	var (
		columns [][]float64
		labels  []int
		shape   Shape
		subject int
	)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read subject directory %s: %w", dir, err)
		}

		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !decodable(name) {
				continue
			}
			// YaleB ships one ambient-light background frame per
			// subject which is not a face sample.
			if strings.HasSuffix(name, "Ambient.pgm") {
				continue
			}

			col, s, err := loadImage(filepath.Join(dir, name), opts)
			if err != nil {
				return nil, err
			}

			if shape == (Shape{}) {
				shape = s
			} else if s != shape {
				return nil, fmt.Errorf("image %s has reduced size %dx%d, want %dx%d",
					name, s.Width, s.Height, shape.Width, shape.Height)
			}

			columns = append(columns, col)
			labels = append(labels, subject)
		}

		subject++
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("no images found under %s", root)
	}

	v := mat.NewDense(shape.Pixels(), len(columns), nil)
	for j, col := range columns {
		v.SetCol(j, col)
	}

	return &Collection{V: v, Labels: labels, Shape: shape, Subjects: subject}, nil
}

// loadImage decodes, preprocesses and downscales a single image, returning
// its normalized row-major pixel column.
func loadImage(path string, opts Options) ([]float64, Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Shape{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, Shape{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	switch opts.Preprocess {
	case PreprocessBlur:
		sigma := opts.BlurSigma
		if sigma <= 0 {
			sigma = 1
		}
		img = blur.Gaussian(img, sigma)
	case PreprocessSharpen:
		img = effect.Sharpen(img)
	case "", PreprocessNone:
	default:
		return nil, Shape{}, fmt.Errorf("unknown preprocess method %q", opts.Preprocess)
	}

	bounds := img.Bounds()
	shape := Shape{
		Width:  bounds.Dx() / opts.Reduce,
		Height: bounds.Dy() / opts.Reduce,
	}
	if shape.Width == 0 || shape.Height == 0 {
		return nil, Shape{}, fmt.Errorf("reduce factor %d collapses %dx%d image %s",
			opts.Reduce, bounds.Dx(), bounds.Dy(), path)
	}

	gray := imaging.Grayscale(img)
	small := imaging.Resize(gray, shape.Width, shape.Height, imaging.Lanczos)

	col := make([]float64, shape.Pixels())
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			// small is grayscale NRGBA, so R carries the luminance.
			r := small.NRGBAAt(x, y).R
			col[y*shape.Width+x] = float64(r) / 255
		}
	}

	return col, shape, nil
}

func decodable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pgm", ".pbm", ".ppm", ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

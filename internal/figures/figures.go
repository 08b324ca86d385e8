// Package figures renders the visual artifacts of an experiment run:
// reconstruction montages, basis-image heatmaps and metric bar charts.
package figures

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// padding between montage panels, in pixels.
const panelGap = 4

// upscale factor applied to montage panels so the reduced images stay
// legible in the report.
const panelScale = 3

// ColumnImage renders one matrix column as a grayscale image of the given
// geometry. Values are clamped to [0,1] before quantization; corrupted
// matrices can exceed that range.
func ColumnImage(m *mat.Dense, col, width, height int) (*image.Gray, error) {
	rows, cols := m.Dims()
	if col < 0 || col >= cols {
		return nil, fmt.Errorf("column %d out of range [0,%d)", col, cols)
	}
	if width*height != rows {
		return nil, fmt.Errorf("geometry %dx%d does not match %d matrix rows", width, height, rows)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := m.At(y*width+x, col)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img, nil
}

// Montage writes the same sample column from several matrices side by
// side: typically clean, corrupted and reconstructed versions of one face.
func Montage(path string, col, width, height int, panels ...*mat.Dense) error {
	if len(panels) == 0 {
		return fmt.Errorf("montage needs at least one panel")
	}

	w := width * panelScale
	h := height * panelScale
	canvas := imaging.New(len(panels)*w+(len(panels)+1)*panelGap, h+2*panelGap, color.White)

	for i, m := range panels {
		img, err := ColumnImage(m, col, width, height)
		if err != nil {
			return fmt.Errorf("montage panel %d: %w", i, err)
		}
		big := imaging.Resize(img, w, h, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, big, image.Pt(panelGap+i*(w+panelGap), panelGap))
	}

	return save(path, canvas)
}

// BasisSheet writes a grid of up to maxBasis heatmap-rendered columns of
// the basis matrix W. Each basis face is normalized to its own range and
// colored with a perceptual dark-to-warm ramp.
func BasisSheet(path string, w *mat.Dense, width, height, maxBasis int) error {
	_, k := w.Dims()
	if maxBasis > 0 && k > maxBasis {
		k = maxBasis
	}

	cols := 4
	if k < cols {
		cols = k
	}
	rows := (k + cols - 1) / cols

	pw := width * panelScale
	ph := height * panelScale
	canvas := imaging.New(cols*pw+(cols+1)*panelGap, rows*ph+(rows+1)*panelGap, color.White)

	low, _ := colorful.Hex("#1a1334")
	high, _ := colorful.Hex("#f0e442")

	for i := 0; i < k; i++ {
		img, err := heatmapColumn(w, i, width, height, low, high)
		if err != nil {
			return fmt.Errorf("basis %d: %w", i, err)
		}
		big := imaging.Resize(img, pw, ph, imaging.NearestNeighbor)
		x := panelGap + (i%cols)*(pw+panelGap)
		y := panelGap + (i/cols)*(ph+panelGap)
		canvas = imaging.Paste(canvas, big, image.Pt(x, y))
	}

	return save(path, canvas)
}

func heatmapColumn(m *mat.Dense, col, width, height int, low, high colorful.Color) (*image.NRGBA, error) {
	rows, cols := m.Dims()
	if col < 0 || col >= cols {
		return nil, fmt.Errorf("column %d out of range [0,%d)", col, cols)
	}
	if width*height != rows {
		return nil, fmt.Errorf("geometry %dx%d does not match %d matrix rows", width, height, rows)
	}

	min, max := m.At(0, col), m.At(0, col)
	for r := 1; r < rows; r++ {
		v := m.At(r, col)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := (m.At(y*width+x, col) - min) / span
			c := low.BlendLuv(high, t).Clamped()
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(c.R*255 + 0.5),
				G: uint8(c.G*255 + 0.5),
				B: uint8(c.B*255 + 0.5),
				A: 255,
			})
		}
	}
	return img, nil
}

// MetricBar is one bar of a metric chart.
type MetricBar struct {
	Label string
	Value float64
}

// BarChart writes a single-metric bar chart with one bar per experiment
// combination.
func BarChart(path, title, yLabel string, bars []MetricBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("bar chart needs at least one bar")
	}

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Value
		names[i] = b.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	chart, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	chart.Color = color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}
	p.Add(chart)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.9

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := p.Save(7*vg.Inch, 3.5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

func save(path string, img image.Image) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save figure: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create figure directory: %w", err)
		}
	}
	return nil
}

// Package plots renders tensor channels for visual inspection of samples.
package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// channelGrid adapts one channel of a tensor to plotter.GridXYZ. Rows are
// flipped so row 0 of the frame is drawn at the top.
type channelGrid struct {
	t *tensor.Tensor
	c int
}

func (g channelGrid) Dims() (c, r int)   { return g.t.Width, g.t.Height }
func (g channelGrid) X(c int) float64    { return float64(c) }
func (g channelGrid) Y(r int) float64    { return float64(r) }
func (g channelGrid) Z(c, r int) float64 { return float64(g.t.At(g.c, g.t.Height-1-r, c)) }

// Heatmap draws channel c of t and saves it to outPath. The format follows
// the file extension (png, svg, pdf, ...).
func Heatmap(t *tensor.Tensor, c int, title, outPath string) error {
	if c < 0 || c >= t.Channels {
		return errors.Errorf("channel %d out of range [0,%d)", c, t.Channels)
	}
	if t.Height == 0 || t.Width == 0 {
		return errors.New("cannot plot an empty tensor")
	}

	grid := channelGrid{t: t, c: c}
	hm := plotter.NewHeatMap(grid, palette.Heat(32, 1))
	if hm.Min == hm.Max {
		// constant plane, widen the range so the palette scale stays finite
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = fmt.Sprintf("y (flipped, %d rows)", t.Height)
	p.Add(hm)
	p.X.Min, p.X.Max = -0.5, float64(t.Width)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(t.Height)-0.5

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}

	// keep the aspect ratio of the frame, 6 inches on the long side
	w, h := 6*vg.Inch, 6*vg.Inch
	aspect := float64(t.Height) / float64(t.Width)
	if aspect < 1 {
		h = vg.Length(math.Max(aspect, 0.2)) * w
	} else {
		w = vg.Length(math.Max(1/aspect, 0.2)) * h
	}
	if err := p.Save(w, h, outPath); err != nil {
		return errors.Wrapf(err, "save heatmap %s", outPath)
	}
	return nil
}

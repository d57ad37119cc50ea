// Package features rasterizes per-block trace statistics into dense per-pixel
// metadata maps aligned with the luma plane of a frame.
package features

import (
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/trace"
)

// Channel identifies one of the fixed metadata output channels.
type Channel int

const (
	QP Channel = iota
	PredMode
	Depth
	MVL0X
	MVL0Y
	MVL1X
	MVL1Y

	// NumChannels is the number of metadata channels in every sample.
	NumChannels = 7
)

var channelNames = [NumChannels]string{"QP", "PredMode", "Depth", "MVL0_X", "MVL0_Y", "MVL1_X", "MVL1_Y"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "Channel(?)"
	}
	return channelNames[c]
}

// Channels returns every channel in output order.
func Channels() []Channel {
	return []Channel{QP, PredMode, Depth, MVL0X, MVL0Y, MVL1X, MVL1Y}
}

// ChannelByName resolves names such as "QP" or "MVL0_X".
func ChannelByName(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// paramChannels maps a trace parameter to its first output channel. Channels
// are laid out in parameter order, each parameter taking Kind.Channels()
// consecutive slots, so vectors fill X then Y.
var paramChannels = func() map[string]Channel {
	out := make(map[string]Channel)
	next := Channel(0)
	for _, p := range trace.Params() {
		out[p.Name] = next
		next += Channel(p.Kind.Channels())
	}
	if next != NumChannels {
		panic("features: trace parameters do not fill the metadata channels")
	}
	return out
}()

// Maps holds one zero-initialized Height x Width grid per channel.
type Maps struct {
	Width  int
	Height int
	grids  [NumChannels][]float32
}

// NewMaps allocates all channels filled with zeros.
func NewMaps(width, height int) *Maps {
	m := &Maps{Width: width, Height: height}
	for i := range m.grids {
		m.grids[i] = make([]float32, width*height)
	}
	return m
}

// Grid returns the row-major backing slice of a channel.
func (m *Maps) Grid(c Channel) []float32 {
	return m.grids[c]
}

// At reads channel c at row y, column x.
func (m *Maps) At(c Channel, y, x int) float32 {
	return m.grids[c][y*m.Width+x]
}

// Tensor copies the maps into a (7, Height, Width) tensor in channel order.
func (m *Maps) Tensor() *tensor.Tensor {
	t := tensor.Zeros(NumChannels, m.Height, m.Width)
	for c := range m.grids {
		copy(t.Plane(c), m.grids[c])
	}
	return t
}

// Generate paints the records of one frame in slice order; where rectangles
// overlap the later record wins. Pass records in trace.GroupByFrame order.
func Generate(width, height int, records []trace.Record) *Maps {
	m := NewMaps(width, height)
	for _, r := range records {
		m.Paint(r)
	}
	return m
}

// Paint writes a single record into the maps, clipped to the frame.
// Records for unrecognized parameters are ignored.
func (m *Maps) Paint(r trace.Record) {
	first, ok := paramChannels[r.Param]
	if !ok {
		return
	}
	kind, _ := trace.KindOf(r.Param)
	x0, y0, x1, y1, ok := clip(r.Rect, m.Width, m.Height)
	if !ok {
		return
	}
	components := [2]float32{r.Value.X, r.Value.Y}
	for i := range kind.Channels() {
		fill(m.grids[first+Channel(i)], m.Width, x0, y0, x1, y1, components[i])
	}
}

// clip intersects the rectangle with [0,width) x [0,height).
func clip(r trace.Rect, width, height int) (x0, y0, x1, y1 int, ok bool) {
	x0, y0 = max(r.X, 0), max(r.Y, 0)
	x1, y1 = min(r.X+r.W, width), min(r.Y+r.H, height)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1, y1, true
}

func fill(grid []float32, stride, x0, y0, x1, y1 int, v float32) {
	for y := y0; y < y1; y++ {
		row := grid[y*stride+x0 : y*stride+x1]
		for i := range row {
			row[i] = v
		}
	}
}

package tensor

import (
	"github.com/pkg/errors"
)

// Tensor is a dense channel-major float32 buffer of shape (Channels, Height, Width).
// Plane c occupies Data[c*Height*Width : (c+1)*Height*Width], each plane row-major.
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// Zeros allocates a zero-filled tensor of the given shape.
func Zeros(channels, height, width int) *Tensor {
	return &Tensor{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, channels*height*width),
	}
}

// FromPlanes stacks equally sized planes into a tensor. Planes are copied.
func FromPlanes(height, width int, planes ...[]float32) (*Tensor, error) {
	t := Zeros(len(planes), height, width)
	size := height * width
	for c, p := range planes {
		if len(p) != size {
			return nil, errors.Errorf("plane %d has %d values, expected %d", c, len(p), size)
		}
		copy(t.Data[c*size:], p)
	}
	return t, nil
}

// Shape returns the dimensions in (C, H, W) order.
func (t *Tensor) Shape() []int {
	return []int{t.Channels, t.Height, t.Width}
}

// Plane returns the backing slice of channel c.
func (t *Tensor) Plane(c int) []float32 {
	size := t.Height * t.Width
	return t.Data[c*size : (c+1)*size]
}

func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Height+y)*t.Width+x]
}

func (t *Tensor) Set(c, y, x int, v float32) {
	t.Data[(c*t.Height+y)*t.Width+x] = v
}

// Concat stacks tensors along the channel axis. All inputs must share H and W.
func Concat(ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return Zeros(0, 0, 0), nil
	}
	h, w := ts[0].Height, ts[0].Width
	channels := 0
	for i, t := range ts {
		if t.Height != h || t.Width != w {
			return nil, errors.Errorf("tensor %d has spatial shape %dx%d, expected %dx%d", i, t.Height, t.Width, h, w)
		}
		channels += t.Channels
	}
	out := Zeros(channels, h, w)
	off := 0
	for _, t := range ts {
		off += copy(out.Data[off:], t.Data)
	}
	return out, nil
}

// Crop returns a copy of the window [top, top+height) x [left, left+width).
func (t *Tensor) Crop(top, left, height, width int) (*Tensor, error) {
	if top < 0 || left < 0 || height < 0 || width < 0 || top+height > t.Height || left+width > t.Width {
		return nil, errors.Errorf("crop window (%d,%d) %dx%d outside %dx%d", top, left, height, width, t.Height, t.Width)
	}
	out := Zeros(t.Channels, height, width)
	for c := 0; c < t.Channels; c++ {
		src := t.Plane(c)
		dst := out.Plane(c)
		for y := 0; y < height; y++ {
			copy(dst[y*width:(y+1)*width], src[(top+y)*t.Width+left:])
		}
	}
	return out, nil
}

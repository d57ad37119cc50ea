package features

import (
	"math"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
)

// Normalizer rescales a (7, H, W) metadata tensor in place. Rasterization never
// normalizes on its own; the policy is chosen by whoever assembles samples.
type Normalizer interface {
	Normalize(meta *tensor.Tensor)
}

// Identity leaves metadata untouched.
type Identity struct{}

func (Identity) Normalize(*tensor.Tensor) {}

// MaxQP is the largest quantization parameter of an 8-bit VVC stream.
const MaxQP = 63

// Scaled divides QP and Depth by fixed scales and motion vectors by MVScale.
// With SquashMV the scaled motion vectors are passed through tanh, bounding
// them to (-1, 1). Zero scales leave the matching channels unchanged.
type Scaled struct {
	QPScale    float32
	DepthScale float32
	MVScale    float32
	SquashMV   bool
}

// DefaultScaled maps QP into [0,1], Depth by the deepest VVC split, and
// quarter-sample motion vectors by 64 before squashing.
func DefaultScaled() Scaled {
	return Scaled{QPScale: MaxQP, DepthScale: 6, MVScale: 64, SquashMV: true}
}

func (s Scaled) Normalize(meta *tensor.Tensor) {
	if meta == nil || meta.Channels != NumChannels {
		return
	}
	divide(meta.Plane(int(QP)), s.QPScale)
	divide(meta.Plane(int(Depth)), s.DepthScale)
	for _, c := range []Channel{MVL0X, MVL0Y, MVL1X, MVL1Y} {
		plane := meta.Plane(int(c))
		divide(plane, s.MVScale)
		if s.SquashMV {
			for i, v := range plane {
				plane[i] = float32(math.Tanh(float64(v)))
			}
		}
	}
}

func divide(plane []float32, scale float32) {
	if scale == 0 {
		return
	}
	for i := range plane {
		plane[i] /= scale
	}
}

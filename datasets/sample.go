package datasets

import (
	"math/rand"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/pkg/errors"
)

// Info describes where a sample came from.
type Info struct {
	FrameIndex int
	Cropped    bool
	Top        int
	Left       int
}

// Sample is one frame's worth of aligned tensors.
type Sample struct {
	FrameIndex int
	Decoded    *tensor.Tensor // (3, H, W)
	Reference  *tensor.Tensor // (3, H, W)
	Metadata   *tensor.Tensor // (7, H, W)
	Info       Info
}

// Input concatenates the decoded pixels and the metadata maps (10 channels).
func (s *Sample) Input() (*tensor.Tensor, error) {
	return tensor.Concat(s.Decoded, s.Metadata)
}

// Target is the reference frame the network should reconstruct.
func (s *Sample) Target() *tensor.Tensor {
	return s.Reference
}

// Height and Width of the sample after any crop.
func (s *Sample) Height() int { return s.Decoded.Height }
func (s *Sample) Width() int  { return s.Decoded.Width }

// Crop applies one window to the decoded, reference and metadata tensors so
// all channel groups stay pixel aligned.
func (s *Sample) Crop(top, left, height, width int) (*Sample, error) {
	out := &Sample{
		FrameIndex: s.FrameIndex,
		Info: Info{
			FrameIndex: s.FrameIndex,
			Cropped:    true,
			Top:        top,
			Left:       left,
		},
	}
	var err error
	if out.Decoded, err = s.Decoded.Crop(top, left, height, width); err != nil {
		return nil, errors.Wrap(err, "crop decoded")
	}
	if out.Reference, err = s.Reference.Crop(top, left, height, width); err != nil {
		return nil, errors.Wrap(err, "crop reference")
	}
	if out.Metadata, err = s.Metadata.Crop(top, left, height, width); err != nil {
		return nil, errors.Wrap(err, "crop metadata")
	}
	return out, nil
}

// CropWindow picks a window of min(patch, height) x min(patch, width) with a
// top-left corner uniform over every valid position.
func CropWindow(rng *rand.Rand, height, width, patch int) (top, left, h, w int) {
	h, w = min(patch, height), min(patch, width)
	top = rng.Intn(height - h + 1)
	left = rng.Intn(width - w + 1)
	return top, left, h, w
}

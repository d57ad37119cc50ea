package datasets

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// ErrEmptyBatch is returned when converting a batch with no samples; gomlx
// tensors cannot have a zero-sized batch axis.
var ErrEmptyBatch = errors.New("empty batch")

// SampleBatchFlat stores a batch in flat contiguous buffers laid out as
// (Batch, Channels, Height, Width).
type SampleBatchFlat struct {
	Inputs        []float32
	Labels        []float32
	BatchSize     int
	InputChannels int
	LabelChannels int
	Height        int
	Width         int
	FrameIndices  []int
}

// MakeSampleBatchFlat flattens samples into contiguous buffers. Every sample
// must share the same spatial size, which holds within one video and across
// videos once samples are cropped to a common patch size.
func MakeSampleBatchFlat(samples []*Sample) (*SampleBatchFlat, error) {
	if len(samples) == 0 {
		return &SampleBatchFlat{}, nil
	}

	first, err := samples[0].Input()
	if err != nil {
		return nil, errors.Wrap(err, "sample 0")
	}
	b := &SampleBatchFlat{
		BatchSize:     len(samples),
		InputChannels: first.Channels,
		LabelChannels: samples[0].Target().Channels,
		Height:        first.Height,
		Width:         first.Width,
		FrameIndices:  make([]int, len(samples)),
	}
	inSize := b.InputChannels * b.Height * b.Width
	labSize := b.LabelChannels * b.Height * b.Width
	b.Inputs = make([]float32, b.BatchSize*inSize)
	b.Labels = make([]float32, b.BatchSize*labSize)

	for i, s := range samples {
		in := first
		if i > 0 {
			if in, err = s.Input(); err != nil {
				return nil, errors.Wrapf(err, "sample %d", i)
			}
		}
		lab := s.Target()
		if in.Channels != b.InputChannels || in.Height != b.Height || in.Width != b.Width {
			return nil, errors.Errorf("inconsistent input shapes: sample 0 has shape %v, sample %d has shape %v",
				first.Shape(), i, in.Shape())
		}
		if lab.Channels != b.LabelChannels || lab.Height != b.Height || lab.Width != b.Width {
			return nil, errors.Errorf("inconsistent label shapes: sample %d has shape %v, expected [%d %d %d]",
				i, lab.Shape(), b.LabelChannels, b.Height, b.Width)
		}
		copy(b.Inputs[i*inSize:], in.Data)
		copy(b.Labels[i*labSize:], lab.Data)
		b.FrameIndices[i] = s.FrameIndex
	}
	return b, nil
}

// ToGomlxTensors converts the batch into gomlx tensors of shape
// (B, 10, H, W) and (B, 3, H, W). An empty batch yields ErrEmptyBatch.
func (b *SampleBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 {
		return nil, nil, ErrEmptyBatch
	}
	inT := tensors.FromFlatDataAndDimensions(b.Inputs, b.BatchSize, b.InputChannels, b.Height, b.Width)
	labT := tensors.FromFlatDataAndDimensions(b.Labels, b.BatchSize, b.LabelChannels, b.Height, b.Width)
	return inT, labT, nil
}

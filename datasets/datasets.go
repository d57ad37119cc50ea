// Package datasets turns the artifacts of one encode/decode run (decoded YUV,
// original YUV and the decoder's block statistics trace) into training
// samples for a quality-enhancement network.
//
// Datasets are lazy: construction parses the trace once and records file
// paths, and every Example call reads exactly the two frames it needs. The
// parsed trace is never mutated after construction, so examples can be read
// from several goroutines.
//
// Layout of a sample:
//
//	Input  (10, H, W): Y, U, V of the decoded frame, then QP, PredMode, Depth,
//	                   MVL0_X, MVL0_Y, MVL1_X, MVL1_Y
//	Target (3, H, W):  Y, U, V of the original frame
//
// Chroma is upsampled to luma resolution, pixel channels lie in [0, 1] and
// metadata is raw unless a normalizer is configured.
package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// The datasets implement this interface in order to interact with GoMLX
// training loops and batching utilities.
type Dataset interface {
	Len() int
	Example(i int) (*Sample, error)
	Batch(indices []int) ([]*Sample, error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	Name() string
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
	Reset()
}

var (
	_ Dataset = (*VTMDataset)(nil)
	_ Dataset = (*ConcatDataset)(nil)
)

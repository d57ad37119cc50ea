package datasets

import (
	"context"
	"runtime"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// LoadSources builds one dataset per source in parallel. Sources touch
// disjoint files, so workers share nothing but the options. workers <= 0
// uses runtime.NumCPU(). The result is in source order; the first error
// cancels the remaining loads.
func LoadSources(ctx context.Context, sources []Source, workers int, opts ...Option) ([]*VTMDataset, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]*VTMDataset, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := NewVTMDataset(src, opts...)
			if err != nil {
				return errors.Wrapf(err, "load source %d (%s)", i, src.DecodedPath)
			}
			out[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ConcatDataset exposes several datasets (typically one per video) as one
// index space, in the order given.
type ConcatDataset struct {
	*sampler

	name      string
	parts     []Dataset
	cumCounts []int
}

// Concat joins datasets. Batches mixing videos of different resolutions only
// flatten when every part crops to the same patch size.
func Concat(name string, parts ...Dataset) *ConcatDataset {
	c := &ConcatDataset{
		name:      name,
		parts:     parts,
		cumCounts: make([]int, len(parts)+1),
	}
	for i, p := range parts {
		c.cumCounts[i+1] = c.cumCounts[i] + p.Len()
	}
	c.sampler = newSampler(c.Len(), time.Now().UnixNano())
	return c
}

// Len returns the total number of examples across all parts
func (c *ConcatDataset) Len() int {
	return c.cumCounts[len(c.parts)]
}

func (c *ConcatDataset) Name() string {
	return c.name
}

// mapGlobalIndex maps a global index to (part index, index within part)
func (c *ConcatDataset) mapGlobalIndex(globalIdx int) (partIdx, localIdx int) {
	for i := range len(c.parts) {
		if globalIdx < c.cumCounts[i+1] {
			return i, globalIdx - c.cumCounts[i]
		}
	}
	return -1, -1
}

// Example reads a single example by global index
func (c *ConcatDataset) Example(idx int) (*Sample, error) {
	if idx < 0 || idx >= c.Len() {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, len %d", idx, c.Len())
	}
	part, local := c.mapGlobalIndex(idx)
	return c.parts[part].Example(local)
}

// Batch reads multiple examples by their global indices
func (c *ConcatDataset) Batch(indices []int) ([]*Sample, error) {
	return batch(c, indices)
}

// Tensors reads a batch of examples and returns them as gomlx tensors
func (c *ConcatDataset) Tensors(indices []int) (*tensors.Tensor, *tensors.Tensor, error) {
	return batchTensors(c, indices)
}

// Yield returns the next batch for the gomlx Dataset interface.
func (c *ConcatDataset) Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error) {
	return yield(c, c.sampler)
}

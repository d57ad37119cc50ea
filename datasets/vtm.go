package datasets

import (
	"log/slog"
	"time"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/features"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/metrics"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/trace"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/yuv"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// ErrIndexOutOfRange is returned for example indices outside [0, Len()).
var ErrIndexOutOfRange = errors.New("example index out of range")

// Source names the artifacts of one decoded video.
type Source struct {
	// DecodedPath is the decoder's reconstruction; it is required.
	DecodedPath string
	// ReferencePath is the original video the encoder consumed.
	ReferencePath string
	// TracePath is the decoder's block statistics trace.
	TracePath string

	Width  int
	Height int
}

func (s Source) Geometry() yuv.Geometry {
	return yuv.Geometry{Width: s.Width, Height: s.Height}
}

// Option configures a VTMDataset.
type Option func(*VTMDataset)

// WithName sets the name reported by Name and used as a metrics label.
func WithName(name string) Option {
	return func(d *VTMDataset) { d.name = name }
}

// WithCrop enables random patch cropping. Non-positive sizes disable it.
func WithCrop(patchSize int) Option {
	return func(d *VTMDataset) { d.patchSize = patchSize }
}

// WithSeed fixes the generator used for crops and shuffling. Zero keeps the
// time-based seed.
func WithSeed(seed int64) Option {
	return func(d *VTMDataset) { d.seed = seed }
}

// WithNormalizer sets the metadata normalization policy.
func WithNormalizer(n features.Normalizer) Option {
	return func(d *VTMDataset) { d.normalizer = n }
}

// WithMetrics records parse, read and assembly counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *VTMDataset) { d.metrics = m }
}

// WithBatching sets the Yield batch size and the steps per virtual epoch.
func WithBatching(batchSize, stepsPerEpoch int) Option {
	return func(d *VTMDataset) {
		d.batchSize = batchSize
		d.stepsPerEpoch = stepsPerEpoch
	}
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(d *VTMDataset) { d.log = l }
}

// VTMDataset assembles samples from one decoded video, its original and the
// decoder trace. It implements gomlx's train.Dataset.
type VTMDataset struct {
	*sampler

	Source Source

	name          string
	seed          int64
	patchSize     int
	batchSize     int
	stepsPerEpoch int
	normalizer    features.Normalizer
	metrics       *metrics.Metrics
	log           *slog.Logger

	// Read-only after construction.
	trace   trace.Trace
	grouped map[int][]trace.Record
	frames  []int
	present map[string]bool
}

// NewVTMDataset parses the trace and determines the frame index set: the
// distinct frame indices of the trace, or 0..N-1 over the decoded video's
// whole frames when the trace is empty or missing.
func NewVTMDataset(src Source, opts ...Option) (*VTMDataset, error) {
	if src.DecodedPath == "" {
		return nil, errors.New("decoded yuv path cannot be empty")
	}
	g := src.Geometry()
	if err := g.Validate(); err != nil {
		return nil, errors.Wrapf(err, "source %s", src.DecodedPath)
	}

	d := &VTMDataset{
		Source:    src,
		name:      "VTMDataset",
		batchSize: 8,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.seed == 0 {
		d.seed = time.Now().UnixNano()
	}

	tr, err := trace.ParseFile(src.TracePath)
	if err != nil {
		return nil, err
	}
	d.trace = tr
	d.grouped = tr.GroupByFrame()
	d.metrics.RecordTrace(tr.Stats(), recordsByParam(tr))
	if st := tr.Stats(); st.Fallbacks > 0 {
		d.log.Warn("trace values defaulted", "dataset", d.name, "trace", src.TracePath, "count", st.Fallbacks)
	}

	if !tr.Empty() {
		d.frames = tr.FrameIndices()
	} else {
		n, err := yuv.FrameCount(src.DecodedPath, g)
		if err != nil {
			return nil, errors.Wrap(err, "count decoded frames")
		}
		d.frames = make([]int, n)
		for i := range d.frames {
			d.frames[i] = i
		}
		d.log.Info("no trace records, using decoded frame range",
			"dataset", d.name, "trace", src.TracePath, "frames", n)
	}

	d.present = map[string]bool{
		videoDecoded:   yuv.Exists(src.DecodedPath),
		videoReference: yuv.Exists(src.ReferencePath),
	}
	for video, ok := range d.present {
		if !ok {
			d.log.Warn("video missing, frames will be zero", "dataset", d.name, "video", video)
		}
	}

	d.sampler = newSampler(len(d.frames), d.seed)
	d.BatchSize = d.batchSize
	d.StepsPerEpoch = d.stepsPerEpoch
	d.metrics.SetDatasetFrames(d.name, len(d.frames))
	return d, nil
}

const (
	videoDecoded   = "decoded"
	videoReference = "reference"
)

func recordsByParam(tr trace.Trace) map[string]int {
	counts := make(map[string]int)
	for _, r := range tr.Records() {
		counts[r.Param]++
	}
	return counts
}

// Len returns the number of frame indices.
func (d *VTMDataset) Len() int {
	return len(d.frames)
}

// FrameIndices returns the frame index of every example, in example order.
func (d *VTMDataset) FrameIndices() []int {
	return append([]int(nil), d.frames...)
}

// Trace exposes the parsed trace.
func (d *VTMDataset) Trace() trace.Trace {
	return d.trace
}

// Name returns the name of the dataset
func (d *VTMDataset) Name() string {
	return d.name
}

// Example assembles the sample at position idx.
func (d *VTMDataset) Example(idx int) (*Sample, error) {
	start := time.Now()
	s, err := d.example(idx)
	d.metrics.RecordSample(d.name, err, time.Since(start))
	return s, err
}

func (d *VTMDataset) example(idx int) (*Sample, error) {
	if idx < 0 || idx >= len(d.frames) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, len %d", idx, len(d.frames))
	}
	frame := d.frames[idx]

	dec, err := d.readFrame(videoDecoded, d.Source.DecodedPath, frame)
	if err != nil {
		return nil, err
	}
	ref, err := d.readFrame(videoReference, d.Source.ReferencePath, frame)
	if err != nil {
		return nil, err
	}

	meta := features.Generate(d.Source.Width, d.Source.Height, d.grouped[frame]).Tensor()
	if d.normalizer != nil {
		d.normalizer.Normalize(meta)
	}

	s := &Sample{
		FrameIndex: frame,
		Decoded:    dec,
		Reference:  ref,
		Metadata:   meta,
		Info:       Info{FrameIndex: frame},
	}
	if d.patchSize <= 0 {
		return s, nil
	}
	top, left, h, w := d.cropWindow(d.Source.Height, d.Source.Width, d.patchSize)
	return s.Crop(top, left, h, w)
}

func (d *VTMDataset) readFrame(video, path string, frame int) (*tensor.Tensor, error) {
	t, err := yuv.ReadFrame(path, frame, d.Source.Geometry())
	switch {
	case err != nil:
		d.metrics.RecordFrameRead(video, "error")
		return nil, errors.Wrapf(err, "%s: read %s frame %d", d.name, video, frame)
	case !d.present[video]:
		d.metrics.RecordFrameRead(video, "missing")
	default:
		d.metrics.RecordFrameRead(video, "ok")
	}
	return t, nil
}

// Batch reads multiple examples by their indices
func (d *VTMDataset) Batch(indices []int) ([]*Sample, error) {
	return batch(d, indices)
}

// Tensors reads a batch of examples and returns them as gomlx tensors
func (d *VTMDataset) Tensors(indices []int) (inputs *tensors.Tensor, labels *tensors.Tensor, err error) {
	return batchTensors(d, indices)
}

// Yield returns the next batch for the gomlx Dataset interface, io.EOF at
// the end of an epoch. The batch size and epoch length come from
// WithBatching.
func (d *VTMDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	return yield(d, d.sampler)
}

func batch(d interface {
	Example(int) (*Sample, error)
}, indices []int) ([]*Sample, error) {
	out := make([]*Sample, len(indices))
	for i, idx := range indices {
		s, err := d.Example(idx)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func batchTensors(d Dataset, indices []int) (*tensors.Tensor, *tensors.Tensor, error) {
	samples, err := d.Batch(indices)
	if err != nil {
		return nil, nil, err
	}
	flat, err := MakeSampleBatchFlat(samples)
	if err != nil {
		return nil, nil, err
	}
	return flat.ToGomlxTensors()
}

func yield(d Dataset, s *sampler) (any, []*tensors.Tensor, []*tensors.Tensor, error) {
	indices, err := s.next()
	if err != nil {
		return nil, nil, nil, err
	}
	in, la, err := batchTensors(d, indices)
	if err != nil {
		return nil, nil, nil, err
	}
	return d.Name(), []*tensors.Tensor{in}, []*tensors.Tensor{la}, nil
}

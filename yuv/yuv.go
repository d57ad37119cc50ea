// Package yuv reads frames out of headerless planar 8-bit YUV 4:2:0 files,
// the raw output of the reference encoder and decoder.
package yuv

import (
	"io"
	"os"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/pkg/errors"
)

// ErrTruncatedFrame reports that a file exists but ends before the requested
// frame does. It signals a geometry or input mismatch and is never zero-filled.
var ErrTruncatedFrame = errors.New("truncated yuv frame")

// Geometry is the luma resolution of a video. Chroma planes are half size in
// both dimensions.
type Geometry struct {
	Width  int
	Height int
}

func (g Geometry) LumaSize() int     { return g.Width * g.Height }
func (g Geometry) ChromaWidth() int  { return g.Width / 2 }
func (g Geometry) ChromaHeight() int { return g.Height / 2 }
func (g Geometry) ChromaSize() int   { return g.ChromaWidth() * g.ChromaHeight() }

// FrameSize is the byte length of one frame, width*height*1.5.
func (g Geometry) FrameSize() int { return g.LumaSize() + 2*g.ChromaSize() }

// Validate requires positive, even dimensions.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Errorf("invalid geometry %dx%d: dimensions must be positive", g.Width, g.Height)
	}
	if g.Width%2 != 0 || g.Height%2 != 0 {
		return errors.Errorf("invalid geometry %dx%d: 4:2:0 needs even dimensions", g.Width, g.Height)
	}
	return nil
}

// ReadFrame decodes frame index from path into a (3, H, W) tensor holding
// [Y, U, V] in [0, 1], chroma bilinearly upsampled to luma resolution.
// A missing file yields an all-zero tensor and no error.
func ReadFrame(path string, index int, g Geometry) (*tensor.Tensor, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, errors.Errorf("negative frame index %d", index)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tensor.Zeros(3, g.Height, g.Width), nil
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	offset := int64(index) * int64(g.FrameSize())
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seek %s to frame %d", path, index)
	}

	luma := make([]byte, g.LumaSize())
	u := make([]byte, g.ChromaSize())
	v := make([]byte, g.ChromaSize())
	for _, plane := range []struct {
		name string
		buf  []byte
	}{{"Y", luma}, {"U", u}, {"V", v}} {
		if n, err := io.ReadFull(f, plane.buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errors.Wrapf(ErrTruncatedFrame, "%s frame %d plane %s: read %d of %d bytes",
					path, index, plane.name, n, len(plane.buf))
			}
			return nil, errors.Wrapf(err, "read %s frame %d plane %s", path, index, plane.name)
		}
	}

	y := make([]float32, g.LumaSize())
	normalize(y, luma)
	cw, ch := g.ChromaWidth(), g.ChromaHeight()
	chroma := make([]float32, g.ChromaSize())
	normalize(chroma, u)
	up := UpsampleBilinear(chroma, cw, ch, g.Width, g.Height)
	normalize(chroma, v)
	vp := UpsampleBilinear(chroma, cw, ch, g.Width, g.Height)
	return tensor.FromPlanes(g.Height, g.Width, y, up, vp)
}

// FrameCount is the number of whole frames in the file at path.
func FrameCount(path string, g Geometry) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", path)
	}
	return int(info.Size() / int64(g.FrameSize())), nil
}

// Exists reports whether a video file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func normalize(dst []float32, src []byte) {
	for i, b := range src {
		dst[i] = float32(b) / 255
	}
}

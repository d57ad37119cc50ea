package datasets

import (
	"os"
	"strings"
	"testing"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/yuv"
)

var testGeometry = yuv.Geometry{Width: 8, Height: 4}

// writeYUV writes frames 4:2:0 frames to path. fill returns the byte for
// position i of plane p (0=Y, 1=U, 2=V) in the given frame.
func writeYUV(t *testing.T, path string, g yuv.Geometry, frames int, fill func(frame, plane, i int) byte) {
	t.Helper()
	buf := make([]byte, 0, frames*g.FrameSize())
	for f := range frames {
		for p, size := range []int{g.LumaSize(), g.ChromaSize(), g.ChromaSize()} {
			for i := range size {
				buf = append(buf, fill(f, p, i))
			}
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("failed to write yuv %s: %v", path, err)
	}
}

// flatFrames fills every plane of frame f with a constant: Y=10*(f+1)+offset,
// U=100, V=200.
func flatFrames(offset byte) func(frame, plane, i int) byte {
	return func(frame, plane, _ int) byte {
		switch plane {
		case 0:
			return byte(10*(frame+1)) + offset
		case 1:
			return 100
		default:
			return 200
		}
	}
}

// writeLines writes a trace file, one line per entry.
func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write trace %s: %v", path, err)
	}
}

func pixel(b byte) float32 {
	return float32(b) / 255
}

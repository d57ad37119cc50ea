package datasets

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadSources_PreservesOrder(t *testing.T) {
	tmp := t.TempDir()
	var sources []Source
	for i, frames := range []int{1, 3, 2} {
		src := Source{
			DecodedPath: filepath.Join(tmp, "v"+string(rune('a'+i))+".yuv"),
			Width:       testGeometry.Width,
			Height:      testGeometry.Height,
		}
		writeYUV(t, src.DecodedPath, testGeometry, frames, flatFrames(0))
		sources = append(sources, src)
	}

	dss, err := LoadSources(context.Background(), sources, 2, WithSeed(5))
	require.NoError(t, err)
	require.Len(t, dss, 3)
	for i, want := range []int{1, 3, 2} {
		require.Equal(t, sources[i].DecodedPath, dss[i].Source.DecodedPath)
		require.Equal(t, want, dss[i].Len())
	}
}

func TestLoadSources_Error(t *testing.T) {
	good := newTestSource(t)
	bad := good
	bad.Width = 7

	_, err := LoadSources(context.Background(), []Source{good, bad}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load source 1")
}

func TestLoadSources_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadSources(ctx, []Source{newTestSource(t)}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcat_GlobalIndex(t *testing.T) {
	first, err := NewVTMDataset(newTestSource(t))
	require.NoError(t, err)

	src := newTestSource(t)
	src.TracePath = ""
	second, err := NewVTMDataset(src)
	require.NoError(t, err)

	c := Concat("all", first, second)
	require.Equal(t, 5, c.Len())
	require.Equal(t, "all", c.Name())

	// first: frames 0, 2; second: frames 0, 1, 2
	var frames []int
	for i := range c.Len() {
		s, err := c.Example(i)
		require.NoError(t, err)
		frames = append(frames, s.FrameIndex)
	}
	if diff := cmp.Diff([]int{0, 2, 0, 1, 2}, frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Example(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	inputs, labels, err := c.Tensors([]int{4, 0})
	require.NoError(t, err)
	require.Equal(t, []int{2, 10, 4, 8}, inputs.Shape().Dimensions)
	require.Equal(t, []int{2, 3, 4, 8}, labels.Shape().Dimensions)

	_, _, err = c.Tensors([]int{})
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSampler_ShuffleCoversAll(t *testing.T) {
	s := newSampler(5, 1)
	s.BatchSize = 2
	s.Shuffle(7)

	var seen []int
	for {
		b, err := s.next()
		if err != nil {
			break
		}
		seen = append(seen, b...)
	}
	sort.Ints(seen)
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestSampler_Empty(t *testing.T) {
	s := newSampler(0, 1)
	s.StepsPerEpoch = 3
	_, err := s.next()
	require.Error(t, err)
}

func TestParseInfo(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "foreman_cif.info")
	content := "General\nFormat : YUV\n\nVideo\nWidth : 352 pixels\nHeight : 288 pixels\n" +
		"Frame rate mode : Constant\nFrame rate : 30000/1001 FPS\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	info, err := ParseInfo(path)
	require.NoError(t, err)
	require.Equal(t, VideoInfo{Width: 352, Height: 288, FPS: 30}, info)

	require.NoError(t, os.WriteFile(path, []byte("width=64\nheight=32\n"), 0o644))
	info, err = ParseInfo(path)
	require.NoError(t, err)
	require.Equal(t, VideoInfo{Width: 64, Height: 32, FPS: 30}, info)

	require.NoError(t, os.WriteFile(path, []byte("Height : 288\n"), 0o644))
	_, err = ParseInfo(path)
	require.Error(t, err)

	_, err = ParseInfo(filepath.Join(tmp, "missing.info"))
	require.Error(t, err)
}

func TestDiscoverSources(t *testing.T) {
	decoded := t.TempDir()
	original := t.TempDir()

	for _, name := range []string{"foo_QP32.vtm_rec.yuv", "foo_QP37.vtm_rec.yuv", "bar_QP22.vtm_rec.yuv", "foo_QP32.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(decoded, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(original, "foo_cif.info"), []byte("Width : 352\nHeight : 288\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(original, "bar.info"), []byte("Width : 64\nHeight : 32\nFrame rate : 25\n"), 0o644))

	sources, err := DiscoverSources(decoded, original)
	require.NoError(t, err)

	want := []Source{
		{
			DecodedPath:   filepath.Join(decoded, "bar_QP22.vtm_rec.yuv"),
			ReferencePath: filepath.Join(original, "bar.yuv"),
			TracePath:     filepath.Join(decoded, "bar_QP22.csv"),
			Width:         64,
			Height:        32,
		},
		{
			DecodedPath:   filepath.Join(decoded, "foo_QP32.vtm_rec.yuv"),
			ReferencePath: filepath.Join(original, "foo.yuv"),
			TracePath:     filepath.Join(decoded, "foo_QP32.csv"),
			Width:         352,
			Height:        288,
		},
		{
			DecodedPath:   filepath.Join(decoded, "foo_QP37.vtm_rec.yuv"),
			ReferencePath: filepath.Join(original, "foo.yuv"),
			TracePath:     filepath.Join(decoded, "foo_QP37.csv"),
			Width:         352,
			Height:        288,
		},
	}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}

	_, err = DiscoverSources(t.TempDir(), original)
	require.Error(t, err)
}

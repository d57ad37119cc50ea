package plots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/stretchr/testify/require"
)

func TestHeatmapWritesPNG(t *testing.T) {
	tt := tensor.Zeros(2, 8, 16)
	for y := range 8 {
		for x := range 16 {
			tt.Set(1, y, x, float32(x+y))
		}
	}
	out := filepath.Join(t.TempDir(), "nested", "qp.png")

	require.NoError(t, Heatmap(tt, 1, "QP", out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	// constant planes are still drawable
	require.NoError(t, Heatmap(tt, 0, "flat", filepath.Join(t.TempDir(), "flat.png")))
}

func TestHeatmapRejectsBadChannel(t *testing.T) {
	tt := tensor.Zeros(1, 2, 2)
	require.Error(t, Heatmap(tt, 1, "", filepath.Join(t.TempDir(), "x.png")))
	require.Error(t, Heatmap(tt, -1, "", filepath.Join(t.TempDir(), "x.png")))
}

func TestChannelGridFlipsRows(t *testing.T) {
	tt := tensor.Zeros(1, 3, 2)
	tt.Set(0, 0, 1, 9)
	g := channelGrid{t: tt, c: 0}
	c, r := g.Dims()
	require.Equal(t, 2, c)
	require.Equal(t, 3, r)
	require.Equal(t, 9.0, g.Z(1, 2))
	require.Equal(t, 0.0, g.Z(1, 0))
}

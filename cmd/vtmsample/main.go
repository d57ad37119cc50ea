package main

// vtmsample builds the sample datasets described by a config file (or
// discovered from a pair of directories), prints what they contain and
// optionally renders one channel of the first sample as a heatmap.
//
// Usage:
//
//	go run ./cmd/vtmsample -config config.yaml -split train -limit 4
//	go run ./cmd/vtmsample -decoded-dir out/decoded -original-dir data -heatmap-out plots/qp.png -channel 3

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/config"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/datasets"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/features"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/metrics"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/plots"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/tensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var inputChannelNames = []string{"Y", "U", "V", "QP", "PredMode", "Depth", "MVL0_X", "MVL0_Y", "MVL1_X", "MVL1_Y"}

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional, defaults are used otherwise)")
	split := flag.String("split", config.SplitTrain, "split to load: train, val or test")
	decodedDir := flag.String("decoded-dir", "", "discover sources from *.vtm_rec.yuv files in this directory instead of the config split")
	originalDir := flag.String("original-dir", "", "directory holding the original <stem>.yuv and <stem>*.info files (with -decoded-dir)")
	limit := flag.Int("limit", 4, "number of samples to assemble and summarize")
	heatmapOut := flag.String("heatmap-out", "", "if set, render one input channel of the first sample to this image path")
	channel := flag.Int("channel", 3, "input channel to render (0-2 YUV, 3-9 metadata)")
	workers := flag.Int("workers", -1, "parallel source loads (0 = NumCPU, -1 = use config)")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (overrides config)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := resolveSources(cfg, *split, *decodedDir, *originalDir)
	if err != nil {
		fatalf("%v", err)
	}

	opts := []datasets.Option{
		datasets.WithName(*split),
		datasets.WithSeed(cfg.Sample.Seed),
		datasets.WithMetrics(m),
		datasets.WithLogger(log),
		datasets.WithBatching(cfg.BatchSize(*split), cfg.Steps(*split)),
	}
	if cfg.Sample.Crop {
		opts = append(opts, datasets.WithCrop(cfg.Sample.PatchSize))
	}
	if cfg.Sample.Normalize == "scaled" {
		opts = append(opts, datasets.WithNormalizer(features.DefaultScaled()))
	}

	start := time.Now()
	loaded, err := datasets.LoadSources(ctx, sources, cfg.Workers, opts...)
	if err != nil {
		fatalf("failed to load datasets: %v", err)
	}
	log.Info("datasets loaded", "split", *split, "sources", len(loaded), "elapsed", time.Since(start))

	for _, d := range loaded {
		st := d.Trace().Stats()
		fmt.Printf("%s: %dx%d, %d frames, trace lines=%d records=%d skipped=%d fallbacks=%d\n",
			d.Source.DecodedPath, d.Source.Width, d.Source.Height, d.Len(),
			st.Lines, st.Records, st.Skipped, st.Fallbacks)
	}

	var ds datasets.Dataset = loaded[0]
	if len(loaded) > 1 {
		parts := make([]datasets.Dataset, len(loaded))
		for i, d := range loaded {
			parts[i] = d
		}
		c := datasets.Concat(*split, parts...)
		c.BatchSize = cfg.BatchSize(*split)
		c.StepsPerEpoch = cfg.Steps(*split)
		ds = c
	}
	fmt.Printf("Total examples in %s: %d\n", ds.Name(), ds.Len())

	n := min(*limit, ds.Len())
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		s, err := ds.Example(i)
		if err != nil {
			fatalf("failed to assemble example %d: %v", i, err)
		}
		in, err := s.Input()
		if err != nil {
			fatalf("failed to build input %d: %v", i, err)
		}
		fmt.Printf("  #%d frame=%d input=%v target=%v crop=%v@(%d,%d) psnr_y=%.2fdB\n",
			i, s.FrameIndex, in.Shape(), s.Target().Shape(), s.Info.Cropped, s.Info.Top, s.Info.Left,
			psnr(s.Decoded.Plane(0), s.Reference.Plane(0)))

		if i == 0 && *heatmapOut != "" {
			renderHeatmap(in, *channel, s.FrameIndex, *heatmapOut)
		}
	}
}

func resolveSources(cfg *config.Config, split, decodedDir, originalDir string) ([]datasets.Source, error) {
	if decodedDir != "" {
		return datasets.DiscoverSources(decodedDir, originalDir)
	}
	sub, err := cfg.Split(split)
	if err != nil {
		return nil, err
	}
	if !sub.Configured() {
		return nil, fmt.Errorf("split %q has no decoded_yuv_filepath; pass -config or -decoded-dir", split)
	}
	return []datasets.Source{{
		DecodedPath:   sub.DecodedYUVFilepath,
		ReferencePath: sub.OriginalYUVFilePath,
		TracePath:     sub.VTMTraceFilepath,
		Width:         sub.Width,
		Height:        sub.Height,
	}}, nil
}

func renderHeatmap(in *tensor.Tensor, channel, frame int, out string) {
	name := fmt.Sprintf("channel %d", channel)
	if channel >= 0 && channel < len(inputChannelNames) {
		name = inputChannelNames[channel]
	}
	title := fmt.Sprintf("%s, frame %d", name, frame)
	if err := plots.Heatmap(in, channel, title, out); err != nil {
		fatalf("failed to render heatmap: %v", err)
	}
	slog.Info("heatmap written", "path", out, "channel", name)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

// psnr of two [0, 1] planes; identical planes report +Inf.
func psnr(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	mse := sum / float64(len(a))
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(1/mse)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

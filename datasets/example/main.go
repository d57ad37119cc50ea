package main

// Example command that demonstrates building a VTM dataset from a decoded
// video, its original and the decoder trace, then converting a small batch
// into gomlx tensors and walking one epoch through the Yield interface.
//
// Datasets are lazy: only the trace is parsed up front, and each example
// reads the two frames it needs.
//
// Usage:
//   go run ./datasets/example -decoded out/foreman_QP32.vtm_rec.yuv \
//       -original data/foreman.yuv -trace out/foreman_QP32.csv -width 352 -height 288

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/datasets"
	"github.com/FilipBudzynski/vvc-cnn-inter-enhancement/features"
)

func main() {
	decoded := flag.String("decoded", "", "decoded yuv file")
	original := flag.String("original", "", "original yuv file")
	tracePath := flag.String("trace", "", "decoder block statistics trace")
	width := flag.Int("width", 352, "frame width")
	height := flag.Int("height", 288, "frame height")
	flag.Parse()

	ds, err := datasets.NewVTMDataset(datasets.Source{
		DecodedPath:   *decoded,
		ReferencePath: *original,
		TracePath:     *tracePath,
		Width:         *width,
		Height:        *height,
	},
		datasets.WithCrop(128),
		datasets.WithSeed(1),
		datasets.WithNormalizer(features.DefaultScaled()),
		datasets.WithBatching(4, 0),
	)
	if err != nil {
		log.Fatalf("failed to create dataset: %v", err)
	}
	fmt.Printf("Total examples available: %d\n", ds.Len())

	// Prepare a small batch (first N examples)
	n := min(8, ds.Len())
	if n > 0 {
		indices := make([]int, n)
		for i := range n {
			indices[i] = i
		}

		fmt.Printf("Loading batch of %d examples...\n", n)
		samples, err := ds.Batch(indices)
		if err != nil {
			log.Fatalf("failed to build batch: %v", err)
		}

		// Convert to flat contiguous buffers and then to gomlx tensors
		flat, err := datasets.MakeSampleBatchFlat(samples)
		if err != nil {
			log.Fatalf("failed to flatten batch: %v", err)
		}
		inT, labT, err := flat.ToGomlxTensors()
		if err != nil {
			log.Fatalf("failed to convert batch to gomlx tensors: %v", err)
		}
		fmt.Printf("Inputs tensor shape: %v\n", inT.Shape())
		fmt.Printf("Labels tensor shape: %v\n", labT.Shape())
		fmt.Printf("Frames: %v\n", flat.FrameIndices)
	}

	// One epoch through the training-loop interface
	steps := 0
	for {
		_, _, _, err := ds.Yield()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("yield failed: %v", err)
		}
		steps++
	}
	fmt.Printf("Epoch finished after %d batches\n", steps)
}

package yuv

// UpsampleBilinear resizes a row-major sw x sh plane to dw x dh.
func UpsampleBilinear(src []float32, sw, sh, dw, dh int) []float32 {
	dst := make([]float32, dw*dh)
	UpsampleBilinearInto(dst, src, sw, sh, dw, dh)
	return dst
}

// UpsampleBilinearInto writes the resized plane into dst. Sample centres sit
// at half-pixel offsets (corners are not aligned) and reads past the last
// source row or column are clamped to the edge.
func UpsampleBilinearInto(dst, src []float32, sw, sh, dw, dh int) {
	if sw == 0 || sh == 0 {
		return
	}
	xs := axisTaps(sw, dw)
	ys := axisTaps(sh, dh)
	for y, ty := range ys {
		row0 := src[ty.i0*sw : ty.i0*sw+sw]
		row1 := src[ty.i1*sw : ty.i1*sw+sw]
		out := dst[y*dw : y*dw+dw]
		for x, tx := range xs {
			top := row0[tx.i0]*tx.w0 + row0[tx.i1]*tx.w1
			bottom := row1[tx.i0]*tx.w0 + row1[tx.i1]*tx.w1
			out[x] = top*ty.w0 + bottom*ty.w1
		}
	}
}

type tap struct {
	i0, i1 int
	w0, w1 float32
}

// axisTaps precomputes the two source indices and weights per output index.
func axisTaps(in, out int) []tap {
	taps := make([]tap, out)
	scale := float32(in) / float32(out)
	for d := range taps {
		src := (float32(d)+0.5)*scale - 0.5
		if src < 0 {
			src = 0
		}
		i0 := int(src)
		if i0 > in-1 {
			i0 = in - 1
		}
		i1 := i0
		if i0 < in-1 {
			i1 = i0 + 1
		}
		w1 := src - float32(i0)
		if i1 == i0 {
			w1 = 0
		}
		taps[d] = tap{i0: i0, i1: i1, w0: 1 - w1, w1: w1}
	}
	return taps
}

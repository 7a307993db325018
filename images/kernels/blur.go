package kernels

import (
	"image"
	"sync"
)

// EdgeMode defines how sampling behaves outside the image bounds.
// - Clamp: repeats edge pixels.
// - Mirror: reflects coordinates (better edge energy preservation).
// - Wrap: tiles the image (for periodic patterns).
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeWrap
)

// Options configures the blur call.
type Options struct {
	Radius   int      // Blur radius (window size = 2*Radius + 1). Must be >= 0.
	Edge     EdgeMode // Edge sampling mode.
	Parallel bool     // Enable row/column parallelism (good for large scans).
}

// BoxBlurGray applies a separable box blur to a single-channel intensity image.
// A horizontal pass and a vertical pass each use a sliding window, so the cost
// is O(W*H) per pass regardless of Radius.
//
// The result is a new *image.Gray with bounds starting at the origin; src is
// never modified.
func BoxBlurGray(src *image.Gray, opt Options) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	copyGray(dst, src)
	if opt.Radius <= 0 || w == 0 || h == 0 {
		return dst
	}

	tmp := image.NewGray(dst.Rect)
	blurRows(dst, tmp, opt.Radius, opt.Edge, opt.Parallel)
	blurCols(tmp, dst, opt.Radius, opt.Edge, opt.Parallel)
	return dst
}

// copyGray copies src into dst, which must be origin-based and the same size.
func copyGray(dst, src *image.Gray) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[srcOff:srcOff+b.Dx()])
	}
}

// blurRows applies the horizontal pass from src into dst.
//   - Compute an initial sum for x in [-r .. +r], respecting edges.
//   - For each step to the right, subtract the pixel leaving on the left
//     and add the pixel entering on the right.
func blurRows(src, dst *image.Gray, r int, edge EdgeMode, parallel bool) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	window := uint32(2*r + 1)

	rowTask := func(y int) {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]

		var sum uint32
		for dx := -r; dx <= r; dx++ {
			sum += uint32(row[mapCoord(dx, w, edge)])
		}
		for x := 0; x < w; x++ {
			out[x] = uint8((sum + window/2) / window)
			sum += uint32(row[mapCoord(x+r+1, w, edge)])
			sum -= uint32(row[mapCoord(x-r, w, edge)])
		}
	}

	run(h, parallel, rowTask)
}

// blurCols mirrors blurRows along columns, striding by src.Stride per step.
func blurCols(src, dst *image.Gray, r int, edge EdgeMode, parallel bool) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	window := uint32(2*r + 1)

	colTask := func(x int) {
		load := func(y int) uint32 {
			return uint32(src.Pix[mapCoord(y, h, edge)*src.Stride+x])
		}

		var sum uint32
		for dy := -r; dy <= r; dy++ {
			sum += load(dy)
		}
		for y := 0; y < h; y++ {
			dst.Pix[y*dst.Stride+x] = uint8((sum + window/2) / window)
			sum += load(y + r + 1)
			sum -= load(y - r)
		}
	}

	run(w, parallel, colTask)
}

// run calls task for every index in [0, n), split across goroutines when
// parallel is set. Each index writes a disjoint slice of the output.
func run(n int, parallel bool, task func(int)) {
	if !parallel || n < 4 {
		for i := 0; i < n; i++ {
			task(i)
		}
		return
	}

	chunk := chooseChunk(n)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				task(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// mapCoord maps an index i to [0, n) according to edge mode.
// For Clamp: clamp to [0, n-1].
// For Mirror: reflect indices ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ... (no duplication at edges).
// For Wrap: modulo wrap to [0, n).
func mapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeMirror:
		if n == 1 {
			return 0
		}
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}

// chooseChunk picks a work chunk size that balances overhead and cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}

package cpu

import (
	"math"

	"github.com/born-ml/superres/internal/parallel"
	"github.com/born-ml/superres/internal/tensor"
)

// splitRGBA de-interleaves n RGBA8 pixels into three float planes in [0, 1].
func splitRGBA(dst []float32, pix []byte, n int, cfg parallel.Config) {
	const chunk = 4096
	parallel.For((n+chunk-1)/chunk, func(c int) {
		end := min((c+1)*chunk, n)
		for i := c * chunk; i < end; i++ {
			dst[i] = float32(pix[4*i]) / 255
			dst[n+i] = float32(pix[4*i+1]) / 255
			dst[2*n+i] = float32(pix[4*i+2]) / 255
		}
	}, cfg)
}

// combineRGB interleaves three float planes into opaque RGBA8 pixels.
func combineRGB(pix []byte, src []float32, n int, cfg parallel.Config) {
	const chunk = 4096
	parallel.For((n+chunk-1)/chunk, func(c int) {
		end := min((c+1)*chunk, n)
		for i := c * chunk; i < end; i++ {
			pix[4*i] = toUnorm8(src[i])
			pix[4*i+1] = toUnorm8(src[n+i])
			pix[4*i+2] = toUnorm8(src[2*n+i])
			pix[4*i+3] = 255
		}
	}, cfg)
}

func toUnorm8(v float32) uint8 {
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// convolve3x3 writes one output plane:
//
//	dst[y][x] = act(bias + sum_d sum_ky,kx src[d][y+ky-1][x+kx-1] * w[d][ky][kx])
//
// Samples outside the plane read as zero. Rows are processed in parallel;
// each row is accumulated in a local buffer so workers never share writes.
func convolve3x3(dst, src []float32, shape tensor.Shape, c *tensor.Constants, cfg parallel.Config) {
	w, h := shape.Width(), shape.Height()
	n := w * h

	parallel.For(h, func(y int) {
		row := dst[y*w : (y+1)*w]
		for x := range row {
			row[x] = c.Bias
		}
		for d, k := range c.Weights {
			plane := src[d*n : (d+1)*n]
			for ky := 0; ky < 3; ky++ {
				sy := y + ky - 1
				if sy < 0 || sy >= h {
					continue
				}
				srow := plane[sy*w : (sy+1)*w]
				accumulateRow(row, srow, k[ky*3], k[ky*3+1], k[ky*3+2])
			}
		}
		if c.NegativeSlope != 1 {
			for x, v := range row {
				if v < 0 {
					row[x] = v * c.NegativeSlope
				}
			}
		}
	}, cfg)
}

// accumulateRow adds the three horizontal taps of one kernel row:
// row[x] += w0*s[x-1] + w1*s[x] + w2*s[x+1], with zero padding at both ends.
func accumulateRow(row, s []float32, w0, w1, w2 float32) {
	last := len(row) - 1
	if last == 0 {
		row[0] += w1 * s[0]
		return
	}
	row[0] += w1*s[0] + w2*s[1]
	for x := 1; x < last; x++ {
		row[x] += w0*s[x-1] + w1*s[x] + w2*s[x+1]
	}
	row[last] += w0*s[last-1] + w1*s[last]
}

package heatmap

import "math"

// DensityGrid is a normalized density map of one monitor. Cells are
// row-major with values in [0, 1].
type DensityGrid struct {
	Width   int
	Height  int
	Cells   []float64
	Monitor int

	// Scale maps monitor pixels to cells (cell = pixel * Scale).
	Scale float64

	// Samples is the total weight that landed inside the grid; Clipped is
	// the weight that fell outside the monitor and was discarded.
	Samples float64
	Clipped float64

	// Tier is "samples" or "rollup", the storage tier the grid was built
	// from.
	Tier string
}

func newGrid(w, h, monitor int, scale float64) *DensityGrid {
	return &DensityGrid{
		Width:   w,
		Height:  h,
		Cells:   make([]float64, w*h),
		Monitor: monitor,
		Scale:   scale,
	}
}

// At returns the value of a cell, or 0 outside the grid.
func (g *DensityGrid) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0
	}
	return g.Cells[y*g.Width+x]
}

// Peak returns the coordinates and value of the densest cell. Ties go to
// the first in row-major order.
func (g *DensityGrid) Peak() (int, int, float64) {
	best, bx, by := -1.0, 0, 0
	for i, v := range g.Cells {
		if v > best {
			best, bx, by = v, i%g.Width, i/g.Width
		}
	}
	return bx, by, math.Max(best, 0)
}

// Empty reports whether every cell is zero.
func (g *DensityGrid) Empty() bool {
	for _, v := range g.Cells {
		if v != 0 {
			return false
		}
	}
	return true
}

// Downsample max-pools the grid into cols x rows, for terminal previews.
func (g *DensityGrid) Downsample(cols, rows int) [][]float64 {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		y0 := r * g.Height / rows
		y1 := max((r+1)*g.Height/rows, y0+1)
		for c := range out[r] {
			x0 := c * g.Width / cols
			x1 := max((c+1)*g.Width/cols, x0+1)
			var m float64
			for y := y0; y < y1 && y < g.Height; y++ {
				for x := x0; x < x1 && x < g.Width; x++ {
					m = math.Max(m, g.Cells[y*g.Width+x])
				}
			}
			out[r][c] = m
		}
	}
	return out
}

// kernel returns a normalized 1-D Gaussian of radius ceil(3*sigma).
func kernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// blur applies a separable Gaussian in place. Pixels beyond the edges count
// as zero.
func (g *DensityGrid) blur(sigma float64) {
	if sigma <= 0 {
		return
	}
	k := kernel(sigma)
	radius := len(k) / 2
	tmp := make([]float64, len(g.Cells))

	for y := 0; y < g.Height; y++ {
		row := y * g.Width
		for x := 0; x < g.Width; x++ {
			var acc float64
			for i := -radius; i <= radius; i++ {
				if xx := x + i; xx >= 0 && xx < g.Width {
					acc += g.Cells[row+xx] * k[i+radius]
				}
			}
			tmp[row+x] = acc
		}
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			var acc float64
			for i := -radius; i <= radius; i++ {
				if yy := y + i; yy >= 0 && yy < g.Height {
					acc += tmp[yy*g.Width+x] * k[i+radius]
				}
			}
			g.Cells[y*g.Width+x] = acc
		}
	}
}

// normalize scales cells so the maximum is 1.
func (g *DensityGrid) normalize() {
	var peak float64
	for _, v := range g.Cells {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return
	}
	for i := range g.Cells {
		g.Cells[i] /= peak
	}
}

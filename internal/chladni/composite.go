package chladni

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"

	"github.com/tphakala/simd/f64"
)

// Frame is a composited image: one colour and one intensity per pixel,
// row-major.
type Frame struct {
	W, H      int
	Pix       []RGB
	Intensity []float64
}

// NewFrame allocates a w×h frame.
func NewFrame(w, h int) *Frame {
	w, h = max(w, 0), max(h, 0)
	return &Frame{W: w, H: h, Pix: make([]RGB, w*h), Intensity: make([]float64, w*h)}
}

// At returns the colour of pixel (x, y).
func (f *Frame) At(x, y int) RGB { return f.Pix[y*f.W+x] }

// Image copies the frame into an RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := range f.H {
		for x := range f.W {
			c := f.Pix[y*f.W+x]
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		}
	}
	return img
}

// Compositor blends the bank's fields into frames. Every pixel is computed
// independently, so rows are spread across workers.
type Compositor struct {
	bank    *Bank
	workers int

	// cells maps each frame pixel to its field cell; rebuilt on resize.
	cells  []int
	cellsW int
	cellsH int
}

// NewCompositor creates a compositor over bank. workers <= 0 uses
// GOMAXPROCS.
func NewCompositor(bank *Bank, workers int) *Compositor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Compositor{bank: bank, workers: workers}
}

// Intensity returns clamp(|Σ w_i·s_i|·sensitivity, 0, 1) for field cell.
func (c *Compositor) Intensity(weights []float64, cell int, sensitivity float64) float64 {
	contrib := c.bank.Pixel(cell)
	n := min(len(weights), len(contrib))
	sum := f64.DotProductUnsafe(weights[:n], contrib[:n])
	v := math.Abs(sum) * sensitivity
	if math.IsNaN(v) {
		return 0
	}
	return clamp01(v)
}

// Render composites weights into dst, stretching the field grid over the
// whole frame.
func (c *Compositor) Render(dst *Frame, weights []float64, ramp *Ramp, sensitivity float64) {
	if dst.W == 0 || dst.H == 0 {
		return
	}
	c.mapCells(dst.W, dst.H)

	workers := min(c.workers, dst.H)
	if workers <= 1 {
		c.renderRows(dst, weights, ramp, sensitivity, 0, dst.H)
		return
	}

	var wg sync.WaitGroup
	chunk := (dst.H + workers - 1) / workers
	for lo := 0; lo < dst.H; lo += chunk {
		hi := min(lo+chunk, dst.H)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.renderRows(dst, weights, ramp, sensitivity, lo, hi)
		}()
	}
	wg.Wait()
}

func (c *Compositor) renderRows(dst *Frame, weights []float64, ramp *Ramp, sensitivity float64, lo, hi int) {
	for y := lo; y < hi; y++ {
		row := y * dst.W
		for x := range dst.W {
			v := c.Intensity(weights, c.cells[row+x], sensitivity)
			dst.Intensity[row+x] = v
			dst.Pix[row+x] = ramp.Lookup(v)
		}
	}
}

func (c *Compositor) mapCells(w, h int) {
	if c.cellsW == w && c.cellsH == h && len(c.cells) == w*h {
		return
	}
	size := c.bank.Size()
	c.cells = make([]int, w*h)
	for y := range h {
		fy := min(int((float64(y)+0.5)/float64(h)*float64(size)), size-1)
		for x := range w {
			fx := min(int((float64(x)+0.5)/float64(w)*float64(size)), size-1)
			c.cells[y*w+x] = fy*size + fx
		}
	}
	c.cellsW, c.cellsH = w, h
}

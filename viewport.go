package buddha

import "math"

// Region is an axis-aligned rectangle in the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Viewport maps between complex-plane coordinates and pixel coordinates.
// It is a stateless value: derive a new one whenever resolution, zoom or
// center changes.
//
// At Zoom 1 the viewport spans 4 units of the plane on each axis, so the
// pixel position of a point c is
//
//	screen = (c - center) * zoom/4 * resolution + resolution/2
type Viewport struct {
	Width, Height int
	Zoom          float64
	CenterX       float64
	CenterY       float64
}

// ToScreen projects a complex-plane point to a pixel coordinate.
// Points that land outside [0,Width) x [0,Height) report ok=false and must
// be skipped, not clamped; clamping would pile out-of-view trajectory points
// onto the border cells and bias the histogram.
func (v Viewport) ToScreen(c complex128) (x, y int, ok bool) {
	fx := (real(c)-v.CenterX)*v.Zoom/4*float64(v.Width) + float64(v.Width)/2
	fy := (imag(c)-v.CenterY)*v.Zoom/4*float64(v.Height) + float64(v.Height)/2
	// Floor, not truncation: values just below zero must not fold onto
	// column/row zero.
	x = int(math.Floor(fx))
	y = int(math.Floor(fy))
	if x < 0 || x >= v.Width || y < 0 || y >= v.Height {
		return 0, 0, false
	}
	return x, y, true
}

// ToComplex is the exact inverse of ToScreen for the top-left corner of the
// given pixel.
func (v Viewport) ToComplex(x, y int) complex128 {
	re := (float64(x)-float64(v.Width)/2)*4/(v.Zoom*float64(v.Width)) + v.CenterX
	im := (float64(y)-float64(v.Height)/2)*4/(v.Zoom*float64(v.Height)) + v.CenterY
	return complex(re, im)
}

// Region returns the visible complex-plane rectangle: center +- 2/zoom on
// both axes. Sample points are drawn uniformly from this rectangle.
func (v Viewport) Region() Region {
	half := 2 / v.Zoom
	return Region{
		Xmin: v.CenterX - half,
		Xmax: v.CenterX + half,
		Ymin: v.CenterY - half,
		Ymax: v.CenterY + half,
	}
}

// PixelExtent returns the complex-plane size of one pixel on each axis.
// Useful as a round-trip tolerance.
func (v Viewport) PixelExtent() (dx, dy float64) {
	return 4 / (v.Zoom * float64(v.Width)), 4 / (v.Zoom * float64(v.Height))
}

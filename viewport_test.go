package buddha

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestViewportRoundTrip(t *testing.T) {
	views := []Viewport{
		{Width: 800, Height: 600, Zoom: 1, CenterX: -0.7, CenterY: 0},
		{Width: 512, Height: 512, Zoom: 40, CenterX: -0.75, CenterY: 0.1},
		{Width: 64, Height: 128, Zoom: 0.5, CenterX: 1.2, CenterY: -2},
	}
	rng := rand.New(rand.NewPCG(3, 5))
	for _, vp := range views {
		reg := vp.Region()
		dx, dy := vp.PixelExtent()
		for i := 0; i < 200; i++ {
			p := complex(
				reg.Xmin+rng.Float64()*(reg.Xmax-reg.Xmin),
				reg.Ymin+rng.Float64()*(reg.Ymax-reg.Ymin),
			)
			x, y, ok := vp.ToScreen(p)
			if !ok {
				t.Fatalf("vp %+v: point %v inside visible region rejected", vp, p)
			}
			back := vp.ToComplex(x, y)
			if math.Abs(real(back)-real(p)) > dx || math.Abs(imag(back)-imag(p)) > dy {
				t.Fatalf("vp %+v: round trip %v -> (%d,%d) -> %v exceeds one pixel", vp, p, x, y, back)
			}
		}
	}
}

func TestViewportRejectsOutOfRange(t *testing.T) {
	vp := Viewport{Width: 100, Height: 100, Zoom: 1, CenterX: 0, CenterY: 0}
	reg := vp.Region()
	cases := []complex128{
		complex(reg.Xmax, 0),     // right edge is exclusive
		complex(reg.Xmax+1, 0),
		complex(reg.Xmin-1e-9, 0),
		complex(0, reg.Ymax),
		complex(0, reg.Ymin-1e-9),
		complex(1e6, 1e6),
	}
	for _, c := range cases {
		if _, _, ok := vp.ToScreen(c); ok {
			t.Errorf("ToScreen(%v) accepted a point outside the viewport", c)
		}
	}
}

func TestViewportCenterAndCorners(t *testing.T) {
	vp := Viewport{Width: 200, Height: 100, Zoom: 2, CenterX: -0.5, CenterY: 0.25}

	x, y, ok := vp.ToScreen(complex(vp.CenterX, vp.CenterY))
	if !ok || x != vp.Width/2 || y != vp.Height/2 {
		t.Fatalf("center maps to (%d,%d,%v), want (%d,%d,true)", x, y, ok, vp.Width/2, vp.Height/2)
	}

	reg := vp.Region()
	if got := vp.ToComplex(0, 0); got != complex(reg.Xmin, reg.Ymin) {
		t.Fatalf("ToComplex(0,0) = %v, want visible-region corner %v", got, complex(reg.Xmin, reg.Ymin))
	}
}

func TestViewportRegionExtent(t *testing.T) {
	vp := Viewport{Width: 10, Height: 10, Zoom: 4, CenterX: 1, CenterY: -1}
	reg := vp.Region()
	if w := reg.Xmax - reg.Xmin; math.Abs(w-1) > 1e-12 {
		t.Errorf("region width = %v, want 4/zoom = 1", w)
	}
	if h := reg.Ymax - reg.Ymin; math.Abs(h-1) > 1e-12 {
		t.Errorf("region height = %v, want 4/zoom = 1", h)
	}
	if mid := (reg.Xmin + reg.Xmax) / 2; math.Abs(mid-1) > 1e-12 {
		t.Errorf("region x center = %v, want 1", mid)
	}
}

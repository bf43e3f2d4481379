package buddha

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"golang.org/x/image/tiff"
)

// testBuffer builds a small buffer with a known pattern.
func testBuffer() *Buffer {
	b := NewBuffer(16, 16)
	b.add(0)          // (0,0) density 1
	b.add(8*16 + 8)   // (8,8)
	b.add(8*16 + 8)   // (8,8) density 2
	b.add(15*16 + 15) // (15,15)
	return b
}

func TestEncodeRasterPNG(t *testing.T) {
	buf := testBuffer()
	data, err := EncodeRaster(buf, SchemeClassic, FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("decoded size %dx%d, want 16x16", b.Dx(), b.Dy())
	}
	if r, g, bl, _ := img.At(8, 8).RGBA(); r == 0 || g == 0 || bl == 0 {
		t.Error("max-density cell decoded as background")
	}
	if r, g, bl, _ := img.At(1, 1).RGBA(); r|g|bl != 0 {
		t.Error("empty cell decoded as non-background")
	}
}

func TestEncodeRasterTIFF(t *testing.T) {
	buf := testBuffer()
	data, err := EncodeRaster(buf, SchemeGlacier, FormatTIFF)
	if err != nil {
		t.Fatal(err)
	}
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("decoded size %dx%d, want 16x16", b.Dx(), b.Dy())
	}
}

func TestEncodeRasterUnknownFormat(t *testing.T) {
	if _, err := EncodeRaster(testBuffer(), SchemeClassic, "bmp"); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("err = %v, want ErrInvalidParameters", err)
	}
}

func TestEncodeVector(t *testing.T) {
	buf := testBuffer()
	data, err := EncodeVector(buf, SchemeClassic, 4)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("not an svg document: %.60s", svg)
	}
	// On a step-4 grid only (0,0) and (8,8) of the test pattern are
	// sampled; (15,15) falls between grid points. Plus the background rect.
	if got := strings.Count(svg, "<rect"); got != 3 {
		t.Fatalf("rect count = %d, want 3\n%s", got, svg)
	}
	if !strings.Contains(svg, `x="8" y="8"`) {
		t.Error("missing rect for cell (8,8)")
	}
	// (8,8) holds the max density, so its opacity is 1.
	if !strings.Contains(svg, `fill-opacity="1.0000"`) {
		t.Error("max-density cell should have opacity 1")
	}
	if !strings.Contains(svg, `fill-opacity="0.5000"`) {
		t.Error("half-density cell should have opacity 0.5")
	}
}

func TestEncodeVectorBadStep(t *testing.T) {
	if _, err := EncodeVector(testBuffer(), SchemeClassic, 0); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("err = %v, want ErrInvalidParameters", err)
	}
}

func TestExportImageValidatesQuality(t *testing.T) {
	c, err := NewController(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := c.ExportImage(context.Background(), FormatPNG, q); !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("quality %v: err = %v, want ErrInvalidParameters", q, err)
		}
	}
}

func TestExportImageRequiresCompletedJob(t *testing.T) {
	c, err := NewController(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExportImage(context.Background(), FormatPNG, 0); !errors.Is(err, ErrNotComplete) {
		t.Fatalf("err = %v, want ErrNotComplete", err)
	}
}

func TestExportImageUpscaledRerender(t *testing.T) {
	c, err := NewController(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetParameters(Params{Iterations: 100, Samples: 30000, Zoom: 1, CenterX: -0.7, Scheme: SchemeClassic}); err != nil {
		t.Fatal(err)
	}
	j, err := c.Render(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	<-j.Done()

	// quality 1 re-renders the histogram at 3x resolution instead of
	// interpolating the 32x32 buffer.
	data, err := c.ExportImage(context.Background(), FormatRaster, 1)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Fatalf("upscaled export is %dx%d, want 96x96", b.Dx(), b.Dy())
	}

	// Vector export of the same job.
	svg, err := c.ExportImage(context.Background(), FormatVector, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("</svg>")) {
		t.Fatal("vector export is not svg")
	}
}

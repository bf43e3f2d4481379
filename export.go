package buddha

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/tiff"
)

// Export formats accepted by Controller.ExportImage. "raster" and "vector"
// are the generic names; "png", "tiff" and "svg" select a container
// explicitly.
const (
	FormatRaster = "raster"
	FormatPNG    = "png"
	FormatTIFF   = "tiff"
	FormatVector = "vector"
	FormatSVG    = "svg"
)

// rasterize maps every cell through the color mapper into an RGBA image.
func rasterize(buf *Buffer, scheme ColorScheme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buf.width, buf.height))
	max := buf.max
	for y := 0; y < buf.height; y++ {
		for x := 0; x < buf.width; x++ {
			img.SetRGBA(x, y, MapDensity(buf.cells[y*buf.width+x], max, scheme))
		}
	}
	return img
}

// EncodeRaster rasterizes the buffer and encodes it into the given
// container. Encoding errors are returned as-is and never touch any render
// job's state.
func EncodeRaster(buf *Buffer, scheme ColorScheme, format string) ([]byte, error) {
	img := rasterize(buf, scheme)
	var out bytes.Buffer
	switch format {
	case FormatRaster, FormatPNG:
		if err := png.Encode(&out, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case FormatTIFF:
		if err := tiff.Encode(&out, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode tiff: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported raster format %q", ErrInvalidParameters, format)
	}
	return out.Bytes(), nil
}

// EncodeVector emits a deliberately approximate SVG of the buffer: the
// buffer is sampled on a step-pixel grid and every non-zero sampled cell
// becomes one filled rectangle whose opacity is the cell's normalized
// density. It is a structural sketch, not a pixel-exact rendering.
func EncodeVector(buf *Buffer, scheme ColorScheme, step int) ([]byte, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: vector step must be > 0, got %d", ErrInvalidParameters, step)
	}
	max := buf.max
	var out bytes.Buffer
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		buf.width, buf.height, buf.width, buf.height)
	fmt.Fprintf(&out, `<rect width="100%%" height="100%%" fill="#000000"/>`+"\n")
	for y := 0; y < buf.height; y += step {
		for x := 0; x < buf.width; x += step {
			d := buf.At(x, y)
			if d <= 0 {
				continue
			}
			c := MapDensity(d, max, scheme)
			fmt.Fprintf(&out, `<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x" fill-opacity="%.4f"/>`+"\n",
				x, y, step, step, c.R, c.G, c.B, float64(d)/float64(max))
		}
	}
	out.WriteString("</svg>\n")
	return out.Bytes(), nil
}

// ExportImage serializes the completed render. quality in [0, 1] trades time
// for fidelity: for raster formats it selects an upscale factor of up to 3x,
// and the upscaled histogram is recomputed by re-running the sampling loop
// at the higher resolution (with the sample count scaled to keep density per
// cell), not by interpolating the existing buffer. For vector formats it
// selects the grid step. Blocks until done; run it on its own goroutine if
// the caller must not wait. Export failures never affect the render job.
func (c *Controller) ExportImage(ctx context.Context, format string, quality float64) ([]byte, error) {
	if math.IsNaN(quality) || quality < 0 || quality > 1 {
		return nil, fmt.Errorf("%w: quality %v outside [0,1]", ErrInvalidParameters, quality)
	}

	c.mu.Lock()
	j := c.cur
	c.mu.Unlock()
	if j == nil {
		return nil, fmt.Errorf("no render job: %w", ErrNotComplete)
	}
	buf, err := j.Buffer()
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatVector, FormatSVG:
		// quality 0 -> step 8, quality 1 -> step 1.
		step := 1 + int(math.Round((1-quality)*7))
		return EncodeVector(buf, j.params.Scheme, step)
	case FormatRaster, FormatPNG, FormatTIFF:
		scale := 1 + int(math.Round(quality*2))
		if scale > 1 {
			p := j.params
			p.Samples *= uint64(scale) * uint64(scale)
			hi, err := renderBuffer(ctx, p, buf.width*scale, buf.height*scale, defaultBatchSize)
			if err != nil {
				return nil, err
			}
			buf = hi
		}
		return EncodeRaster(buf, j.params.Scheme, format)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidParameters, format)
	}
}

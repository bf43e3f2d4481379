package buddha

import (
	"image/color"
	"math"
)

// Per-channel multipliers applied after gamma correction.
var schemeChannels = map[ColorScheme][3]float64{
	SchemeClassic: {1, 1, 1},
	SchemeEmber:   {1, 0.55, 0.18},
	SchemeGlacier: {0.35, 0.65, 1},
}

// MapDensity converts one accumulated density value into a pixel color.
//
// Zero density (and an all-zero buffer) is always pure black, whatever the
// scheme: empty cells are background. Otherwise density is normalized
// against maxDensity, gamma-corrected with exponent 0.5 and scaled by the
// scheme's channel weights. SchemeSpectral skips the gamma path and maps the
// normalized value to a hue rotation instead.
func MapDensity(density, maxDensity float32, scheme ColorScheme) color.RGBA {
	if density <= 0 || maxDensity <= 0 {
		return color.RGBA{A: 0xff}
	}
	n := float64(density) / float64(maxDensity)
	if n > 1 {
		n = 1
	}
	if scheme == SchemeSpectral {
		return spectral(n)
	}
	ch, ok := schemeChannels[scheme]
	if !ok {
		ch = schemeChannels[SchemeClassic]
	}
	v := math.Sqrt(n) * 255 // pow(n, 0.5)
	return color.RGBA{
		R: clamp255(v * ch[0]),
		G: clamp255(v * ch[1]),
		B: clamp255(v * ch[2]),
		A: 0xff,
	}
}

// spectral rotates hue with three sinusoids 120 degrees apart, so nearby
// densities land on nearby hues without the banding a stepped palette shows.
func spectral(n float64) color.RGBA {
	const third = 2 * math.Pi / 3
	a := 2 * math.Pi * n
	return color.RGBA{
		R: clamp255((math.Sin(a)*0.5 + 0.5) * 255),
		G: clamp255((math.Sin(a+third)*0.5 + 0.5) * 255),
		B: clamp255((math.Sin(a+2*third)*0.5 + 0.5) * 255),
		A: 0xff,
	}
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Package buddha implements a Buddhabrot renderer: Monte Carlo sampling of
// the quadratic map z = z*z + c, accumulation of escaping trajectories into a
// density histogram, and conversion of that histogram into raster or vector
// images. Rendering runs on a background goroutine in bounded batches so the
// host stays responsive; see Controller.
package buddha

import (
	"errors"
	"fmt"
)

// Error categories surfaced to the host. Individual failures wrap these with
// detail, so callers can match with errors.Is.
var (
	// ErrInvalidParameters is returned synchronously when render parameters
	// fail validation. No computation is started and no state is mutated.
	ErrInvalidParameters = errors.New("invalid render parameters")

	// ErrUnknownPreset is returned by LoadPreset for an unrecognized name.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrNotComplete is returned when a result (metrics, completed buffer)
	// is requested before any render job has reached Complete.
	ErrNotComplete = errors.New("render job not complete")
)

// ColorScheme selects how accumulated density maps to pixel color.
type ColorScheme uint8

const (
	// SchemeClassic is the monochrome Buddhabrot look: gamma-corrected
	// density on all three channels.
	SchemeClassic ColorScheme = iota

	// SchemeEmber weights channels toward red/orange.
	SchemeEmber

	// SchemeGlacier weights channels toward blue.
	SchemeGlacier

	// SchemeSpectral maps normalized density to a hue rotation built from
	// three phase-shifted sinusoids. Avoids banding on wide density ranges.
	SchemeSpectral
)

var schemeNames = map[ColorScheme]string{
	SchemeClassic:  "classic",
	SchemeEmber:    "ember",
	SchemeGlacier:  "glacier",
	SchemeSpectral: "spectral",
}

func (s ColorScheme) String() string {
	if n, ok := schemeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("ColorScheme(%d)", uint8(s))
}

// ParseColorScheme resolves a scheme name. Unknown names are an
// ErrInvalidParameters error rather than a silent default.
func ParseColorScheme(name string) (ColorScheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color scheme %q", ErrInvalidParameters, name)
}

// Params describes one render. Immutable once a job starts; changing
// anything requires starting a new job.
type Params struct {
	Iterations uint32  // max steps per trajectory before giving up on escape
	Samples    uint64  // total sample points to test
	Zoom       float64 // 1.0 shows the full 4-unit extent of the plane
	CenterX    float64
	CenterY    float64
	Scheme     ColorScheme
}

// Validate reports the first invalid field, wrapped in ErrInvalidParameters.
func (p Params) Validate() error {
	if p.Iterations == 0 {
		return fmt.Errorf("%w: iterations must be > 0", ErrInvalidParameters)
	}
	if p.Samples == 0 {
		return fmt.Errorf("%w: samples must be > 0", ErrInvalidParameters)
	}
	if !(p.Zoom > 0) { // rejects zero, negatives and NaN
		return fmt.Errorf("%w: zoom must be > 0, got %v", ErrInvalidParameters, p.Zoom)
	}
	if _, ok := schemeNames[p.Scheme]; !ok {
		return fmt.Errorf("%w: unknown color scheme %d", ErrInvalidParameters, uint8(p.Scheme))
	}
	return nil
}

// DefaultParams frames the whole silhouette. ResetView restores these
// coordinates.
var DefaultParams = Params{
	Iterations: 1000,
	Samples:    2_000_000,
	Zoom:       1,
	CenterX:    -0.7,
	CenterY:    0,
	Scheme:     SchemeClassic,
}

// Preset is a named, read-only Params snapshot.
type Preset struct {
	Name   string
	Params Params
}

// Classic regions / landmarks of the set, framed for trajectory density
// rather than boundary detail. Escaping trajectories wander far from the
// sample region, so zoomed presets raise both Iterations and Samples to keep
// the visible cells populated.
var presets = []Preset{
	{Name: "classic", Params: DefaultParams},

	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	{Name: "seahorse-valley", Params: Params{
		Iterations: 5000,
		Samples:    8_000_000,
		Zoom:       40,
		CenterX:    -0.75,
		CenterY:    0.1,
		Scheme:     SchemeSpectral,
	}},

	// Elephant Valley – large bulb with trunk-like tendrils
	{Name: "elephant-valley", Params: Params{
		Iterations: 5000,
		Samples:    8_000_000,
		Zoom:       40,
		CenterX:    -1.8,
		CenterY:    -0.06,
		Scheme:     SchemeEmber,
	}},

	// Valley of the Dragon – deep, highly detailed spiral filaments
	{Name: "valley-of-the-dragon", Params: Params{
		Iterations: 10000,
		Samples:    12_000_000,
		Zoom:       80,
		CenterX:    -0.7375,
		CenterY:    0.1825,
		Scheme:     SchemeGlacier,
	}},

	// Nebula – long-orbit ghost structure over the whole silhouette
	{Name: "nebula", Params: Params{
		Iterations: 20000,
		Samples:    6_000_000,
		Zoom:       1,
		CenterX:    -0.7,
		CenterY:    0,
		Scheme:     SchemeSpectral,
	}},
}

// Presets returns the built-in preset table. The returned slice is a copy.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks up a preset's parameters.
func PresetByName(name string) (Params, error) {
	for _, p := range presets {
		if p.Name == name {
			return p.Params, nil
		}
	}
	return Params{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

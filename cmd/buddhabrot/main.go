// buddhabrot renders a Buddhabrot density image to a PNG, TIFF or SVG file.
// Parameters come from flags, an optional YAML config file, or a named
// preset; explicit flags win over the config file, which wins over the
// preset.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	buddha "github.com/marben/buddhabrot"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "buddhabrot",
		Short:        "render a Buddhabrot density image",
		SilenceUsage: true,
		RunE:         run,
	}

	f := cmd.Flags()
	f.String("config", "", "optional YAML config file; explicit flags override it")
	f.Int("width", 1024, "output width in pixels")
	f.Int("height", 1024, "output height in pixels")
	f.String("preset", "", "start from a named preset (see --list-presets)")
	f.Bool("list-presets", false, "list built-in presets and exit")
	f.Uint32("iterations", buddha.DefaultParams.Iterations, "max steps per trajectory")
	f.Uint64("samples", buddha.DefaultParams.Samples, "total sample points to test")
	f.Float64("zoom", buddha.DefaultParams.Zoom, "zoom factor; 1 frames the full silhouette")
	f.Float64("center-x", buddha.DefaultParams.CenterX, "view center, real axis")
	f.Float64("center-y", buddha.DefaultParams.CenterY, "view center, imaginary axis")
	f.String("scheme", buddha.DefaultParams.Scheme.String(), "color scheme: classic, ember, glacier or spectral")
	f.String("out", "buddhabrot.png", "output file")
	f.String("format", buddha.FormatPNG, "export format: png, tiff or svg")
	f.Float64("quality", 0, "export quality in [0,1]; raster formats re-render upscaled above 0")
	f.Bool("verbose", false, "log job lifecycle and batch events")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()

	if list, _ := f.GetBool("list-presets"); list {
		for _, p := range buddha.Presets() {
			fmt.Printf("%-22s iterations=%-6d samples=%-9d zoom=%-5g center=(%g,%g) scheme=%s\n",
				p.Name, p.Params.Iterations, p.Params.Samples, p.Params.Zoom,
				p.Params.CenterX, p.Params.CenterY, p.Params.Scheme)
		}
		return nil
	}

	if verbose, _ := f.GetBool("verbose"); verbose {
		buddha.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	v := viper.New()
	if err := v.BindPFlags(f); err != nil {
		return err
	}
	if cfg, _ := f.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		log.Printf("using config file %q", v.ConfigFileUsed())
	}

	params := buddha.DefaultParams
	if preset := v.GetString("preset"); preset != "" {
		var err error
		if params, err = buddha.PresetByName(preset); err != nil {
			return err
		}
	}

	// A field set in the config file or on the command line overrides the
	// preset; untouched fields keep the preset's values.
	set := func(key string) bool { return f.Changed(key) || v.InConfig(key) }
	if set("iterations") {
		params.Iterations = v.GetUint32("iterations")
	}
	if set("samples") {
		params.Samples = v.GetUint64("samples")
	}
	if set("zoom") {
		params.Zoom = v.GetFloat64("zoom")
	}
	if set("center-x") {
		params.CenterX = v.GetFloat64("center-x")
	}
	if set("center-y") {
		params.CenterY = v.GetFloat64("center-y")
	}
	if set("scheme") {
		scheme, err := buddha.ParseColorScheme(v.GetString("scheme"))
		if err != nil {
			return err
		}
		params.Scheme = scheme
	}

	ctrl, err := buddha.NewController(v.GetInt("width"), v.GetInt("height"))
	if err != nil {
		return err
	}
	if err := ctrl.SetParameters(params); err != nil {
		return err
	}

	log.Printf("rendering %dx%d, %d samples, %d iterations, scheme %s",
		v.GetInt("width"), v.GetInt("height"), params.Samples, params.Iterations, params.Scheme)

	lastTenth := -1
	job, err := ctrl.Render(
		func(progress float64, maxDensity float32) {
			if tenth := int(progress * 10); tenth > lastTenth {
				lastTenth = tenth
				log.Printf("progress: %3.0f%%  max density: %.0f", progress*100, maxDensity)
			}
		},
		nil, nil,
	)
	if err != nil {
		return err
	}

	<-job.Done()
	if err := job.Err(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	m, err := ctrl.Metrics()
	if err != nil {
		return err
	}
	log.Printf("rendered in %s (%.0f samples/s, buffer %d bytes)",
		m.Elapsed.Round(time.Millisecond), m.SamplesPerSecond, m.MemoryBytes)

	format := v.GetString("format")
	data, err := ctrl.ExportImage(context.Background(), format, v.GetFloat64("quality"))
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	out := v.GetString("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Printf("fully rendered file saved to %q", out)
	return nil
}

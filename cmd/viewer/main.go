// viewer is an interactive Buddhabrot explorer. Every view change restarts
// the render job; the previous job is superseded and its stragglers are
// discarded, so the window always shows the histogram of the current view
// filling in.
//
// Controls:
//
//	left click   recenter on the clicked point
//	+ / -        zoom in / out
//	r            reset the view
//	s            save the current view as PNG
//	esc          quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	buddha "github.com/marben/buddhabrot"
)

const (
	screenWidth  = 800
	screenHeight = 800
	zoomStep     = 1.5
	previewTicks = 10 // refresh the preview every N update ticks
)

type Game struct {
	ctrl  *buddha.Controller
	job   *buddha.Job
	frame *ebiten.Image
	tick  int
}

func NewGame(ctrl *buddha.Controller) *Game {
	g := &Game{ctrl: ctrl}
	g.restart()
	return g
}

// restart supersedes the current job with one for the pending view.
func (g *Game) restart() {
	job, err := g.ctrl.Render(nil, nil, func(err error) {
		log.Printf("render failed: %v", err)
	})
	if err != nil {
		log.Printf("render: %v", err)
		return
	}
	g.job = job
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		if err := g.ctrl.ZoomIn(zoomStep); err == nil {
			g.restart()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		if err := g.ctrl.ZoomOut(zoomStep); err == nil {
			g.restart()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.ctrl.ResetView()
		g.restart()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		go g.save()
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		x, y := ebiten.CursorPosition()
		g.ctrl.PanTo(x, y)
		g.restart()
	}

	g.tick++
	if g.tick%previewTicks == 0 {
		if img, err := g.ctrl.Preview(); err == nil {
			if g.frame == nil {
				g.frame = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
			}
			g.frame.WritePixels(img.Pix)
		}
	}
	return nil
}

// save exports the completed buffer; it runs off the update loop because
// exports block.
func (g *Game) save() {
	data, err := g.ctrl.ExportImage(context.Background(), buddha.FormatPNG, 0)
	if err != nil {
		log.Printf("export: %v", err)
		return
	}
	name := fmt.Sprintf("buddhabrot-%d.png", time.Now().Unix())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		log.Printf("save: %v", err)
		return
	}
	log.Printf("fully rendered file saved to %q", name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}
	if g.job != nil {
		p := g.ctrl.Parameters()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s %3.0f%%  zoom %.3g  center (%.6g, %.6g)",
			g.job.Status(), g.job.Progress()*100, p.Zoom, p.CenterX, p.CenterY))
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	preset := flag.String("preset", "classic", "initial preset")
	flag.Parse()

	ctrl, err := buddha.NewController(screenWidth, screenHeight)
	if err != nil {
		return err
	}
	if err := ctrl.LoadPreset(*preset); err != nil {
		return err
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("buddhabrot")
	return ebiten.RunGame(NewGame(ctrl))
}

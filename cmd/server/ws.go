package main

import (
	"bytes"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"

	buddha "github.com/marben/buddhabrot"
)

// previewInterval throttles progressive frames; the final frame is always
// sent.
const previewInterval = 200 * time.Millisecond

// websocketHandler upgrades the connection and runs one render job for it.
// Preview frames are pushed from the job's progress callback; closing the
// page cancels the job.
func websocketHandler(width, height int, params buddha.Params) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		ctx := r.Context()
		log.Printf("got connection from: %s", r.RemoteAddr)

		ctrl, err := buddha.NewController(width, height)
		if err != nil {
			log.Printf("err: new controller: %v", err)
			return
		}
		if err := ctrl.SetParameters(params); err != nil {
			log.Printf("err: set parameters: %v", err)
			return
		}

		renderDone := make(chan error, 1)
		var lastFrame time.Time
		job, err := ctrl.Render(
			func(progress float64, _ float32) {
				if progress < 1 && time.Since(lastFrame) < previewInterval {
					return
				}
				lastFrame = time.Now()
				frame, err := ctrl.Preview()
				if err != nil {
					return
				}
				var buf bytes.Buffer
				if err := png.Encode(&buf, frame); err != nil {
					return
				}
				// A write failure means the client is gone; the request
				// context will cancel the job shortly.
				_ = c.Write(ctx, websocket.MessageBinary, buf.Bytes())
			},
			func(final *buddha.Buffer) {
				data, err := buddha.EncodeRaster(final, params.Scheme, buddha.FormatPNG)
				if err == nil {
					_ = c.Write(ctx, websocket.MessageBinary, data)
				}
				renderDone <- err
			},
			func(err error) { renderDone <- err },
		)
		if err != nil {
			log.Printf("err: render: %v", err)
			return
		}

		select {
		case <-ctx.Done():
			job.Cancel()
			log.Printf("connection %s closed, job %d cancelled", r.RemoteAddr, job.ID())
		case err := <-renderDone:
			if err != nil {
				log.Printf("err: job %d: %v", job.ID(), err)
				c.Close(websocket.StatusInternalError, "render failed")
				return
			}
			m, _ := ctrl.Metrics()
			log.Printf("job %d complete in %s (%.0f samples/s)", job.ID(), m.Elapsed.Round(time.Millisecond), m.SamplesPerSecond)
			c.Close(websocket.StatusNormalClosure, "render complete")
		}
	}
}

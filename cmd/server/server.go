// server streams a live Buddhabrot render to the browser: each websocket
// connection starts its own render job and receives progressive PNG frames
// as the histogram fills in, then the final frame when the job completes.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	buddha "github.com/marben/buddhabrot"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	port := flag.Int("port", 8080, "http listen port")
	width := flag.Int("width", 800, "render width in pixels")
	height := flag.Int("height", 800, "render height in pixels")
	preset := flag.String("preset", "classic", "preset rendered for each connection")
	flag.Parse()

	params, err := buddha.PresetByName(*preset)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(*width, *height, params))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, indexHTML, *width, *height)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost:%d", *port)
	return srv.ListenAndServe()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>buddhabrot</title><style>body{background:#000;margin:0}img{display:block;margin:auto}</style></head>
<body>
<img id="frame" width="%d" height="%d">
<script>
const img = document.getElementById("frame");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = (e) => {
	const url = URL.createObjectURL(e.data);
	img.onload = () => URL.revokeObjectURL(url);
	img.src = url;
};
</script>
</body>
</html>
`

// Command oxy-sphere opens an equirectangular photo in an interactive sphere viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-sphere/config"
	"github.com/Carmen-Shannon/oxy-sphere/engine"
	"github.com/Carmen-Shannon/oxy-sphere/engine/bridge"
	"github.com/Carmen-Shannon/oxy-sphere/engine/loader"
	"github.com/Carmen-Shannon/oxy-sphere/engine/panel"
	"github.com/Carmen-Shannon/oxy-sphere/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sphere/engine/window"
)

const thumbnailWidth = 512

func main() {
	var (
		configPath string
		schemaOut  string
		thumbOut   string
		flags      config.Flags
	)
	flag.StringVar(&configPath, "config", "", "path to a sphere config JSON file")
	flag.StringVar(&flags.Photo, "photo", "", "path or http(s) URL of the panorama (overrides config)")
	flag.BoolVar(&flags.AutoRotate, "auto-rotate", false, "rotate until the first interaction")
	flag.IntVar(&flags.Width, "width", 0, "window width in pixels")
	flag.IntVar(&flags.Height, "height", 0, "window height in pixels")
	flag.BoolVar(&flags.Profile, "profile", false, "log frame statistics")
	flag.StringVar(&flags.Bridge, "bridge", "", "listen address of the websocket event bridge, e.g. :8090")
	flag.StringVar(&schemaOut, "schema", "", "write the config JSON schema to this path and exit")
	flag.StringVar(&thumbOut, "thumbnail", "", "write a WebP thumbnail of the photo to this path and exit")
	flag.Parse()

	if schemaOut != "" {
		if err := config.WriteSchema(schemaOut); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var cfg config.SphereConfig
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Printf("[Main] %v, using defaults", err)
		} else {
			cfg = loaded
		}
	}
	cfg.Resolve(flags)

	if cfg.Photo == "" {
		fmt.Fprintln(os.Stderr, "a photo is required: pass -photo or set \"photo\" in -config")
		os.Exit(1)
	}

	ld := loader.NewLoader()
	defer ld.Close()

	if thumbOut != "" {
		if err := writeThumbnail(ld, cfg.Photo, thumbOut); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write thumbnail: %v\n", err)
			os.Exit(1)
		}
		return
	}

	run(cfg, ld)
}

func writeThumbnail(ld loader.Loader, photo, out string) error {
	res := ld.LoadSync(photo)
	if res.Err != nil {
		return res.Err
	}
	return loader.WriteThumbnail(out, res.Image, thumbnailWidth)
}

func run(cfg config.SphereConfig, ld loader.Loader) {
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)

	r := renderer.NewRenderer(win)
	defer r.Release()

	maxTex := r.MaxTextureDimension()
	if cfg.MaxTextureSize > 0 && cfg.MaxTextureSize < maxTex {
		maxTex = cfg.MaxTextureSize
	}
	ld.SetMaxTextureSize(maxTex)

	p := panel.NewPanel(cfg.PanelConfig(), r, win, ld, panel.WithMarkerRadius(cfg.MarkerRadius))
	p.OnFeatureActivated(func(ev panel.FeatureEvent) {
		win.SetTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, ev.Feature.Name))
	})

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithProfiling(cfg.Profile),
		engine.WithTickRate(cfg.FrameLimit),
		engine.WithPanel(0, p),
	)

	if cfg.BridgeAddr != "" {
		hub := bridge.NewHub(nil)
		hub.Attach(p)
		srv := serveBridge(cfg.BridgeAddr, hub)
		defer stopBridge(srv, hub, 2*time.Second)

		eng.SetTickCallback(func(float32) {
			hub.Drain(func(id int) {
				if !p.ActivateFeature(id) {
					log.Printf("[Main] bridge asked for feature %d, which is not visible", id)
				}
			})
		})
	}

	eng.Run()
}

// stopBridge disconnects bridge clients and shuts the HTTP server down, waiting at most timeout
// for in-flight requests.
func stopBridge(srv *http.Server, hub *bridge.Hub, timeout time.Duration) error {
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Main] event bridge shutdown: %v", err)
		return err
	}
	return nil
}

func serveBridge(addr string, hub *bridge.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("[Main] event bridge listening on %s/ws", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Main] event bridge stopped: %v", err)
		}
	}()
	return srv
}

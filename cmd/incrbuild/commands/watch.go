package commands

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/incrbuild/internal/config"
	"git.home.luguber.info/inful/incrbuild/internal/metrics"
)

// debounceWindow coalesces the burst of fsnotify events editors produce on
// a single save into one build cycle.
const debounceWindow = 200 * time.Millisecond

// WatchCmd implements the 'watch' command: serial build cycles driven by
// file-system events. The project is reset and reused across cycles; an
// unchanged input set (touch without modification, editor re-save) is
// served from the compilation cache.
type WatchCmd struct {
	MetricsAddr string `help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prj := NewProject(cfg)
	if w.MetricsAddr != "" {
		registry := prom.NewRegistry()
		prj = prj.WithRecorder(metrics.NewPrometheusRecorder(registry))
		go func() {
			slog.Info("Serving metrics", "addr", w.MetricsAddr)
			if err := http.ListenAndServe(w.MetricsAddr, metrics.HTTPHandler(registry)); err != nil {
				slog.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, cfg.Source.Dir); err != nil {
		return err
	}

	sink, declSink := Sinks(cfg)
	runCycle := func() {
		prj.Reset()
		files, err := CollectFiles(cfg)
		if err != nil {
			slog.Error("Collecting sources failed", "error", err)
			return
		}
		for _, f := range files {
			prj.AddFile(f)
		}
		if err := prj.Compile(sink, declSink); err != nil {
			slog.Error("Build cycle failed", "error", err)
		}
	}

	// Initial cycle before waiting for events.
	runCycle()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)
	slog.Info("Watching for changes", "dir", cfg.Source.Dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watches.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		case <-rebuild:
			runCycle()
		case sig := <-stop:
			slog.Info("Shutting down", "signal", sig.String())
			return nil
		}
	}
}

// watchRecursive adds dir and every subdirectory to the watcher.
func watchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sciknoworg/OntoLearner-sub000/catalog"
	"github.com/sciknoworg/OntoLearner-sub000/loader"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		dir         string
		id          string
		outDir      string
		debounce    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-extract ontologies in a directory whenever they change",
		Long: `Watch extracts every ontology file under a directory into
<out>/<name>/ once at start, then repeats the extraction for each file that
settles after a change. With --metrics-addr the extraction metrics are
served at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := loader.NewWatcher(dir, debounce, nil, app.logger)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Stop()

			g, ctx := errgroup.WithContext(ctx)
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			if metricsAddr != "" {
				g.Go(func() error { return app.serveMetrics(ctx, metricsAddr) })
			}
			extractPath := func(path string) error {
				entry, err := resolveEntry(id, path, "")
				if err != nil {
					return err
				}
				target := filepath.Join(outDir, strings.ToLower(entry.Descriptor.ID))
				if err := app.extractOne(ctx, entry, path, target, catalog.ModeReinforce); err != nil {
					app.logger.Error("Extraction failed", "path", path, "error", err)
				}
				return nil
			}
			g.Go(func() error {
				for _, path := range w.Files() {
					if err := extractPath(path); err != nil {
						return err
					}
				}
				for ev := range w.Events() {
					if ev.Op == loader.WatchOpDelete {
						app.logger.Info("Ontology removed", "path", ev.Path)
						continue
					}
					if err := extractPath(ev.Path); err != nil {
						return err
					}
				}
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			app.logger.Info("Watcher stopped", "dropped_events", w.Dropped())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to watch")
	cmd.Flags().StringVar(&id, "id", "", "Catalogue id whose hooks apply to every file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "bundles", "Bundle output root")
	cmd.Flags().DurationVar(&debounce, "debounce", loader.DefaultDebounce, "Settle time before re-extracting")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// serveMetrics exposes the registry until ctx is done.
func (a *App) serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

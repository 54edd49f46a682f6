package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"studentperf/artifact"
	"studentperf/db"
	qhttp "studentperf/http"
	"studentperf/inference"
	"studentperf/ml"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.config.Http.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.config
	log := a.logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 1. Artifact. A missing or broken artifact is not fatal: the page
	// explains it instead of showing the form.
	store := artifact.NewStore(cfg.Artifact.Path, ml.LoadOptions{ONNXLibraryPath: cfg.Artifact.ONNXLibraryPath}, log)
	defer func() {
		if bundle, err := store.Current(); err == nil {
			bundle.Close()
		}
	}()
	watchDone := make(chan struct{})
	if cfg.Artifact.Watch {
		go func() {
			defer close(watchDone)
			if err := store.Watch(ctx); err != nil {
				log.Error("artifact watcher stopped", zap.Error(err))
			}
		}()
	} else {
		close(watchDone)
	}

	// 2. Prediction history, off unless asked for
	opts := []inference.Option{inference.WithLogger(log)}
	if cfg.History.Enabled {
		history, err := db.OpenPredictionHistory(cfg.History.Path)
		if err != nil {
			return err
		}
		defer history.Close()
		opts = append(opts, inference.WithHistory(history))
		log.Info("prediction history enabled", zap.String("path", cfg.History.Path))
	}

	adapter, err := inference.New(cfg.Cache.Size, opts...)
	if err != nil {
		return err
	}
	api, err := qhttp.NewAPI(store, adapter, log)
	if err != nil {
		return err
	}

	// 3. HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:         cfg.Http.Port,
		Timeout:      cfg.Http.Timeout,
		MaxBodyBytes: cfg.Http.MaxBodyBytes,
	}, api, log)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	// 4. Graceful shutdown
	select {
	case err := <-serveErr:
		cancel()
		<-watchDone
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	err = server.Stop()
	cancel()
	<-watchDone
	return err
}

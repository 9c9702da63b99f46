package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"llmcord/internal/bot"
	"llmcord/internal/config"
	"llmcord/internal/generation"
	"llmcord/internal/httpapi"
	"llmcord/internal/registry"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr        string
	corsOrigins string
}

func newServeCmd(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model and serve commands over HTTP",
		Long: "Load the model and serve commands over HTTP.\n\n" +
			"A default config file is written when none exists.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", envStr("LLMCORD_ADDR", ""), "HTTP listen address, overrides server.addr; env LLMCORD_ADDR")
	cmd.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	return cmd
}

func runServe(ctx context.Context, g *globalOptions, opts *serveOptions) error {
	log := g.log
	cfg, created, err := config.LoadOrCreate(g.configPath)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("path", g.configPath).Msg("wrote default config")
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if origins := splitCSV(opts.corsOrigins); len(origins) > 0 {
		cfg.Server.CORSEnabled = true
		cfg.Server.CORSAllowedOrigins = origins
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	modelPath, err := registry.Resolve(cfg.Model.Path)
	if err != nil {
		return err
	}
	lc := generation.LlamaConfig{
		ModelPath:   modelPath,
		ContextSize: cfg.Model.ContextTokenLength,
		Threads:     cfg.Inference.ThreadCount,
		BatchSize:   cfg.Inference.BatchSize,
		PreferMMap:  cfg.Model.PreferMMap,
		UseGPU:      cfg.Model.UseGPU,
	}
	if cfg.Model.GPULayers != nil {
		lc.GPULayers = *cfg.Model.GPULayers
	}
	log.Info().Str("model", modelPath).Int("context", lc.ContextSize).Bool("gpu", lc.UseGPU).Msg("loading model")
	adapter, err := generation.NewLlamaAdapter(lc)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if c, ok := adapter.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	mgr := generation.NewWithConfig(generation.ManagerConfig{
		Adapter: adapter,
		Threads: cfg.Inference.ThreadCount,
		Logger:  &log,
	})
	handler := bot.New(cfg, mgr, log)

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.Server.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.Server.CORSEnabled, cfg.Server.CORSAllowedOrigins, cfg.Server.CORSAllowedMethods, cfg.Server.CORSAllowedHeaders)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewMux(handler, mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return mgr.Run(egCtx)
	})
	eg.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Int("commands", len(handler.Commands())).Msg("llmcord listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		_ = mgr.Close()
		return err
	})
	return eg.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/sustainment-impact/internal/logging"
	"github.com/iwvelando/sustainment-impact/internal/server"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var (
	serverConfigLocation string
	envFileLocation      string
	addressFlag          string
	maxUploadSizeFlag    string
	serveLogLevel        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard and model API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverConfigLocation, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().StringVar(&envFileLocation, "env-file", constants.DefaultEnvFile, "dotenv file applied before SUSTAINMENT_IMPACT_* overrides")
	serveCmd.Flags().StringVar(&addressFlag, "address", "", "listen address override")
	serveCmd.Flags().StringVar(&maxUploadSizeFlag, "max-upload-size", "", "configuration upload limit override (e.g. 512K, 2M)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func serve() error {
	cfg, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		logging.Fallback("main.serve", fmt.Sprintf("failed to load server configuration at %s", serverConfigLocation), err)
		return err
	}
	if err := cfg.ApplyEnvironment(envFileLocation); err != nil {
		logging.Fallback("main.serve", "failed to apply environment overrides", err)
		return err
	}
	if err := applyServeFlags(cfg, addressFlag, maxUploadSizeFlag); err != nil {
		logging.Fallback("main.serve", "invalid command line override", err)
		return err
	}

	logger, err := logging.New(cfg.Logging, serveLogLevel)
	if err != nil {
		logging.Fallback("main.serve", "failed to initialize logger", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), version, cfg.AllowedOrigins...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", zap.String("op", "main.serve"))
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// applyServeFlags layers command line overrides on top of the file and
// environment configuration.
func applyServeFlags(cfg *server.Config, address, maxUploadSize string) error {
	if address != "" {
		cfg.Address = address
	}
	if maxUploadSize != "" {
		size, err := server.ParseSize(maxUploadSize)
		if err != nil {
			return fmt.Errorf("invalid --max-upload-size %q: %w", maxUploadSize, err)
		}
		cfg.SetUploadSizeBytes(size)
	}
	return nil
}

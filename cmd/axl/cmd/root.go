/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/axlframe/pkg/collection"
	"github.com/ssargent/axlframe/pkg/config"
	"github.com/ssargent/axlframe/pkg/logging"
	"github.com/ssargent/axlframe/pkg/metrics"
)

type appKey struct{}

// app carries the dependencies built from configuration for one invocation.
type app struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	server  *http.Server
}

func (a *app) builder() *collection.Builder {
	return collection.NewBuilder(collection.Config{
		FrameSize: a.config.Decode.FrameSize,
		Workers:   a.config.Decode.Workers,
		Logf:      a.logger.Logf(logging.LevelInfo),
		Observer:  a.metrics,
	})
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

// NewRootCmd builds the axl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "axl",
		Short: "axl - accelerometer packet collection tools",
		Long: `axl decodes collections of fixed-size accelerometer packet frames written
by the logger. Damaged frames are skipped and reported; every other frame
is recovered.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  setupApp,
		PersistentPostRunE: teardownApp,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Int("frame-size", 0, "Frame slot size in bytes")
	flags.Int("workers", 0, "Number of concurrent frame decoders")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(
		newDecodeCmd(),
		newGenerateCmd(),
		newImportCmd(),
		newArchiveCmd(),
		newServeCmd(),
		newInitCmd(),
	)
	return rootCmd
}

func setupApp(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	cfg := config.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("frame-size") {
		cfg.Decode.FrameSize, _ = flags.GetInt("frame-size")
	}
	if flags.Changed("workers") {
		cfg.Decode.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	a := &app{
		config:  cfg,
		logger:  logging.New(cmd.ErrOrStderr(), level),
		metrics: metrics.NewMetrics(),
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		a.server = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Errorf("metrics server: %v", err)
			}
		}()
		a.logger.Infof("serving metrics on %s/metrics", cfg.Metrics.Addr)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, a))
	return nil
}

func teardownApp(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil || a.server == nil {
		return nil
	}
	return a.server.Close()
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

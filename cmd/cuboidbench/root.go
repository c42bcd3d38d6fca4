package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	// Backends register themselves with the device registry.
	_ "github.com/cwbudde/cuboidbench/internal/device/host"
	_ "github.com/cwbudde/cuboidbench/internal/device/occa"
	_ "github.com/cwbudde/cuboidbench/internal/device/opencl"
)

var (
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cuboidbench",
	Short: "Cuboid surface-area benchmark for accelerators",
	Long: `Cuboidbench generates random cuboid edge lengths, computes the surface
areas on an accelerator and sequentially on the host, and reports the
timings of both paths.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/cuboidbench/internal/bench"
	"github.com/cwbudde/cuboidbench/internal/config"
	"github.com/cwbudde/cuboidbench/internal/device"
)

var (
	configPath string
	preset     string
	backend    string
	deviceType string
	elements   int
	minValue   int32
	maxValue   int32
	seed       int64
	samples    int
	repeat     int
	localSize  int
	chart      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the surface-area benchmark",
	Long: `Generates random edge lengths, computes cuboid surface areas on the
selected device and sequentially on the host, and prints timings,
speedup and a sample of the results.`,
	RunE: runBenchmark,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	runCmd.Flags().StringVar(&preset, "preset", "", "Named preset (full, smoke)")
	runCmd.Flags().StringVar(&backend, "backend", "auto", "Backend: auto, opencl, occa, host")
	runCmd.Flags().StringVar(&deviceType, "device-type", "gpu", "Preferred device class: gpu, cpu, accelerator, any")
	runCmd.Flags().IntVar(&elements, "n", config.DefaultLength, "Number of cuboids")
	runCmd.Flags().Int32Var(&minValue, "min", 1, "Smallest edge length")
	runCmd.Flags().Int32Var(&maxValue, "max", 9, "Largest edge length")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	runCmd.Flags().IntVar(&samples, "samples", 100, "Result rows to print")
	runCmd.Flags().IntVar(&repeat, "repeat", 1, "Kernel launches to time")
	runCmd.Flags().IntVar(&localSize, "local-size", 0, "Work-group size (0 lets the runtime choose)")
	runCmd.Flags().BoolVar(&chart, "chart", false, "Chart per-launch timings when repeat > 1")

	rootCmd.AddCommand(runCmd)
}

// loadRunConfig layers file or preset under the defaults, then lets
// explicitly set flags override either.
func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error

	switch {
	case configPath != "" && preset != "":
		return cfg, fmt.Errorf("--config and --preset are mutually exclusive")
	case configPath != "":
		cfg, err = config.Load(configPath)
	case preset != "":
		cfg, err = config.Preset(preset)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("device-type") {
		cfg.DeviceType = deviceType
	}
	if flags.Changed("n") {
		cfg.N = elements
	}
	if flags.Changed("min") {
		cfg.MinValue = minValue
	}
	if flags.Changed("max") {
		cfg.MaxValue = maxValue
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("repeat") {
		cfg.Repeat = repeat
	}
	if flags.Changed("local-size") {
		cfg.LocalSize = localSize
	}
	return cfg, cfg.Validate()
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	enum, err := device.NewEnumerator(cfg.Backend)
	if err != nil {
		return err
	}

	preferred, err := device.ParseDeviceType(cfg.DeviceType)
	if err != nil {
		return err
	}

	slog.Info("starting benchmark", "n", cfg.N, "backend", cfg.Backend, "deviceType", cfg.DeviceType, "repeat", cfg.Repeat)

	result, err := bench.Run(enum, bench.Config{
		N:         cfg.N,
		MinValue:  cfg.MinValue,
		MaxValue:  cfg.MaxValue,
		Seed:      cfg.Seed,
		Repeat:    cfg.Repeat,
		LocalSize: cfg.LocalSize,
		Preferred: preferred,
	})
	if err != nil {
		return err
	}

	return bench.WriteReport(os.Stdout, result, bench.ReportOptions{
		Samples: cfg.Samples,
		Chart:   chart,
	})
}

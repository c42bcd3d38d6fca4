package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/cuboidbench/internal/bench"
	"github.com/cwbudde/cuboidbench/internal/device"
	"github.com/cwbudde/cuboidbench/internal/tune"
)

var (
	tuneBackend    string
	tuneDeviceType string
	tuneElements   int
	tuneMaxExp     int
	tuneIters      int
	tuneSeed       int64
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Search for the fastest work-group size",
	Long: `Times the surface-area kernel at power-of-two work-group sizes and
reports the size with the lowest launch time on the selected device.`,
	RunE: runTune,
}

func init() {
	tuneCmd.Flags().StringVar(&tuneBackend, "backend", "auto", "Backend: auto, opencl, occa, host")
	tuneCmd.Flags().StringVar(&tuneDeviceType, "device-type", "gpu", "Preferred device class: gpu, cpu, accelerator, any")
	tuneCmd.Flags().IntVar(&tuneElements, "n", 1<<22, "Number of cuboids per measurement")
	tuneCmd.Flags().IntVar(&tuneMaxExp, "max-exp", 10, "Largest size tried is 2^max-exp")
	tuneCmd.Flags().IntVar(&tuneIters, "iters", 12, "Search iterations")
	tuneCmd.Flags().Int64Var(&tuneSeed, "seed", 42, "Search seed")

	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	enum, err := device.NewEnumerator(tuneBackend)
	if err != nil {
		return err
	}

	preferred, err := device.ParseDeviceType(tuneDeviceType)
	if err != nil {
		return err
	}

	a, b, c, err := bench.GenerateInputs(tuneElements, 1, 9, tuneSeed)
	if err != nil {
		return err
	}

	slog.Info("tuning work-group size", "n", tuneElements, "maxExp", tuneMaxExp)

	objective := func(localSize int) (time.Duration, error) {
		cfg := bench.Config{
			N:         tuneElements,
			MinValue:  1,
			MaxValue:  9,
			Seed:      tuneSeed,
			Repeat:    1,
			LocalSize: localSize,
			Preferred: preferred,
		}
		_, _, launches, err := bench.Dispatch(enum, cfg, a, b, c)
		if err != nil {
			return 0, err
		}
		return launches[0], nil
	}

	opts := tune.DefaultOptions()
	opts.MaxExp = tuneMaxExp
	opts.Iters = tuneIters
	opts.Seed = tuneSeed

	result, err := tune.Tune(objective, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Best work-group size: %d (%f seconds per launch)\n",
		result.LocalSize, result.Elapsed.Seconds())
	return nil
}

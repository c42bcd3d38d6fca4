package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/cuboidbench/internal/device"
)

var devicesBackend string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List compute platforms and devices",
	RunE:  listDevices,
}

func init() {
	devicesCmd.Flags().StringVar(&devicesBackend, "backend", "auto", "Backend: auto, opencl, occa, host")
	rootCmd.AddCommand(devicesCmd)
}

func listDevices(cmd *cobra.Command, args []string) error {
	enum, err := device.NewEnumerator(devicesBackend)
	if err != nil {
		return err
	}

	platforms, err := enum.Platforms()
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		fmt.Println("No compute platforms found.")
		return nil
	}

	for i, platform := range platforms {
		pi := platform.Info()
		fmt.Printf("Platform %d: %s (%s, %s)\n", i, pi.Name, pi.Vendor, pi.Version)

		devices, err := platform.Devices()
		if err != nil {
			fmt.Printf("  devices unavailable: %v\n", err)
			continue
		}
		for j, dev := range devices {
			di := dev.Info()
			fmt.Printf("  Device %d: %s [%s] %d compute units (%s, %s)\n",
				j, di.Name, di.Type, di.MaxComputeUnits, di.Vendor, di.Version)
		}
	}
	return nil
}

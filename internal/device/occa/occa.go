// Package occa exposes OCCA-managed devices through the device
// abstraction. OCCA picks a runtime (CUDA, OpenCL, OpenMP or Serial)
// at probe time, so a single build can reach several accelerator
// stacks. Enabled with the 'occa' build tag.
package occa

import (
	"runtime"

	"github.com/cwbudde/cuboidbench/internal/device"
)

func init() {
	device.Register(device.BackendOCCA, NewEnumerator)
}

// modeComputeUnits reports the compute-unit count for an OCCA mode's
// device class. CPU modes run on the host cores. OCCA does not expose
// the accelerator's multiprocessor count, so GPU modes report one unit
// rather than zero.
func modeComputeUnits(class device.DeviceType) uint32 {
	if class == device.DeviceTypeCPU {
		return uint32(runtime.NumCPU())
	}
	return 1
}

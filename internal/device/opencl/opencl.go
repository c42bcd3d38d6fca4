// Package opencl implements the compute pipeline over the OpenCL runtime
// via cgo. It is compiled only with the gpu build tag; other builds get a
// stub that reports the backend as unavailable.
package opencl

import (
	"github.com/cwbudde/cuboidbench/internal/device"
)

func init() {
	device.Register(device.BackendOpenCL, NewEnumerator)
}

//go:build !gpu

package opencl

import (
	"fmt"

	"github.com/cwbudde/cuboidbench/internal/device"
)

// NewEnumerator returns an error when OpenCL support is not compiled in.
func NewEnumerator() (device.Enumerator, error) {
	return nil, fmt.Errorf("%w: opencl support requires building with '-tags gpu'", device.ErrBackendUnavailable)
}

//go:build !occa

package occa

import (
	"fmt"

	"github.com/cwbudde/cuboidbench/internal/device"
)

// NewEnumerator returns an error when OCCA support is not compiled in.
func NewEnumerator() (device.Enumerator, error) {
	return nil, fmt.Errorf("%w: occa support requires building with '-tags occa'", device.ErrBackendUnavailable)
}

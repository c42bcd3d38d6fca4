package bench

import (
	"fmt"

	"github.com/cwbudde/cuboidbench/internal/device"
)

// EntryPoint is the kernel function each dialect's source defines.
const EntryPoint = "cuboid_area"

// openCLSource computes one surface area per work item. Consumed by
// the OpenCL backend and lint-checked by the host backend.
const openCLSource = `
__kernel void cuboid_area(__global const int *a,
                          __global const int *b,
                          __global const int *c,
                          __global int *result) {
    int i = get_global_id(0);
    result[i] = 2 * (a[i] * b[i] + b[i] * c[i] + a[i] * c[i]);
}
`

// oklSource is the OKL rendition for OCCA devices. The leading scalar
// carries the element count because OKL loop bounds must be explicit.
const oklSource = `
@kernel void cuboid_area(const int n,
                         const int *a,
                         const int *b,
                         const int *c,
                         int *result) {
    for (int i = 0; i < n; ++i; @tile(256, @outer, @inner)) {
        if (i < n) {
            result[i] = 2 * (a[i] * b[i] + b[i] * c[i] + a[i] * c[i]);
        }
    }
}
`

// KernelSource returns the surface-area kernel in the dialect the
// selected device compiles.
func KernelSource(d device.Dialect) (string, error) {
	switch d {
	case device.DialectOpenCL:
		return openCLSource, nil
	case device.DialectOKL:
		return oklSource, nil
	default:
		return "", fmt.Errorf("bench: no kernel source for dialect %q", d)
	}
}

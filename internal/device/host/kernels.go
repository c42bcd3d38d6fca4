package host

import (
	"strings"
	"sync"
)

// KernelFunc is the host-side body of a kernel entry point. args carries
// the device-side arrays in binding order; the body computes indices in
// [lo, hi).
type KernelFunc func(args [][]int32, lo, hi int)

var (
	kernelsMu sync.RWMutex
	kernels   = map[string]KernelFunc{
		"cuboid_area": cuboidArea,
	}
)

// RegisterKernel installs the host body for a kernel entry point. Tests
// use it to stand in for compiled kernels.
func RegisterKernel(entry string, fn KernelFunc) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	kernels[entry] = fn
}

func lookupKernel(entry string) (KernelFunc, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	fn, ok := kernels[entry]
	return fn, ok
}

func cuboidArea(args [][]int32, lo, hi int) {
	if len(args) < 4 {
		return
	}
	a, b, c, result := args[0], args[1], args[2], args[3]
	for i := lo; i < hi; i++ {
		result[i] = 2 * (a[i]*b[i] + b[i]*c[i] + a[i]*c[i])
	}
}

// lintSource performs the diagnostics the in-process compiler can offer:
// bracket balance and the presence of a kernel declaration.
func lintSource(source string) []string {
	var diags []string
	if strings.TrimSpace(source) == "" {
		diags = append(diags, "source is empty")
	}
	if !strings.Contains(source, "kernel") {
		diags = append(diags, "no kernel declaration found")
	}
	depth := 0
	for _, r := range source {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth < 0 {
			break
		}
	}
	if depth != 0 {
		diags = append(diags, "unbalanced braces in kernel source")
	}
	return diags
}

// Package device defines the backend-neutral contracts for the compute
// dispatch pipeline: platform discovery, device selection, context and
// queue establishment, kernel compilation, buffer transfers and kernel
// launches. Backends (opencl, occa, host) implement these interfaces.
package device

import (
	"fmt"
	"strings"
)

// DeviceType describes the class of a compute device.
type DeviceType string

const (
	DeviceTypeGPU         DeviceType = "GPU"
	DeviceTypeCPU         DeviceType = "CPU"
	DeviceTypeAccelerator DeviceType = "Accelerator"
	DeviceTypeUnknown     DeviceType = "Unknown"

	// DeviceTypeAny matches the first enumerated device of any class.
	DeviceTypeAny DeviceType = "Any"
)

// ParseDeviceType maps user input to a device class. The empty string
// defaults to GPU.
func ParseDeviceType(name string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gpu":
		return DeviceTypeGPU, nil
	case "cpu":
		return DeviceTypeCPU, nil
	case "accelerator":
		return DeviceTypeAccelerator, nil
	case "any", "all":
		return DeviceTypeAny, nil
	default:
		return DeviceTypeUnknown, fmt.Errorf("device: unknown device class %q", name)
	}
}

// Dialect identifies the kernel source language a device compiles.
type Dialect string

const (
	DialectOpenCL Dialect = "opencl-c"
	DialectOKL    Dialect = "okl"
)

// DeviceInfo captures read-only metadata about a compute device. It is
// diagnostic only and does not affect pipeline correctness.
type DeviceInfo struct {
	Name            string
	Vendor          string
	Version         string
	Type            DeviceType
	MaxComputeUnits uint32
}

// PlatformInfo captures metadata about an installed compute backend.
type PlatformInfo struct {
	Name    string
	Vendor  string
	Version string
}

// Access tags a device buffer with its kernel-side access mode. Host
// transfers are not constrained by it.
type Access int

const (
	ReadOnly Access = iota
	WriteOnly
)

// Enumerator discovers the compute platforms a backend exposes. The
// snapshot is taken once at startup and never mutated.
type Enumerator interface {
	Platforms() ([]Platform, error)
}

// Platform is an opaque handle to one installed compute backend.
type Platform interface {
	Info() PlatformInfo
	Devices() ([]Device, error)
}

// Device is a handle to one compute unit within a platform. Acquiring the
// handle allocates nothing on the device; CreateContext does.
type Device interface {
	Info() DeviceInfo
	Dialect() Dialect
	CreateContext() (Context, error)
}

// Context owns the binding to one device. All buffers, programs and
// queues used within a run are created from exactly one Context.
type Context interface {
	// CreateQueue returns an in-order command queue: host-observed
	// completion order equals enqueue order.
	CreateQueue() (Queue, error)
	CreateProgram(source string) (Program, error)
	CreateBuffer(size int64, access Access) (Buffer, error)
	Release()
}

// Program is the compiled form of one kernel source string.
type Program interface {
	// Build compiles the program for the context's device. Failure is
	// terminal for the run and is reported as a *CompileError carrying
	// the compiler's diagnostic log.
	Build() error
	// Kernel derives the kernel object named entry. Build must have
	// succeeded first; a missing entry point is ErrEntryPointNotFound,
	// distinct from a compile failure.
	Kernel(entry string) (Kernel, error)
	Release()
}

// Kernel is an executable kernel object with positional argument slots.
type Kernel interface {
	SetArg(index int, buf Buffer) error
	Release()
}

// Buffer is a fixed-size int32 memory region on the device. Host array and
// buffer contents are consistent only at explicit transfer points.
type Buffer interface {
	Size() int64
	Release()
}

// Queue issues work to the device. Write, Read and Finish block the
// calling thread until the device confirms completion; there is no
// timeout and no cancellation of in-flight device work.
type Queue interface {
	// Write uploads the full host array into the buffer. Partial
	// transfers are not supported; lengths must match exactly.
	Write(buf Buffer, data []int32) error
	// Read downloads the full buffer into the host array.
	Read(buf Buffer, data []int32) error
	// Launch enqueues a 1-D parallel execution of the kernel with one
	// work item per element. A local size of 0 leaves work-group sizing
	// to the runtime's own heuristic.
	Launch(k Kernel, global, local int) error
	// Finish blocks until every previously enqueued command has retired.
	Finish() error
	Release()
}

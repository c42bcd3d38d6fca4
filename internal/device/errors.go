package device

import (
	"errors"
	"fmt"
)

// Pipeline errors. Every backend call's status is checked immediately and
// any failure is fatal to the run: no retry, no partial results.
var (
	// ErrNoPlatform indicates that zero compute platforms were found.
	ErrNoPlatform = errors.New("device: no compute platforms found")

	// ErrNoMatchingDevice indicates that no enumerated platform yielded a
	// device of the requested class.
	ErrNoMatchingDevice = errors.New("device: no device matches the requested class")

	// ErrContext indicates context creation failed.
	ErrContext = errors.New("device: context creation failed")

	// ErrQueue indicates command queue creation failed.
	ErrQueue = errors.New("device: command queue creation failed")

	// ErrEntryPointNotFound indicates the built program has no kernel
	// with the requested entry name.
	ErrEntryPointNotFound = errors.New("device: kernel entry point not found")

	// ErrAllocation indicates device buffer allocation failed.
	ErrAllocation = errors.New("device: buffer allocation failed")

	// ErrTransfer indicates a host-to-device transfer failed.
	ErrTransfer = errors.New("device: host to device transfer failed")

	// ErrArgBind indicates positional kernel argument binding failed.
	ErrArgBind = errors.New("device: kernel argument binding failed")

	// ErrLaunch indicates the kernel launch could not be enqueued.
	ErrLaunch = errors.New("device: kernel launch failed")

	// ErrWait indicates waiting for queue completion failed.
	ErrWait = errors.New("device: wait for queue completion failed")

	// ErrReadback indicates a device-to-host readback failed.
	ErrReadback = errors.New("device: device to host readback failed")
)

// MaxBuildLogBytes bounds the compiler diagnostic log carried by a
// CompileError.
const MaxBuildLogBytes = 2048

// CompileError reports a kernel build failure. It is the only error that
// carries human-readable compiler diagnostics; callers propagate the log
// verbatim so the user can fix the kernel source.
type CompileError struct {
	Status string
	Log    string
}

func (e *CompileError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("device: kernel build failed (%s)", e.Status)
	}
	return fmt.Sprintf("device: kernel build failed (%s)\n%s", e.Status, e.Log)
}

// TruncateLog bounds a diagnostic log to MaxBuildLogBytes.
func TruncateLog(log string) string {
	if len(log) > MaxBuildLogBytes {
		return log[:MaxBuildLogBytes]
	}
	return log
}

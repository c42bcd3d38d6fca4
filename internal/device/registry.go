package device

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Backend identifies an enumerator implementation.
type Backend string

const (
	BackendOpenCL Backend = "opencl"
	BackendOCCA   Backend = "occa"
	BackendHost   Backend = "host"

	// BackendAuto picks the first backend that exposes at least one
	// platform, probing opencl, then occa, then host.
	BackendAuto Backend = "auto"
)

var (
	// ErrUnknownBackend is returned when the name does not match a known backend.
	ErrUnknownBackend = errors.New("device: unknown backend")
	// ErrBackendUnavailable indicates the backend is not available in this build.
	ErrBackendUnavailable = errors.New("device: backend unavailable in this build")
)

// Backend packages register their constructor from init; cmd imports them
// for side effects. Registration happens before main, so no locking.
var registry = map[Backend]func() (Enumerator, error){}

var autoOrder = []Backend{BackendOpenCL, BackendOCCA, BackendHost}

// Register installs a backend constructor under the given name.
func Register(name Backend, ctor func() (Enumerator, error)) {
	registry[name] = ctor
}

// NormalizeBackend maps arbitrary user input to a canonical backend identifier.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return BackendAuto
	case "opencl", "cl", "gpu":
		return BackendOpenCL
	case "occa":
		return BackendOCCA
	case "host", "cpu":
		return BackendHost
	default:
		return Backend(name)
	}
}

// SupportedBackends returns the backends understood by NewEnumerator.
func SupportedBackends() []Backend {
	return []Backend{BackendAuto, BackendOpenCL, BackendOCCA, BackendHost}
}

// NewEnumerator constructs the requested backend's enumerator. For auto it
// returns the first candidate that constructs and exposes a platform.
func NewEnumerator(name string) (Enumerator, error) {
	backend := NormalizeBackend(name)

	if backend == BackendAuto {
		for _, cand := range autoOrder {
			ctor, ok := registry[cand]
			if !ok {
				continue
			}
			enum, err := ctor()
			if err != nil {
				slog.Debug("backend unavailable", "backend", cand, "err", err)
				continue
			}
			platforms, err := enum.Platforms()
			if err != nil || len(platforms) == 0 {
				slog.Debug("backend has no platforms", "backend", cand, "err", err)
				continue
			}
			slog.Info("auto-selected backend", "backend", cand)
			return enum, nil
		}
		return nil, fmt.Errorf("%w: no backend exposes a compute platform", ErrBackendUnavailable)
	}

	ctor, ok := registry[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return ctor()
}

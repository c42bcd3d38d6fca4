// Package host implements the compute pipeline in-process. It serves two
// roles: the always-available fallback backend, whose accelerator role is
// played by a worker pool spread across CPU cores, and a canned-platform
// test double for the selection and dispatch logic.
package host

import (
	"runtime"
	"time"

	"github.com/cwbudde/cuboidbench/internal/device"
)

func init() {
	device.Register(device.BackendHost, NewEnumerator)
}

// NewEnumerator returns the default in-process backend.
func NewEnumerator() (device.Enumerator, error) {
	return Default(), nil
}

// Enumerator exposes a fixed platform list.
type Enumerator struct {
	platforms []device.Platform
}

// Default exposes one "host" platform with a parallel worker-pool device
// in the accelerator role and a serial device in the CPU role.
func Default() *Enumerator {
	return WithPlatforms(NewPlatform(
		device.PlatformInfo{Name: "host", Vendor: "cuboidbench", Version: "1"},
		NewDevice("host-parallel", device.DeviceTypeGPU, runtime.NumCPU()),
		NewDevice("host-serial", device.DeviceTypeCPU, 1),
	))
}

// WithPlatforms builds an enumerator over a canned platform list. Tests
// use it to stage discovery scenarios, including zero platforms.
func WithPlatforms(platforms ...device.Platform) *Enumerator {
	return &Enumerator{platforms: platforms}
}

func (e *Enumerator) Platforms() ([]device.Platform, error) {
	return e.platforms, nil
}

// Platform is a canned platform with a fixed device list.
type Platform struct {
	info    device.PlatformInfo
	devices []device.Device
}

func NewPlatform(info device.PlatformInfo, devices ...device.Device) *Platform {
	return &Platform{info: info, devices: devices}
}

func (p *Platform) Info() device.PlatformInfo {
	return p.info
}

func (p *Platform) Devices() ([]device.Device, error) {
	return p.devices, nil
}

// Device executes kernels with a pool of workers sized at construction.
type Device struct {
	info          device.DeviceInfo
	workers       int
	transferDelay time.Duration
}

func NewDevice(name string, class device.DeviceType, workers int) *Device {
	if workers < 1 {
		workers = 1
	}
	return &Device{
		info: device.DeviceInfo{
			Name:            name,
			Vendor:          "cuboidbench",
			Version:         "host",
			Type:            class,
			MaxComputeUnits: uint32(workers),
		},
		workers: workers,
	}
}

// SetTransferDelay adds an artificial pause to every queue transfer on
// this device. Timing tests use it to verify that the measured launch
// interval excludes transfer cost.
func (d *Device) SetTransferDelay(delay time.Duration) {
	d.transferDelay = delay
}

func (d *Device) Info() device.DeviceInfo {
	return d.info
}

// Dialect reports OpenCL C: the host compiler only lints the source, so it
// accepts the same kernel text a real OpenCL device compiles.
func (d *Device) Dialect() device.Dialect {
	return device.DialectOpenCL
}

func (d *Device) CreateContext() (device.Context, error) {
	return &hostContext{dev: d}, nil
}

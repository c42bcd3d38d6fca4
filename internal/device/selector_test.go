package device_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cuboidbench/internal/device"
	"github.com/cwbudde/cuboidbench/internal/device/host"
)

// brokenPlatform fails every device query.
type brokenPlatform struct{}

func (brokenPlatform) Info() device.PlatformInfo {
	return device.PlatformInfo{Name: "broken"}
}

func (brokenPlatform) Devices() ([]device.Device, error) {
	return nil, errors.New("device query failed")
}

func TestSelectNoPlatforms(t *testing.T) {
	_, err := device.Select(host.WithPlatforms(), device.DeviceTypeGPU)
	require.ErrorIs(t, err, device.ErrNoPlatform)
}

func TestSelectNoMatchingDevice(t *testing.T) {
	enum := host.WithPlatforms(
		host.NewPlatform(device.PlatformInfo{Name: "p0"},
			host.NewDevice("cpu-only", device.DeviceTypeCPU, 1),
		),
		host.NewPlatform(device.PlatformInfo{Name: "p1"},
			host.NewDevice("another-cpu", device.DeviceTypeCPU, 2),
		),
	)

	_, err := device.Select(enum, device.DeviceTypeGPU)
	require.ErrorIs(t, err, device.ErrNoMatchingDevice)
}

func TestSelectFirstMatchInEnumerationOrder(t *testing.T) {
	enum := host.WithPlatforms(
		host.NewPlatform(device.PlatformInfo{Name: "p0"},
			host.NewDevice("cpu0", device.DeviceTypeCPU, 1),
			host.NewDevice("gpu0", device.DeviceTypeGPU, 4),
			host.NewDevice("gpu1", device.DeviceTypeGPU, 8),
		),
	)

	dev, err := device.Select(enum, device.DeviceTypeGPU)
	require.NoError(t, err)
	require.Equal(t, "gpu0", dev.Info().Name)
}

func TestSelectAnyMatchesFirstDevice(t *testing.T) {
	enum := host.WithPlatforms(
		host.NewPlatform(device.PlatformInfo{Name: "p0"},
			host.NewDevice("cpu0", device.DeviceTypeCPU, 1),
			host.NewDevice("gpu0", device.DeviceTypeGPU, 4),
		),
	)

	dev, err := device.Select(enum, device.DeviceTypeAny)
	require.NoError(t, err)
	require.Equal(t, "cpu0", dev.Info().Name)
}

func TestSelectSkipsBrokenPlatform(t *testing.T) {
	enum := host.WithPlatforms(
		brokenPlatform{},
		host.NewPlatform(device.PlatformInfo{Name: "p1"},
			host.NewDevice("gpu0", device.DeviceTypeGPU, 4),
		),
	)

	dev, err := device.Select(enum, device.DeviceTypeGPU)
	require.NoError(t, err)
	require.Equal(t, "gpu0", dev.Info().Name)
}

func TestParseDeviceType(t *testing.T) {
	cases := []struct {
		in   string
		want device.DeviceType
	}{
		{"", device.DeviceTypeGPU},
		{"gpu", device.DeviceTypeGPU},
		{"GPU", device.DeviceTypeGPU},
		{"cpu", device.DeviceTypeCPU},
		{"accelerator", device.DeviceTypeAccelerator},
		{"any", device.DeviceTypeAny},
		{"all", device.DeviceTypeAny},
	}
	for _, tc := range cases {
		got, err := device.ParseDeviceType(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	_, err := device.ParseDeviceType("fpga")
	require.Error(t, err)
}

func TestNormalizeBackend(t *testing.T) {
	require.Equal(t, device.BackendAuto, device.NormalizeBackend(""))
	require.Equal(t, device.BackendAuto, device.NormalizeBackend("auto"))
	require.Equal(t, device.BackendOpenCL, device.NormalizeBackend("cl"))
	require.Equal(t, device.BackendOpenCL, device.NormalizeBackend("GPU"))
	require.Equal(t, device.BackendHost, device.NormalizeBackend("cpu"))
	require.Equal(t, device.BackendOCCA, device.NormalizeBackend("occa"))
}

func TestNewEnumeratorUnknownBackend(t *testing.T) {
	_, err := device.NewEnumerator("vulkan")
	require.ErrorIs(t, err, device.ErrUnknownBackend)
}

func TestNewEnumeratorHost(t *testing.T) {
	enum, err := device.NewEnumerator("host")
	require.NoError(t, err)

	platforms, err := enum.Platforms()
	require.NoError(t, err)
	require.NotEmpty(t, platforms)
}

func TestNewEnumeratorAutoFallsBackToHost(t *testing.T) {
	// With accelerator backends stubbed out, auto must land on host.
	enum, err := device.NewEnumerator("auto")
	require.NoError(t, err)

	dev, err := device.Select(enum, device.DeviceTypeGPU)
	require.NoError(t, err)
	require.Equal(t, device.DeviceTypeGPU, dev.Info().Type)
}

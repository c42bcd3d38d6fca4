//go:build occa

package occa

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/cwbudde/cuboidbench/internal/device"
)

const elementSize = 4 // int32

// modeProbes lists the OCCA modes tried during enumeration, fastest
// first. Each successful probe becomes one device on the synthetic
// "OCCA" platform.
var modeProbes = []struct {
	props string
	mode  string
	class device.DeviceType
}{
	{`{"mode": "CUDA", "device_id": 0}`, "CUDA", device.DeviceTypeGPU},
	{`{"mode": "OpenCL", "platform_id": 0, "device_id": 0}`, "OpenCL", device.DeviceTypeGPU},
	{`{"mode": "OpenMP"}`, "OpenMP", device.DeviceTypeCPU},
	{`{"mode": "Serial"}`, "Serial", device.DeviceTypeCPU},
}

// NewEnumerator probes the available OCCA modes and returns an
// enumerator over the ones that answered.
func NewEnumerator() (device.Enumerator, error) {
	var devices []device.Device
	for _, probe := range modeProbes {
		dev, err := gocca.NewDevice(probe.props)
		if err != nil {
			slog.Debug("occa mode unavailable", "mode", probe.mode, "error", err)
			continue
		}
		dev.Free()

		devices = append(devices, &occaDevice{
			props: probe.props,
			info: device.DeviceInfo{
				Name:            "occa-" + strings.ToLower(probe.mode),
				Vendor:          "OCCA",
				Version:         probe.mode,
				Type:            probe.class,
				MaxComputeUnits: modeComputeUnits(probe.class),
			},
		})
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no occa mode answered", device.ErrBackendUnavailable)
	}
	return enumerator{devices: devices}, nil
}

type enumerator struct {
	devices []device.Device
}

func (e enumerator) Platforms() ([]device.Platform, error) {
	return []device.Platform{platform{devices: e.devices}}, nil
}

type platform struct {
	devices []device.Device
}

func (p platform) Info() device.PlatformInfo {
	return device.PlatformInfo{Name: "OCCA", Vendor: "OCCA", Version: "1.0"}
}

func (p platform) Devices() ([]device.Device, error) {
	return p.devices, nil
}

type occaDevice struct {
	props string
	info  device.DeviceInfo
}

func (d *occaDevice) Info() device.DeviceInfo {
	return d.info
}

func (d *occaDevice) Dialect() device.Dialect {
	return device.DialectOKL
}

func (d *occaDevice) CreateContext() (device.Context, error) {
	dev, err := gocca.NewDevice(d.props)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrContext, err)
	}
	return &occaContext{dev: dev}, nil
}

// occaContext owns the underlying OCCA device. OCCA has no separate
// context or queue object, so the queue borrows the device handle and
// the program compiles lazily when a kernel is requested.
type occaContext struct {
	dev *gocca.OCCADevice
}

func (c *occaContext) CreateQueue() (device.Queue, error) {
	return &occaQueue{dev: c.dev}, nil
}

func (c *occaContext) CreateProgram(source string) (device.Program, error) {
	return &occaProgram{dev: c.dev, source: source}, nil
}

func (c *occaContext) CreateBuffer(size int64, access device.Access) (device.Buffer, error) {
	if size <= 0 || size%elementSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of %d", device.ErrAllocation, size, elementSize)
	}
	mem := c.dev.Malloc(size, nil, nil)
	if mem == nil {
		return nil, fmt.Errorf("%w: occa malloc of %d bytes failed", device.ErrAllocation, size)
	}
	return &occaBuffer{mem: mem, size: size}, nil
}

func (c *occaContext) Release() {
	if c.dev != nil {
		c.dev.Free()
		c.dev = nil
	}
}

// occaProgram defers compilation to Kernel: OCCA builds source and
// entry point in one step.
type occaProgram struct {
	dev    *gocca.OCCADevice
	source string
	built  bool
}

func (p *occaProgram) Build() error {
	p.built = true
	return nil
}

func (p *occaProgram) Kernel(entry string) (device.Kernel, error) {
	if !p.built {
		return nil, fmt.Errorf("occa: kernel requested before build")
	}
	kernel, err := p.dev.BuildKernelFromString(p.source, entry, nil)
	if err != nil {
		if !strings.Contains(p.source, entry) {
			return nil, fmt.Errorf("%w: %q", device.ErrEntryPointNotFound, entry)
		}
		return nil, &device.CompileError{
			Status: "OCCA_BUILD_FAILURE",
			Log:    device.TruncateLog(err.Error()),
		}
	}
	return &occaKernel{k: kernel}, nil
}

func (p *occaProgram) Release() {}

type occaKernel struct {
	k    *gocca.OCCAKernel
	args []*occaBuffer
}

func (k *occaKernel) SetArg(index int, buf device.Buffer) error {
	ob, ok := buf.(*occaBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer was not created by this backend", device.ErrArgBind)
	}
	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = ob
	return nil
}

func (k *occaKernel) Release() {
	if k.k != nil {
		k.k.Free()
		k.k = nil
	}
}

type occaBuffer struct {
	mem  *gocca.OCCAMemory
	size int64
}

func (b *occaBuffer) Size() int64 {
	return b.size
}

func (b *occaBuffer) Release() {
	if b.mem != nil {
		b.mem.Free()
		b.mem = nil
	}
}

type occaQueue struct {
	dev *gocca.OCCADevice
}

func (q *occaQueue) Write(buf device.Buffer, data []int32) error {
	ob, ok := buf.(*occaBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrTransfer)
	}
	bytes := int64(len(data)) * elementSize
	if bytes != ob.size {
		return fmt.Errorf("%w: host array is %d bytes, buffer holds %d", device.ErrTransfer, bytes, ob.size)
	}
	ob.mem.CopyFrom(unsafe.Pointer(&data[0]), bytes)
	return nil
}

func (q *occaQueue) Read(buf device.Buffer, data []int32) error {
	ob, ok := buf.(*occaBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrReadback)
	}
	bytes := int64(len(data)) * elementSize
	if bytes != ob.size {
		return fmt.Errorf("%w: host array is %d bytes, buffer holds %d", device.ErrReadback, bytes, ob.size)
	}
	ob.mem.CopyTo(unsafe.Pointer(&data[0]), bytes)
	return nil
}

// Launch passes the problem size as the kernel's leading scalar
// argument followed by the bound buffers. OKL kernels derive their
// iteration range from that scalar, so the local size hint is left to
// the @tile annotation in the source.
func (q *occaQueue) Launch(k device.Kernel, global, local int) error {
	ok2, ok := k.(*occaKernel)
	if !ok {
		return fmt.Errorf("%w: foreign kernel", device.ErrLaunch)
	}
	if global <= 0 {
		return fmt.Errorf("%w: global size %d", device.ErrLaunch, global)
	}

	args := make([]interface{}, 0, len(ok2.args)+1)
	args = append(args, int32(global))
	for i, b := range ok2.args {
		if b == nil {
			return fmt.Errorf("%w: argument %d is unbound", device.ErrArgBind, i)
		}
		args = append(args, b.mem)
	}
	if err := ok2.k.RunWithArgs(args...); err != nil {
		return fmt.Errorf("%w: %v", device.ErrLaunch, err)
	}
	return nil
}

func (q *occaQueue) Finish() error {
	q.dev.Finish()
	return nil
}

func (q *occaQueue) Release() {}

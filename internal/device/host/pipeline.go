package host

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/cuboidbench/internal/device"
)

type hostContext struct {
	dev *Device
}

func (c *hostContext) CreateQueue() (device.Queue, error) {
	return &hostQueue{dev: c.dev}, nil
}

func (c *hostContext) CreateProgram(source string) (device.Program, error) {
	return &hostProgram{source: source}, nil
}

func (c *hostContext) CreateBuffer(size int64, access device.Access) (device.Buffer, error) {
	if size <= 0 || size%4 != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of the element size", device.ErrAllocation, size)
	}
	return &hostBuffer{data: make([]int32, size/4), access: access}, nil
}

func (c *hostContext) Release() {}

type hostBuffer struct {
	data   []int32
	access device.Access
}

func (b *hostBuffer) Size() int64 {
	return int64(len(b.data)) * 4
}

func (b *hostBuffer) Release() {
	b.data = nil
}

type hostProgram struct {
	source string
	built  bool
}

func (p *hostProgram) Build() error {
	if diags := lintSource(p.source); len(diags) > 0 {
		return &device.CompileError{
			Status: "HOST_BUILD_FAILURE",
			Log:    device.TruncateLog(strings.Join(diags, "\n")),
		}
	}
	p.built = true
	return nil
}

func (p *hostProgram) Kernel(entry string) (device.Kernel, error) {
	if !p.built {
		return nil, errors.New("host: kernel requested before successful build")
	}
	fn, ok := lookupKernel(entry)
	if !ok || !strings.Contains(p.source, entry) {
		return nil, fmt.Errorf("%w: %q", device.ErrEntryPointNotFound, entry)
	}
	return &hostKernel{fn: fn}, nil
}

func (p *hostProgram) Release() {}

type hostKernel struct {
	fn   KernelFunc
	args []*hostBuffer
}

func (k *hostKernel) SetArg(index int, buf device.Buffer) error {
	if index < 0 {
		return fmt.Errorf("%w: negative argument index %d", device.ErrArgBind, index)
	}
	hb, ok := buf.(*hostBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer was not created by this backend", device.ErrArgBind)
	}
	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = hb
	return nil
}

func (k *hostKernel) Release() {}

type hostQueue struct {
	dev *Device
}

func (q *hostQueue) Write(buf device.Buffer, data []int32) error {
	hb, ok := buf.(*hostBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrTransfer)
	}
	if len(data) != len(hb.data) {
		return fmt.Errorf("%w: host array has %d elements, buffer holds %d", device.ErrTransfer, len(data), len(hb.data))
	}
	if q.dev.transferDelay > 0 {
		time.Sleep(q.dev.transferDelay)
	}
	copy(hb.data, data)
	return nil
}

func (q *hostQueue) Read(buf device.Buffer, data []int32) error {
	hb, ok := buf.(*hostBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrReadback)
	}
	if len(data) != len(hb.data) {
		return fmt.Errorf("%w: host array has %d elements, buffer holds %d", device.ErrReadback, len(data), len(hb.data))
	}
	if q.dev.transferDelay > 0 {
		time.Sleep(q.dev.transferDelay)
	}
	copy(data, hb.data)
	return nil
}

// Launch runs the kernel synchronously over [0, global). The in-order
// queue contract holds trivially: nothing is ever outstanding by the time
// Launch returns.
func (q *hostQueue) Launch(k device.Kernel, global, local int) error {
	hk, ok := k.(*hostKernel)
	if !ok {
		return fmt.Errorf("%w: foreign kernel", device.ErrLaunch)
	}
	if global <= 0 {
		return fmt.Errorf("%w: global size %d", device.ErrLaunch, global)
	}
	args := make([][]int32, len(hk.args))
	for i, b := range hk.args {
		if b == nil {
			return fmt.Errorf("%w: argument %d is unbound", device.ErrArgBind, i)
		}
		args[i] = b.data
	}
	// Local size is a work-group hint on real devices; the worker pool
	// partitions by worker count instead.
	_ = local
	runParallel(hk.fn, args, global, q.dev.workers)
	return nil
}

func (q *hostQueue) Finish() error {
	return nil
}

func (q *hostQueue) Release() {}

func runParallel(fn KernelFunc, args [][]int32, global, workers int) {
	if workers <= 1 || global < 1024 {
		fn(args, 0, global)
		return
	}
	chunk := (global + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < global; lo += chunk {
		hi := lo + chunk
		if hi > global {
			hi = global
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(args, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

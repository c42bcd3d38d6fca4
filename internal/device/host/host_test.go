package host

import (
	"errors"
	"testing"

	"github.com/cwbudde/cuboidbench/internal/device"
)

const validSource = `
__kernel void cuboid_area(__global const int *a,
                          __global const int *b,
                          __global const int *c,
                          __global int *result) {
    int i = get_global_id(0);
    result[i] = 2 * (a[i] * b[i] + b[i] * c[i] + a[i] * c[i]);
}
`

func newContext(t *testing.T, workers int) device.Context {
	t.Helper()
	dev := NewDevice("test", device.DeviceTypeGPU, workers)
	ctx, err := dev.CreateContext()
	if err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	return ctx
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	queue, err := ctx.CreateQueue()
	if err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}

	buf, err := ctx.CreateBuffer(4*4, device.ReadOnly)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	in := []int32{3, 1, 4, 1}
	if err := queue.Write(buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := make([]int32, 4)
	if err := queue.Read(buf, out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("round trip changed element %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestCreateBufferRejectsBadSizes(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	for _, size := range []int64{0, -4, 3, 7} {
		if _, err := ctx.CreateBuffer(size, device.ReadOnly); !errors.Is(err, device.ErrAllocation) {
			t.Fatalf("size %d: got %v, want ErrAllocation", size, err)
		}
	}
}

func TestBuildFailureCarriesLog(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	program, err := ctx.CreateProgram("int broken( {")
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}

	err = program.Build()
	var compileErr *device.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("got %v, want *CompileError", err)
	}
	if compileErr.Log == "" {
		t.Fatal("compile error carries no log")
	}

	if _, err := program.Kernel("cuboid_area"); err == nil {
		t.Fatal("kernel derived from failed build")
	}
}

func TestKernelBeforeBuild(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	program, err := ctx.CreateProgram(validSource)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if _, err := program.Kernel("cuboid_area"); err == nil {
		t.Fatal("kernel derived before build")
	}
}

func TestEntryPointNotFound(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	program, err := ctx.CreateProgram(validSource)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if err := program.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := program.Kernel("missing_entry"); !errors.Is(err, device.ErrEntryPointNotFound) {
		t.Fatalf("got %v, want ErrEntryPointNotFound", err)
	}
}

func TestLaunchUnboundArg(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	queue, _ := ctx.CreateQueue()
	program, _ := ctx.CreateProgram(validSource)
	if err := program.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	kernel, err := program.Kernel("cuboid_area")
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}

	buf, _ := ctx.CreateBuffer(4*4, device.ReadOnly)
	if err := kernel.SetArg(0, buf); err != nil {
		t.Fatalf("SetArg: %v", err)
	}
	if err := kernel.SetArg(3, buf); err != nil {
		t.Fatalf("SetArg: %v", err)
	}

	// Slots 1 and 2 were never bound.
	if err := queue.Launch(kernel, 4, 0); !errors.Is(err, device.ErrArgBind) {
		t.Fatalf("got %v, want ErrArgBind", err)
	}
}

func TestWriteLengthMismatch(t *testing.T) {
	ctx := newContext(t, 1)
	defer ctx.Release()

	queue, _ := ctx.CreateQueue()
	buf, _ := ctx.CreateBuffer(4*4, device.ReadOnly)

	if err := queue.Write(buf, make([]int32, 3)); !errors.Is(err, device.ErrTransfer) {
		t.Fatalf("got %v, want ErrTransfer", err)
	}
	if err := queue.Read(buf, make([]int32, 5)); !errors.Is(err, device.ErrReadback) {
		t.Fatalf("got %v, want ErrReadback", err)
	}
}

func runPipeline(t *testing.T, workers, n int, a, b, c []int32) []int32 {
	t.Helper()

	ctx := newContext(t, workers)
	defer ctx.Release()

	queue, err := ctx.CreateQueue()
	if err != nil {
		t.Fatalf("CreateQueue: %v", err)
	}
	program, err := ctx.CreateProgram(validSource)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if err := program.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	kernel, err := program.Kernel("cuboid_area")
	if err != nil {
		t.Fatalf("Kernel: %v", err)
	}

	size := int64(n) * 4
	buffers := make([]device.Buffer, 4)
	for i, access := range []device.Access{device.ReadOnly, device.ReadOnly, device.ReadOnly, device.WriteOnly} {
		buffers[i], err = ctx.CreateBuffer(size, access)
		if err != nil {
			t.Fatalf("CreateBuffer %d: %v", i, err)
		}
	}
	for i, data := range [][]int32{a, b, c} {
		if err := queue.Write(buffers[i], data); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	for i, buf := range buffers {
		if err := kernel.SetArg(i, buf); err != nil {
			t.Fatalf("SetArg %d: %v", i, err)
		}
	}
	if err := queue.Launch(kernel, n, 0); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := queue.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out := make([]int32, n)
	if err := queue.Read(buffers[3], out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	return out
}

func TestKnownSurfaceAreas(t *testing.T) {
	a := []int32{1, 2, 3, 4}
	b := []int32{1, 1, 1, 1}
	c := []int32{2, 2, 2, 2}
	want := []int32{10, 16, 22, 28}

	got := runPipeline(t, 1, 4, a, b, c)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	const n = 4096
	a := make([]int32, n)
	b := make([]int32, n)
	c := make([]int32, n)
	for i := 0; i < n; i++ {
		a[i] = int32(i%9) + 1
		b[i] = int32((i*7)%9) + 1
		c[i] = int32((i*13)%9) + 1
	}

	serial := runPipeline(t, 1, n, a, b, c)
	parallel := runPipeline(t, 8, n, a, b, c)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("element %d: serial=%d parallel=%d", i, serial[i], parallel[i])
		}
	}
}

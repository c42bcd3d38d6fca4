package bench

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/cuboidbench/internal/device"
)

// Config drives one benchmark run.
type Config struct {
	N         int
	MinValue  int32
	MaxValue  int32
	Seed      int64
	Repeat    int
	LocalSize int
	Preferred device.DeviceType
}

// Result holds everything a run produced: the inputs, both result
// arrays and the timings on each side.
type Result struct {
	Device      device.DeviceInfo
	A, B, C     []int32
	Accel       []int32
	Seq         []int32
	AccelTime   time.Duration
	LaunchTimes []time.Duration
	SeqTime     time.Duration
}

// Speedup reports the sequential time as a multiple of the accelerator
// time. Zero accelerator time yields zero rather than dividing.
func (r *Result) Speedup() float64 {
	if r.AccelTime <= 0 {
		return 0
	}
	return r.SeqTime.Seconds() / r.AccelTime.Seconds()
}

// Run generates inputs, dispatches the kernel to the selected device,
// computes the sequential baseline and verifies the two result arrays
// agree element for element.
func Run(enum device.Enumerator, cfg Config) (*Result, error) {
	a, b, c, err := GenerateInputs(cfg.N, cfg.MinValue, cfg.MaxValue, cfg.Seed)
	if err != nil {
		return nil, err
	}

	accel, info, launches, err := Dispatch(enum, cfg, a, b, c)
	if err != nil {
		return nil, err
	}

	seq, seqTime, err := Reference(a, b, c)
	if err != nil {
		return nil, err
	}

	for i := range accel {
		if accel[i] != seq[i] {
			return nil, fmt.Errorf("bench: result mismatch at index %d: accelerator=%d sequential=%d", i, accel[i], seq[i])
		}
	}

	mean := launches[0]
	if len(launches) > 1 {
		mean, _ = LaunchStats(launches)
	}

	return &Result{
		Device:      info,
		A:           a,
		B:           b,
		C:           c,
		Accel:       accel,
		Seq:         seq,
		AccelTime:   mean,
		LaunchTimes: launches,
		SeqTime:     seqTime,
	}, nil
}

// Dispatch runs the surface-area kernel over the inputs on the first
// device of the preferred class and returns the results together with
// the wall time of each launch. Only launch plus completion is timed,
// transfers and compilation stay outside the window.
func Dispatch(enum device.Enumerator, cfg Config, a, b, c []int32) ([]int32, device.DeviceInfo, []time.Duration, error) {
	var none device.DeviceInfo

	preferred := cfg.Preferred
	if preferred == "" {
		preferred = device.DeviceTypeGPU
	}

	dev, err := device.Select(enum, preferred)
	if err != nil {
		return nil, none, nil, err
	}
	info := dev.Info()
	slog.Info("device selected", "name", info.Name, "type", string(info.Type), "computeUnits", info.MaxComputeUnits)

	var cleanup device.ReleaseList
	defer cleanup.Release()

	ctx, err := dev.CreateContext()
	if err != nil {
		return nil, none, nil, err
	}
	cleanup.Push(ctx)

	queue, err := ctx.CreateQueue()
	if err != nil {
		return nil, none, nil, err
	}
	cleanup.Push(queue)

	source, err := KernelSource(dev.Dialect())
	if err != nil {
		return nil, none, nil, err
	}

	program, err := ctx.CreateProgram(source)
	if err != nil {
		return nil, none, nil, err
	}
	cleanup.Push(program)

	if err := program.Build(); err != nil {
		return nil, none, nil, err
	}

	kernel, err := program.Kernel(EntryPoint)
	if err != nil {
		return nil, none, nil, err
	}
	cleanup.Push(kernel)

	size := int64(cfg.N) * 4
	inputs := [][]int32{a, b, c}
	buffers := make([]device.Buffer, 0, 4)
	for range inputs {
		buf, err := ctx.CreateBuffer(size, device.ReadOnly)
		if err != nil {
			return nil, none, nil, err
		}
		cleanup.Push(buf)
		buffers = append(buffers, buf)
	}
	out, err := ctx.CreateBuffer(size, device.WriteOnly)
	if err != nil {
		return nil, none, nil, err
	}
	cleanup.Push(out)
	buffers = append(buffers, out)

	for i, data := range inputs {
		if err := queue.Write(buffers[i], data); err != nil {
			return nil, none, nil, err
		}
	}

	for i, buf := range buffers {
		if err := kernel.SetArg(i, buf); err != nil {
			return nil, none, nil, err
		}
	}

	repeat := cfg.Repeat
	if repeat < 1 {
		repeat = 1
	}

	launches := make([]time.Duration, 0, repeat)
	for i := 0; i < repeat; i++ {
		start := time.Now()
		if err := queue.Launch(kernel, cfg.N, cfg.LocalSize); err != nil {
			return nil, none, nil, err
		}
		if err := queue.Finish(); err != nil {
			return nil, none, nil, err
		}
		elapsed := time.Since(start)
		launches = append(launches, elapsed)
		slog.Debug("kernel launch finished", "iteration", i, "elapsed", elapsed)
	}

	result := make([]int32, cfg.N)
	if err := queue.Read(out, result); err != nil {
		return nil, none, nil, err
	}

	return result, info, launches, nil
}

// LaunchStats summarizes repeated launch timings. With fewer than two
// samples the deviation is zero.
func LaunchStats(launches []time.Duration) (mean, stddev time.Duration) {
	if len(launches) == 0 {
		return 0, 0
	}
	secs := make([]float64, len(launches))
	for i, d := range launches {
		secs[i] = d.Seconds()
	}
	mean = time.Duration(stat.Mean(secs, nil) * float64(time.Second))
	if len(secs) > 1 {
		stddev = time.Duration(stat.StdDev(secs, nil) * float64(time.Second))
	}
	return mean, stddev
}

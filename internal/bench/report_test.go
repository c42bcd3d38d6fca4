package bench_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cuboidbench/internal/bench"
	"github.com/cwbudde/cuboidbench/internal/device"
)

func sampleResult(n int) *bench.Result {
	a := make([]int32, n)
	b := make([]int32, n)
	c := make([]int32, n)
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		a[i], b[i], c[i] = 1, 1, 2
		out[i] = 10
	}
	return &bench.Result{
		Device: device.DeviceInfo{
			Name:            "test",
			Type:            device.DeviceTypeGPU,
			MaxComputeUnits: 16,
		},
		A: a, B: b, C: c,
		Accel:       out,
		Seq:         out,
		AccelTime:   50 * time.Millisecond,
		LaunchTimes: []time.Duration{50 * time.Millisecond},
		SeqTime:     200 * time.Millisecond,
	}
}

func TestWriteReportHeader(t *testing.T) {
	var buf bytes.Buffer
	err := bench.WriteReport(&buf, sampleResult(10), bench.ReportOptions{Samples: 3})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Device type: GPU")
	require.Contains(t, out, "Total compute units: 16 compute units")
	require.Contains(t, out, "The accelerator kernel ran in 0.050000 seconds")
	require.Contains(t, out, "The sequential code ran in 0.200000 seconds")
	require.Contains(t, out, "The sequential time is 4.000000X of the accelerator time")
}

func TestWriteReportSampleRows(t *testing.T) {
	var buf bytes.Buffer
	err := bench.WriteReport(&buf, sampleResult(10), bench.ReportOptions{Samples: 3})
	require.NoError(t, err)

	out := buf.String()
	require.Equal(t, 3, strings.Count(out, "a=1\tb=1\tc=2\t\taccel=10\t\tseq=10"))
	require.Contains(t, out, "... 7 more items")
}

func TestWriteReportNoRemainderLine(t *testing.T) {
	var buf bytes.Buffer
	err := bench.WriteReport(&buf, sampleResult(5), bench.ReportOptions{Samples: 100})
	require.NoError(t, err)

	out := buf.String()
	require.Equal(t, 5, strings.Count(out, "a=1"))
	require.NotContains(t, out, "more items")
}

// limitedWriter accepts n bytes, then fails every write.
type limitedWriter struct {
	n   int
	err error
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > lw.n {
		return 0, lw.err
	}
	lw.n -= len(p)
	return len(p), nil
}

func TestWriteReportPropagatesWriteErrors(t *testing.T) {
	failure := errors.New("pipe closed")

	// Fail at successively later writes; the error must surface no
	// matter which line hits it.
	for _, limit := range []int{0, 20, 80, 200} {
		lw := &limitedWriter{n: limit, err: failure}
		err := bench.WriteReport(lw, sampleResult(10), bench.ReportOptions{Samples: 5})
		require.ErrorIs(t, err, failure, "limit %d", limit)
	}
}

func TestWriteReportLaunchSummary(t *testing.T) {
	res := sampleResult(4)
	res.LaunchTimes = []time.Duration{
		40 * time.Millisecond,
		50 * time.Millisecond,
		60 * time.Millisecond,
	}

	var buf bytes.Buffer
	err := bench.WriteReport(&buf, res, bench.ReportOptions{Samples: 0, Chart: true})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Launches: 3")
	require.Contains(t, out, "per-launch time (ms)")
}

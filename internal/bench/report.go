package bench

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
)

// ReportOptions controls the rendered report.
type ReportOptions struct {
	// Samples is the number of result rows to print.
	Samples int
	// Chart renders an ascii chart of per-launch timings when more
	// than one launch was recorded.
	Chart bool
}

// reportWriter sticks on the first write error so every line can be
// emitted without checking each call site.
type reportWriter struct {
	w   io.Writer
	err error
}

func (rw *reportWriter) printf(format string, args ...interface{}) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}

// WriteReport prints the run summary: device class, compute units,
// both timings, the speedup and a sample of the result rows.
func WriteReport(w io.Writer, res *Result, opts ReportOptions) error {
	rw := &reportWriter{w: w}

	rw.printf("Device type: %s\n", res.Device.Type)
	rw.printf("Total compute units: %d compute units\n", res.Device.MaxComputeUnits)
	rw.printf("\nThe accelerator kernel ran in %f seconds\n", res.AccelTime.Seconds())

	if len(res.LaunchTimes) > 1 {
		mean, stddev := LaunchStats(res.LaunchTimes)
		rw.printf("Launches: %d, mean %f seconds, stddev %f seconds\n",
			len(res.LaunchTimes), mean.Seconds(), stddev.Seconds())
		if opts.Chart {
			writeChart(rw, res)
		}
	}

	rw.printf("The sequential code ran in %f seconds\n\n", res.SeqTime.Seconds())
	rw.printf("The sequential time is %fX of the accelerator time\n\n", res.Speedup())

	samples := opts.Samples
	if samples > len(res.Accel) {
		samples = len(res.Accel)
	}
	for i := 0; i < samples; i++ {
		rw.printf("a=%d\tb=%d\tc=%d\t\taccel=%d\t\tseq=%d\n",
			res.A[i], res.B[i], res.C[i], res.Accel[i], res.Seq[i])
	}
	if remaining := len(res.Accel) - samples; remaining > 0 {
		rw.printf("... %d more items\n", remaining)
	}
	return rw.err
}

func writeChart(rw *reportWriter, res *Result) {
	data := make([]float64, len(res.LaunchTimes))
	for i, d := range res.LaunchTimes {
		data[i] = d.Seconds() * 1000
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Caption("per-launch time (ms)"))
	rw.printf("\n%s\n\n", chart)
}

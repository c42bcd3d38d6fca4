package bench

import (
	"fmt"
	"time"
)

func surfaceArea(a, b, c int32) int32 {
	return 2 * (a*b + b*c + a*c)
}

// Reference computes the cuboid surface areas sequentially on the host
// and reports how long the loop took. It is both the timing baseline
// and the correctness oracle for accelerator results.
func Reference(a, b, c []int32) ([]int32, time.Duration, error) {
	if len(a) != len(b) || len(b) != len(c) {
		return nil, 0, fmt.Errorf("bench: input lengths differ (%d, %d, %d)", len(a), len(b), len(c))
	}

	out := make([]int32, len(a))
	start := time.Now()
	for i := range a {
		out[i] = surfaceArea(a[i], b[i], c[i])
	}
	return out, time.Since(start), nil
}

package bench

import (
	"fmt"
	"math/rand"
)

// GenerateInputs fills three arrays of n cuboid edge lengths drawn
// uniformly from [min, max]. The same seed always yields the same
// arrays.
func GenerateInputs(n int, min, max int32, seed int64) (a, b, c []int32, err error) {
	if n <= 0 {
		return nil, nil, nil, fmt.Errorf("bench: element count must be positive, got %d", n)
	}
	if min < 1 || max < min {
		return nil, nil, nil, fmt.Errorf("bench: invalid value range [%d, %d]", min, max)
	}

	rng := rand.New(rand.NewSource(seed))
	span := max - min + 1

	a = make([]int32, n)
	b = make([]int32, n)
	c = make([]int32, n)
	for i := 0; i < n; i++ {
		a[i] = min + rng.Int31n(span)
		b[i] = min + rng.Int31n(span)
		c[i] = min + rng.Int31n(span)
	}
	return a, b, c, nil
}

package bench_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cuboidbench/internal/bench"
)

func TestGenerateInputsBounds(t *testing.T) {
	a, b, c, err := bench.GenerateInputs(5000, 1, 9, 1)
	require.NoError(t, err)
	require.Len(t, a, 5000)

	for _, arr := range [][]int32{a, b, c} {
		for i, v := range arr {
			require.GreaterOrEqual(t, v, int32(1), "index %d", i)
			require.LessOrEqual(t, v, int32(9), "index %d", i)
		}
	}
}

func TestGenerateInputsDeterministic(t *testing.T) {
	a1, b1, c1, err := bench.GenerateInputs(1000, 1, 9, 42)
	require.NoError(t, err)
	a2, b2, c2, err := bench.GenerateInputs(1000, 1, 9, 42)
	require.NoError(t, err)

	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.Equal(t, c1, c2)

	a3, _, _, err := bench.GenerateInputs(1000, 1, 9, 43)
	require.NoError(t, err)
	require.NotEqual(t, a1, a3)
}

func TestGenerateInputsRejectsBadArgs(t *testing.T) {
	_, _, _, err := bench.GenerateInputs(0, 1, 9, 1)
	require.Error(t, err)

	_, _, _, err = bench.GenerateInputs(10, 0, 9, 1)
	require.Error(t, err)

	_, _, _, err = bench.GenerateInputs(10, 5, 4, 1)
	require.Error(t, err)
}

func TestReferenceKnownAnswer(t *testing.T) {
	out, elapsed, err := bench.Reference(
		[]int32{1, 2, 3, 4},
		[]int32{1, 1, 1, 1},
		[]int32{2, 2, 2, 2},
	)
	require.NoError(t, err)
	require.Equal(t, []int32{10, 16, 22, 28}, out)
	require.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}

func TestReferenceLengthMismatch(t *testing.T) {
	_, _, err := bench.Reference([]int32{1}, []int32{1, 2}, []int32{1})
	require.Error(t, err)
}

func TestKernelSourceDialects(t *testing.T) {
	src, err := bench.KernelSource("opencl-c")
	require.NoError(t, err)
	require.Contains(t, src, bench.EntryPoint)

	src, err = bench.KernelSource("okl")
	require.NoError(t, err)
	require.Contains(t, src, bench.EntryPoint)

	_, err = bench.KernelSource("cuda-c")
	require.Error(t, err)
}

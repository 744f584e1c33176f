package vco

import (
	"testing"

	"blepvco/minblep"
)

/* general testing helpers */

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

// naiveKernel returns a kernel whose residual is zero everywhere: an
// oscillator using it renders the ideal, aliased, waveform.
func naiveKernel(tb testing.TB) *minblep.Kernel {
	table := make([]float32, minblep.TableLen)
	for i := range table {
		table[i] = 1
	}
	k, err := minblep.NewKernel(table)
	tcheck(tb, err)
	return k
}

func render(o interface{ Process([]float32) }, n int) []float32 {
	out := make([]float32, n)
	o.Process(out)
	return out
}

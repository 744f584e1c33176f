// Package minblep implements minimum-phase band-limited step (minBLEP)
// correction: a precomputed kernel holding the band-limited step sampled at
// OverSampling times the output rate, and a small ring buffer into which
// time-aligned, scaled copies of the kernel residual are accumulated.
package minblep

import (
	"fmt"
	"math"
	"sync"

	"blepvco/synth/log"
)

const (
	ZeroCrossings = 16 // zero crossings on each side of the step
	OverSampling  = 64 // kernel resolution, relative to the output rate

	// TableLen is the number of kernel samples: 2·Z·O plus one padding sample
	// so that interpolating at the largest reachable index stays in bounds.
	TableLen = 2*ZeroCrossings*OverSampling + 1

	// BufferLen is the number of output samples a single discontinuity
	// correction spans.
	BufferLen = 2 * ZeroCrossings
)

// A Kernel is the band-limited unit step, sampled at OverSampling times the
// output rate over ZeroCrossings zero crossings on each side. It is
// immutable once built and can be shared by any number of goroutines.
type Kernel struct {
	table [TableLen]float32
}

// NewKernel builds a kernel from a copy of table, which must hold exactly
// TableLen samples.
func NewKernel(table []float32) (*Kernel, error) {
	if len(table) != TableLen {
		return nil, fmt.Errorf("minblep: kernel table has %d samples, want %d", len(table), TableLen)
	}
	var k Kernel
	for i, v := range table {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("minblep: kernel sample %d is not finite (%v)", i, v)
		}
		k.table[i] = v
	}
	return &k, nil
}

// Default returns the process-wide kernel, generated on first use.
var Default = sync.OnceValue(func() *Kernel {
	k := Generate()
	log.ModKernel.InfoZ("generated default kernel").
		Int("zero crossings", ZeroCrossings).
		Int("oversampling", OverSampling).
		End()
	return k
})

// At returns the i-th kernel sample.
func (k *Kernel) At(i int) float32 { return k.table[i] }

// Table returns a copy of the kernel samples.
func (k *Kernel) Table() []float32 {
	return append([]float32(nil), k.table[:]...)
}

// residual returns the kernel minus the ideal unit step, at the fractional
// index x.
func (k *Kernel) residual(x float32) float32 {
	return InterpolateLinear(k.table[:], x) - 1
}

// InterpolateLinear returns the value of table at the fractional index x,
// linearly interpolated between its two neighbouring samples. x must lie in
// [0, len(table)-1]; the result is exact at integer indices.
func InterpolateLinear(table []float32, x float32) float32 {
	xi := int(math.Floor(float64(x)))
	xf := x - float32(xi)
	if xi == len(table)-1 {
		return table[xi]
	}
	return table[xi] + (table[xi+1]-table[xi])*xf
}

package vco

import "math"

// A jump is a discontinuity of the ideal waveform within the last sample
// interval.
type jump struct {
	phase  float32 // position of the jump, in samples before the current one, in (-1, 0]
	amount float32 // signed jump height
}

// Earliest position a jump can be reported at. A crossing so close to the
// previous sample that c-1 rounds to -1 is reported here instead.
var earliestJump = -math.Nextafter32(1, 0)

// crossing reports whether phase, having just advanced by dp, went past
// threshold, and where within the step it did, as a fraction in (0, 1].
// phase-dp may be negative right after the phase wrapped. A zero dp never
// crosses anything.
func crossing(threshold, phase, dp float32) (float32, bool) {
	c := (threshold - (phase - dp)) / dp
	return c, 0 < c && c <= 1
}

// detect returns the discontinuities of the current waveform crossed during
// the last phase advance dp. The pulse wave can jump twice in a sample when
// dp exceeds the pulse width.
func (o *Oscillator) detect(dp float32) (jumps [2]jump, n int) {
	switch o.waveform {
	case Sawtooth:
		if c, ok := crossing(0.5, o.phase, dp); ok {
			jumps[n] = newJump(c, -2)
			n++
		}
	case Pulse:
		// Rising edge when wrapping.
		if c, ok := crossing(0, o.phase, dp); ok {
			jumps[n] = newJump(c, 2)
			n++
		}
		// Falling edge at the pulse width.
		if c, ok := crossing(o.pulseWidth, o.phase, dp); ok {
			jumps[n] = newJump(c, -2)
			n++
		}
	}
	return jumps, n
}

// newJump converts a crossing fraction c in (0, 1] into a jump.
func newJump(c, amount float32) jump {
	return jump{phase: max(c-1, earliestJump), amount: amount}
}

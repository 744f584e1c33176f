// Package vco implements a band-limited oscillator producing sawtooth, pulse
// and triangle waves. Discontinuities of the sawtooth and pulse waves are
// corrected with minBLEPs, which removes most of the aliasing a naive
// rendering would produce.
package vco

import (
	"fmt"
	"math"

	"blepvco/minblep"
	"blepvco/synth/log"
	"blepvco/vco/snapshot"
)

const (
	DefaultFrequency  = 440
	DefaultPulseWidth = 0.5

	MinPulseWidth = 0.05
	MaxPulseWidth = 0.95

	// Attenuation is applied to every output sample, so that the corrected
	// waveform overshoot never clips once quantized.
	Attenuation = 0.3

	// Past this phase increment per sample, discontinuities come too close
	// to one another to be detected reliably.
	maxDeltaPhase = 0.35

	// Starting away from phase 0 avoids a discontinuity on the very first
	// sample.
	seedPhase = 0.1
)

// An Oscillator generates one band-limited waveform. For each sample:
//
//	+-----------+    +-----------+    +-----------+
//	|   Phase   |--->|  Detect   |--->|  Insert   |
//	|  advance  |    |  jumps    |    |  minBLEP  |
//	+-----------+    +-----------+    +-----------+
//	                                        |
//	                                        v
//	+-----------+    +-----------+    +-----------+
//	|  Output   |<---|    Sum    |<---| Pop ring  |
//	|  x Atten  |    |  + ideal  |    |  buffer   |
//	+-----------+    +-----------+    +-----------+
//
// An Oscillator is not safe for concurrent use. Oscillators sharing the
// same kernel can run on different goroutines.
type Oscillator struct {
	blep *minblep.Buffer

	sampleRate float32
	sampleTime float32

	phase      float32
	frequency  float32
	pulseWidth float32
	waveform   Waveform
}

// New returns an oscillator running at sampleRate Hz, correcting
// discontinuities with kernel k, initialized with Begin(wf).
func New(k *minblep.Kernel, sampleRate float32, wf Waveform) *Oscillator {
	o := &Oscillator{
		blep:       minblep.NewBuffer(k),
		sampleRate: sampleRate,
	}
	o.Begin(wf)
	return o
}

// Begin seeds the phase and restores the default frequency and pulse width.
func (o *Oscillator) Begin(wf Waveform) {
	o.sampleTime = 1 / o.sampleRate
	o.phase = seedPhase
	o.SetFrequency(DefaultFrequency)
	o.SetPulseWidth(DefaultPulseWidth)
	o.SetWaveform(wf)
}

// Reset drops pending corrections and reseeds the phase. Parameters are kept.
func (o *Oscillator) Reset() {
	o.blep.Reset()
	o.phase = seedPhase
}

// SetFrequency sets the frequency in Hz, clamped to [0, sampleRate/2].
func (o *Oscillator) SetFrequency(hz float32) {
	hz = clampFrequency(hz, o.sampleRate)
	o.frequency = hz

	log.ModOsc.InfoZ("set frequency").
		Float("hz", float64(hz)).
		End()
}

// SetPulseWidth sets the high portion of the pulse wave period, clamped to
// [MinPulseWidth, MaxPulseWidth].
func (o *Oscillator) SetPulseWidth(w float32) {
	w = clampPulseWidth(w)
	o.pulseWidth = w

	log.ModOsc.InfoZ("set pulse width").
		Float("width", float64(w)).
		End()
}

// SetWaveform selects the waveform. Invalid values are ignored.
func (o *Oscillator) SetWaveform(wf Waveform) {
	if !wf.Valid() {
		log.ModOsc.WarnZ("ignoring invalid waveform").
			Int("id", int(wf)).
			Stringer("current", o.waveform).
			End()
		return
	}
	o.waveform = wf

	log.ModOsc.InfoZ("set waveform").
		Stringer("waveform", wf).
		End()
}

func (o *Oscillator) SampleRate() float32 { return o.sampleRate }
func (o *Oscillator) Phase() float32      { return o.phase }
func (o *Oscillator) Frequency() float32  { return o.frequency }
func (o *Oscillator) PulseWidth() float32 { return o.pulseWidth }
func (o *Oscillator) Waveform() Waveform  { return o.waveform }

// Process fills out with consecutive attenuated samples.
func (o *Oscillator) Process(out []float32) {
	for i := range out {
		out[i] = o.Next() * Attenuation
	}
}

// Next advances the oscillator by one sample and returns its value, before
// attenuation.
func (o *Oscillator) Next() float32 {
	dp := o.deltaPhase()
	o.phase = wrap(o.phase + dp)

	jumps, n := o.detect(dp)
	for _, j := range jumps[:n] {
		o.blep.Insert(j.phase, j.amount)
	}

	// hard sync discontinuities would be inserted here.

	return o.synthesize()
}

func (o *Oscillator) deltaPhase() float32 {
	return min(max(o.frequency*o.sampleTime, 0), maxDeltaPhase)
}

// synthesize returns the current sample: the ideal waveform value plus the
// pending correction. The triangle has no value discontinuity and takes no
// correction.
func (o *Oscillator) synthesize() float32 {
	switch o.waveform {
	case Sawtooth:
		x := o.phase + 0.5
		x -= float32(math.Trunc(float64(x)))
		return 2*x - 1 + o.blep.Process()
	case Pulse:
		v := float32(-1)
		if o.phase < o.pulseWidth {
			v = 1
		}
		return v + o.blep.Process()
	case Triangle:
		return 1 - 4*min(abs(o.phase-0.25), abs(o.phase-1.25))
	}
	return 0
}

func (o *Oscillator) State() *snapshot.Oscillator {
	var state snapshot.Oscillator
	state.SampleRate = o.sampleRate
	state.Phase = o.phase
	state.Frequency = o.frequency
	state.PulseWidth = o.pulseWidth
	state.Waveform = uint8(o.waveform)
	state.Blep.Pos, state.Blep.Pending = o.blep.State()
	return &state
}

// SetState restores a state obtained with State. The oscillator is left
// untouched if the state has an invalid sample rate, waveform or phase;
// parameters are clamped as their setters do.
func (o *Oscillator) SetState(state *snapshot.Oscillator) error {
	sr := float64(state.SampleRate)
	if !(sr > 0) || math.IsInf(sr, 0) {
		return fmt.Errorf("invalid sample rate %v", state.SampleRate)
	}
	if wf := Waveform(state.Waveform); !wf.Valid() {
		return fmt.Errorf("invalid waveform %d", state.Waveform)
	}
	if ph := float64(state.Phase); math.IsNaN(ph) || math.IsInf(ph, 0) {
		return fmt.Errorf("invalid phase %v", state.Phase)
	}

	o.sampleRate = state.SampleRate
	o.sampleTime = 1 / o.sampleRate
	o.phase = wrap(state.Phase)
	o.frequency = clampFrequency(state.Frequency, o.sampleRate)
	o.pulseWidth = clampPulseWidth(state.PulseWidth)
	o.waveform = Waveform(state.Waveform)
	o.blep.SetState(state.Blep.Pos, state.Blep.Pending)
	return nil
}

// clampFrequency clamps hz to [0, sampleRate/2], NaN becoming 0.
func clampFrequency(hz, sampleRate float32) float32 {
	switch {
	case hz != hz || hz < 0:
		return 0
	case hz > sampleRate/2:
		return sampleRate / 2
	}
	return hz
}

func clampPulseWidth(w float32) float32 {
	switch {
	case w != w || w < MinPulseWidth:
		return MinPulseWidth
	case w > MaxPulseWidth:
		return MaxPulseWidth
	}
	return w
}

// wrap returns x modulo 1, in [0, 1) whatever the sign of x.
func wrap(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

func abs(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}

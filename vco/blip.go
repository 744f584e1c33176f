package vco

import (
	"math"

	"github.com/arl/blip"
)

// Transitions are placed on a grid of clocksPerSample clocks per output
// sample.
const clocksPerSample = 1 << 10

// BlipPulse is a pulse wave whose transitions are band-limited by a
// blip.Buffer rather than by minBLEPs. It serves as a reference when
// comparing renders; it has the same attenuation and parameter ranges as an
// Oscillator producing a pulse wave.
type BlipPulse struct {
	buf        *blip.Buffer
	tmp        []int16
	sampleRate float64
	clockRate  float64

	frequency  float64
	pulseWidth float64

	high   bool
	volume int32
	amp    int32
	time   float64 // clocks until the next transition, relative to the frame start
}

// NewBlipPulse returns a reference pulse source running at sampleRate Hz,
// producing at most maxBlock samples per internal frame.
func NewBlipPulse(sampleRate float64, maxBlock int) *BlipPulse {
	maxBlock = min(maxBlock, blip.MaxFrame)
	p := &BlipPulse{
		buf:        blip.NewBuffer(maxBlock),
		tmp:        make([]int16, maxBlock),
		sampleRate: sampleRate,
		clockRate:  sampleRate * clocksPerSample,
		frequency:  DefaultFrequency,
		pulseWidth: DefaultPulseWidth,
		volume:     int32(math.Round(Attenuation * math.MaxInt16)),
	}
	p.buf.SetRates(p.clockRate, p.sampleRate)
	return p
}

// SetFrequency sets the frequency in Hz, clamped to [0, sampleRate/2].
func (p *BlipPulse) SetFrequency(hz float64) {
	p.frequency = min(max(hz, 0), p.sampleRate/2)
}

// SetPulseWidth sets the high portion of the period, clamped to
// [MinPulseWidth, MaxPulseWidth].
func (p *BlipPulse) SetPulseWidth(w float64) {
	p.pulseWidth = min(max(w, MinPulseWidth), MaxPulseWidth)
}

// Process fills out with consecutive samples.
func (p *BlipPulse) Process(out []float32) {
	for len(out) > 0 {
		n := min(len(out), len(p.tmp))
		clocks := p.buf.ClocksNeeded(n)
		p.run(clocks)
		p.buf.EndFrame(clocks)

		got := p.buf.ReadSamples(p.tmp[:n], n, blip.Mono)
		if got == 0 {
			clear(out)
			return
		}
		for i, s := range p.tmp[:got] {
			out[i] = float32(s) / 32768
		}
		out = out[got:]
	}
}

// run adds the transitions happening in the next clocks clock cycles.
func (p *BlipPulse) run(clocks int) {
	if p.frequency <= 0 {
		// Hold the current level.
		p.time = 0
		return
	}

	period := p.clockRate / p.frequency
	for p.time < float64(clocks) {
		p.high = !p.high
		target := -p.volume
		if p.high {
			target = p.volume
		}
		p.buf.AddDelta(uint64(p.time), target-p.amp)
		p.amp = target

		if p.high {
			p.time += period * p.pulseWidth
		} else {
			p.time += period * (1 - p.pulseWidth)
		}
	}
	p.time -= float64(clocks)
}

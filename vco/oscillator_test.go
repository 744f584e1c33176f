package vco

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"

	"blepvco/minblep"
	"blepvco/vco/snapshot"
)

var approx = cmpopts.EquateApprox(0, 1e-5)

func TestPhaseStaysInUnitInterval(t *testing.T) {
	freqs := []float32{0, 1, 27.5, 440, 5000.3, 12345.6, 22050, 1e6}
	for _, wf := range []Waveform{Sawtooth, Pulse, Triangle} {
		for _, freq := range freqs {
			o := New(minblep.Default(), 44100, wf)
			o.SetFrequency(freq)
			for i := range 50000 {
				o.Next()
				if p := o.Phase(); p < 0 || p >= 1 {
					t.Fatalf("%s %vHz: phase = %v after %d samples", wf, freq, p, i+1)
				}
			}
		}
	}
}

func TestDeltaPhaseClamp(t *testing.T) {
	o := New(minblep.Default(), 44100, Sawtooth)

	o.SetFrequency(441)
	if got, want := o.deltaPhase(), float32(441)/44100; math.Abs(float64(got-want)) > 1e-7 {
		t.Errorf("deltaPhase() = %v, want %v", got, want)
	}

	o.SetFrequency(22050)
	if got := o.deltaPhase(); got != maxDeltaPhase {
		t.Errorf("deltaPhase() at nyquist = %v, want %v", got, maxDeltaPhase)
	}
}

func TestSetters(t *testing.T) {
	o := New(minblep.Default(), 48000, Pulse)

	tests := []struct {
		freq, wantFreq float32
		pw, wantPW     float32
	}{
		{440, 440, 0.5, 0.5},
		{-10, 0, 0.01, MinPulseWidth},
		{30000, 24000, 0.99, MaxPulseWidth},
		{float32(math.NaN()), 0, float32(math.NaN()), MinPulseWidth},
		{24000, 24000, 0.95, 0.95},
	}
	for _, tt := range tests {
		o.SetFrequency(tt.freq)
		o.SetPulseWidth(tt.pw)
		if got := o.Frequency(); got != tt.wantFreq {
			t.Errorf("SetFrequency(%v): Frequency() = %v, want %v", tt.freq, got, tt.wantFreq)
		}
		if got := o.PulseWidth(); got != tt.wantPW {
			t.Errorf("SetPulseWidth(%v): PulseWidth() = %v, want %v", tt.pw, got, tt.wantPW)
		}
	}
}

func TestSetWaveformIgnoresInvalid(t *testing.T) {
	o := New(minblep.Default(), 44100, Triangle)
	o.SetWaveform(Waveform(7))
	if got := o.Waveform(); got != Triangle {
		t.Errorf("Waveform() = %v, want %v", got, Triangle)
	}
}

func TestBegin(t *testing.T) {
	o := New(minblep.Default(), 44100, Sawtooth)
	o.SetFrequency(1000)
	o.SetPulseWidth(0.2)
	render(o, 100)

	o.Begin(Pulse)
	if o.Phase() != seedPhase || o.Frequency() != DefaultFrequency ||
		o.PulseWidth() != DefaultPulseWidth || o.Waveform() != Pulse {
		t.Errorf("Begin(Pulse): phase %v freq %v pw %v waveform %v",
			o.Phase(), o.Frequency(), o.PulseWidth(), o.Waveform())
	}
}

func TestCrossing(t *testing.T) {
	tests := []struct {
		name                 string
		threshold, phase, dp float32
		want                 float32
		ok                   bool
	}{
		{"mid step", 0.5, 0.7, 0.4, 0.5, true},
		{"before", 0.5, 0.45, 0.1, 0, false},
		{"exactly at end", 0.5, 0.5, 0.125, 1, true},
		{"exactly at start", 0.5, 0.625, 0.125, 0, false},
		{"after wrap", 0, 0.05, 0.1, 0.5, true},
		{"zero step", 0.5, 0.5, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := crossing(tt.threshold, tt.phase, tt.dp)
			if ok != tt.ok {
				t.Fatalf("crossing(%v, %v, %v) ok = %t, want %t", tt.threshold, tt.phase, tt.dp, ok, tt.ok)
			}
			if ok && !cmp.Equal(got, tt.want, approx) {
				t.Errorf("crossing(%v, %v, %v) = %v, want %v", tt.threshold, tt.phase, tt.dp, got, tt.want)
			}
		})
	}
}

func TestSawtoothJumpMidSample(t *testing.T) {
	o := New(minblep.Default(), 44100, Sawtooth)
	o.phase = 0.7 // advanced from 0.3

	jumps, n := o.detect(0.4)
	want := []jump{{phase: -0.5, amount: -2}}
	if diff := cmp.Diff(want, jumps[:n], cmp.AllowUnexported(jump{}), approx); diff != "" {
		t.Errorf("detect() mismatch (-want +got):\n%s", diff)
	}
}

// With a power-of-two sample rate, the phase increment is exact and the
// phase never lands close to the sawtooth threshold.
func TestSawtoothJumpsOnlyWhenCrossingHalf(t *testing.T) {
	const sampleRate, freq = 1024, 128
	o := New(minblep.Default(), sampleRate, Sawtooth)
	o.SetFrequency(freq)
	dp := float32(freq) / sampleRate

	var njumps int
	for i := range 800 {
		prev := float64(o.Phase())
		o.Next()
		_, n := o.detect(dp)

		straddles := prev < 0.5 && 0.5 <= prev+float64(dp)
		if straddles != (n == 1) {
			t.Fatalf("sample %d: phase %v -> %v, %d jumps", i, prev, o.Phase(), n)
		}
		njumps += n
	}
	if njumps != 100 {
		t.Errorf("got %d jumps over 100 periods, want 100", njumps)
	}
}

func TestPulseBothEdgesInOneSample(t *testing.T) {
	o := New(minblep.Default(), 44100, Pulse)
	o.SetPulseWidth(MinPulseWidth)
	o.phase = 0.2 // wrapped, advanced from 0.9

	jumps, n := o.detect(0.3)
	want := []jump{
		{phase: 1.0/3 - 1, amount: 2},
		{phase: 0.5 - 1, amount: -2},
	}
	if diff := cmp.Diff(want, jumps[:n], cmp.AllowUnexported(jump{}), approx); diff != "" {
		t.Errorf("detect() mismatch (-want +got):\n%s", diff)
	}
}

func TestTriangleHasNoJumps(t *testing.T) {
	o := New(minblep.Default(), 44100, Triangle)
	o.SetFrequency(15000)
	for range 1000 {
		o.Next()
		if _, n := o.detect(o.deltaPhase()); n != 0 {
			t.Fatalf("triangle at phase %v: %d jumps", o.Phase(), n)
		}
		if _, pending := o.blep.State(); pending != ([minblep.BufferLen]float32{}) {
			t.Fatalf("triangle received corrections: %v", pending)
		}
	}
}

func TestTriangleShape(t *testing.T) {
	o := New(minblep.Default(), 44100, Triangle)
	o.SetFrequency(1000)
	for range 500 {
		got := o.Next()
		p := float64(o.Phase())
		want := 1 - 4*math.Min(math.Abs(p-0.25), math.Abs(p-1.25))
		if math.Abs(float64(got)-want) > 1e-6 {
			t.Fatalf("phase %v: triangle = %v, want %v", p, got, want)
		}
	}
}

func TestFirstPulseSample(t *testing.T) {
	o := New(minblep.Default(), 44100, Pulse)

	out := render(o, 1)
	if !cmp.Equal(o.Phase(), float32(0.1+440.0/44100), approx) {
		t.Errorf("phase after one sample = %v, want ~0.10998", o.Phase())
	}
	if out[0] != Attenuation {
		t.Errorf("first sample = %v, want %v", out[0], float32(Attenuation))
	}
}

func TestZeroFrequencyHolds(t *testing.T) {
	for _, wf := range []Waveform{Sawtooth, Pulse, Triangle} {
		o := New(minblep.Default(), 44100, wf)
		o.SetFrequency(0)

		out := render(o, 64)
		for i := range out {
			if out[i] != out[0] {
				t.Fatalf("%s at 0Hz: sample %d = %v, want %v", wf, i, out[i], out[0])
			}
		}
	}
}

func TestResetClearsCorrections(t *testing.T) {
	k := minblep.Default()
	o := New(k, 44100, Sawtooth)
	o.SetFrequency(3000)
	render(o, 123)
	o.Reset()

	fresh := New(k, 44100, Sawtooth)
	fresh.SetFrequency(3000)
	if diff := cmp.Diff(render(fresh, 256), render(o, 256)); diff != "" {
		t.Errorf("reset oscillator differs from a fresh one (-fresh +reset):\n%s", diff)
	}
}

// automate applies the same parameter changes block after block.
func automate(o *Oscillator, nblocks int) []float32 {
	var out []float32
	block := make([]float32, 128)
	for i := range nblocks {
		o.SetFrequency(55 * float32(i+1))
		o.SetPulseWidth(0.05 + float32(i%10)*0.1)
		o.SetWaveform(Waveform(i/4) % 3)
		o.Process(block)
		out = append(out, block...)
	}
	return out
}

func TestIdenticalInstancesProduceIdenticalOutput(t *testing.T) {
	k := minblep.Default()
	a := automate(New(k, 44100, Sawtooth), 40)
	b := automate(New(k, 44100, Sawtooth), 40)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("outputs differ (-a +b):\n%s", diff)
	}
}

func TestConcurrentInstancesShareKernel(t *testing.T) {
	k := minblep.Default()
	want := automate(New(k, 44100, Pulse), 40)

	const ninstances = 8
	outs := make([][]float32, ninstances)
	var g errgroup.Group
	for i := range ninstances {
		g.Go(func() error {
			outs[i] = automate(New(k, 44100, Pulse), 40)
			return nil
		})
	}
	tcheck(t, g.Wait())

	for i, got := range outs {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("instance %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestStateRestore(t *testing.T) {
	k := minblep.Default()
	o := New(k, 44100, Pulse)
	o.SetFrequency(7040)
	o.SetPulseWidth(0.3)
	render(o, 1001)

	clone := New(k, 22050, Triangle)
	tcheck(t, clone.SetState(o.State()))

	if diff := cmp.Diff(render(o, 512), render(clone, 512)); diff != "" {
		t.Errorf("restored oscillator diverges (-orig +clone):\n%s", diff)
	}
}

func TestSetStateRejectsInvalid(t *testing.T) {
	k := naiveKernel(t)
	tests := []struct {
		name   string
		modify func(*snapshot.Oscillator)
	}{
		{"zero sample rate", func(s *snapshot.Oscillator) { s.SampleRate = 0 }},
		{"negative sample rate", func(s *snapshot.Oscillator) { s.SampleRate = -44100 }},
		{"nan sample rate", func(s *snapshot.Oscillator) { s.SampleRate = float32(math.NaN()) }},
		{"waveform", func(s *snapshot.Oscillator) { s.Waveform = 7 }},
		{"phase", func(s *snapshot.Oscillator) { s.Phase = float32(math.Inf(1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(k, 44100, Sawtooth)
			state := o.State()
			tt.modify(state)

			before := o.State()
			if err := o.SetState(state); err == nil {
				t.Fatalf("SetState() succeeded")
			}
			if diff := cmp.Diff(before, o.State()); diff != "" {
				t.Errorf("oscillator modified by a rejected state (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetStateClampsParameters(t *testing.T) {
	o := New(naiveKernel(t), 44100, Pulse)
	state := o.State()
	state.Phase = 1.25
	state.Frequency = 1e6
	state.PulseWidth = 0
	state.Blep.Pos = -3
	tcheck(t, o.SetState(state))

	if o.Phase() != 0.25 {
		t.Errorf("Phase() = %v, want 0.25", o.Phase())
	}
	if o.Frequency() != 22050 {
		t.Errorf("Frequency() = %v, want 22050", o.Frequency())
	}
	if o.PulseWidth() != MinPulseWidth {
		t.Errorf("PulseWidth() = %v, want %v", o.PulseWidth(), MinPulseWidth)
	}
	if got := o.State().Blep.Pos; got != minblep.BufferLen-3 {
		t.Errorf("Blep.Pos = %d, want %d", got, minblep.BufferLen-3)
	}
	render(o, 2*minblep.BufferLen)
}

// aliasEnergy returns the energy of the spectrum of x outside the harmonics
// of fundamental (in bins), DC excluded.
func aliasEnergy(x []float32, fundamental int) float64 {
	in := make([]float64, len(x))
	for i, v := range x {
		in[i] = float64(v)
	}
	spectrum := fft.FFTReal(in)

	var energy float64
	for bin := 1; bin < len(spectrum)/2; bin++ {
		if bin%fundamental == 0 {
			continue
		}
		re, im := real(spectrum[bin]), imag(spectrum[bin])
		energy += re*re + im*im
	}
	return energy
}

func TestMinBLEPReducesAliasing(t *testing.T) {
	// One second at a power-of-two rate gives 1Hz bins and an exact phase
	// increment, so harmonics fall on exact bins.
	const sampleRate, freq = 32768, 2000

	for _, wf := range []Waveform{Sawtooth, Pulse} {
		naive := New(naiveKernel(t), sampleRate, wf)
		naive.SetFrequency(freq)
		blep := New(minblep.Default(), sampleRate, wf)
		blep.SetFrequency(freq)

		naiveAlias := aliasEnergy(render(naive, sampleRate), freq)
		blepAlias := aliasEnergy(render(blep, sampleRate), freq)
		if blepAlias > naiveAlias/10 {
			t.Errorf("%s: alias energy %g with minBLEP, %g without", wf, blepAlias, naiveAlias)
		}
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	o := New(minblep.Default(), 44100, Pulse)
	o.SetFrequency(12000)
	block := make([]float32, 128)

	allocs := testing.AllocsPerRun(100, func() { o.Process(block) })
	if allocs != 0 {
		t.Errorf("Process allocates %v times per block", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	for _, wf := range []Waveform{Sawtooth, Pulse, Triangle} {
		b.Run(wf.String(), func(b *testing.B) {
			o := New(minblep.Default(), 44100, wf)
			o.SetFrequency(1760)
			block := make([]float32, 128)
			for b.Loop() {
				o.Process(block)
			}
		})
	}
}

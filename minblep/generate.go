package minblep

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Generate computes the kernel: a Blackman-Harris windowed sinc, turned into
// its minimum-phase equivalent through the real cepstrum, then integrated
// into a step and normalized so that it settles exactly on 1.
func Generate() *Kernel {
	const n = TableLen - 1

	x := make([]float64, n)
	for i := range x {
		p := -ZeroCrossings + 2*ZeroCrossings*float64(i)/float64(n-1)
		x[i] = sinc(p) * blackmanHarris(float64(i)/float64(n-1))
	}

	// Real cepstrum. Magnitudes are clamped so that log(0) does not blow up.
	spectrum := fft.FFTReal(x)
	for i, c := range spectrum {
		spectrum[i] = complex(math.Max(-30, math.Log(cmplx.Abs(c))), 0)
	}
	cepstrum := fft.IFFT(spectrum)

	// Fold the anti-causal part of the cepstrum onto the causal part.
	folded := make([]float64, n)
	folded[0] = real(cepstrum[0])
	for i := 1; i < n/2; i++ {
		folded[i] = 2 * real(cepstrum[i])
	}
	folded[n/2] = real(cepstrum[n/2])

	spectrum = fft.FFTReal(folded)
	for i, c := range spectrum {
		spectrum[i] = cmplx.Exp(c)
	}
	impulse := fft.IFFT(spectrum)

	var total float64
	for i := range x {
		total += real(impulse[i])
		x[i] = total
	}

	var k Kernel
	for i := range x {
		k.table[i] = float32(x[i] / total)
	}
	k.table[n] = 1
	return &k
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

// blackmanHarris returns the 4-term Blackman-Harris window at p in [0, 1].
func blackmanHarris(p float64) float64 {
	return 0.35875 -
		0.48829*math.Cos(2*math.Pi*p) +
		0.14128*math.Cos(4*math.Pi*p) -
		0.01168*math.Cos(6*math.Pi*p)
}

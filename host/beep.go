package host

import (
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// Streamer adapts a Source to a beep.Streamer. The mono source is copied to
// both channels.
type Streamer struct {
	src Source
	buf []float32
}

func NewStreamer(src Source, blockSize int) *Streamer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Streamer{src: src, buf: make([]float32, blockSize)}
}

func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	for len(samples) > 0 {
		chunk := s.buf[:min(len(samples), len(s.buf))]
		s.src.Process(chunk)
		for i, v := range chunk {
			samples[i][0] = float64(v)
			samples[i][1] = float64(v)
		}
		samples = samples[len(chunk):]
		n += len(chunk)
	}
	return n, true
}

func (*Streamer) Err() error { return nil }

// WriteWAV encodes nsamples samples of src as a mono 16-bit WAV file. Samples
// are quantized by beep's encoder, which scales by 32767 where Quantize
// scales by 32768: the two differ by at most one step.
func WriteWAV(w io.WriteSeeker, src Source, sampleRate, nsamples, blockSize int) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	s := beep.Take(nsamples, NewStreamer(src, blockSize))
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return nil
}

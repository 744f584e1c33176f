// Package host connects block sources, such as oscillators, to audio
// outputs. Sources produce blocks of float samples on demand; a Stream pulls
// one block at a time, quantizes it and hands it to a Sink.
package host

import (
	"math"
)

// DefaultBlockSize is the number of samples per block.
const DefaultBlockSize = 128

// A Source produces consecutive samples. Process must fill out entirely.
type Source interface {
	Process(out []float32)
}

// A Sink receives quantized blocks. The block is only valid for the duration
// of the call.
type Sink interface {
	WriteBlock(block []int16) error
}

// Stream pulls fixed-size blocks from a Source. All buffers are allocated
// once, by NewStream.
type Stream struct {
	src Source
	buf []float32
	pcm []int16
}

func NewStream(src Source, blockSize int) *Stream {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Stream{
		src: src,
		buf: make([]float32, blockSize),
		pcm: make([]int16, blockSize),
	}
}

func (s *Stream) BlockSize() int { return len(s.buf) }

// Next produces the next block, quantized. The returned slice is reused by
// the following call.
func (s *Stream) Next() []int16 {
	s.src.Process(s.buf)
	Quantize(s.pcm, s.buf)
	return s.pcm
}

// Update produces the next block and transmits it to sink.
func (s *Stream) Update(sink Sink) error {
	return sink.WriteBlock(s.Next())
}

// Quantize converts float samples in [-1, 1] to signed 16-bit samples,
// saturating out of range values.
func Quantize(dst []int16, src []float32) {
	for i, v := range src[:len(dst)] {
		x := v * 32768
		switch {
		case x >= math.MaxInt16:
			dst[i] = math.MaxInt16
		case x <= math.MinInt16:
			dst[i] = math.MinInt16
		default:
			dst[i] = int16(x)
		}
	}
}

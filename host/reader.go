package host

import (
	"encoding/binary"
	"io"
)

// Reader exposes a Stream as little-endian signed 16-bit PCM. Blocks are
// pulled from the stream as the reader consumes them, which makes Reader the
// glue between a Source and pull-based outputs.
type Reader struct {
	stream  *Stream
	pending []int16
}

func NewReader(s *Stream) *Reader {
	return &Reader{stream: s}
}

// Read fills p with whole samples. It never fails: sources are infinite.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for len(p)-n >= 2 {
		if len(r.pending) == 0 {
			r.pending = r.stream.Next()
		}
		binary.LittleEndian.PutUint16(p[n:], uint16(r.pending[0]))
		r.pending = r.pending[1:]
		n += 2
	}
	if n == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}
	return n, nil
}

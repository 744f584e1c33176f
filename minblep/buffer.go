package minblep

import "fmt"

// Buffer accumulates pending minBLEP corrections for the next BufferLen
// output samples. Each slot holds the sum of every injected residual
// overlapping it, and is zeroed once consumed by Process.
//
// A Buffer belongs to a single oscillator and is not safe for concurrent use.
type Buffer struct {
	kernel *Kernel
	pos    int
	buf    [BufferLen]float32
}

func NewBuffer(k *Kernel) *Buffer {
	return &Buffer{kernel: k}
}

// Insert adds a discontinuity of the given amount (signed jump height)
// occurring at phase, expressed in samples relative to the current sample
// boundary. phase must lie in (-1, 0]; anything else is a programming error
// and panics.
func (b *Buffer) Insert(phase, amount float32) {
	if !(-1 < phase && phase <= 0) {
		panic(fmt.Sprintf("minblep: discontinuity at phase %v, outside (-1, 0]", phase))
	}
	for j := range BufferLen {
		idx := (float32(j) - phase) * OverSampling
		i := (b.pos + j) % BufferLen
		b.buf[i] += amount * b.kernel.residual(idx)
	}
}

// Process pops the correction for the current output sample. It must be
// called exactly once per output sample, after the sample's insertions.
func (b *Buffer) Process() float32 {
	v := b.buf[b.pos]
	b.buf[b.pos] = 0
	b.pos = (b.pos + 1) % BufferLen
	return v
}

// Reset discards all pending corrections.
func (b *Buffer) Reset() {
	b.pos = 0
	clear(b.buf[:])
}

// State returns the read cursor and the pending corrections, in slot order.
func (b *Buffer) State() (pos int, pending [BufferLen]float32) {
	return b.pos, b.buf
}

// SetState restores a state obtained with State. The cursor is taken modulo
// BufferLen.
func (b *Buffer) SetState(pos int, pending [BufferLen]float32) {
	b.pos = (pos%BufferLen + BufferLen) % BufferLen
	b.buf = pending
}

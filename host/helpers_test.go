package host

import "testing"

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

// ramp produces 0, 1/32768, 2/32768... so that quantized samples count up.
type ramp struct{ n int }

func (r *ramp) Process(out []float32) {
	for i := range out {
		out[i] = float32(r.n) / 32768
		r.n++
	}
}

type recorder struct {
	blocks [][]int16
}

func (r *recorder) WriteBlock(block []int16) error {
	r.blocks = append(r.blocks, append([]int16(nil), block...))
	return nil
}

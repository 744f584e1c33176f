package vco

import "fmt"

//go:generate go tool stringer -type=Waveform -linecomment

// Waveform selects the shape produced by an Oscillator.
type Waveform uint8

const (
	Sawtooth Waveform = iota // sawtooth
	Pulse                    // pulse
	Triangle                 // triangle
)

func (w Waveform) Valid() bool { return w <= Triangle }

// ParseWaveform returns the waveform with the given name. Square is accepted
// as an alias for pulse.
func ParseWaveform(s string) (Waveform, error) {
	for w := Sawtooth; w.Valid(); w++ {
		if w.String() == s {
			return w, nil
		}
	}
	switch s {
	case "saw":
		return Sawtooth, nil
	case "square":
		return Pulse, nil
	case "tri":
		return Triangle, nil
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

func (w Waveform) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid waveform %d", w)
	}
	return []byte(w.String()), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

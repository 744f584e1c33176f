package snapshot

import "blepvco/minblep"

type Oscillator struct {
	SampleRate float32
	Phase      float32
	Frequency  float32
	PulseWidth float32
	Waveform   uint8

	Blep Blep
}

type Blep struct {
	Pos     int
	Pending [minblep.BufferLen]float32
}

// Package synth assembles a kernel, a sound source and an audio backend
// according to a Config, and runs them.
package synth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"blepvco/host"
	"blepvco/minblep"
	"blepvco/synth/log"
	"blepvco/vco"
)

// LoadKernel returns the kernel configured by kcfg: the one stored at
// kcfg.Path if set, or the process-wide generated kernel.
func LoadKernel(kcfg KernelConfig) (*minblep.Kernel, error) {
	if kcfg.Path == "" {
		return minblep.Default(), nil
	}
	k, err := minblep.LoadFile(kcfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kernel: %w", err)
	}
	log.ModKernel.InfoZ("loaded kernel").String("path", kcfg.Path).End()
	return k, nil
}

// NewSource builds the sound source described by ocfg.
func NewSource(ocfg OscillatorConfig, k *minblep.Kernel, sampleRate, blockSize int) (host.Source, error) {
	switch ocfg.Engine {
	case EngineMinBLEP:
		osc := vco.New(k, float32(sampleRate), ocfg.Waveform)
		osc.SetFrequency(float32(ocfg.Frequency))
		osc.SetPulseWidth(float32(ocfg.PulseWidth))
		return osc, nil
	case EngineBlip:
		if ocfg.Waveform != vco.Pulse {
			return nil, fmt.Errorf("%s engine only renders %s waves, not %s", EngineBlip, vco.Pulse, ocfg.Waveform)
		}
		p := vco.NewBlipPulse(float64(sampleRate), blockSize)
		p.SetFrequency(ocfg.Frequency)
		p.SetPulseWidth(ocfg.PulseWidth)
		return p, nil
	}
	return nil, fmt.Errorf("unknown oscillator engine %q", ocfg.Engine)
}

type output interface {
	host.Sink
	Close() error
}

// discard consumes blocks as fast as they're produced.
type discard struct{}

func (discard) WriteBlock([]int16) error { return nil }
func (discard) Close() error             { return nil }

// Synth plays a source through an audio backend.
type Synth struct {
	cfg    AudioConfig
	stream *host.Stream

	out    output          // push backends
	player *host.OtoPlayer // pull backend
}

// Launch loads the kernel, builds the source and opens the audio backend. It
// doesn't produce any sound, call Run() for that.
func Launch(cfg Config) (*Synth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k, err := LoadKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}

	src, err := NewSource(cfg.Oscillator, k, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
	if err != nil {
		return nil, err
	}

	s := &Synth{cfg: cfg.Audio}
	switch cfg.Audio.Backend {
	case BackendSDL:
		if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
			return nil, fmt.Errorf("failed to initialize sdl audio: %w", err)
		}
		sink, err := host.OpenSDL(cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		if err != nil {
			sdl.Quit()
			return nil, err
		}
		s.out = sink
		s.stream = host.NewStream(src, cfg.Audio.BlockSize)
	case BackendOto:
		s.player, err = host.NewOtoPlayer(src, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		if err != nil {
			return nil, err
		}
	case BackendNone:
		log.ModSynth.WarnZ("Audio disabled").End()
		s.out = discard{}
		s.stream = host.NewStream(src, cfg.Audio.BlockSize)
	}

	log.AddContext(s)
	log.ModSynth.InfoZ("synth launched").
		String("backend", cfg.Audio.Backend).
		String("engine", cfg.Oscillator.Engine).
		Stringer("waveform", cfg.Oscillator.Waveform).
		Float("freq", cfg.Oscillator.Frequency).
		Float("pw", cfg.Oscillator.PulseWidth).
		End()
	return s, nil
}

// Run plays for d, or until ctx is done.
func (s *Synth) Run(ctx context.Context, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if s.player != nil {
		s.player.Play()
		<-ctx.Done()
		return nil
	}

	nblocks := blocksFor(d, s.cfg.SampleRate, s.cfg.BlockSize)
	for i := 0; i < nblocks; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := s.stream.Update(s.out); err != nil {
			return fmt.Errorf("audio output failed: %w", err)
		}
	}
	log.ModSynth.InfoZ("run loop exited").Duration("duration", d).End()
	return nil
}

// AddLogContext implements log.Context.
func (s *Synth) AddLogContext(z *log.EntryZ) {
	z.String("backend", s.cfg.Backend).Int("rate", s.cfg.SampleRate)
}

// Close releases the audio backend.
func (s *Synth) Close() error {
	log.RemoveContext(s)
	if s.player != nil {
		return s.player.Close()
	}
	err := s.out.Close()
	if s.cfg.Backend == BackendSDL {
		sdl.Quit()
	}
	return err
}

// blocksFor returns the number of blocks needed to cover d.
func blocksFor(d time.Duration, sampleRate, blockSize int) int {
	n := samplesFor(d, sampleRate)
	return (n + blockSize - 1) / blockSize
}

func samplesFor(d time.Duration, sampleRate int) int {
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

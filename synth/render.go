package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"blepvco/host"
	"blepvco/synth/log"
	"blepvco/vco"
)

// RenderPaths returns the output file of each waveform. With a single
// waveform the path is used as is, otherwise the waveform name is appended
// to the file name: out.wav becomes out-pulse.wav.
func RenderPaths(path string, wfs []vco.Waveform) []string {
	if len(wfs) == 1 {
		return []string{path}
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	paths := make([]string, len(wfs))
	for i, wf := range wfs {
		paths[i] = fmt.Sprintf("%s-%s%s", base, wf, ext)
	}
	return paths
}

// Render writes d worth of each waveform as a WAV file. Waveforms are
// rendered concurrently, all oscillators sharing the same kernel. It
// returns the written files.
func Render(ctx context.Context, cfg Config, wfs []vco.Waveform, path string, d time.Duration) ([]string, error) {
	if len(wfs) == 0 {
		wfs = []vco.Waveform{cfg.Oscillator.Waveform}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k, err := LoadKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}

	nsamples := samplesFor(d, cfg.Audio.SampleRate)
	paths := RenderPaths(path, wfs)

	// All sources are built before any file gets created.
	srcs := make([]host.Source, len(wfs))
	for i, wf := range wfs {
		ocfg := cfg.Oscillator
		ocfg.Waveform = wf
		srcs[i], err = NewSource(ocfg, k, cfg.Audio.SampleRate, cfg.Audio.BlockSize)
		if err != nil {
			return nil, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, wf := range wfs {
		src := srcs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := renderFile(paths[i], src, cfg.Audio, nsamples); err != nil {
				return err
			}
			log.ModSynth.InfoZ("rendered").
				String("path", paths[i]).
				Stringer("waveform", wf).
				Int("samples", nsamples).
				Duration("took", time.Since(start)).
				End()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderFile(path string, src host.Source, acfg AudioConfig, nsamples int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := host.WriteWAV(f, src, acfg.SampleRate, nsamples, acfg.BlockSize); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

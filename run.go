package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"blepvco/minblep"
	"blepvco/synth"
	"blepvco/synth/log"
)

// playMain plays the configured oscillator until the duration elapses or the
// program is interrupted. The audio device is closed before returning.
func playMain(args Play, cfg synth.Config) error {
	cfg, err := args.config(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s, err := synth.Launch(cfg)
	if err != nil {
		return fmt.Errorf("failed to start synth: %w", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Run(ctx, args.Duration); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

func renderMain(args Render, cfg synth.Config) error {
	cfg, wfs, err := args.config(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths, err := synth.Render(ctx, cfg, wfs, args.Output, args.Duration)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

func kernelMain(args Kernel, cfg synth.Config) error {
	k, err := synth.LoadKernel(cfg.Kernel)
	if err != nil {
		return fmt.Errorf("failed to get kernel: %w", err)
	}
	if err := minblep.SaveFile(args.Output, k); err != nil {
		return fmt.Errorf("failed to write kernel: %w", err)
	}
	log.ModKernel.InfoZ("kernel written").String("path", args.Output).End()
	return nil
}

func versionMain() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("blepvco", version)
}

package main

import (
	"os"

	"blepvco/synth"
)

func main() {
	cli := parseArgs(os.Args[1:])

	var cfg synth.Config
	if cli.Config != "" {
		var err error
		cfg, err = synth.LoadConfig(cli.Config)
		checkf(err, "failed to load configuration")
	} else {
		cfg = synth.LoadConfigOrDefault()
	}

	switch cli.mode {
	case playMode:
		checkf(playMain(cli.Play, cfg), "play")
	case renderMode:
		checkf(renderMain(cli.Render, cfg), "render")
	case kernelMode:
		checkf(kernelMain(cli.Kernel, cfg), "kernel")
	case versionMode:
		versionMain()
	}
}

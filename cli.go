package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"blepvco/synth"
	"blepvco/synth/log"
	"blepvco/vco"
)

type mode byte

const (
	playMode    mode = iota // Play through the audio backend
	renderMode              // Render to WAV files
	kernelMode              // Write the kernel table
	versionMode             // Show blepvco version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play the oscillator through the audio backend. (default command)" default:"withargs"`
		Render  Render  `cmd:"" help:"Render waveforms to WAV files."`
		Kernel  Kernel  `cmd:"" help:"Write the minBLEP kernel table to a file."`
		Version Version `cmd:"" help:"Show blepvco version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	// OscFlags override the [oscillator] section of the configuration.
	OscFlags struct {
		Freq   *float64 `name:"freq" help:"Frequency in Hz."`
		PW     *float64 `name:"pw" help:"Pulse width, in (0, 1)."`
		Engine string   `name:"engine" help:"${engine_help}" placeholder:"minblep|blip"`
	}

	Play struct {
		OscFlags `embed:""`

		Duration time.Duration `name:"duration" help:"Playback duration." default:"2s"`
		Waveform string        `name:"waveform" help:"${waveform_help}" placeholder:"NAME"`
		Backend  string        `name:"backend" help:"${backend_help}" placeholder:"sdl|oto|none"`
	}

	Render struct {
		OscFlags `embed:""`

		Output   string        `name:"output" short:"o" help:"${output_help}" default:"out.wav" type:"path"`
		Duration time.Duration `name:"duration" help:"Rendered duration." default:"2s"`
		Waveform []string      `name:"waveform" help:"${waveforms_help}" placeholder:"NAME,..."`
	}

	Kernel struct {
		Output string `name:"output" short:"o" help:"Kernel table file." default:"kernel.json" type:"path"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":       "Enable logging for specified modules.",
	"config_help":    "Configuration file. (default: config.toml in the user config directory)",
	"engine_help":    "Band-limiting engine. blip only renders pulse waves.",
	"waveform_help":  "Waveform: sawtooth, pulse or triangle.",
	"waveforms_help": "Waveforms to render, each one to its own file when more than one.",
	"backend_help":   "Audio backend.",
	"output_help":    "Output WAV file.",
}

func newParser(cli *CLI) *kong.Kong {
	parser, err := kong.New(cli,
		kong.Name("blepvco"),
		kong.Description("Band-limited (minBLEP) virtual analog oscillator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}
	return parser
}

func parseArgs(args []string) CLI {
	var cfg CLI
	ctx, err := newParser(&cfg).Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg.mode = commandMode(ctx.Command())
	return cfg
}

func commandMode(cmd string) mode {
	switch cmd {
	case "render":
		return renderMode
	case "kernel":
		return kernelMode
	case "version":
		return versionMode
	}
	return playMode
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

// apply overrides the oscillator configuration with the flags that were set.
func (f OscFlags) apply(ocfg *synth.OscillatorConfig) {
	if f.Freq != nil {
		ocfg.Frequency = *f.Freq
	}
	if f.PW != nil {
		ocfg.PulseWidth = *f.PW
	}
	if f.Engine != "" {
		ocfg.Engine = f.Engine
	}
}

// config returns cfg overridden by the play flags.
func (p Play) config(cfg synth.Config) (synth.Config, error) {
	p.OscFlags.apply(&cfg.Oscillator)
	if p.Waveform != "" {
		wf, err := vco.ParseWaveform(p.Waveform)
		if err != nil {
			return cfg, err
		}
		cfg.Oscillator.Waveform = wf
	}
	if p.Backend != "" {
		cfg.Audio.Backend = p.Backend
	}
	return cfg, cfg.Validate()
}

// config returns cfg overridden by the render flags, and the waveforms to
// render.
func (r Render) config(cfg synth.Config) (synth.Config, []vco.Waveform, error) {
	r.OscFlags.apply(&cfg.Oscillator)

	var wfs []vco.Waveform
	for _, name := range r.Waveform {
		wf, err := vco.ParseWaveform(name)
		if err != nil {
			return cfg, nil, err
		}
		wfs = append(wfs, wf)
	}
	return cfg, wfs, cfg.Validate()
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}

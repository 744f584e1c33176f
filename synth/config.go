package synth

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"blepvco/host"
	"blepvco/synth/log"
	"blepvco/vco"
)

// Audio backends.
const (
	BackendSDL  = "sdl"
	BackendOto  = "oto"
	BackendNone = "none"
)

// Oscillator engines.
const (
	EngineMinBLEP = "minblep"
	EngineBlip    = "blip"
)

var (
	backends = []string{BackendSDL, BackendOto, BackendNone}
	engines  = []string{EngineMinBLEP, EngineBlip}
)

type Config struct {
	Audio      AudioConfig      `toml:"audio"`
	Oscillator OscillatorConfig `toml:"oscillator"`
	Kernel     KernelConfig     `toml:"kernel"`
}

type AudioConfig struct {
	Backend    string `toml:"backend"`
	SampleRate int    `toml:"sample_rate"`
	BlockSize  int    `toml:"block_size"`
}

type OscillatorConfig struct {
	Engine     string       `toml:"engine"`
	Waveform   vco.Waveform `toml:"waveform"`
	Frequency  float64      `toml:"frequency"`
	PulseWidth float64      `toml:"pulse_width"`
}

type KernelConfig struct {
	// Path of a kernel table file. The kernel is generated when empty.
	Path string `toml:"path"`
}

var DefaultConfig = Config{
	Audio: AudioConfig{
		Backend:    BackendSDL,
		SampleRate: 44100,
		BlockSize:  host.DefaultBlockSize,
	},
	Oscillator: OscillatorConfig{
		Engine:     EngineMinBLEP,
		Waveform:   vco.Sawtooth,
		Frequency:  vco.DefaultFrequency,
		PulseWidth: vco.DefaultPulseWidth,
	},
}

// Validate reports the first invalid setting of cfg.
func (cfg *Config) Validate() error {
	switch {
	case !slices.Contains(backends, cfg.Audio.Backend):
		return fmt.Errorf("unknown audio backend %q", cfg.Audio.Backend)
	case cfg.Audio.SampleRate <= 0:
		return fmt.Errorf("invalid sample rate %d", cfg.Audio.SampleRate)
	case cfg.Audio.BlockSize <= 0:
		return fmt.Errorf("invalid block size %d", cfg.Audio.BlockSize)
	case !slices.Contains(engines, cfg.Oscillator.Engine):
		return fmt.Errorf("unknown oscillator engine %q", cfg.Oscillator.Engine)
	case !cfg.Oscillator.Waveform.Valid():
		return fmt.Errorf("invalid waveform %d", cfg.Oscillator.Waveform)
	case math.IsNaN(cfg.Oscillator.Frequency) || cfg.Oscillator.Frequency < 0:
		return fmt.Errorf("invalid frequency %v", cfg.Oscillator.Frequency)
	case math.IsNaN(cfg.Oscillator.PulseWidth):
		return fmt.Errorf("invalid pulse width %v", cfg.Oscillator.PulseWidth)
	}
	return nil
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModSynth.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "blepvco")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModSynth.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfig loads the configuration at path. Settings absent from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig, fmt.Errorf("failed to load config: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.ModSynth.WarnZ("unknown config key").
			String("file", path).
			Stringer("key", key).
			End()
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the blepvco config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	path := filepath.Join(ConfigDir(), cfgFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModSynth.WarnZ("using default config").Error("err", err).End()
		}
		return DefaultConfig
	}
	return cfg
}

// SaveConfig into blepvco config directory.
func SaveConfig(cfg Config) error {
	return SaveConfigFile(filepath.Join(ConfigDir(), cfgFilename), cfg)
}

func SaveConfigFile(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}

package host

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"blepvco/synth/log"
)

// SDLSink queues blocks on an SDL audio device. SDL must be initialized
// with sdl.INIT_AUDIO.
type SDLSink struct {
	dev        sdl.AudioDeviceID
	sampleRate int

	// Blocks are only queued while SDL holds less than this many bytes.
	maxQueued uint32
}

// OpenSDL opens the default playback device for mono signed 16-bit audio.
func OpenSDL(sampleRate, blockSize int) (*SDLSink, error) {
	want := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  uint16(blockSize),
	}
	var have sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, &want, &have, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	if have.Freq != want.Freq || have.Format != want.Format || have.Channels != want.Channels {
		sdl.CloseAudioDevice(dev)
		return nil, fmt.Errorf("unsupported audio device format: %dHz format %d, %d channels",
			have.Freq, have.Format, have.Channels)
	}

	log.ModAudio.InfoZ("opened sdl audio device").
		Int("rate", int(have.Freq)).
		Int("samples", int(have.Samples)).
		End()

	sdl.PauseAudioDevice(dev, false)
	return &SDLSink{
		dev:        dev,
		sampleRate: sampleRate,
		maxQueued:  uint32(8 * blockSize * 2),
	}, nil
}

// WriteBlock queues block, waiting for the device to drain if enough audio
// is already queued.
func (s *SDLSink) WriteBlock(block []int16) error {
	for sdl.GetQueuedAudioSize(s.dev) > s.maxQueued {
		time.Sleep(time.Duration(len(block)) * time.Second / time.Duration(s.sampleRate))
	}

	// SDL copies queued data, the block can be handed over as is.
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&block[0])), len(block)*2)
	if err := sdl.QueueAudio(s.dev, buf); err != nil {
		log.ModAudio.DebugZ("failed to queue audio buffer").Error("err", err).End()
		return err
	}
	return nil
}

// Close waits for queued audio to be played and closes the device.
func (s *SDLSink) Close() error {
	for sdl.GetQueuedAudioSize(s.dev) > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	sdl.CloseAudioDevice(s.dev)
	return nil
}

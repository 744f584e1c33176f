package host

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"blepvco/synth/log"
)

// OtoPlayer plays a Source through oto. Once Play has been called, the source
// is only accessed from oto's goroutine.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	started bool
}

// oto allows a single context per process.
var otoContext struct {
	once sync.Once
	ctx  *oto.Context
	rate int
	err  error
}

func newOtoContext(sampleRate int) (*oto.Context, error) {
	otoContext.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoContext.err = err
			return
		}
		<-ready
		otoContext.ctx, otoContext.rate = ctx, sampleRate
	})
	if otoContext.err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", otoContext.err)
	}
	if otoContext.rate != sampleRate {
		return nil, fmt.Errorf("oto context already running at %dHz", otoContext.rate)
	}
	return otoContext.ctx, nil
}

func NewOtoPlayer(src Source, sampleRate, blockSize int) (*OtoPlayer, error) {
	ctx, err := newOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}

	log.ModAudio.InfoZ("created oto player").
		Int("rate", sampleRate).
		Int("block", blockSize).
		End()

	return &OtoPlayer{
		ctx:    ctx,
		player: ctx.NewPlayer(NewReader(NewStream(src, blockSize))),
	}, nil
}

func (op *OtoPlayer) Play() {
	op.mu.Lock()
	defer op.mu.Unlock()

	if !op.started {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Close() error {
	op.mu.Lock()
	defer op.mu.Unlock()

	op.started = false
	return op.player.Close()
}

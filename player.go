package minimoog

import (
	"errors"
	"sync"

	"github.com/gopxl/beep"

	intaudio "github.com/cbegin/minimoog-go/internal/audio"
)

// Source renders mono float32 blocks. Synth and Poly both satisfy it.
type Source interface {
	ProcessBlock(dst []float32)
}

// Player streams a Source to the default audio output.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	source     Source
	audio      *intaudio.Player
}

func NewPlayer(sampleRate int, source Source) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if source == nil {
		return nil, errors.New("source must not be nil")
	}
	return &Player{sampleRate: sampleRate, source: source}, nil
}

// Play starts (or resumes) streaming. The first call opens the audio device.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.sampleRate, p.source)
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// PlaybackPosition returns the output position of the audio driver in frames,
// i.e. what the listener actually hears right now. Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}

// Streamer wraps a Source as a beep.Streamer for hosts that mix through a
// beep speaker instead of the built-in player.
func Streamer(source Source) beep.Streamer {
	return intaudio.NewStreamer(source)
}

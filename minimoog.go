// Package minimoog is a real-time analog-modeling synthesizer voice engine:
// a three-oscillator bank with a noise source, a resonant four-pole ladder
// filter with envelope contour, and an output stage with optional overload
// feedback. Control changes go through a lock-free parameter store, so the
// render path is safe to drive from an audio callback while another
// goroutine turns the knobs.
package minimoog

import (
	"errors"
	"log"

	"github.com/cbegin/minimoog-go/internal/voice"
)

// ParamID identifies one voice parameter.
type ParamID = voice.ParamID

const (
	Osc1Waveform    = voice.Osc1Waveform
	Osc1Octave      = voice.Osc1Octave
	Osc1Detune      = voice.Osc1Detune
	Osc1Level       = voice.Osc1Level
	Osc2Waveform    = voice.Osc2Waveform
	Osc2Octave      = voice.Osc2Octave
	Osc2Detune      = voice.Osc2Detune
	Osc2Level       = voice.Osc2Level
	Osc3Waveform    = voice.Osc3Waveform
	Osc3Octave      = voice.Osc3Octave
	Osc3Detune      = voice.Osc3Detune
	Osc3Level       = voice.Osc3Level
	NoiseType       = voice.NoiseType
	NoiseLevel      = voice.NoiseLevel
	FilterCutoff    = voice.FilterCutoff
	FilterResonance = voice.FilterResonance
	ContourAmount   = voice.ContourAmount
	EnvAttack       = voice.EnvAttack
	EnvDecay        = voice.EnvDecay
	EnvSustain      = voice.EnvSustain
	EnvRelease      = voice.EnvRelease
	PitchWheel      = voice.PitchWheel
	ModWheel        = voice.ModWheel
	LFORate         = voice.LFORate
	OverloadEnable  = voice.OverloadEnable
	OverloadGain    = voice.OverloadGain
	MasterGain      = voice.MasterGain
)

// Waveform values for the oscillator waveform parameters.
const (
	WaveSine     = 0.0
	WaveTriangle = 1.0
	WaveSaw      = 2.0
	WaveSquare   = 3.0
)

// Noise type values for the NoiseType parameter.
const (
	NoiseWhite = 0.0
	NoisePink  = 1.0
)

// ErrInvalidParameter is returned by SetParameter and Parameter for unknown
// ids and non-finite values.
var ErrInvalidParameter = voice.ErrInvalidParameter

// DefaultVoices is the polyphony of NewPoly when the caller passes 0.
const DefaultVoices = 10

type Option func(*config)

type config struct {
	noiseSeed uint32
	logger    *log.Logger
}

func defaultConfig() config {
	return config{noiseSeed: 1}
}

// WithNoiseSeed sets the noise generator seed, making the rendered stream
// reproducible across runs. The default seed is 1.
func WithNoiseSeed(seed uint32) Option {
	return func(cfg *config) {
		cfg.noiseSeed = seed
	}
}

// WithInstabilityLogger logs a line each time a filter state reset occurs.
// The log call runs on the audio goroutine.
func WithInstabilityLogger(l *log.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// Synth is a single monophonic voice with its own parameter store.
type Synth struct {
	sampleRate int
	store      *voice.Store
	voice      *voice.Voice
}

func NewSynth(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	store := voice.NewStore(float64(sampleRate))
	v := voice.NewVoice(float64(sampleRate), store, cfg.noiseSeed)
	if cfg.logger != nil {
		l := cfg.logger
		v.SetInstabilityHook(func() {
			l.Printf("filter state reset after instability")
		})
	}
	return &Synth{sampleRate: sampleRate, store: store, voice: v}, nil
}

func (s *Synth) SampleRate() int {
	return s.sampleRate
}

// SetParameter updates one parameter; the change is picked up at the next
// block boundary. Finite out-of-range values are clamped.
func (s *Synth) SetParameter(id ParamID, value float64) error {
	return s.store.Set(id, value)
}

// Parameter returns the current (clamped) value of one parameter.
func (s *Synth) Parameter(id ParamID) (float64, error) {
	return s.store.Get(id)
}

// NoteOn starts a note at the given frequency in Hz, retriggering the
// envelopes without resetting oscillator phase.
func (s *Synth) NoteOn(freq float64) {
	s.voice.NoteOn(freq)
}

// NoteOff releases the current note into its release tail.
func (s *Synth) NoteOff() {
	s.voice.NoteOff()
}

// Active reports whether the voice is sounding, including the release tail.
func (s *Synth) Active() bool {
	return s.voice.Active()
}

// ProcessBlock renders len(dst) mono samples.
func (s *Synth) ProcessBlock(dst []float32) {
	s.voice.ProcessBlock(dst)
}

// FilterResets returns how many filter instability recoveries have occurred.
func (s *Synth) FilterResets() uint64 {
	return s.voice.FilterResets()
}

// Reset silences the voice and restores initial component state. Parameter
// values are kept.
func (s *Synth) Reset() {
	s.voice.Reset()
}

// Poly is a polyphonic synth: a pool of voices sharing one parameter store.
type Poly struct {
	sampleRate int
	store      *voice.Store
	pool       *voice.Poly
}

// NewPoly builds a polyphonic synth with the given voice count
// (DefaultVoices when voices is 0).
func NewPoly(sampleRate, voices int, opts ...Option) (*Poly, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if voices == 0 {
		voices = DefaultVoices
	}
	if voices < 0 {
		return nil, errors.New("voices must be non-negative")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	store := voice.NewStore(float64(sampleRate))
	pool := voice.NewPoly(float64(sampleRate), store, voices, cfg.noiseSeed)
	if cfg.logger != nil {
		l := cfg.logger
		pool.SetInstabilityHook(func() {
			l.Printf("filter state reset after instability")
		})
	}
	return &Poly{sampleRate: sampleRate, store: store, pool: pool}, nil
}

func (p *Poly) SampleRate() int {
	return p.sampleRate
}

func (p *Poly) Voices() int {
	return p.pool.Voices()
}

func (p *Poly) ActiveVoices() int {
	return p.pool.ActiveVoices()
}

func (p *Poly) SetParameter(id ParamID, value float64) error {
	return p.store.Set(id, value)
}

func (p *Poly) Parameter(id ParamID) (float64, error) {
	return p.store.Get(id)
}

// NoteOn assigns the note to a voice, stealing the quietest voice when the
// pool is full.
func (p *Poly) NoteOn(freq float64) {
	p.pool.NoteOn(freq)
}

// NoteOff releases every held voice at the given frequency.
func (p *Poly) NoteOff(freq float64) {
	p.pool.NoteOff(freq)
}

// AllNotesOff releases every held voice.
func (p *Poly) AllNotesOff() {
	p.pool.AllNotesOff()
}

// ProcessBlock renders and sums all active voices into dst.
func (p *Poly) ProcessBlock(dst []float32) {
	p.pool.ProcessBlock(dst)
}

func (p *Poly) FilterResets() uint64 {
	return p.pool.FilterResets()
}

func (p *Poly) Reset() {
	p.pool.Reset()
}

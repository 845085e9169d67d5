package voice

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// ErrInvalidParameter is returned for unknown parameter ids and non-finite
// values. Out-of-range finite values are not an error: they are clamped to
// the declared range, and the getter reports the clamped value.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParamID identifies one continuously-variable voice parameter.
type ParamID int

// The three oscillators occupy consecutive 4-parameter groups, so
// Osc1Waveform+4 == Osc2Waveform and so on.
const (
	Osc1Waveform ParamID = iota
	Osc1Octave
	Osc1Detune
	Osc1Level
	Osc2Waveform
	Osc2Octave
	Osc2Detune
	Osc2Level
	Osc3Waveform
	Osc3Octave
	Osc3Detune
	Osc3Level
	NoiseType
	NoiseLevel
	FilterCutoff
	FilterResonance
	ContourAmount
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
	PitchWheel
	ModWheel
	LFORate
	OverloadEnable
	OverloadGain
	MasterGain
	numParams
)

// Params is an immutable snapshot of every voice parameter. The audio thread
// reads one snapshot per block; the control thread publishes new ones.
type Params [numParams]float64

type paramSpec struct {
	name     string
	min, max float64
	integral bool
}

var specs = [numParams]paramSpec{
	Osc1Waveform:    {"osc1.waveform", 0, 3, true},
	Osc1Octave:      {"osc1.octave", -2, 2, true},
	Osc1Detune:      {"osc1.detune", -100, 100, false},
	Osc1Level:       {"osc1.level", 0, 1, false},
	Osc2Waveform:    {"osc2.waveform", 0, 3, true},
	Osc2Octave:      {"osc2.octave", -2, 2, true},
	Osc2Detune:      {"osc2.detune", -100, 100, false},
	Osc2Level:       {"osc2.level", 0, 1, false},
	Osc3Waveform:    {"osc3.waveform", 0, 3, true},
	Osc3Octave:      {"osc3.octave", -2, 2, true},
	Osc3Detune:      {"osc3.detune", -100, 100, false},
	Osc3Level:       {"osc3.level", 0, 1, false},
	NoiseType:       {"noise.type", 0, 1, true},
	NoiseLevel:      {"noise.level", 0, 1, false},
	FilterCutoff:    {"filter.cutoff", 20, 0, false}, // max is sample-rate dependent
	FilterResonance: {"filter.resonance", 0, 0.999, false},
	ContourAmount:   {"filter.contour", 0, 1, false},
	EnvAttack:       {"env.attack", 0.001, 10, false},
	EnvDecay:        {"env.decay", 0.001, 10, false},
	EnvSustain:      {"env.sustain", 0, 1, false},
	EnvRelease:      {"env.release", 0.001, 10, false},
	PitchWheel:      {"wheel.pitch", -1, 1, false},
	ModWheel:        {"wheel.mod", 0, 1, false},
	LFORate:         {"lfo.rate", 0.1, 20, false},
	OverloadEnable:  {"overload.enable", 0, 1, true},
	OverloadGain:    {"overload.gain", 0, 3, false},
	MasterGain:      {"master.gain", 0, 2, false},
}

func (id ParamID) String() string {
	if id < 0 || id >= numParams {
		return fmt.Sprintf("param(%d)", int(id))
	}
	return specs[id].name
}

func defaultParams() Params {
	var p Params
	for i := 0; i < 3; i++ {
		base := Osc1Waveform + ParamID(i*4)
		p[base] = 2 // saw
		p[base+1] = 0
		p[base+2] = 0
		p[base+3] = 1
	}
	p[NoiseType] = 0
	p[NoiseLevel] = 0
	p[FilterCutoff] = 1000
	p[FilterResonance] = 0
	p[ContourAmount] = 0
	p[EnvAttack] = 0.05
	p[EnvDecay] = 0.1
	p[EnvSustain] = 0.4
	p[EnvRelease] = 1
	p[PitchWheel] = 0
	p[ModWheel] = 0
	p[LFORate] = 5
	p[OverloadEnable] = 0
	p[OverloadGain] = 0
	p[MasterGain] = 0.2
	return p
}

// Store holds the shared parameter state for one synth (and all of its
// voices). Writers copy the current snapshot, mutate the copy, and publish it
// with a single pointer swap; the audio thread loads the pointer once per
// block and never takes a lock.
type Store struct {
	mu        sync.Mutex
	maxCutoff float64
	cur       atomic.Pointer[Params]
}

func NewStore(sampleRate float64) *Store {
	s := &Store{maxCutoff: sampleRate * 0.45}
	p := defaultParams()
	s.cur.Store(&p)
	return s
}

// Set updates one parameter. Unknown ids and non-finite values return
// ErrInvalidParameter; finite values outside the declared range are clamped.
func (s *Store) Set(id ParamID, v float64) error {
	if id < 0 || id >= numParams {
		return fmt.Errorf("%w: unknown id %d", ErrInvalidParameter, int(id))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s: non-finite value", ErrInvalidParameter, id)
	}
	v = s.clamp(id, v)

	s.mu.Lock()
	next := *s.cur.Load()
	next[id] = v
	s.cur.Store(&next)
	s.mu.Unlock()
	return nil
}

// Get returns the current (clamped) value of one parameter.
func (s *Store) Get(id ParamID) (float64, error) {
	if id < 0 || id >= numParams {
		return 0, fmt.Errorf("%w: unknown id %d", ErrInvalidParameter, int(id))
	}
	return s.cur.Load()[id], nil
}

// Snapshot returns the current parameter snapshot. The returned value is
// immutable; callers must not modify it.
func (s *Store) Snapshot() *Params {
	return s.cur.Load()
}

func (s *Store) clamp(id ParamID, v float64) float64 {
	spec := specs[id]
	min, max := spec.min, spec.max
	if id == FilterCutoff {
		max = s.maxCutoff
	}
	if spec.integral {
		v = math.Round(v)
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

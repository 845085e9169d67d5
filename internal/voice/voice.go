package voice

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/minimoog-go/internal/env"
	"github.com/cbegin/minimoog-go/internal/filter"
	"github.com/cbegin/minimoog-go/internal/lfo"
	"github.com/cbegin/minimoog-go/internal/noise"
	"github.com/cbegin/minimoog-go/internal/osc"
)

const (
	// contourRangeHz is the filter-envelope sweep range at full contour.
	contourRangeHz = 2500.0

	// vibratoSemitones is the vibrato depth with the mod wheel fully up.
	vibratoSemitones = 0.5

	// smoothingTime is the one-pole time constant for de-zippered parameters.
	smoothingTime = 0.010
)

// Voice renders one monophonic note: three oscillators and a noise source
// into the ladder filter, shaped by the amplitude envelope. It reads one
// parameter snapshot per block and allocates nothing on the render path.
type Voice struct {
	sampleRate float64
	store      *Store
	seed       uint32

	oscs      [3]*osc.Oscillator
	noise     *noise.Generator
	ampEnv    *env.ADSR
	filterEnv *env.ADSR
	vibrato   lfo.LFO
	ladder    *filter.Ladder

	noteFreq float64
	gated    bool
	lastOut  float64

	// one-pole smoothed parameter state
	smoothAlpha  float64
	oscLevel     [3]float64
	noiseLevel   float64
	baseCutoff   float64
	overloadGain float64
	masterGain   float64

	filterResets  atomic.Uint64
	onInstability func()
}

// NewVoice builds a voice bound to the shared parameter store. The noise seed
// makes the stream reproducible; polyphonic owners hand each voice a distinct
// seed so voices decorrelate.
func NewVoice(sampleRate float64, store *Store, seed uint32) *Voice {
	v := &Voice{
		sampleRate: sampleRate,
		store:      store,
		seed:       seed,
		noise:      noise.New(seed),
		ampEnv:     env.New(sampleRate),
		filterEnv:  env.New(sampleRate),
		ladder:     filter.New(sampleRate),
	}
	for i := range v.oscs {
		v.oscs[i] = osc.New(sampleRate)
	}
	v.smoothAlpha = 1 - math.Exp(-1/(smoothingTime*sampleRate))

	p := store.Snapshot()
	v.oscLevel = [3]float64{p[Osc1Level], p[Osc2Level], p[Osc3Level]}
	v.noiseLevel = p[NoiseLevel]
	v.baseCutoff = p[FilterCutoff]
	v.overloadGain = p[OverloadGain]
	v.masterGain = p[MasterGain]
	return v
}

// SetInstabilityHook installs a callback invoked (on the audio goroutine)
// whenever the filter state is found non-finite and reset.
func (v *Voice) SetInstabilityHook(fn func()) {
	v.onInstability = fn
}

// NoteOn starts a note at the given frequency. Oscillator pitches jump
// immediately; phases are not reset, and both envelopes retrigger from their
// current level. Non-positive or non-finite frequencies are ignored.
func (v *Voice) NoteOn(freq float64) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return
	}
	p := v.store.Snapshot()
	v.noteFreq = freq
	v.gated = true
	for i := range v.oscs {
		base := Osc1Waveform + ParamID(i*4)
		v.oscs[i].SetWaveform(osc.Waveform(p[base]))
		v.oscs[i].SetFrequency(osc.Pitch(freq, int(p[base+1]), p[base+2], p[PitchWheel]))
	}
	v.ampEnv.Trigger()
	v.filterEnv.Trigger()
}

// NoteOff releases the note; the voice keeps sounding through the release
// tail and reports inactive once the amplitude envelope reaches idle.
func (v *Voice) NoteOff() {
	v.gated = false
	v.ampEnv.Release()
	v.filterEnv.Release()
}

// Gated reports whether the note is still held.
func (v *Voice) Gated() bool {
	return v.gated
}

// Active reports whether the voice is producing sound (including the release
// tail).
func (v *Voice) Active() bool {
	return v.ampEnv.Stage() != env.Idle
}

// Level returns the current amplitude envelope level, used for voice
// stealing.
func (v *Voice) Level() float64 {
	return v.ampEnv.Level()
}

// NoteFrequency returns the frequency of the current or most recent note.
func (v *Voice) NoteFrequency() float64 {
	return v.noteFreq
}

// FilterResets returns how many times the filter state had to be cleared.
func (v *Voice) FilterResets() uint64 {
	return v.filterResets.Load()
}

// ProcessBlock renders len(dst) mono samples. Parameters are read from a
// single snapshot taken at block start; audible continuous parameters are
// smoothed per sample, discrete ones latch here.
func (v *Voice) ProcessBlock(dst []float32) {
	n := len(dst)
	if n == 0 {
		return
	}
	p := v.store.Snapshot()

	v.noise.SetType(noise.Type(p[NoiseType]))
	v.noise.BeginBlock()

	v.ampEnv.SetADSR(p[EnvAttack], p[EnvDecay], p[EnvSustain], p[EnvRelease])
	v.filterEnv.SetADSR(p[EnvAttack], p[EnvDecay], p[EnvSustain], p[EnvRelease])
	v.ladder.SetResonance(p[FilterResonance])

	v.vibrato.Set(p[ModWheel]*vibratoSemitones, p[LFORate], lfo.WaveSine)
	vib := v.vibrato.SampleN(v.sampleRate, n)
	vibMul := 1.0
	if vib != 0 {
		vibMul = math.Exp2(vib / 12)
	}

	for i := range v.oscs {
		base := Osc1Waveform + ParamID(i*4)
		v.oscs[i].SetWaveform(osc.Waveform(p[base]))
		target := osc.Pitch(v.noteFreq, int(p[base+1]), p[base+2], p[PitchWheel]) * vibMul
		v.oscs[i].GlideTo(target, n)
	}

	overloadOn := p[OverloadEnable] >= 0.5
	contour := p[ContourAmount]
	a := v.smoothAlpha

	for i := 0; i < n; i++ {
		v.oscLevel[0] += a * (p[Osc1Level] - v.oscLevel[0])
		v.oscLevel[1] += a * (p[Osc2Level] - v.oscLevel[1])
		v.oscLevel[2] += a * (p[Osc3Level] - v.oscLevel[2])
		v.noiseLevel += a * (p[NoiseLevel] - v.noiseLevel)
		v.baseCutoff += a * (p[FilterCutoff] - v.baseCutoff)
		v.overloadGain += a * (p[OverloadGain] - v.overloadGain)
		v.masterGain += a * (p[MasterGain] - v.masterGain)

		mix := v.oscs[0].Tick()*v.oscLevel[0] +
			v.oscs[1].Tick()*v.oscLevel[1] +
			v.oscs[2].Tick()*v.oscLevel[2] +
			v.noise.Tick()*v.noiseLevel
		if overloadOn && v.overloadGain != 0 {
			mix += v.overloadGain * v.lastOut
		}

		v.ladder.SetCutoff(v.baseCutoff + contour*v.filterEnv.Tick()*contourRangeHz)
		out := v.ladder.Tick(mix) * v.ampEnv.Tick() * v.masterGain
		v.lastOut = out
		dst[i] = float32(out)
	}

	if !v.ladder.Stable() {
		v.ladder.Reset()
		v.filterResets.Add(1)
		if v.onInstability != nil {
			v.onInstability()
		}
	}
	v.ladder.FlushDenormals()
	if math.IsNaN(v.lastOut) || math.IsInf(v.lastOut, 0) {
		v.lastOut = 0
	}
}

// Reset silences the voice and returns every component to its initial state,
// including the noise seed. Parameters are unaffected.
func (v *Voice) Reset() {
	p := v.store.Snapshot()
	for i := range v.oscs {
		v.oscs[i].ResetPhase()
		v.oscs[i].SetFrequency(0)
	}
	v.noise.Reset(v.seed)
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.vibrato.Reset()
	v.ladder.Reset()
	v.noteFreq = 0
	v.gated = false
	v.lastOut = 0
	v.oscLevel = [3]float64{p[Osc1Level], p[Osc2Level], p[Osc3Level]}
	v.noiseLevel = p[NoiseLevel]
	v.baseCutoff = p[FilterCutoff]
	v.overloadGain = p[OverloadGain]
	v.masterGain = p[MasterGain]
}

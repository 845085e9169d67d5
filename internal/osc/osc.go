package osc

import "math"

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Saw
	Square
)

const (
	MinOctave = -2
	MaxOctave = 2

	// BendSemitones is the pitch-wheel range at full deflection.
	BendSemitones = 2.0
)

// Oscillator is one member of the oscillator bank. The phase accumulator runs
// in [0,1) and is never reset by waveform or frequency changes, so switching
// shapes mid-note stays continuous. Saw and square edges are smoothed with
// PolyBLEP to keep aliasing down.
type Oscillator struct {
	sampleRate float64
	waveform   Waveform
	freq       float64
	phase      float64
	inc        float64
	incStep    float64
	glideLeft  int
}

func New(sampleRate float64) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(440)
	return o
}

// SetWaveform switches the shape. The phase accumulator is untouched.
func (o *Oscillator) SetWaveform(w Waveform) {
	if w < Sine || w > Square {
		w = Sine
	}
	o.waveform = w
}

func (o *Oscillator) Waveform() Waveform {
	return o.waveform
}

// SetFrequency sets the frequency immediately (used on note-on).
func (o *Oscillator) SetFrequency(hz float64) {
	if hz < 0 {
		hz = 0
	}
	o.freq = hz
	o.inc = hz / o.sampleRate
	o.incStep = 0
	o.glideLeft = 0
}

// GlideTo ramps the phase increment linearly to the given frequency over the
// next frames ticks, so block-rate pitch updates (wheel, detune) do not step.
func (o *Oscillator) GlideTo(hz float64, frames int) {
	if hz < 0 {
		hz = 0
	}
	if frames <= 0 || o.freq == hz {
		o.SetFrequency(hz)
		return
	}
	o.freq = hz
	target := hz / o.sampleRate
	o.incStep = (target - o.inc) / float64(frames)
	o.glideLeft = frames
}

// Frequency returns the current target frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return o.freq
}

// PhaseIncrement returns the per-sample phase step currently in effect.
func (o *Oscillator) PhaseIncrement() float64 {
	return o.inc
}

func (o *Oscillator) ResetPhase() {
	o.phase = 0
}

// Tick produces one sample in [-1,1] and advances the phase.
func (o *Oscillator) Tick() float64 {
	t := o.phase
	dt := o.inc
	var s float64
	switch o.waveform {
	case Triangle:
		if t < 0.5 {
			s = 4*t - 1
		} else {
			s = 3 - 4*t
		}
	case Saw:
		s = 2*t - 1
		s -= polyBLEP(t, dt)
	case Square:
		if t < 0.5 {
			s = 1
		} else {
			s = -1
		}
		s += polyBLEP(t, dt)
		t2 := t + 0.5
		if t2 >= 1 {
			t2 -= 1
		}
		s -= polyBLEP(t2, dt)
	default:
		s = math.Sin(2 * math.Pi * t)
	}

	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= 1
	}
	if o.glideLeft > 0 {
		o.inc += o.incStep
		o.glideLeft--
		if o.glideLeft == 0 {
			o.inc = o.freq / o.sampleRate
			o.incStep = 0
		}
	}
	return s
}

// polyBLEP returns the band-limiting correction for a unit step at phase 0,
// valid for dt < 0.5.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		x := t / dt
		return x + x - x*x - 1
	}
	if t > 1-dt {
		x := (t - 1) / dt
		return x*x + x + x + 1
	}
	return 0
}

// Pitch derives an oscillator frequency from the note frequency, the octave
// offset, fine detune in cents, and the pitch wheel position in [-1,1]
// (±BendSemitones at full deflection). With octave 0, zero detune, and the
// wheel centered the result is exactly base.
func Pitch(base float64, octave int, detuneCents, wheel float64) float64 {
	if octave < MinOctave {
		octave = MinOctave
	}
	if octave > MaxOctave {
		octave = MaxOctave
	}
	if wheel < -1 {
		wheel = -1
	}
	if wheel > 1 {
		wheel = 1
	}
	f := base * math.Exp2(float64(octave))
	if detuneCents != 0 {
		f *= math.Exp2(detuneCents / 1200)
	}
	if wheel != 0 {
		f *= math.Exp2(wheel * BendSemitones / 12)
	}
	return f
}

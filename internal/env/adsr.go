package env

// Stage identifies the envelope state.
type Stage int

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

// idleEpsilon is the level below which a releasing envelope snaps to Idle.
const idleEpsilon = 1e-4

// ADSR is a linear-segment attack/decay/sustain/release envelope. Trigger
// always restarts the attack from the current level, and Release always ramps
// from the current level, so gate changes never jump the output.
type ADSR struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	stage       Stage
	level       float64
	releaseStep float64
}

// New returns an envelope with the stock patch shape
// (attack 50 ms, decay 100 ms, sustain 0.4, release 1 s).
func New(sampleRate float64) *ADSR {
	return &ADSR{
		sampleRate: sampleRate,
		attack:     0.05,
		decay:      0.1,
		sustain:    0.4,
		release:    1,
	}
}

// SetADSR updates the segment times (seconds) and sustain level. Values at or
// below zero collapse the segment to a single sample.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.attack = attack
	e.decay = decay
	if sustain < 0 {
		sustain = 0
	}
	if sustain > 1 {
		sustain = 1
	}
	e.sustain = sustain
	e.release = release
}

// Trigger starts (or restarts) the attack from the current level.
func (e *ADSR) Trigger() {
	e.stage = Attack
}

// Release moves any active stage into Release, ramping from the current level
// to zero over the release time.
func (e *ADSR) Release() {
	if e.stage == Idle || e.stage == Release {
		return
	}
	e.stage = Release
	e.releaseStep = e.level / e.segmentFrames(e.release)
}

func (e *ADSR) Stage() Stage {
	return e.stage
}

// Level returns the current output level in [0,1].
func (e *ADSR) Level() float64 {
	return e.level
}

// Tick advances the envelope by one sample and returns the new level.
func (e *ADSR) Tick() float64 {
	switch e.stage {
	case Attack:
		e.level += 1 / e.segmentFrames(e.attack)
		if e.level >= 1 {
			e.level = 1
			e.stage = Decay
		}
	case Decay:
		e.level -= (1 - e.sustain) / e.segmentFrames(e.decay)
		if e.level <= e.sustain {
			e.level = e.sustain
			e.stage = Sustain
		}
	case Sustain:
		e.level = e.sustain
	case Release:
		e.level -= e.releaseStep
		if e.level <= idleEpsilon {
			e.level = 0
			e.stage = Idle
		}
	default:
		e.level = 0
	}
	return e.level
}

// Reset drops the envelope to Idle at level zero.
func (e *ADSR) Reset() {
	e.stage = Idle
	e.level = 0
	e.releaseStep = 0
}

func (e *ADSR) segmentFrames(seconds float64) float64 {
	f := seconds * e.sampleRate
	if f < 1 {
		return 1
	}
	return f
}

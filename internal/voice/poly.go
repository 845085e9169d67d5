package voice

// Poly fans note events out over a fixed pool of voices sharing one parameter
// store and sums their output. Allocation happens only at construction and
// when a caller asks for a larger block than any seen before.
type Poly struct {
	voices  []*Voice
	scratch []float32
}

const defaultScratchFrames = 4096

// NewPoly builds n voices against the shared store. Each voice gets a
// distinct noise seed derived from the base seed.
func NewPoly(sampleRate float64, store *Store, n int, seed uint32) *Poly {
	if n < 1 {
		n = 1
	}
	p := &Poly{
		voices:  make([]*Voice, n),
		scratch: make([]float32, defaultScratchFrames),
	}
	for i := range p.voices {
		p.voices[i] = NewVoice(sampleRate, store, seed+uint32(i))
	}
	return p
}

// Voices returns the pool size.
func (p *Poly) Voices() int {
	return len(p.voices)
}

// ActiveVoices returns how many voices are currently sounding.
func (p *Poly) ActiveVoices() int {
	n := 0
	for _, v := range p.voices {
		if v.Active() {
			n++
		}
	}
	return n
}

// SetInstabilityHook installs the callback on every voice.
func (p *Poly) SetInstabilityHook(fn func()) {
	for _, v := range p.voices {
		v.SetInstabilityHook(fn)
	}
}

// FilterResets sums the filter reset counters across the pool.
func (p *Poly) FilterResets() uint64 {
	var n uint64
	for _, v := range p.voices {
		n += v.FilterResets()
	}
	return n
}

// NoteOn assigns the note to a voice: a held voice already playing the same
// frequency retriggers, otherwise an idle voice is used, otherwise the
// quietest voice is stolen.
func (p *Poly) NoteOn(freq float64) {
	for _, v := range p.voices {
		if v.Gated() && v.NoteFrequency() == freq {
			v.NoteOn(freq)
			return
		}
	}
	for _, v := range p.voices {
		if !v.Active() {
			v.NoteOn(freq)
			return
		}
	}
	quietest := p.voices[0]
	for _, v := range p.voices[1:] {
		if v.Level() < quietest.Level() {
			quietest = v
		}
	}
	quietest.NoteOn(freq)
}

// NoteOff releases every held voice playing the given frequency.
func (p *Poly) NoteOff(freq float64) {
	for _, v := range p.voices {
		if v.Gated() && v.NoteFrequency() == freq {
			v.NoteOff()
		}
	}
}

// AllNotesOff releases every held voice.
func (p *Poly) AllNotesOff() {
	for _, v := range p.voices {
		if v.Gated() {
			v.NoteOff()
		}
	}
}

// ProcessBlock renders and sums all active voices into dst.
func (p *Poly) ProcessBlock(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
	if len(dst) > len(p.scratch) {
		p.scratch = make([]float32, len(dst))
	}
	buf := p.scratch[:len(dst)]
	for _, v := range p.voices {
		if !v.Active() {
			continue
		}
		v.ProcessBlock(buf)
		for i := range dst {
			dst[i] += buf[i]
		}
	}
}

// Reset silences and reinitializes every voice.
func (p *Poly) Reset() {
	for _, v := range p.voices {
		v.Reset()
	}
}

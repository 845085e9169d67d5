package noise

// Type selects the noise color.
type Type int

const (
	White Type = iota
	Pink
)

// Generator produces deterministic white or pink noise from a xorshift32
// PRNG. Type changes are latched: SetType records the request and BeginBlock
// applies it, so a switch never lands mid-block.
type Generator struct {
	state   uint32
	active  Type
	pending Type

	// pink filter state (Kellett −3 dB/oct approximation)
	b0, b1, b2, b3, b4, b5, b6 float64
}

func New(seed uint32) *Generator {
	g := &Generator{}
	g.Reset(seed)
	return g
}

// SetType requests a color change; it takes effect at the next BeginBlock.
func (g *Generator) SetType(t Type) {
	if t != White && t != Pink {
		t = White
	}
	g.pending = t
}

// Type returns the color currently in effect.
func (g *Generator) Type() Type {
	return g.active
}

// BeginBlock applies any pending type change. Call once per audio block,
// before the first Tick of that block.
func (g *Generator) BeginBlock() {
	g.active = g.pending
}

// Tick returns one noise sample in [-1,1].
func (g *Generator) Tick() float64 {
	w := g.white()
	if g.active == White {
		return w
	}
	g.b0 = 0.99886*g.b0 + w*0.0555179
	g.b1 = 0.99332*g.b1 + w*0.0750759
	g.b2 = 0.96900*g.b2 + w*0.1538520
	g.b3 = 0.86650*g.b3 + w*0.3104856
	g.b4 = 0.55000*g.b4 + w*0.5329522
	g.b5 = -0.7616*g.b5 - w*0.0168980
	p := (g.b0 + g.b1 + g.b2 + g.b3 + g.b4 + g.b5 + g.b6 + w*0.5362) * 0.115
	g.b6 = w * 0.115926
	if p > 1 {
		p = 1
	} else if p < -1 {
		p = -1
	}
	return p
}

// Reset reseeds the PRNG and clears the pink filter state. Seed 0 maps to 1
// to keep xorshift out of its fixed point.
func (g *Generator) Reset(seed uint32) {
	if seed == 0 {
		seed = 1
	}
	g.state = seed
	g.b0, g.b1, g.b2, g.b3, g.b4, g.b5, g.b6 = 0, 0, 0, 0, 0, 0, 0
}

func (g *Generator) white() float64 {
	g.state ^= g.state << 13
	g.state ^= g.state >> 17
	g.state ^= g.state << 5
	u := float64(g.state) / float64(^uint32(0))
	return 2*u - 1
}

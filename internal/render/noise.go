package render

// Park-Miller "minimal standard" generator constants
const (
	LCGModulus    int64 = 2147483647
	LCGMultiplier int64 = 48271
)

// MaxNoiseSpeckles bounds the work a single Noise call can do
const MaxNoiseSpeckles = 4096

// LCG is a Park-Miller linear congruential generator. Identical seeds
// produce identical streams on every platform.
type LCG struct {
	state int64
}

// NewLCG seeds a generator. Seeds are reduced modulo LCGModulus; zero,
// which would lock the generator, becomes one.
func NewLCG(seed int64) *LCG {
	s := seed % LCGModulus
	if s < 0 {
		s += LCGModulus
	}
	if s == 0 {
		s = 1
	}
	return &LCG{state: s}
}

// Next advances the generator and returns the raw state in [1, LCGModulus-1]
func (g *LCG) Next() int64 {
	g.state = g.state * LCGMultiplier % LCGModulus
	return g.state
}

// Float returns the next value in [0, 1)
func (g *LCG) Float() float64 {
	return float64(g.Next()-1) / float64(LCGModulus-1)
}

// Speckle is one dot of a noise field, relative to the cursor
type Speckle struct {
	DX     float64
	DY     float64
	Radius float64
	Shade  float64 // lightness offset in percent, -20..20
}

// NoiseField expands (seed, intensity) into a deterministic speckle set.
// Intensity is the spread radius in pixels; the speckle count grows with it.
func NoiseField(seed int64, intensity float64) []Speckle {
	if intensity <= 0 {
		return nil
	}
	count := int(intensity * 2)
	if count < 1 {
		count = 1
	}
	if count > MaxNoiseSpeckles {
		count = MaxNoiseSpeckles
	}

	rng := NewLCG(seed)
	speckles := make([]Speckle, count)
	for i := range speckles {
		speckles[i] = Speckle{
			DX:     (rng.Float()*2 - 1) * intensity,
			DY:     (rng.Float()*2 - 1) * intensity,
			Radius: 0.5 + rng.Float()*1.5,
			Shade:  (rng.Float()*2 - 1) * 20,
		}
	}
	return speckles
}

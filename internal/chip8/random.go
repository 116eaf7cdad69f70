package chip8

import "math/rand/v2"

// RandomSource provides the bytes used by the RND instruction.
type RandomSource interface {
	Byte() byte
}

// Random is the default RandomSource based on a seeded PCG generator.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random source that produces the same sequence for the same seed.
func NewRandom(seed uint64) *Random {
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// Byte returns the next random byte.
func (r *Random) Byte() byte {
	return byte(r.rng.UintN(256))
}

package arena

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// NewRand returns a generator seeded with seed. Not safe for concurrent use;
// every owner gets its own.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// SubsystemSeed derives a stable per-subsystem seed from the match seed so
// independent consumers do not perturb each other's sequences.
func SubsystemSeed(seed int64, label string) int64 {
	h := fnv.New64a()
	var b [8]byte
	for i := range b {
		b[i] = byte(uint64(seed) >> (uint(i) * 8))
	}
	h.Write(b[:])
	h.Write([]byte{0})
	h.Write([]byte(label))
	sum := h.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// SubsystemRand returns a generator for one labelled subsystem of a match
func SubsystemRand(seed int64, label string) *rand.Rand {
	return NewRand(SubsystemSeed(seed, label))
}

// randIn returns a uniform value in [min, max)
func randIn(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// randPointIn returns a uniform point inside r
func randPointIn(rng *rand.Rand, r Rect) Vec2 {
	return Vec2{randIn(rng, r.Min.X, r.Max.X), randIn(rng, r.Min.Y, r.Max.Y)}
}

// randAngle returns a uniform angle in [0, 2PI)
func randAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}

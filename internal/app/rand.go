package app

import "math/rand/v2"

// Rand is the randomness used by sampling and shuffling. Implementations
// shared between requests must be safe for concurrent use.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultRand draws from the math/rand/v2 global source.
var DefaultRand Rand = globalRand{}

// sampleIDs picks k ids uniformly without replacement (partial Fisher-Yates).
func sampleIDs(rnd Rand, ids []int64, k int) []int64 {
	pool := append([]int64(nil), ids...)
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func shuffleIDs(rnd Rand, ids []int64) {
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

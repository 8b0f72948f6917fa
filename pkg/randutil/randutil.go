// Package randutil holds the weighted sampling primitives shared by the persona
// and behaviour models. Every function takes an explicit *rand.Rand so callers
// control seeding.
package randutil

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
)

// Option is one outcome of a weighted categorical distribution
type Option[T any] struct {
	Value  T
	Weight float64
}

// Pick draws one value from options proportionally to weight.
// Non-positive weights are never chosen; with no positive weight the first option wins.
func Pick[T any](rng *rand.Rand, options []Option[T]) T {
	total := 0.0
	for _, o := range options {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if total <= 0 {
		return options[0].Value
	}

	r := rng.Float64() * total
	for _, o := range options {
		if o.Weight <= 0 {
			continue
		}
		r -= o.Weight
		if r < 0 {
			return o.Value
		}
	}

	for i := len(options) - 1; i >= 0; i-- {
		if options[i].Weight > 0 {
			return options[i].Value
		}
	}
	return options[0].Value
}

// PickMap draws a key of weights proportionally to its value. Keys are sorted first
// so the draw is reproducible for a given seed.
func PickMap(rng *rand.Rand, weights map[string]float64) string {
	keys := SortedKeys(weights)
	options := make([]Option[string], len(keys))
	for i, k := range keys {
		options[i] = Option[string]{Value: k, Weight: weights[k]}
	}
	return Pick(rng, options)
}

// Uniform picks one element of items with equal probability
func Uniform[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// Sample draws up to n distinct elements without replacement
func Sample[T any](rng *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	perm := rng.Perm(len(items))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

// Bernoulli returns true with probability p
func Bernoulli(rng *rand.Rand, p float64) bool {
	return rng.Float64() < p
}

// Between draws uniformly from [lo, hi)
func Between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// IntBetween draws uniformly from [lo, hi]
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Jitter multiplies v by a factor drawn from [1-spread, 1+spread)
func Jitter(rng *rand.Rand, v, spread float64) float64 {
	return v * Between(rng, 1-spread, 1+spread)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DiscreteGaussian draws round(N(mean, sd)) clipped to [lo, hi]
func DiscreteGaussian(rng *rand.Rand, mean, sd float64, lo, hi int) int {
	v := int(math.Round(rng.NormFloat64()*sd + mean))
	return ClampInt(v, lo, hi)
}

// SortedKeys returns the keys of m in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New returns a generator seeded with seed
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Derive returns a generator seeded from a parent seed and a stable label, so that
// independent work items get independent yet reproducible streams
func Derive(seed int64, label string, n int) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(label))
	mixed := int64(h.Sum64()) ^ seed ^ (int64(n) * 0x5DEECE66D)
	return rand.New(rand.NewSource(mixed))
}

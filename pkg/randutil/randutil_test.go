package randutil

import (
	"testing"
)

func TestPickNeverChoosesZeroWeight(t *testing.T) {
	rng := New(1)
	options := []Option[string]{{"a", 0}, {"b", 1}, {"c", 0}}
	for i := 0; i < 500; i++ {
		if got := Pick(rng, options); got != "b" {
			t.Fatalf("expected b, got %s", got)
		}
	}
}

func TestPickRoughlyFollowsWeights(t *testing.T) {
	rng := New(7)
	options := []Option[int]{{0, 0.2}, {1, 0.8}}
	counts := [2]int{}
	for i := 0; i < 10000; i++ {
		counts[Pick(rng, options)]++
	}
	share := float64(counts[1]) / 10000
	if share < 0.75 || share > 0.85 {
		t.Fatalf("expected ~0.8 share, got %.3f", share)
	}
}

func TestSampleDistinct(t *testing.T) {
	rng := New(3)
	items := []string{"a", "b", "c", "d"}
	for i := 0; i < 100; i++ {
		got := Sample(rng, items, 3)
		if len(got) != 3 {
			t.Fatalf("expected 3 items, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("duplicate %s in %v", v, got)
			}
			seen[v] = true
		}
	}
	if got := Sample(rng, items, 10); len(got) != 4 {
		t.Fatalf("expected sample capped at 4, got %d", len(got))
	}
}

func TestDiscreteGaussianClipped(t *testing.T) {
	rng := New(11)
	for i := 0; i < 1000; i++ {
		v := DiscreteGaussian(rng, 5, 10, 0, 6)
		if v < 0 || v > 6 {
			t.Fatalf("value %d outside [0,6]", v)
		}
	}
}

func TestDeriveIsReproducible(t *testing.T) {
	a := Derive(42, "pair", 3).Float64()
	b := Derive(42, "pair", 3).Float64()
	c := Derive(42, "pair", 4).Float64()
	if a != b {
		t.Fatalf("expected identical streams, got %f and %f", a, b)
	}
	if a == c {
		t.Fatal("expected different streams for different items")
	}
}

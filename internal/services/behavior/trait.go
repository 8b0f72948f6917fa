// Package behavior holds the five behavioural augmentors. Each samples a set of
// strength-weighted traits for a persona and renders them as prompt instructions.
package behavior

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// Strength bounds and the adjective thresholds
const (
	MinStrength = 0.1
	MaxStrength = 1.0

	slightBelow   = 0.35
	moderateBelow = 0.65
)

// Trait is one catalogue entry shared by all augmentors
type Trait struct {
	Name        string
	Description string
	Examples    []string
	Triggers    []string
	Topics      []string
}

// StrengthWeights are the categorical weights of weak (0.2), medium (0.5) and strong (0.8)
type StrengthWeights [3]float64

var defaultStrengthWeights = StrengthWeights{0.3, 0.45, 0.25}

// SectionWriter receives rendered instruction blocks. Blocks written under an existing
// section name are merged into it.
type SectionWriter interface {
	Merge(section string, lines ...string)
}

// Turn identifies the question being answered
type Turn struct {
	Index int
	Topic string
}

// Augmentor renders its part of a persona's behaviour into a prompt
type Augmentor interface {
	Name() string
	Apply(w SectionWriter, p *models.Persona, turn Turn, rng *rand.Rand)
}

// DrawStrength samples a base strength from weights, applies ±20% jitter and clamps
func DrawStrength(rng *rand.Rand, weights StrengthWeights) float64 {
	base := randutil.Pick(rng, []randutil.Option[float64]{
		{Value: 0.2, Weight: weights[0]},
		{Value: 0.5, Weight: weights[1]},
		{Value: 0.8, Weight: weights[2]},
	})
	return randutil.Clamp(randutil.Jitter(rng, base, 0.2), MinStrength, MaxStrength)
}

// StrengthAdjective names the strength band
func StrengthAdjective(strength float64) string {
	switch {
	case strength < slightBelow:
		return "слабо"
	case strength < moderateBelow:
		return "умеренно"
	default:
		return "сильно"
	}
}

// RenderTrait formats one trait as an instruction line
func RenderTrait(rng *rand.Rand, t Trait, strength float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s (%s выражено, %.1f): %s.", t.Name, StrengthAdjective(strength), strength, t.Description)
	if len(t.Examples) > 0 {
		fmt.Fprintf(&b, " Например: «%s».", randutil.Uniform(rng, t.Examples))
	}
	if triggers := randutil.Sample(rng, t.Triggers, 2); len(triggers) > 0 {
		fmt.Fprintf(&b, " Характерные слова: %s.", strings.Join(triggers, ", "))
	}
	return b.String()
}

// catalogue is an immutable name-keyed trait table
type catalogue []Trait

func (c catalogue) lookup(name string) (Trait, bool) {
	for _, t := range c {
		if t.Name == name {
			return t, true
		}
	}
	return Trait{}, false
}

func (c catalogue) names() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.Name
	}
	return out
}

// byStrength orders trait names by descending strength, then name
func byStrength(traits map[string]float64) []string {
	names := randutil.SortedKeys(traits)
	sort.SliceStable(names, func(i, j int) bool {
		return traits[names[i]] > traits[names[j]]
	})
	return names
}

// renderAll renders every trait of traits found in c, strongest first
func renderAll(rng *rand.Rand, c catalogue, traits map[string]float64) []string {
	lines := make([]string, 0, len(traits))
	for _, name := range byStrength(traits) {
		t, ok := c.lookup(name)
		if !ok {
			continue
		}
		lines = append(lines, RenderTrait(rng, t, traits[name]))
	}
	return lines
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

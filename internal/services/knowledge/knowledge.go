package knowledge

import (
	"fmt"

	"github.com/synth-respondents-go/internal/models"
)

// Service is the read-only financial knowledge lookup
type Service interface {
	VocabularyForLevel(level models.LiteracyLevel) []string
	MisconceptionsForLevel(level models.LiteracyLevel) []string
	BehaviorPatterns(style string) []string
	ProductFact(product string) (string, error)
	GoalsFor(age int) []string
	LiteracyRules(level models.LiteracyLevel) []string
}

// Base implements Service over the built-in static tables
type Base struct{}

// NewBase creates the knowledge base
func NewBase() *Base {
	return &Base{}
}

// VocabularyForLevel returns the terms of exactly one literacy tier
func (b *Base) VocabularyForLevel(level models.LiteracyLevel) []string {
	return clone(vocabulary[level])
}

// MisconceptionsForLevel returns the typical false beliefs of a tier
func (b *Base) MisconceptionsForLevel(level models.LiteracyLevel) []string {
	return clone(misconceptions[level])
}

// BehaviorPatterns returns phrases describing a behavior style
func (b *Base) BehaviorPatterns(style string) []string {
	return clone(behaviorPatterns[style])
}

// ProductFact returns a one-line description of a product
func (b *Base) ProductFact(product string) (string, error) {
	fact, ok := productFacts[product]
	if !ok {
		return "", fmt.Errorf("unknown product: %s", product)
	}
	return fact, nil
}

// GoalsFor returns financial goals typical for the age
func (b *Base) GoalsFor(age int) []string {
	for _, bucket := range goalsByAge {
		if age <= bucket.maxAge {
			return clone(bucket.goals)
		}
	}
	return nil
}

// LiteracyRules returns the instruction rule set for a tier
func (b *Base) LiteracyRules(level models.LiteracyLevel) []string {
	if rules, ok := literacyRules[level]; ok {
		return clone(rules)
	}
	return clone(literacyRules[models.LiteracyIntermediate])
}

func clone(items []string) []string {
	if items == nil {
		return nil
	}
	return append([]string(nil), items...)
}

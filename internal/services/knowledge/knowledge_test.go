package knowledge_test

import (
	"testing"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/knowledge"
)

func TestVocabularyStaysWithinTier(t *testing.T) {
	kb := knowledge.NewBase()

	higher := map[string]bool{}
	for _, level := range models.LiteracyLevels[1:] {
		for _, term := range kb.VocabularyForLevel(level) {
			higher[term] = true
		}
	}

	terms := kb.VocabularyForLevel(models.LiteracyNone)
	if len(terms) == 0 {
		t.Fatal("expected vocabulary for the lowest tier")
	}
	for _, term := range terms {
		if higher[term] {
			t.Fatalf("term %q leaked from a higher tier", term)
		}
	}
}

func TestVocabularyIsCopied(t *testing.T) {
	kb := knowledge.NewBase()
	terms := kb.VocabularyForLevel(models.LiteracyExpert)
	terms[0] = "mutated"

	if kb.VocabularyForLevel(models.LiteracyExpert)[0] == "mutated" {
		t.Fatal("knowledge tables must not be mutable through returned slices")
	}
}

func TestMisconceptionsShrinkWithLiteracy(t *testing.T) {
	kb := knowledge.NewBase()
	prev := len(kb.MisconceptionsForLevel(models.LiteracyNone)) + 1
	for _, level := range models.LiteracyLevels {
		n := len(kb.MisconceptionsForLevel(level))
		if n > prev {
			t.Fatalf("misconceptions grew at %s: %d > %d", level, n, prev)
		}
		prev = n
	}
}

func TestProductFacts(t *testing.T) {
	kb := knowledge.NewBase()
	for _, product := range knowledge.Products {
		if _, err := kb.ProductFact(product); err != nil {
			t.Fatalf("missing fact for %s: %v", product, err)
		}
	}
	if _, err := kb.ProductFact("криптокошелёк"); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestGoalsAndRules(t *testing.T) {
	kb := knowledge.NewBase()
	if len(kb.GoalsFor(19)) == 0 || len(kb.GoalsFor(79)) == 0 {
		t.Fatal("expected goals for young and elderly ages")
	}
	for _, level := range models.LiteracyLevels {
		if len(kb.LiteracyRules(level)) == 0 {
			t.Fatalf("missing rules for %s", level)
		}
	}
	for _, style := range []string{knowledge.StyleImpulsive, knowledge.StyleCautious, knowledge.StyleRational, knowledge.StyleConservative, knowledge.StyleExperimenter} {
		if len(kb.BehaviorPatterns(style)) == 0 {
			t.Fatalf("missing patterns for %s", style)
		}
	}
}

package persona

import (
	"sort"
	"testing"
	"time"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/behavior"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/pkg/randutil"
)

func newTestGenerator() *Generator {
	now := func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return NewGenerator(knowledge.NewBase(), behavior.NewSuite(now))
}

func TestEducationOptionsExcludeGraduateUnder25(t *testing.T) {
	for age := 18; age < 25; age++ {
		for _, o := range EducationOptions(age) {
			if models.IsGraduate(o.Value) && o.Weight > 0 {
				t.Fatalf("age %d allows graduate education %s", age, o.Value)
			}
		}
	}
}

func TestSampledEducationRespectsAge(t *testing.T) {
	s := NewDemographicSampler()
	rng := randutil.New(1)
	for i := 0; i < 5000; i++ {
		p := s.Sample(rng)
		if p.Age < 25 && models.IsGraduate(p.Education) {
			t.Fatalf("age %d sampled graduate education %s", p.Age, p.Education)
		}
		if p.Age < 18 || p.Age > 80 {
			t.Fatalf("age %d outside brackets", p.Age)
		}
	}
}

func TestChildrenCappedByAge(t *testing.T) {
	s := NewDemographicSampler()
	rng := randutil.New(2)
	for i := 0; i < 5000; i++ {
		p := s.Sample(rng)
		if p.Children > MaxChildren(p.Age) {
			t.Fatalf("age %d has %d children, max %d", p.Age, p.Children, MaxChildren(p.Age))
		}
	}
}

func TestMaxChildren(t *testing.T) {
	tests := map[int]int{18: 0, 22: 0, 23: 1, 40: 4, 43: 5, 80: 5}
	for age, want := range tests {
		if got := MaxChildren(age); got != want {
			t.Errorf("MaxChildren(%d) = %d, want %d", age, got, want)
		}
	}
}

func TestHobbiesDistinct(t *testing.T) {
	s := NewDemographicSampler()
	rng := randutil.New(3)
	for i := 0; i < 2000; i++ {
		p := s.Sample(rng)
		if len(p.Hobbies) < 1 || len(p.Hobbies) > 3 {
			t.Fatalf("expected 1-3 hobbies, got %d", len(p.Hobbies))
		}
		seen := map[string]bool{}
		for _, h := range p.Hobbies {
			if seen[h] {
				t.Fatalf("duplicate hobby %s", h)
			}
			seen[h] = true
		}
	}
}

func TestIncomeIndexInRange(t *testing.T) {
	s := NewDemographicSampler()
	rng := randutil.New(4)
	for i := 0; i < 2000; i++ {
		p := s.Sample(rng)
		if p.IncomeIndex < 0 || p.IncomeIndex >= len(IncomeBrackets) {
			t.Fatalf("income index %d out of range", p.IncomeIndex)
		}
		if IncomeBrackets[p.IncomeIndex] != p.IncomeBracket {
			t.Fatalf("bracket label %s does not match index %d", p.IncomeBracket, p.IncomeIndex)
		}
	}
}

func TestLiteracyMonotonicInEducationAndIncome(t *testing.T) {
	educations := []string{models.EduSchool, models.EduVocational, models.EduIncomplete, models.EduHigher, models.EduMaster, models.EduDoctorate}
	factors := make([]float64, len(educations))
	for i, e := range educations {
		factors[i] = EducationFactor(e)
	}
	if !sort.Float64sAreSorted(factors) {
		t.Fatalf("education factors not ascending: %v", factors)
	}

	for _, age := range []int{20, 35, 60, 75} {
		for _, jitter := range []float64{0.7, 1.0, 1.3} {
			prevLevel := -1
			for _, e := range educations {
				level := LevelForScore(LiteracyScore(EducationFactor(e), AgeFactor(age), IncomeFactor(3), jitter)).Index()
				if level < prevLevel {
					t.Fatalf("literacy fell with education at age %d jitter %.1f", age, jitter)
				}
				prevLevel = level
			}

			prevLevel = -1
			for income := 0; income < len(IncomeBrackets); income++ {
				level := LevelForScore(LiteracyScore(EducationFactor(models.EduHigher), AgeFactor(age), IncomeFactor(income), jitter)).Index()
				if level < prevLevel {
					t.Fatalf("literacy fell with income at age %d jitter %.1f", age, jitter)
				}
				prevLevel = level
			}
		}
	}
}

func TestLevelForScoreThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  models.LiteracyLevel
	}{
		{0, models.LiteracyNone},
		{0.249, models.LiteracyNone},
		{0.25, models.LiteracyBeginner},
		{0.45, models.LiteracyIntermediate},
		{0.70, models.LiteracyAdvanced},
		{0.90, models.LiteracyExpert},
		{1, models.LiteracyExpert},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%.3f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestTargetsGrowWithLiteracy(t *testing.T) {
	prev := TargetsFor(models.LiteracyLevels[0])
	for _, level := range models.LiteracyLevels[1:] {
		cur := TargetsFor(level)
		if cur.Accuracy <= prev.Accuracy || cur.Confidence <= prev.Confidence || cur.DetailLevel <= prev.DetailLevel {
			t.Fatalf("targets did not grow at %s: %+v vs %+v", level, cur, prev)
		}
		prev = cur
	}
}

func TestProductProbabilities(t *testing.T) {
	if p := ProductProbability(knowledge.ProductMortgage, 4, 24, 6); p != 0 {
		t.Errorf("expected no mortgage below 25, got %.2f", p)
	}
	if p := ProductProbability(knowledge.ProductMortgage, 4, 51, 6); p != 0 {
		t.Errorf("expected no mortgage above 50, got %.2f", p)
	}
	if ProductProbability(knowledge.ProductMortgage, 2, 35, 5) <= ProductProbability(knowledge.ProductMortgage, 2, 35, 1) {
		t.Error("expected income bonus on mortgage probability")
	}

	prev := -1.0
	for i := 0; i < len(models.LiteracyLevels); i++ {
		p := ProductProbability(knowledge.ProductInvestments, i, 40, 3)
		if p <= prev {
			t.Fatalf("investment probability not increasing at index %d", i)
		}
		prev = p
	}
}

func TestRiskShiftsForHighIncome(t *testing.T) {
	low := RiskOptions(40, 2)
	high := RiskOptions(40, len(IncomeBrackets)-1)
	if high[RiskSeeking] <= low[RiskSeeking] {
		t.Fatalf("expected more risk tolerance for high income: %v vs %v", high, low)
	}
}

func TestYoungUneducatedGetsLowestTierVocabulary(t *testing.T) {
	kb := knowledge.NewBase()
	m := NewFinancialModel(kb)
	rng := randutil.New(5)

	tier := map[string]bool{}
	for _, term := range kb.VocabularyForLevel(models.LiteracyNone) {
		tier[term] = true
	}

	base := models.Persona{Age: 22, Education: models.EduSchool, IncomeIndex: 0}
	for i := 0; i < 200; i++ {
		fp := m.Derive(rng, base)
		if fp.Literacy != models.LiteracyNone {
			t.Fatalf("expected %s, got %s (score %.3f)", models.LiteracyNone, fp.Literacy, fp.LiteracyScore)
		}
		for _, term := range fp.Vocabulary {
			if !tier[term] {
				t.Fatalf("term %q not in the lowest tier", term)
			}
		}
	}
}

func TestMisconceptionsShrinkWithLiteracy(t *testing.T) {
	kb := knowledge.NewBase()
	prev := len(kb.MisconceptionsForLevel(models.LiteracyLevels[0]))
	for _, level := range models.LiteracyLevels[1:] {
		n := len(kb.MisconceptionsForLevel(level))
		if n > prev {
			t.Fatalf("misconceptions grew at %s", level)
		}
		prev = n
	}
}

func TestGenerateNReproducible(t *testing.T) {
	g := newTestGenerator()
	a, err := g.GenerateN(42, 10)
	if err != nil {
		t.Fatalf("GenerateN failed: %v", err)
	}
	b, err := g.GenerateN(42, 10)
	if err != nil {
		t.Fatalf("GenerateN failed: %v", err)
	}

	ids := map[string]bool{}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Age != b[i].Age || a[i].Financial.Literacy != b[i].Financial.Literacy {
			t.Fatalf("persona %d differs between runs with the same seed", i)
		}
		if ids[a[i].ID] {
			t.Fatalf("duplicate id %s", a[i].ID)
		}
		ids[a[i].ID] = true
	}
}

func TestGeneratedPersonaIsComplete(t *testing.T) {
	g := newTestGenerator()
	p, err := g.Generate(randutil.New(6))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if p.ID == "" || p.City == "" || p.Profession == "" {
		t.Fatalf("incomplete persona: %+v", p)
	}
	if len(p.Financial.Products) != len(knowledge.Products) {
		t.Fatalf("expected usage for every product, got %v", p.Financial.Products)
	}
	if len(p.Behavioral.Inconsistency.Types) == 0 || p.Behavioral.Linguistic.AgeGroup == "" {
		t.Fatal("expected behavioural profile to be attached")
	}
	if p.Behavioral.Inconsistency.Fatigue.Current != 0 {
		t.Fatal("expected fatigue to start at zero")
	}
}

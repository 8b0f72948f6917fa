package persona

import (
	"math/rand"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// DemographicSampler draws the base demographic attributes of a persona
type DemographicSampler struct {
	hobbies []string
}

// NewDemographicSampler creates a sampler over the built-in hobby catalogue
func NewDemographicSampler() *DemographicSampler {
	return &DemographicSampler{hobbies: HobbyCatalogue}
}

// Sample draws one persona base. Financial and behavioral fields are left empty.
func (s *DemographicSampler) Sample(rng *rand.Rand) models.Persona {
	bracket := s.sampleAgeBracket(rng)
	age := randutil.IntBetween(rng, bracket.Min, bracket.Max)

	reg := s.sampleRegion(rng)
	incomeIndex := randutil.DiscreteGaussian(rng, bracket.IncomeMean, bracket.IncomeSD, 0, len(IncomeBrackets)-1)
	education := randutil.Pick(rng, EducationOptions(age))
	family := randutil.Pick(rng, FamilyOptions(age))

	return models.Persona{
		Gender:        randutil.Pick(rng, genders),
		Age:           age,
		Region:        reg.Name,
		City:          randutil.Uniform(rng, reg.Cities),
		Profession:    sampleProfession(rng, age, education),
		Education:     education,
		FamilyStatus:  family,
		Children:      sampleChildren(rng, age, family),
		IncomeBracket: IncomeBrackets[incomeIndex],
		IncomeIndex:   incomeIndex,
		Hobbies:       randutil.Sample(rng, s.hobbies, randutil.Pick(rng, hobbyCounts)),
	}
}

func (s *DemographicSampler) sampleAgeBracket(rng *rand.Rand) ageBracket {
	options := make([]randutil.Option[ageBracket], len(ageBrackets))
	for i, b := range ageBrackets {
		options[i] = randutil.Option[ageBracket]{Value: b, Weight: b.Weight}
	}
	return randutil.Pick(rng, options)
}

func (s *DemographicSampler) sampleRegion(rng *rand.Rand) region {
	options := make([]randutil.Option[region], len(regions))
	for i, reg := range regions {
		options[i] = randutil.Option[region]{Value: reg, Weight: reg.Weight}
	}
	return randutil.Pick(rng, options)
}

// EducationOptions returns the age-gated education distribution
func EducationOptions(age int) []randutil.Option[string] {
	for _, gate := range educationByAge {
		if age <= gate.MaxAge {
			return gate.Options
		}
	}
	return educationByAge[len(educationByAge)-1].Options
}

// FamilyOptions returns the age-gated family status distribution
func FamilyOptions(age int) []randutil.Option[string] {
	for _, gate := range familyByAge {
		if age <= gate.MaxAge {
			return gate.Options
		}
	}
	return familyByAge[len(familyByAge)-1].Options
}

// MaxChildren caps the number of children by age
func MaxChildren(age int) int {
	return randutil.ClampInt((age-18)/5, 0, 5)
}

func sampleChildren(rng *rand.Rand, age int, family string) int {
	limit := MaxChildren(age)
	weights, ok := childrenByFamily[family]
	if !ok {
		weights = childrenByFamily[models.FamilySingle]
	}

	options := make([]randutil.Option[int], 0, len(weights))
	for count, w := range weights {
		if count > limit {
			break
		}
		options = append(options, randutil.Option[int]{Value: count, Weight: w})
	}
	return randutil.Pick(rng, options)
}

func sampleProfession(rng *rand.Rand, age int, education string) string {
	switch {
	case age < 23 && randutil.Bernoulli(rng, 0.6):
		return "студент"
	case age >= 65 && randutil.Bernoulli(rng, 0.7):
		return "пенсионер"
	case randutil.Bernoulli(rng, 0.06):
		return "предприниматель"
	}

	if education == models.EduHigher || models.IsGraduate(education) {
		return randutil.Uniform(rng, professionsHigher)
	}
	return randutil.Uniform(rng, professionsOther)
}

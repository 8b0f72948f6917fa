// Package persona generates synthetic survey respondents: base demographics, a
// literacy-driven financial profile and the behavioural attachments.
package persona

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/behavior"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/pkg/randutil"
)

// Generator produces complete personas
type Generator struct {
	sampler   *DemographicSampler
	financial *FinancialModel
	behavior  *behavior.Suite
}

// NewGenerator wires the sampler, financial model and behavioural suite
func NewGenerator(kb knowledge.Service, suite *behavior.Suite) *Generator {
	return &Generator{
		sampler:   NewDemographicSampler(),
		financial: NewFinancialModel(kb),
		behavior:  suite,
	}
}

// Generate draws one persona. The id is taken from rng so a seeded run reproduces it.
func (g *Generator) Generate(rng *rand.Rand) (models.Persona, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return models.Persona{}, fmt.Errorf("failed to generate persona id: %w", err)
	}

	p := g.sampler.Sample(rng)
	p.ID = id.String()
	p.Financial = g.financial.Derive(rng, p)
	p.Behavioral = g.behavior.Profile(rng, p)
	return p, nil
}

// GenerateN draws n personas, each from its own stream derived from seed
func (g *Generator) GenerateN(seed int64, n int) ([]models.Persona, error) {
	personas := make([]models.Persona, 0, n)
	for i := 0; i < n; i++ {
		p, err := g.Generate(randutil.Derive(seed, "persona", i))
		if err != nil {
			return nil, fmt.Errorf("persona %d: %w", i, err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}

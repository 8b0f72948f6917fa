package behavior

import (
	"math/rand"
	"time"

	"github.com/synth-respondents-go/internal/models"
)

// Suite bundles the five augmentors
type Suite struct {
	Cognitive     *CognitiveBiasModel
	Emotional     *EmotionalFactorModel
	Linguistic    *LinguisticVariationModel
	LifeContext   *LifeContextModel
	Inconsistency *InconsistencyModel
}

// NewSuite creates all augmentors. now drives seasonal factors; nil means the wall clock.
func NewSuite(now func() time.Time) *Suite {
	return &Suite{
		Cognitive:     NewCognitiveBiasModel(),
		Emotional:     NewEmotionalFactorModel(),
		Linguistic:    NewLinguisticVariationModel(),
		LifeContext:   NewLifeContextModel(now),
		Inconsistency: NewInconsistencyModel(),
	}
}

// Profile samples the full behavioral profile of p. p must already carry its financial profile.
func (s *Suite) Profile(rng *rand.Rand, p models.Persona) models.BehavioralProfile {
	return models.BehavioralProfile{
		CognitiveBiases:  s.Cognitive.Sample(rng, p),
		EmotionalFactors: s.Emotional.Sample(rng, p),
		Linguistic:       s.Linguistic.Sample(rng, p),
		LifeContext:      s.LifeContext.Sample(rng, p),
		Inconsistency:    s.Inconsistency.Sample(rng, p),
	}
}

// Augmentors returns the augmentors in application order. Later augmentors merge into
// sections created by earlier ones.
func (s *Suite) Augmentors() []Augmentor {
	return []Augmentor{s.Cognitive, s.Emotional, s.Linguistic, s.LifeContext, s.Inconsistency}
}

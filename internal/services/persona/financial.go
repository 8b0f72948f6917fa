package persona

import (
	"math/rand"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/pkg/randutil"
)

// Literacy score blend weights
const (
	educationWeight = 0.4
	ageWeight       = 0.3
	incomeWeight    = 0.3
)

// LiteracyThresholds are the score cut points between consecutive levels
var LiteracyThresholds = []float64{0.25, 0.45, 0.70, 0.90}

var educationFactor = map[string]float64{
	models.EduSchool:     0.20,
	models.EduVocational: 0.35,
	models.EduIncomplete: 0.45,
	models.EduHigher:     0.65,
	models.EduMaster:     0.80,
	models.EduDoctorate:  0.90,
}

// Attitude values
const (
	RiskAverse   = "избегает риска"
	RiskModerate = "умеренный"
	RiskSeeking  = "склонен к риску"
)

var bankTrustByLiteracy = map[models.LiteracyLevel][]randutil.Option[string]{
	models.LiteracyNone: {
		{Value: "не доверяет", Weight: 0.35}, {Value: "скорее не доверяет", Weight: 0.30},
		{Value: "нейтрально", Weight: 0.20}, {Value: "скорее доверяет", Weight: 0.10}, {Value: "доверяет", Weight: 0.05},
	},
	models.LiteracyBeginner: {
		{Value: "не доверяет", Weight: 0.20}, {Value: "скорее не доверяет", Weight: 0.30},
		{Value: "нейтрально", Weight: 0.25}, {Value: "скорее доверяет", Weight: 0.18}, {Value: "доверяет", Weight: 0.07},
	},
	models.LiteracyIntermediate: {
		{Value: "не доверяет", Weight: 0.10}, {Value: "скорее не доверяет", Weight: 0.20},
		{Value: "нейтрально", Weight: 0.30}, {Value: "скорее доверяет", Weight: 0.28}, {Value: "доверяет", Weight: 0.12},
	},
	models.LiteracyAdvanced: {
		{Value: "не доверяет", Weight: 0.07}, {Value: "скорее не доверяет", Weight: 0.18},
		{Value: "нейтрально", Weight: 0.30}, {Value: "скорее доверяет", Weight: 0.30}, {Value: "доверяет", Weight: 0.15},
	},
	models.LiteracyExpert: {
		{Value: "не доверяет", Weight: 0.10}, {Value: "скорее не доверяет", Weight: 0.20},
		{Value: "нейтрально", Weight: 0.35}, {Value: "скорее доверяет", Weight: 0.25}, {Value: "доверяет", Weight: 0.10},
	},
}

var loanAttitudeByLiteracy = map[models.LiteracyLevel][]randutil.Option[string]{
	models.LiteracyNone: {
		{Value: "категорически против кредитов", Weight: 0.30}, {Value: "берёт только в крайнем случае", Weight: 0.35},
		{Value: "нормально относится", Weight: 0.20}, {Value: "активно пользуется", Weight: 0.15},
	},
	models.LiteracyBeginner: {
		{Value: "категорически против кредитов", Weight: 0.20}, {Value: "берёт только в крайнем случае", Weight: 0.35},
		{Value: "нормально относится", Weight: 0.30}, {Value: "активно пользуется", Weight: 0.15},
	},
	models.LiteracyIntermediate: {
		{Value: "категорически против кредитов", Weight: 0.12}, {Value: "берёт только в крайнем случае", Weight: 0.33},
		{Value: "нормально относится", Weight: 0.40}, {Value: "активно пользуется", Weight: 0.15},
	},
	models.LiteracyAdvanced: {
		{Value: "категорически против кредитов", Weight: 0.10}, {Value: "берёт только в крайнем случае", Weight: 0.30},
		{Value: "нормально относится", Weight: 0.45}, {Value: "активно пользуется", Weight: 0.15},
	},
	models.LiteracyExpert: {
		{Value: "категорически против кредитов", Weight: 0.08}, {Value: "берёт только в крайнем случае", Weight: 0.32},
		{Value: "нормально относится", Weight: 0.45}, {Value: "активно пользуется", Weight: 0.15},
	},
}

type riskGate struct {
	MaxAge  int
	Weights map[string]float64
}

var riskByAge = []riskGate{
	{MaxAge: 29, Weights: map[string]float64{RiskAverse: 0.25, RiskModerate: 0.40, RiskSeeking: 0.35}},
	{MaxAge: 44, Weights: map[string]float64{RiskAverse: 0.30, RiskModerate: 0.45, RiskSeeking: 0.25}},
	{MaxAge: 59, Weights: map[string]float64{RiskAverse: 0.45, RiskModerate: 0.40, RiskSeeking: 0.15}},
	{MaxAge: 200, Weights: map[string]float64{RiskAverse: 0.65, RiskModerate: 0.30, RiskSeeking: 0.05}},
}

// applied to the top income brackets
const highIncomeRiskShift = 0.15

var styleByRisk = map[string][]randutil.Option[string]{
	RiskAverse: {
		{Value: knowledge.StyleCautious, Weight: 0.45}, {Value: knowledge.StyleConservative, Weight: 0.35},
		{Value: knowledge.StyleRational, Weight: 0.15}, {Value: knowledge.StyleImpulsive, Weight: 0.05},
	},
	RiskModerate: {
		{Value: knowledge.StyleRational, Weight: 0.40}, {Value: knowledge.StyleCautious, Weight: 0.25},
		{Value: knowledge.StyleImpulsive, Weight: 0.15}, {Value: knowledge.StyleConservative, Weight: 0.10},
		{Value: knowledge.StyleExperimenter, Weight: 0.10},
	},
	RiskSeeking: {
		{Value: knowledge.StyleExperimenter, Weight: 0.40}, {Value: knowledge.StyleImpulsive, Weight: 0.35},
		{Value: knowledge.StyleRational, Weight: 0.25},
	},
}

// FinancialModel derives the financial profile of a persona from its demographics
type FinancialModel struct {
	kb knowledge.Service
}

// NewFinancialModel creates a model backed by kb
func NewFinancialModel(kb knowledge.Service) *FinancialModel {
	return &FinancialModel{kb: kb}
}

// EducationFactor maps education onto [0,1]
func EducationFactor(education string) float64 {
	if f, ok := educationFactor[education]; ok {
		return f
	}
	return 0.3
}

// AgeFactor maps age onto [0,1]: experience builds until 55, holds, then fades
func AgeFactor(age int) float64 {
	switch {
	case age <= 55:
		return randutil.Clamp(0.3+float64(age-18)*0.6/37, 0.3, 0.9)
	case age <= 65:
		return 0.9
	default:
		return randutil.Clamp(0.9-float64(age-65)*0.02, 0.5, 0.9)
	}
}

// IncomeFactor maps an income bracket index onto [0,1]
func IncomeFactor(index int) float64 {
	return randutil.Clamp(float64(index)/float64(len(IncomeBrackets)-1), 0, 1)
}

// LiteracyScore blends the three sub-factors and applies the jitter multiplier
func LiteracyScore(edu, age, income, jitter float64) float64 {
	blend := educationWeight*edu + ageWeight*age + incomeWeight*income
	return randutil.Clamp(blend*jitter, 0, 1)
}

// LevelForScore thresholds a literacy score into a level
func LevelForScore(score float64) models.LiteracyLevel {
	for i, cut := range LiteracyThresholds {
		if score < cut {
			return models.LiteracyLevels[i]
		}
	}
	return models.LiteracyExpert
}

// TargetsFor returns answer-quality targets that grow with literacy index
func TargetsFor(level models.LiteracyLevel) models.ResponseTargets {
	i := float64(level.Index())
	return models.ResponseTargets{
		Accuracy:    0.3 + 0.15*i,
		Confidence:  0.35 + 0.14*i,
		DetailLevel: 0.2 + 0.18*i,
	}
}

// ProductProbability returns the usage probability of product for the given persona traits
func ProductProbability(product string, literacyIndex, age, incomeIndex int) float64 {
	i := float64(literacyIndex)
	switch product {
	case knowledge.ProductDebitCard:
		return 0.75 + 0.05*i
	case knowledge.ProductCreditCard:
		return 0.2 + 0.1*i
	case knowledge.ProductDeposit:
		return 0.1 + 0.12*i
	case knowledge.ProductConsumerLoan:
		return 0.35 - 0.03*i
	case knowledge.ProductMortgage:
		if age < 25 || age > 50 {
			return 0
		}
		return randutil.Clamp(0.05+0.05*i+0.04*float64(incomeIndex), 0, 0.8)
	case knowledge.ProductInvestments:
		return 0.02 + 0.04*i*i
	case knowledge.ProductInsurance:
		return 0.15 + 0.08*i
	case knowledge.ProductMobileBank:
		return 0.5 + 0.1*i
	default:
		return 0
	}
}

// RiskOptions returns the risk attitude distribution for age and income
func RiskOptions(age, incomeIndex int) map[string]float64 {
	var base map[string]float64
	for _, gate := range riskByAge {
		if age <= gate.MaxAge {
			base = gate.Weights
			break
		}
	}

	weights := make(map[string]float64, len(base))
	for k, v := range base {
		weights[k] = v
	}
	if incomeIndex >= len(IncomeBrackets)-2 {
		shift := highIncomeRiskShift
		if weights[RiskAverse] < shift {
			shift = weights[RiskAverse]
		}
		weights[RiskAverse] -= shift
		weights[RiskSeeking] += shift
	}
	return weights
}

// Derive computes the financial profile of base
func (m *FinancialModel) Derive(rng *rand.Rand, base models.Persona) models.FinancialProfile {
	jitter := randutil.Between(rng, 0.7, 1.3)
	score := LiteracyScore(EducationFactor(base.Education), AgeFactor(base.Age), IncomeFactor(base.IncomeIndex), jitter)
	level := LevelForScore(score)
	idx := level.Index()

	products := make(map[string]bool, len(knowledge.Products))
	for _, product := range knowledge.Products {
		products[product] = randutil.Bernoulli(rng, ProductProbability(product, idx, base.Age, base.IncomeIndex))
	}

	risk := randutil.PickMap(rng, RiskOptions(base.Age, base.IncomeIndex))
	attitudes := models.Attitudes{
		BankTrust:     randutil.Pick(rng, bankTrustByLiteracy[level]),
		LoanAttitude:  randutil.Pick(rng, loanAttitudeByLiteracy[level]),
		RiskAttitude:  risk,
		BehaviorStyle: randutil.Pick(rng, styleByRisk[risk]),
	}

	misconceptions := m.kb.MisconceptionsForLevel(level)
	return models.FinancialProfile{
		LiteracyScore:    score,
		Literacy:         level,
		Products:         products,
		Attitudes:        attitudes,
		Vocabulary:       randutil.Sample(rng, m.kb.VocabularyForLevel(level), 5),
		Misconceptions:   randutil.Sample(rng, misconceptions, 3),
		Goals:            randutil.Sample(rng, m.kb.GoalsFor(base.Age), 2),
		BehaviorPatterns: m.kb.BehaviorPatterns(attitudes.BehaviorStyle),
		Targets:          TargetsFor(level),
	}
}

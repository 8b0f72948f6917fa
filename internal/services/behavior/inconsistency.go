package behavior

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// SectionInconsistency is the prompt section contradiction traits render into
const SectionInconsistency = "Непоследовательность"

// Contradiction level bounds
const (
	MinInconsistency = 0.1
	MaxInconsistency = 0.9
)

var contradictionTypes = catalogue{
	{
		Name:        "противоречие прошлым ответам",
		Description: "можешь сказать то, что расходится с твоими предыдущими ответами",
		Examples:    []string{"Вообще-то я кредитами не пользуюсь... ну, кроме рассрочки на телефон", "Доверяю банкам, хотя деньги держу дома"},
		Triggers:    []string{"хотя", "вообще-то", "ну, кроме"},
	},
	{
		Name:        "смена мнения",
		Description: "меняешь позицию прямо по ходу ответа",
		Examples:    []string{"Нет, не пользуюсь. Хотя нет, пользуюсь иногда", "Сначала думал, что выгодно, а сейчас понимаю, что нет"},
		Triggers:    []string{"хотя нет", "точнее", "или нет"},
	},
	{
		Name:        "неточность в цифрах",
		Description: "путаешься в суммах, процентах и сроках",
		Examples:    []string{"Ставка была то ли 8, то ли 18 процентов", "Плачу тысяч десять, может пятнадцать"},
		Triggers:    []string{"то ли", "примерно", "где-то"},
	},
	{
		Name:        "оговорки и поправки",
		Description: "поправляешь сам себя и уточняешь сказанное",
		Examples:    []string{"В смысле, не вклад, а накопительный счёт", "Ну то есть я хотел сказать другое"},
		Triggers:    []string{"в смысле", "то есть", "я имею в виду"},
	},
	{
		Name:        "уклончивость",
		Description: "уходишь от прямого ответа на неудобные вопросы",
		Examples:    []string{"Ну, это сложный вопрос", "Смотря как посмотреть"},
		Triggers:    []string{"смотря как", "сложно сказать", "по-разному"},
	},
}

// InconsistencyModel attaches a contradiction profile and session fatigue to a persona
type InconsistencyModel struct {
	traits catalogue
}

// NewInconsistencyModel creates a model over the built-in contradiction catalogue
func NewInconsistencyModel() *InconsistencyModel {
	return &InconsistencyModel{traits: contradictionTypes}
}

// Name implements Augmentor
func (m *InconsistencyModel) Name() string { return "inconsistency" }

// AgeUFactor is lowest in middle age and rises for the young and the old
func AgeUFactor(age int) float64 {
	d := float64(age-45) / 27
	return 0.15*d*d - 0.1
}

// LiteracyFactor lowers inconsistency as literacy index grows
func LiteracyFactor(literacyIndex int) float64 {
	return 0.1 - 0.05*float64(literacyIndex)
}

// BaseLevel computes the overall contradiction level
func BaseLevel(age, literacyIndex int, jitter float64) float64 {
	level := randutil.Clamp(0.4+AgeUFactor(age)+LiteracyFactor(literacyIndex), MinInconsistency, MaxInconsistency) * jitter
	return randutil.Clamp(level, MinInconsistency, MaxInconsistency)
}

// FatigueAt returns the fatigue after answering question index (0-based) in a session
// that started at fs.Current: f_i = min(max, f_{i-1} + rate*(i+1))
func FatigueAt(fs models.FatigueState, index int) float64 {
	f := fs.Current
	for k := 0; k <= index; k++ {
		f = math.Min(fs.Max, f+fs.Rate*float64(k+1))
	}
	return f
}

// EffectiveLevel is the contradiction level for question index including fatigue
func EffectiveLevel(ip models.InconsistencyProfile, index int) float64 {
	return math.Min(MaxInconsistency, ip.Level+0.5*FatigueAt(ip.Fatigue, index))
}

// Sample draws the contradiction profile of p
func (m *InconsistencyModel) Sample(rng *rand.Rand, p models.Persona) models.InconsistencyProfile {
	level := BaseLevel(p.Age, p.Financial.Literacy.Index(), randutil.Between(rng, 0.8, 1.2))

	types := make(map[string]float64)
	for _, name := range m.traits.names() {
		if randutil.Bernoulli(rng, level*0.7) {
			types[name] = DrawStrength(rng, defaultStrengthWeights)
		}
	}
	if len(types) == 0 {
		types[randutil.Uniform(rng, m.traits.names())] = DrawStrength(rng, defaultStrengthWeights)
	}

	// fatigue builds faster at the ends of the age range
	ageBoost := 1 + 2*(AgeUFactor(p.Age)+0.1)
	return models.InconsistencyProfile{
		Level: level,
		Types: types,
		Fatigue: models.FatigueState{
			Rate:    randutil.Between(rng, 0.005, 0.015) * ageBoost,
			Current: 0,
			Max:     randutil.Between(rng, 0.4, 0.8),
		},
	}
}

// Apply renders the contradiction profile for the turn's position in the session
func (m *InconsistencyModel) Apply(w SectionWriter, p *models.Persona, turn Turn, rng *rand.Rand) {
	ip := p.Behavioral.Inconsistency
	if len(ip.Types) == 0 {
		return
	}

	level := EffectiveLevel(ip, turn.Index)
	lines := []string{fmt.Sprintf("Твои ответы %s непоследовательны (%.1f). Допустимые проявления:", StrengthAdjective(level), level)}
	lines = append(lines, renderAll(rng, m.traits, ip.Types)...)

	switch fatigue := FatigueAt(ip.Fatigue, turn.Index); {
	case fatigue >= 0.5:
		lines = append(lines, "Ты сильно устал от анкеты: отвечай коротко, можешь отмахнуться от вопроса.")
	case fatigue >= 0.2:
		lines = append(lines, "Ты начинаешь уставать от анкеты: ответы становятся короче и небрежнее.")
	}
	w.Merge(SectionInconsistency, lines...)
}

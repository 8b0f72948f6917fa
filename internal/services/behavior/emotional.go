package behavior

import (
	"math/rand"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// SectionEmotional is the prompt section emotions render into
const SectionEmotional = "Эмоциональное состояние"

// below this strength an off-topic emotion is dropped for the turn
const emotionFloor = 0.2

var emotions = catalogue{
	{
		Name:        "тревога",
		Description: "волнуешься о деньгах и будущем, сомневаешься в решениях",
		Examples:    []string{"Честно, меня это очень беспокоит", "А вдруг что-то пойдёт не так?"},
		Triggers:    []string{"боюсь", "переживаю", "а вдруг"},
		Topics:      []string{models.TopicLoans, models.TopicInvestments, models.TopicMortgage, models.TopicSavings},
	},
	{
		Name:        "недоверие",
		Description: "подозреваешь подвох в любых предложениях банка",
		Examples:    []string{"Бесплатный сыр только в мышеловке", "Наверняка там мелкий шрифт"},
		Triggers:    []string{"подвох", "обманут", "мелкий шрифт"},
		Topics:      []string{models.TopicService, models.TopicCards, models.TopicInsurance, models.TopicLoans},
	},
	{
		Name:        "раздражение",
		Description: "тебя злят очереди, комиссии и навязанные услуги",
		Examples:    []string{"Опять навязали страховку, достали", "Полчаса висел на линии, ужас"},
		Triggers:    []string{"достали", "бесит", "сколько можно"},
		Topics:      []string{models.TopicService, models.TopicMobileBank, models.TopicCards, models.TopicInsurance},
	},
	{
		Name:        "энтузиазм",
		Description: "тебе интересны новые продукты и возможности",
		Examples:    []string{"Вообще классная штука, всем советую", "Попробовал, мне понравилось"},
		Triggers:    []string{"классно", "удобно", "попробую"},
		Topics:      []string{models.TopicInvestments, models.TopicMobileBank, models.TopicCards},
	},
	{
		Name:        "стыд",
		Description: "неловко говорить о своих долгах и ошибках с деньгами",
		Examples:    []string{"Ну, было дело, не люблю об этом вспоминать", "Не самая приятная тема"},
		Triggers:    []string{"неудобно", "не хочу об этом", "было дело"},
		Topics:      []string{models.TopicLoans, models.TopicMortgage},
	},
	{
		Name:        "гордость",
		Description: "гордишься тем, как распоряжаешься деньгами",
		Examples:    []string{"Я-то всегда откладываю, в отличие от многих", "Ни одной просрочки за всю жизнь"},
		Triggers:    []string{"в отличие от других", "я всегда", "умею"},
		Topics:      []string{models.TopicSavings, models.TopicDeposits, models.TopicInvestments},
	},
	{
		Name:        "страх потери",
		Description: "боишься, что сбережения обесценятся или пропадут",
		Examples:    []string{"Инфляция всё съест", "Помню, как в девяностые всё сгорело"},
		Triggers:    []string{"сгорит", "обесценится", "инфляция"},
		Topics:      []string{models.TopicDeposits, models.TopicSavings, models.TopicInvestments},
	},
	{
		Name:        "безразличие",
		Description: "тема тебя мало волнует, отвечаешь без эмоций",
		Examples:    []string{"Да мне как-то всё равно", "Не задумывался особо"},
		Triggers:    []string{"всё равно", "не знаю", "наверное"},
		Topics:      []string{models.TopicGeneral},
	},
}

var emotionCountByLiteracy = []traitCount{{2, 4}, {2, 3}, {1, 3}, {1, 2}, {1, 2}}

var emotionWeightsByLiteracy = []StrengthWeights{
	{0.15, 0.40, 0.45},
	{0.20, 0.45, 0.35},
	defaultStrengthWeights,
	{0.40, 0.40, 0.20},
	{0.50, 0.40, 0.10},
}

// EmotionalFactorModel attaches emotional factors to a persona and filters them per turn
type EmotionalFactorModel struct {
	traits catalogue
}

// NewEmotionalFactorModel creates a model over the built-in emotion catalogue
func NewEmotionalFactorModel() *EmotionalFactorModel {
	return &EmotionalFactorModel{traits: emotions}
}

// Name implements Augmentor
func (m *EmotionalFactorModel) Name() string { return "emotional" }

// Sample draws the persona's baseline emotions
func (m *EmotionalFactorModel) Sample(rng *rand.Rand, p models.Persona) map[string]float64 {
	idx := p.Financial.Literacy.Index()
	count := emotionCountByLiteracy[idx]
	weights := emotionWeightsByLiteracy[idx]

	n := randutil.IntBetween(rng, count.Min, count.Max)
	out := make(map[string]float64, n)
	for _, name := range randutil.Sample(rng, m.traits.names(), n) {
		out[name] = DrawStrength(rng, weights)
	}
	return out
}

// Relevant reports whether emotion is associated with topic. The general topic matches everything.
func (m *EmotionalFactorModel) Relevant(emotion, topic string) bool {
	if topic == "" || topic == models.TopicGeneral {
		return true
	}
	t, ok := m.traits.lookup(emotion)
	if !ok {
		return false
	}
	return contains(t.Topics, topic) || contains(t.Topics, models.TopicGeneral)
}

// ForTopic returns the emotions active for a question of topic: off-topic strengths are
// halved and dropped below the floor
func (m *EmotionalFactorModel) ForTopic(baseline map[string]float64, topic string) map[string]float64 {
	out := make(map[string]float64, len(baseline))
	for name, strength := range baseline {
		if !m.Relevant(name, topic) {
			strength /= 2
			if strength < emotionFloor {
				continue
			}
		}
		out[name] = strength
	}
	return out
}

// Apply renders the emotions active for the turn's topic
func (m *EmotionalFactorModel) Apply(w SectionWriter, p *models.Persona, turn Turn, rng *rand.Rand) {
	active := m.ForTopic(p.Behavioral.EmotionalFactors, turn.Topic)
	if len(active) == 0 {
		return
	}
	lines := append([]string{"Отвечая на этот вопрос, ты испытываешь:"}, renderAll(rng, m.traits, active)...)
	w.Merge(SectionEmotional, lines...)
}

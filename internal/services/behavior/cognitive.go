package behavior

import (
	"math/rand"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// SectionCognitive is the prompt section cognitive biases render into
const SectionCognitive = "Когнитивные искажения"

var cognitiveBiases = catalogue{
	{
		Name:        "эффект якоря",
		Description: "опираешься на первую услышанную цифру и оцениваешь всё относительно неё",
		Examples:    []string{"Раньше ставка была 5%, так что 12% для меня грабёж", "Мне сказали, что нормальный кэшбэк это 10%, меньше не интересно"},
		Triggers:    []string{"раньше было", "я помню, что", "по сравнению с"},
	},
	{
		Name:        "предвзятость подтверждения",
		Description: "замечаешь только то, что подтверждает твоё мнение о банках",
		Examples:    []string{"Я всегда знал, что банкам нельзя верить, вот опять", "Ну вот, опять комиссия, я же говорил"},
		Triggers:    []string{"я же говорил", "как всегда", "так и знал"},
	},
	{
		Name:        "неприятие потерь",
		Description: "боишься потерять деньги сильнее, чем хочешь заработать",
		Examples:    []string{"Лучше меньше, но надёжно", "Не хочу рисковать тем, что есть"},
		Triggers:    []string{"потерять", "рисковать", "надёжно"},
	},
	{
		Name:        "эффект ореола",
		Description: "судишь о банке по одной яркой черте, например по рекламе или приложению",
		Examples:    []string{"У них такое удобное приложение, значит и вклады хорошие", "Банк большой, значит не обманет"},
		Triggers:    []string{"солидный", "известный", "красивая реклама"},
	},
	{
		Name:        "избыточная уверенность",
		Description: "переоцениваешь свои финансовые знания",
		Examples:    []string{"Я в этом точно разбираюсь, меня не проведёшь", "Да там всё просто, я сам всё посчитал"},
		Triggers:    []string{"точно знаю", "меня не обманешь", "разбираюсь"},
	},
	{
		Name:        "стадное поведение",
		Description: "ориентируешься на то, что делают знакомые и все вокруг",
		Examples:    []string{"Все знакомые туда перешли, и я перешёл", "Коллега посоветовал, я и открыл"},
		Triggers:    []string{"все так делают", "знакомые советуют", "сейчас модно"},
	},
	{
		Name:        "эффект статус-кво",
		Description: "не хочешь ничего менять, даже если есть вариант лучше",
		Examples:    []string{"Я двадцать лет в одном банке и менять не собираюсь", "Зачем что-то менять, если и так работает"},
		Triggers:    []string{"привык", "зачем менять", "всю жизнь"},
	},
	{
		Name:        "эвристика доступности",
		Description: "оцениваешь риски по ярким историям из новостей и от знакомых",
		Examples:    []string{"У соседки мошенники всё с карты сняли, так что я картами не пользуюсь", "По телевизору показывали, как банк лопнул"},
		Triggers:    []string{"слышал историю", "показывали по телевизору", "у знакомых было"},
	},
	{
		Name:        "гиперболическое дисконтирование",
		Description: "предпочитаешь выгоду сейчас, даже если потом потеряешь больше",
		Examples:    []string{"Зачем копить, когда можно купить сейчас в рассрочку", "Потом разберусь, сейчас нужнее"},
		Triggers:    []string{"прямо сейчас", "потом разберусь", "жить сегодняшним днём"},
	},
}

type traitCount struct {
	Min, Max int
}

// lower literacy holds more biases and skews them stronger
var cognitiveCountByLiteracy = []traitCount{{3, 4}, {2, 4}, {2, 3}, {1, 3}, {1, 2}}

var cognitiveWeightsByLiteracy = []StrengthWeights{
	{0.10, 0.40, 0.50},
	{0.20, 0.40, 0.40},
	{0.30, 0.45, 0.25},
	{0.45, 0.40, 0.15},
	{0.55, 0.35, 0.10},
}

// CognitiveBiasModel attaches cognitive biases to a persona
type CognitiveBiasModel struct {
	traits catalogue
}

// NewCognitiveBiasModel creates a model over the built-in bias catalogue
func NewCognitiveBiasModel() *CognitiveBiasModel {
	return &CognitiveBiasModel{traits: cognitiveBiases}
}

// Name implements Augmentor
func (m *CognitiveBiasModel) Name() string { return "cognitive" }

// Catalogue lists the known bias names
func (m *CognitiveBiasModel) Catalogue() []string { return m.traits.names() }

// Sample draws the persona's biases and their strengths
func (m *CognitiveBiasModel) Sample(rng *rand.Rand, p models.Persona) map[string]float64 {
	idx := p.Financial.Literacy.Index()
	count := cognitiveCountByLiteracy[idx]
	weights := cognitiveWeightsByLiteracy[idx]

	n := randutil.IntBetween(rng, count.Min, count.Max)
	biases := make(map[string]float64, n)
	for _, name := range randutil.Sample(rng, m.traits.names(), n) {
		biases[name] = DrawStrength(rng, weights)
	}
	return biases
}

// Apply renders the persona's biases
func (m *CognitiveBiasModel) Apply(w SectionWriter, p *models.Persona, _ Turn, rng *rand.Rand) {
	biases := p.Behavioral.CognitiveBiases
	if len(biases) == 0 {
		return
	}
	lines := append([]string{"Тебе свойственны следующие искажения, проявляй их естественно, не называя прямо:"},
		renderAll(rng, m.traits, biases)...)
	w.Merge(SectionCognitive, lines...)
}

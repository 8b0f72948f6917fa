package behavior

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/pkg/randutil"
)

// SectionLifeContext is the prompt section life circumstances render into
const SectionLifeContext = "Жизненный контекст"

// at most this many recent events are kept per persona
const maxLifeEvents = 3

// Life event names
const (
	EventWedding     = "свадьба"
	EventDivorce     = "развод"
	EventChildBirth  = "рождение_ребёнка"
	EventRelocation  = "переезд"
	EventHomeBuy     = "покупка_жилья"
	EventJobLoss     = "потеря_работы"
	EventPromotion   = "повышение"
	EventIllness     = "болезнь"
	EventRetirement  = "выход_на_пенсию"
	EventBereavement = "смерть_близкого"
	EventChildUni    = "поступление_ребёнка_в_вуз"
)

// ageWindow weighs zero outside [Min, Max] and one inside [PeakMin, PeakMax]
type ageWindow struct {
	Min, PeakMin, PeakMax, Max int
}

type lifeEvent struct {
	Name        string
	Description string
	Window      ageWindow
	Base        float64
	Family      []string
}

var lifeEvents = []lifeEvent{
	{EventWedding, "недавно сыграл свадьбу, семейный бюджет только складывается", ageWindow{18, 24, 35, 60}, 0.15,
		[]string{models.FamilySingle, models.FamilyCivil}},
	{EventDivorce, "недавно развёлся, пришлось делить имущество и перестраивать финансы", ageWindow{22, 30, 50, 70}, 0.08,
		[]string{models.FamilyDivorced, models.FamilyMarried}},
	{EventChildBirth, "в семье недавно родился ребёнок, расходы выросли", ageWindow{20, 25, 38, 45}, 0.15,
		[]string{models.FamilyMarried, models.FamilyCivil}},
	{EventRelocation, "недавно переехал в другой город или квартиру", ageWindow{18, 20, 35, 70}, 0.15,
		[]string{models.FamilySingle, models.FamilyCivil}},
	{EventHomeBuy, "недавно купил жильё, думаешь о ремонте и платежах", ageWindow{22, 28, 45, 65}, 0.12,
		[]string{models.FamilyMarried, models.FamilyCivil}},
	{EventJobLoss, "недавно потерял работу, приходится экономить", ageWindow{20, 25, 55, 64}, 0.10,
		[]string{models.FamilySingle, models.FamilyDivorced, models.FamilyMarried}},
	{EventPromotion, "недавно получил повышение, доход вырос", ageWindow{22, 28, 45, 60}, 0.15,
		[]string{models.FamilySingle, models.FamilyMarried, models.FamilyCivil}},
	{EventIllness, "недавно болел или лечил близкого, были большие расходы на лечение", ageWindow{30, 60, 85, 90}, 0.15,
		[]string{models.FamilyWidowed, models.FamilyMarried, models.FamilyDivorced}},
	{EventRetirement, "недавно вышел на пенсию, доход стал меньше и стабильнее", ageWindow{50, 58, 72, 80}, 0.30,
		[]string{models.FamilyMarried, models.FamilyWidowed, models.FamilyDivorced}},
	{EventBereavement, "недавно потерял близкого человека", ageWindow{30, 50, 85, 90}, 0.10,
		[]string{models.FamilyWidowed, models.FamilyMarried}},
	{EventChildUni, "ребёнок недавно поступил в вуз, платишь за учёбу", ageWindow{38, 42, 52, 60}, 0.20,
		[]string{models.FamilyMarried, models.FamilyDivorced}},
}

type seasonalFactor struct {
	Name      string
	Months    []time.Month
	Intensity float64
}

var seasonalFactors = []seasonalFactor{
	{"новогодние траты", []time.Month{time.December, time.January}, 0.8},
	{"отпускной сезон", []time.Month{time.June, time.July, time.August}, 0.6},
	{"сборы детей в школу", []time.Month{time.August, time.September}, 0.5},
	{"налоговые вычеты", []time.Month{time.March, time.April}, 0.4},
	{"дачный сезон", []time.Month{time.May, time.June, time.July, time.August, time.September}, 0.3},
}

type traditionGate struct {
	MaxAge  int
	Options []randutil.Option[string]
}

var traditionsByAge = []traditionGate{
	{MaxAge: 34, Options: []randutil.Option[string]{
		{Value: "жить сегодняшним днём и не копить", Weight: 0.30},
		{Value: "копить «на чёрный день»", Weight: 0.20},
		{Value: "вкладываться в недвижимость", Weight: 0.15},
		{Value: "помогать родственникам деньгами", Weight: 0.15},
		{Value: "держать сбережения в валюте", Weight: 0.20},
	}},
	{MaxAge: 54, Options: []randutil.Option[string]{
		{Value: "жить сегодняшним днём и не копить", Weight: 0.15},
		{Value: "копить «на чёрный день»", Weight: 0.30},
		{Value: "вкладываться в недвижимость", Weight: 0.25},
		{Value: "помогать родственникам деньгами", Weight: 0.15},
		{Value: "держать сбережения в валюте", Weight: 0.15},
	}},
	{MaxAge: 200, Options: []randutil.Option[string]{
		{Value: "жить сегодняшним днём и не копить", Weight: 0.05},
		{Value: "копить «на чёрный день»", Weight: 0.45},
		{Value: "держать наличные дома", Weight: 0.25},
		{Value: "помогать родственникам деньгами", Weight: 0.20},
		{Value: "вкладываться в недвижимость", Weight: 0.05},
	}},
}

var socialBiases = catalogue{
	{
		Name:        "преувеличение грамотности",
		Description: "хочешь казаться более подкованным в финансах, чем есть",
		Examples:    []string{"Ну, я в этом более-менее разбираюсь", "Это все знают"},
		Triggers:    []string{"конечно", "естественно", "все знают"},
	},
	{
		Name:        "сокрытие долгов",
		Description: "не любишь признаваться в кредитах и просрочках",
		Examples:    []string{"Ну, у меня небольшой кредит, ерунда", "Долгов особо нет"},
		Triggers:    []string{"небольшой", "ерунда", "особо нет"},
	},
	{
		Name:        "занижение дохода",
		Description: "скромничаешь, когда речь заходит о заработке",
		Examples:    []string{"Да зарплата как у всех", "Хватает, но не шикую"},
		Triggers:    []string{"как у всех", "не жалуюсь", "скромно"},
	},
	{
		Name:        "завышение дохода",
		Description: "приукрашиваешь свои доходы и траты",
		Examples:    []string{"Денег вполне хватает", "Могу себе позволить"},
		Triggers:    []string{"хватает", "могу себе позволить", "не проблема"},
	},
	{
		Name:        "демонстрация осторожности",
		Description: "подчёркиваешь свою финансовую осмотрительность",
		Examples:    []string{"Я всегда всё тщательно читаю", "Никогда не рискую"},
		Triggers:    []string{"всегда проверяю", "осторожно", "никогда"},
	},
}

// LifeContextModel attaches recent life events and circumstances to a persona
type LifeContextModel struct {
	now func() time.Time
}

// NewLifeContextModel creates a model whose seasonal factors follow now. A nil now uses the wall clock.
func NewLifeContextModel(now func() time.Time) *LifeContextModel {
	if now == nil {
		now = time.Now
	}
	return &LifeContextModel{now: now}
}

// Name implements Augmentor
func (m *LifeContextModel) Name() string { return "life_context" }

// Relevance rises linearly into the peak range and falls linearly after it
func (w ageWindow) Relevance(age int) float64 {
	switch {
	case age < w.Min || age > w.Max:
		return 0
	case age >= w.PeakMin && age <= w.PeakMax:
		return 1
	case age < w.PeakMin:
		return float64(age-w.Min) / float64(w.PeakMin-w.Min)
	default:
		return float64(w.Max-age) / float64(w.Max-w.PeakMax)
	}
}

// EventProbabilities returns the inclusion probability of every known event for p
func EventProbabilities(p models.Persona) map[string]float64 {
	out := make(map[string]float64, len(lifeEvents))
	for _, ev := range lifeEvents {
		out[ev.Name] = eventProbability(ev, p)
	}
	return out
}

func eventProbability(ev lifeEvent, p models.Persona) float64 {
	switch ev.Name {
	case EventWedding:
		if p.FamilyStatus == models.FamilyMarried || p.FamilyStatus == models.FamilyWidowed {
			return 0
		}
	case EventDivorce:
		if !models.EverMarried(p.FamilyStatus) {
			return 0
		}
	case EventChildUni:
		if p.Children == 0 {
			return 0
		}
	}

	family := 0.5
	if contains(ev.Family, p.FamilyStatus) {
		family = 2
	}
	return randutil.Clamp(ev.Base*ev.Window.Relevance(p.Age)*family, 0, 1)
}

// SeasonalFactors returns the factors active in month
func SeasonalFactors(month time.Month) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range seasonalFactors {
		for _, m := range f.Months {
			if m == month {
				out[f.Name] = f.Intensity
				break
			}
		}
	}
	return out
}

func socialBiasProbabilities(p models.Persona) map[string]float64 {
	probs := map[string]float64{
		"преувеличение грамотности": 0.2,
		"сокрытие долгов":           0.1,
		"занижение дохода":          0.1,
		"завышение дохода":          0.1,
		"демонстрация осторожности": 0.2,
	}
	if p.Financial.Literacy.Index() <= 1 {
		probs["преувеличение грамотности"] = 0.5
	}
	if p.Financial.Products[knowledge.ProductConsumerLoan] || p.Financial.Products[knowledge.ProductCreditCard] {
		probs["сокрытие долгов"] = 0.45
	}
	if p.IncomeIndex >= 4 {
		probs["занижение дохода"] = 0.45
	}
	if p.IncomeIndex <= 1 {
		probs["завышение дохода"] = 0.35
	}
	if p.Age >= 55 {
		probs["демонстрация осторожности"] = 0.4
	}
	return probs
}

// Sample draws the life context of p
func (m *LifeContextModel) Sample(rng *rand.Rand, p models.Persona) models.LifeContext {
	probs := EventProbabilities(p)
	var events []models.LifeEvent
	for _, ev := range lifeEvents {
		if randutil.Bernoulli(rng, probs[ev.Name]) {
			events = append(events, models.LifeEvent{Name: ev.Name, Probability: probs[ev.Name]})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Probability > events[j].Probability
	})
	if len(events) > maxLifeEvents {
		events = events[:maxLifeEvents]
	}

	biases := make(map[string]float64)
	bp := socialBiasProbabilities(p)
	for _, name := range randutil.SortedKeys(bp) {
		if randutil.Bernoulli(rng, bp[name]) {
			biases[name] = DrawStrength(rng, defaultStrengthWeights)
		}
	}

	tradition := traditionsByAge[len(traditionsByAge)-1].Options
	for _, gate := range traditionsByAge {
		if p.Age <= gate.MaxAge {
			tradition = gate.Options
			break
		}
	}

	return models.LifeContext{
		Events:          events,
		Seasonal:        SeasonalFactors(m.now().Month()),
		FamilyTradition: randutil.Pick(rng, tradition),
		SocialBiases:    biases,
	}
}

func eventDescription(name string) string {
	for _, ev := range lifeEvents {
		if ev.Name == name {
			return ev.Description
		}
	}
	return ""
}

// Apply renders the persona's circumstances
func (m *LifeContextModel) Apply(w SectionWriter, p *models.Persona, _ Turn, rng *rand.Rand) {
	lc := p.Behavioral.LifeContext
	var lines []string

	if len(lc.Events) > 0 {
		lines = append(lines, "Недавно в твоей жизни:")
		for _, ev := range lc.Events {
			lines = append(lines, fmt.Sprintf("- %s: %s.", strings.ReplaceAll(ev.Name, "_", " "), eventDescription(ev.Name)))
		}
	}
	if len(lc.Seasonal) > 0 {
		lines = append(lines, fmt.Sprintf("Сейчас на твои финансы влияет: %s.", strings.Join(byStrength(lc.Seasonal), ", ")))
	}
	if lc.FamilyTradition != "" {
		lines = append(lines, fmt.Sprintf("В твоей семье принято %s.", lc.FamilyTradition))
	}
	if len(lc.SocialBiases) > 0 {
		lines = append(lines, "Отвечая на вопросы анкеты, ты склонен к:")
		lines = append(lines, renderAll(rng, socialBiases, lc.SocialBiases)...)
	}

	if len(lines) > 0 {
		w.Merge(SectionLifeContext, lines...)
	}
}

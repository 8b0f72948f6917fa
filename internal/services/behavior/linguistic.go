package behavior

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

// SectionLinguistic is the prompt section speech traits render into
const SectionLinguistic = "Особенности речи"

// Age groups
const (
	AgeGroupYouth      = "молодёжь"
	AgeGroupYoungAdult = "молодые взрослые"
	AgeGroupMiddle     = "средний возраст"
	AgeGroupSenior     = "старший возраст"
	AgeGroupElderly    = "пожилые"
)

// Devices
const (
	DeviceSmartphone = "смартфон"
	DeviceComputer   = "компьютер"
	DeviceTablet     = "планшет"
)

var devices = []string{DeviceSmartphone, DeviceComputer, DeviceTablet}

type ageBand struct {
	Group   string
	MaxAge  int
	Factor  float64
	Fillers []string
	Slang   []string
	Errors  map[string]float64
}

var ageBands = []ageBand{
	{
		Group:   AgeGroupYouth,
		MaxAge:  24,
		Factor:  0.6,
		Fillers: []string{"типа", "короче", "как бы", "прикинь"},
		Slang:   []string{"кринж", "норм", "имба", "зашквар", "рофл", "чекнуть"},
		Errors:  map[string]float64{"сокращения": 0.5, "без заглавных букв": 0.4, "опечатки": 0.3},
	},
	{
		Group:   AgeGroupYoungAdult,
		MaxAge:  34,
		Factor:  0.4,
		Fillers: []string{"ну", "короче", "в общем", "по факту"},
		Slang:   []string{"норм", "топ", "заморочиться", "лайфхак"},
		Errors:  map[string]float64{"сокращения": 0.3, "опечатки": 0.2},
	},
	{
		Group:   AgeGroupMiddle,
		MaxAge:  49,
		Factor:  0.3,
		Fillers: []string{"ну", "в принципе", "значит", "как говорится"},
		Slang:   []string{"нормально", "по-любому", "без вариантов"},
		Errors:  map[string]float64{"опечатки": 0.15, "лишние запятые": 0.2},
	},
	{
		Group:   AgeGroupSenior,
		MaxAge:  64,
		Factor:  0.45,
		Fillers: []string{"значит", "так сказать", "вот", "понимаете ли"},
		Slang:   []string{"сберкнижка", "получка", "заначка"},
		Errors:  map[string]float64{"лишние запятые": 0.3, "многоточия": 0.3, "опечатки": 0.2},
	},
	{
		Group:   AgeGroupElderly,
		MaxAge:  200,
		Factor:  0.6,
		Fillers: []string{"вот", "значит", "милок", "раньше-то"},
		Slang:   []string{"сберкнижка", "получка", "книжка", "гробовые"},
		Errors:  map[string]float64{"многоточия": 0.5, "CAPS LOCK": 0.1, "опечатки": 0.3},
	},
}

var deviceErrors = map[string]map[string]float64{
	DeviceSmartphone: {"опечатки": 0.3, "автозамена": 0.25, "без знаков препинания": 0.3},
	DeviceComputer:   {"опечатки": 0.1, "CAPS LOCK": 0.05},
	DeviceTablet:     {"опечатки": 0.2, "автозамена": 0.15},
}

type educationBand struct {
	Factor float64
	Errors map[string]float64
}

var educationLow = educationBand{
	Factor: 0.7,
	Errors: map[string]float64{"орфографические ошибки": 0.35, "пунктуационные ошибки": 0.4, "опечатки": 0.25},
}

var educationMid = educationBand{
	Factor: 0.4,
	Errors: map[string]float64{"орфографические ошибки": 0.1, "пунктуационные ошибки": 0.2, "опечатки": 0.15},
}

var educationHigh = educationBand{
	Factor: 0.15,
	Errors: map[string]float64{"пунктуационные ошибки": 0.05, "опечатки": 0.05},
}

var regionalWords = map[string][]string{
	"Центральный":       {"подъезд", "бордюр", "шаурма"},
	"Северо-Западный":   {"парадная", "поребрик", "шаверма", "гречка"},
	"Южный":             {"шо", "тремпель", "жерделы"},
	"Северо-Кавказский": {"братишка", "по-братски", "тема"},
	"Приволжский":       {"губернский", "дак", "ишь"},
	"Уральский":         {"мультифора", "ляпка", "вехотка"},
	"Сибирский":         {"вехотка", "мультифора", "однако"},
	"Дальневосточный":   {"чифанить", "шанго", "чилим"},
}

// LinguisticVariationModel derives how a persona writes
type LinguisticVariationModel struct{}

// NewLinguisticVariationModel creates the model
func NewLinguisticVariationModel() *LinguisticVariationModel {
	return &LinguisticVariationModel{}
}

// Name implements Augmentor
func (m *LinguisticVariationModel) Name() string { return "linguistic" }

// AgeGroupFor maps an age onto one of the five age groups
func AgeGroupFor(age int) string {
	return bandFor(age).Group
}

func bandFor(age int) ageBand {
	for _, b := range ageBands {
		if age <= b.MaxAge {
			return b
		}
	}
	return ageBands[len(ageBands)-1]
}

func educationBandFor(education string) educationBand {
	switch {
	case education == models.EduSchool || education == models.EduVocational:
		return educationLow
	case models.IsGraduate(education):
		return educationHigh
	default:
		return educationMid
	}
}

// MergeErrors overlays the error tables in order; later tables win on key collision
func MergeErrors(tables ...map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// ErrorLevel blends education and age factors into the aggregate error level
func ErrorLevel(educationFactor, ageFactor, jitter float64) float64 {
	return randutil.Clamp((0.7*educationFactor+0.3*ageFactor)*jitter, 0.1, 0.9)
}

// Sample derives the linguistic profile of p
func (m *LinguisticVariationModel) Sample(rng *rand.Rand, p models.Persona) models.LinguisticProfile {
	band := bandFor(p.Age)
	edu := educationBandFor(p.Education)
	device := randutil.Uniform(rng, devices)

	return models.LinguisticProfile{
		AgeGroup:     band.Group,
		Region:       p.Region,
		Device:       device,
		FillerWords:  randutil.Sample(rng, band.Fillers, 3),
		Slang:        randutil.Sample(rng, band.Slang, 2),
		Dialect:      randutil.Sample(rng, regionalWords[p.Region], 2),
		ErrorProfile: MergeErrors(band.Errors, deviceErrors[device], edu.Errors),
		ErrorLevel:   ErrorLevel(edu.Factor, band.Factor, randutil.Between(rng, 0.8, 1.2)),
	}
}

// Apply renders the persona's speech traits
func (m *LinguisticVariationModel) Apply(w SectionWriter, p *models.Persona, _ Turn, rng *rand.Rand) {
	lp := p.Behavioral.Linguistic
	if lp.AgeGroup == "" {
		return
	}

	lines := []string{fmt.Sprintf("Пиши как человек из группы «%s», регион %s, отвечаешь с устройства: %s.", lp.AgeGroup, lp.Region, lp.Device)}
	if len(lp.FillerWords) > 0 {
		lines = append(lines, fmt.Sprintf("- Слова-паразиты: %s.", strings.Join(lp.FillerWords, ", ")))
	}
	if len(lp.Slang) > 0 {
		lines = append(lines, fmt.Sprintf("- Можешь употребить: %s.", strings.Join(lp.Slang, ", ")))
	}
	if len(lp.Dialect) > 0 && randutil.Bernoulli(rng, 0.5) {
		lines = append(lines, fmt.Sprintf("- Региональные словечки: %s.", strings.Join(lp.Dialect, ", ")))
	}

	var errs []string
	for _, name := range byStrength(lp.ErrorProfile) {
		if lp.ErrorProfile[name] >= 0.1 {
			errs = append(errs, name)
		}
	}
	if len(errs) > 0 {
		lines = append(lines, fmt.Sprintf("- Допускай ошибки (%s, уровень %.1f): %s.",
			StrengthAdjective(lp.ErrorLevel), lp.ErrorLevel, strings.Join(errs, ", ")))
	}
	w.Merge(SectionLinguistic, lines...)
}

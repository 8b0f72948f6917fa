package persona

import (
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/pkg/randutil"
)

type ageBracket struct {
	Min, Max int
	Weight   float64
	// income bracket index distribution
	IncomeMean, IncomeSD float64
}

var genders = []randutil.Option[string]{
	{Value: "мужской", Weight: 0.46},
	{Value: "женский", Weight: 0.54},
}

var ageBrackets = []ageBracket{
	{Min: 18, Max: 24, Weight: 0.12, IncomeMean: 1.2, IncomeSD: 1.0},
	{Min: 25, Max: 34, Weight: 0.20, IncomeMean: 2.6, IncomeSD: 1.2},
	{Min: 35, Max: 44, Weight: 0.20, IncomeMean: 3.1, IncomeSD: 1.3},
	{Min: 45, Max: 54, Weight: 0.17, IncomeMean: 3.0, IncomeSD: 1.3},
	{Min: 55, Max: 64, Weight: 0.16, IncomeMean: 2.2, IncomeSD: 1.1},
	{Min: 65, Max: 80, Weight: 0.15, IncomeMean: 1.3, IncomeSD: 0.9},
}

type region struct {
	Name   string
	Weight float64
	Cities []string
}

var regions = []region{
	{"Центральный", 0.27, []string{"Москва", "Тула", "Воронеж", "Ярославль", "Рязань"}},
	{"Северо-Западный", 0.095, []string{"Санкт-Петербург", "Калининград", "Мурманск", "Петрозаводск"}},
	{"Южный", 0.11, []string{"Краснодар", "Ростов-на-Дону", "Волгоград", "Астрахань"}},
	{"Северо-Кавказский", 0.07, []string{"Махачкала", "Ставрополь", "Нальчик", "Владикавказ"}},
	{"Приволжский", 0.20, []string{"Казань", "Нижний Новгород", "Самара", "Уфа", "Пермь"}},
	{"Уральский", 0.085, []string{"Екатеринбург", "Челябинск", "Тюмень"}},
	{"Сибирский", 0.115, []string{"Новосибирск", "Омск", "Красноярск", "Иркутск"}},
	{"Дальневосточный", 0.055, []string{"Владивосток", "Хабаровск", "Якутск"}},
}

// IncomeBrackets are monthly household income labels in ascending order
var IncomeBrackets = []string{
	"до 20 000 ₽",
	"20 000–40 000 ₽",
	"40 000–60 000 ₽",
	"60 000–100 000 ₽",
	"100 000–150 000 ₽",
	"150 000–250 000 ₽",
	"более 250 000 ₽",
}

type educationGate struct {
	MaxAge  int
	Options []randutil.Option[string]
}

// the 22-24 band holds bachelor degrees but no graduate ones yet
var educationByAge = []educationGate{
	{MaxAge: 21, Options: []randutil.Option[string]{
		{Value: models.EduSchool, Weight: 0.45},
		{Value: models.EduVocational, Weight: 0.30},
		{Value: models.EduIncomplete, Weight: 0.25},
	}},
	{MaxAge: 24, Options: []randutil.Option[string]{
		{Value: models.EduSchool, Weight: 0.15},
		{Value: models.EduVocational, Weight: 0.30},
		{Value: models.EduIncomplete, Weight: 0.20},
		{Value: models.EduHigher, Weight: 0.35},
	}},
	{MaxAge: 200, Options: []randutil.Option[string]{
		{Value: models.EduSchool, Weight: 0.12},
		{Value: models.EduVocational, Weight: 0.33},
		{Value: models.EduIncomplete, Weight: 0.07},
		{Value: models.EduHigher, Weight: 0.35},
		{Value: models.EduMaster, Weight: 0.10},
		{Value: models.EduDoctorate, Weight: 0.03},
	}},
}

type familyGate struct {
	MaxAge  int
	Options []randutil.Option[string]
}

var familyByAge = []familyGate{
	{MaxAge: 24, Options: []randutil.Option[string]{
		{Value: models.FamilySingle, Weight: 0.70}, {Value: models.FamilyMarried, Weight: 0.12},
		{Value: models.FamilyCivil, Weight: 0.17}, {Value: models.FamilyDivorced, Weight: 0.01},
	}},
	{MaxAge: 34, Options: []randutil.Option[string]{
		{Value: models.FamilySingle, Weight: 0.35}, {Value: models.FamilyMarried, Weight: 0.40},
		{Value: models.FamilyCivil, Weight: 0.17}, {Value: models.FamilyDivorced, Weight: 0.07},
		{Value: models.FamilyWidowed, Weight: 0.01},
	}},
	{MaxAge: 54, Options: []randutil.Option[string]{
		{Value: models.FamilySingle, Weight: 0.15}, {Value: models.FamilyMarried, Weight: 0.58},
		{Value: models.FamilyCivil, Weight: 0.10}, {Value: models.FamilyDivorced, Weight: 0.14},
		{Value: models.FamilyWidowed, Weight: 0.03},
	}},
	{MaxAge: 64, Options: []randutil.Option[string]{
		{Value: models.FamilySingle, Weight: 0.08}, {Value: models.FamilyMarried, Weight: 0.55},
		{Value: models.FamilyCivil, Weight: 0.05}, {Value: models.FamilyDivorced, Weight: 0.17},
		{Value: models.FamilyWidowed, Weight: 0.15},
	}},
	{MaxAge: 200, Options: []randutil.Option[string]{
		{Value: models.FamilySingle, Weight: 0.05}, {Value: models.FamilyMarried, Weight: 0.45},
		{Value: models.FamilyCivil, Weight: 0.02}, {Value: models.FamilyDivorced, Weight: 0.13},
		{Value: models.FamilyWidowed, Weight: 0.35},
	}},
}

// number of children weights, index = count
var childrenByFamily = map[string][]float64{
	models.FamilySingle:   {0.85, 0.10, 0.04, 0.01},
	models.FamilyMarried:  {0.15, 0.35, 0.35, 0.11, 0.03, 0.01},
	models.FamilyCivil:    {0.40, 0.35, 0.20, 0.05},
	models.FamilyDivorced: {0.25, 0.45, 0.25, 0.05},
	models.FamilyWidowed:  {0.15, 0.35, 0.35, 0.10, 0.05},
}

// HobbyCatalogue is the fixed list hobbies are drawn from
var HobbyCatalogue = []string{
	"рыбалка", "чтение", "спорт", "путешествия", "кулинария", "садоводство",
	"компьютерные игры", "рукоделие", "музыка", "кино и сериалы", "автомобили", "фотография",
}

var hobbyCounts = []randutil.Option[int]{
	{Value: 1, Weight: 0.2},
	{Value: 2, Weight: 0.5},
	{Value: 3, Weight: 0.3},
}

var (
	professionsHigher = []string{"инженер", "врач", "учитель", "программист", "менеджер", "бухгалтер", "юрист", "экономист"}
	professionsOther  = []string{"продавец", "водитель", "рабочий", "оператор колл-центра", "медсестра", "повар", "строитель", "курьер"}
)

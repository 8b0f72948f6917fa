package questions

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/synth-respondents-go/internal/models"
)

type topicRule struct {
	Topic    string
	Keywords []string
}

// checked in order; the first topic with a matching keyword stem wins
var topicRules = []topicRule{
	{models.TopicMortgage, []string{"ипотек", "недвижимост", "квартир"}},
	{models.TopicCards, []string{"карт", "кэшбэк", "кешбэк"}},
	{models.TopicInvestments, []string{"инвест", "акци", "облигац", "брокер", "иис", "фонд"}},
	{models.TopicDeposits, []string{"вклад", "депозит", "ставк"}},
	{models.TopicLoans, []string{"кредит", "займ", "заём", "долг", "рассрочк", "микрозайм"}},
	{models.TopicInsurance, []string{"страхов", "полис", "каско", "осаго"}},
	{models.TopicMobileBank, []string{"приложени", "мобильн", "онлайн", "интернет-банк"}},
	{models.TopicService, []string{"отделени", "обслуживан", "поддержк", "сотрудник", "очеред", "консультант"}},
	{models.TopicSavings, []string{"накоп", "сбережен", "копит", "откладыва", "подушк"}},
}

// InferTopic returns the topic whose keyword appears in text, or the general topic
func InferTopic(text string) string {
	// a Caser is stateful, so each call gets its own
	folded := cases.Lower(language.Russian).String(text)
	for _, rule := range topicRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(folded, kw) {
				return rule.Topic
			}
		}
	}
	return models.TopicGeneral
}

// Topics lists every topic InferTopic can return
func Topics() []string {
	out := make([]string, 0, len(topicRules)+1)
	for _, rule := range topicRules {
		out = append(out, rule.Topic)
	}
	return append(out, models.TopicGeneral)
}

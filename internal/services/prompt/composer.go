package prompt

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/behavior"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/pkg/randutil"
)

// Section titles of the prompt skeleton
const (
	SectionPersona   = "Кто ты"
	SectionFinancial = "Твой финансовый профиль"
	SectionLiteracy  = "Уровень финансовой грамотности"
	SectionReviews   = "Что пишут клиенты банков"
	SectionRules     = "Общие правила ответа"
	SectionHints     = "Подсказки"
	SectionQuestion  = "Вопрос"
)

// Review context limits
const (
	maxReviewTerms  = 5
	maxReviewIssues = 3
)

var topicProducts = map[string]string{
	models.TopicLoans:       knowledge.ProductConsumerLoan,
	models.TopicDeposits:    knowledge.ProductDeposit,
	models.TopicInvestments: knowledge.ProductInvestments,
	models.TopicCards:       knowledge.ProductCreditCard,
	models.TopicMortgage:    knowledge.ProductMortgage,
	models.TopicMobileBank:  knowledge.ProductMobileBank,
	models.TopicInsurance:   knowledge.ProductInsurance,
}

// Composer turns a persona and a question into prompt text
type Composer struct {
	kb         knowledge.Service
	augmentors []behavior.Augmentor
	review     *models.ReviewSummary
}

// NewComposer creates a composer. review may be nil.
func NewComposer(kb knowledge.Service, suite *behavior.Suite, review *models.ReviewSummary) *Composer {
	return &Composer{
		kb:         kb,
		augmentors: suite.Augmentors(),
		review:     review,
	}
}

// Compose builds the prompt for question q asked as the index-th (0-based) question of
// the persona's session
func (c *Composer) Compose(p *models.Persona, q models.Question, index int, rng *rand.Rand) string {
	return c.Sections(p, q, index, rng).Render()
}

// Sections builds the prompt without rendering it
func (c *Composer) Sections(p *models.Persona, q models.Question, index int, rng *rand.Rand) *Builder {
	b := NewBuilder(SectionRules)

	b.Add(SectionPersona, personaSummary(p)...)
	b.Add(SectionFinancial, financialSummary(p)...)
	b.Add(SectionLiteracy, c.kb.LiteracyRules(p.Financial.Literacy)...)
	if lines := c.reviewContext(q.Topic); len(lines) > 0 {
		b.Add(SectionReviews, lines...)
	}
	b.Add(SectionRules, GeneralRules(p.Financial.Targets)...)
	if lines := c.hints(p, rng); len(lines) > 0 {
		b.Add(SectionHints, lines...)
	}
	b.Add(SectionQuestion, c.questionBlock(p, q)...)

	turn := behavior.Turn{Index: index, Topic: q.Topic}
	for _, a := range c.augmentors {
		a.Apply(b, p, turn, rng)
	}
	return b
}

func genderNoun(gender string) string {
	if gender == "мужской" {
		return "мужчина"
	}
	return "женщина"
}

func personaSummary(p *models.Persona) []string {
	lines := []string{
		fmt.Sprintf("Ты %s, %d лет, живёшь в городе %s (%s федеральный округ).", genderNoun(p.Gender), p.Age, p.City, p.Region),
		fmt.Sprintf("Профессия: %s. Образование: %s.", p.Profession, p.Education),
		fmt.Sprintf("Семейное положение: %s. Детей: %d.", p.FamilyStatus, p.Children),
		fmt.Sprintf("Доход семьи в месяц: %s.", p.IncomeBracket),
	}
	if len(p.Hobbies) > 0 {
		lines = append(lines, fmt.Sprintf("Увлечения: %s.", strings.Join(p.Hobbies, ", ")))
	}
	return lines
}

func financialSummary(p *models.Persona) []string {
	fp := p.Financial
	var used []string
	for _, product := range knowledge.Products {
		if fp.Products[product] {
			used = append(used, product)
		}
	}
	usage := "никакими банковскими продуктами"
	if len(used) > 0 {
		usage = strings.Join(used, ", ")
	}

	lines := []string{
		fmt.Sprintf("Финансовая грамотность: %s.", fp.Literacy),
		fmt.Sprintf("Пользуешься: %s.", usage),
		fmt.Sprintf("Отношение к банкам: %s. К кредитам: %s. К риску: %s.",
			fp.Attitudes.BankTrust, fp.Attitudes.LoanAttitude, fp.Attitudes.RiskAttitude),
	}
	if len(fp.Goals) > 0 {
		lines = append(lines, fmt.Sprintf("Твои финансовые цели: %s.", strings.Join(fp.Goals, ", ")))
	}
	if len(fp.Misconceptions) > 0 {
		lines = append(lines, fmt.Sprintf("Ты искренне веришь, что: %s.", strings.Join(fp.Misconceptions, "; ")))
	}
	return lines
}

func (c *Composer) reviewContext(topic string) []string {
	if c.review == nil {
		return nil
	}

	terms := c.review.TermsByTopic[topic]
	if len(terms) == 0 {
		terms = c.review.FrequentTerms
	}
	if len(terms) > maxReviewTerms {
		terms = terms[:maxReviewTerms]
	}
	issues := c.review.CommonIssues
	if len(issues) > maxReviewIssues {
		issues = issues[:maxReviewIssues]
	}

	var lines []string
	if len(terms) > 0 {
		lines = append(lines, fmt.Sprintf("Часто обсуждают: %s.", strings.Join(terms, ", ")))
	}
	if len(issues) > 0 {
		lines = append(lines, fmt.Sprintf("Типичные жалобы: %s.", strings.Join(issues, "; ")))
	}
	return lines
}

func detailHint(detail float64) string {
	switch {
	case detail < 0.4:
		return "1-2 предложения"
	case detail < 0.7:
		return "3-4 предложения"
	default:
		return "5-6 предложений"
	}
}

// GeneralRules returns the nine numbered answer rules parameterized by the persona's targets
func GeneralRules(t models.ResponseTargets) []string {
	rules := []string{
		"Отвечай от первого лица как этот человек, не упоминай, что ты ИИ или языковая модель.",
		fmt.Sprintf("Точность твоих знаний около %.0f%%: при таком уровне ошибки и заблуждения естественны.", t.Accuracy*100),
		fmt.Sprintf("Уверенность в ответах около %.0f%%: чем она ниже, тем чаще сомневайся и оговаривайся.", t.Confidence*100),
		fmt.Sprintf("Подробность ответа %.0f%%: примерно %s.", t.DetailLevel*100, detailHint(t.DetailLevel)),
		"Используй слова, соответствующие твоему уровню финансовой грамотности.",
		"Опирайся на личный опыт и свою жизненную ситуацию.",
		"Не давай экспертных советов, если ты не разбираешься в теме.",
		"Пиши разговорным языком, без списков, заголовков и разметки.",
		"Если у вопроса есть варианты ответа, выбери подходящие и коротко объясни выбор.",
	}
	for i := range rules {
		rules[i] = fmt.Sprintf("%d. %s", i+1, rules[i])
	}
	return rules
}

func (c *Composer) hints(p *models.Persona, rng *rand.Rand) []string {
	var lines []string
	if len(p.Financial.Vocabulary) > 0 {
		lines = append(lines, fmt.Sprintf("Слова, которые ты можешь употребить: %s.", strings.Join(p.Financial.Vocabulary, ", ")))
	}
	if style := p.Financial.Attitudes.BehaviorStyle; style != "" {
		line := fmt.Sprintf("Твой стиль обращения с деньгами: %s.", style)
		if len(p.Financial.BehaviorPatterns) > 0 {
			line += " Ты из тех, кто " + randutil.Uniform(rng, p.Financial.BehaviorPatterns) + "."
		}
		lines = append(lines, line)
	}
	return lines
}

func (c *Composer) questionBlock(p *models.Persona, q models.Question) []string {
	lines := []string{q.Text}
	if q.Context != "" {
		lines = append(lines, fmt.Sprintf("Контекст: %s", q.Context))
	}
	if len(q.Options) > 0 {
		for i, opt := range q.Options {
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, opt))
		}
		switch q.Type {
		case models.QuestionSingle:
			lines = append(lines, "Выбери один вариант.")
		case models.QuestionMultiple:
			lines = append(lines, "Можно выбрать несколько вариантов.")
		}
	}

	// informed respondents know what the product actually is
	if product, ok := topicProducts[q.Topic]; ok && p.Financial.Literacy.Index() >= models.LiteracyIntermediate.Index() {
		if fact, err := c.kb.ProductFact(product); err == nil {
			lines = append(lines, fmt.Sprintf("Ты знаешь, что %s это %s.", product, fact))
		}
	}
	return lines
}

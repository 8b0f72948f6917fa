package knowledge

import "github.com/synth-respondents-go/internal/models"

// Product names used as keys of FinancialProfile.Products
const (
	ProductDebitCard    = "дебетовая карта"
	ProductCreditCard   = "кредитная карта"
	ProductDeposit      = "вклад"
	ProductConsumerLoan = "потребительский кредит"
	ProductMortgage     = "ипотека"
	ProductInvestments  = "инвестиции"
	ProductInsurance    = "страхование"
	ProductMobileBank   = "мобильный банк"
)

// Products lists every product in a stable order
var Products = []string{
	ProductDebitCard,
	ProductCreditCard,
	ProductDeposit,
	ProductConsumerLoan,
	ProductMortgage,
	ProductInvestments,
	ProductInsurance,
	ProductMobileBank,
}

// Behavior styles
const (
	StyleImpulsive    = "импульсивный"
	StyleCautious     = "осторожный"
	StyleRational     = "рациональный"
	StyleConservative = "консервативный"
	StyleExperimenter = "экспериментатор"
)

var vocabulary = map[models.LiteracyLevel][]string{
	models.LiteracyNone: {
		"деньги", "карточка", "долг", "процент", "зарплата", "копить", "занять", "банкомат",
	},
	models.LiteracyBeginner: {
		"вклад", "кредит", "кэшбэк", "ставка", "ежемесячный платёж", "рассрочка", "накопительный счёт", "комиссия",
	},
	models.LiteracyIntermediate: {
		"депозит", "ипотека", "кредитная история", "инфляция", "досрочное погашение", "полная стоимость кредита", "страховой полис", "капитализация процентов",
	},
	models.LiteracyAdvanced: {
		"облигации", "ИИС", "дивиденды", "диверсификация", "брокерский счёт", "налоговый вычет", "ключевая ставка", "биржевой фонд",
	},
	models.LiteracyExpert: {
		"дюрация", "купонная доходность", "хеджирование", "ребалансировка портфеля", "доходность к погашению", "волатильность", "структурные продукты", "маржинальное кредитование",
	},
}

// misconception counts shrink as literacy grows
var misconceptions = map[models.LiteracyLevel][]string{
	models.LiteracyNone: {
		"банк может просто забрать деньги со вклада когда захочет",
		"кредитная карта это бесплатные деньги",
		"чем больше процент по вкладу, тем надёжнее банк",
		"инвестиции это то же самое что казино",
		"наличные всегда надёжнее любого счёта",
	},
	models.LiteracyBeginner: {
		"кэшбэк всегда выгоднее любой скидки",
		"страховка по кредиту обязательна по закону",
		"досрочно гасить кредит невыгодно банку, поэтому запрещено",
		"все вклады застрахованы без ограничения суммы",
	},
	models.LiteracyIntermediate: {
		"ипотеку выгоднее всего брать на максимальный срок",
		"инфляция не касается денег на вкладе",
		"облигации не могут упасть в цене",
	},
	models.LiteracyAdvanced: {
		"диверсификация полностью исключает потери",
		"прошлая доходность фонда гарантирует будущую",
	},
	models.LiteracyExpert: {
		"рынок всегда можно переиграть при достаточном анализе",
	},
}

var behaviorPatterns = map[string][]string{
	StyleImpulsive: {
		"принимает финансовые решения быстро, под влиянием момента",
		"часто пользуется рассрочкой на спонтанные покупки",
		"легко поддаётся рекламным акциям банков",
	},
	StyleCautious: {
		"долго сравнивает условия перед оформлением продукта",
		"держит подушку безопасности на отдельном счёте",
		"избегает незнакомых финансовых продуктов",
	},
	StyleRational: {
		"считает полную стоимость кредита перед решением",
		"распределяет деньги по заранее составленному бюджету",
		"регулярно пересматривает условия своих продуктов",
	},
	StyleConservative: {
		"годами пользуется одним и тем же банком",
		"предпочитает вклады и наличные",
		"не доверяет новым цифровым сервисам",
	},
	StyleExperimenter: {
		"пробует новые финтех-сервисы сразу после запуска",
		"держит счета в нескольких банках ради бонусов",
		"вкладывает небольшие суммы в рискованные активы ради интереса",
	},
}

var productFacts = map[string]string{
	ProductDebitCard:    "карта для расходов собственных средств, часто с кэшбэком и процентом на остаток",
	ProductCreditCard:   "кредитный лимит с льготным периодом, после которого начисляются высокие проценты",
	ProductDeposit:      "срочное размещение денег под фиксированный процент, застраховано АСВ до 1,4 млн рублей",
	ProductConsumerLoan: "кредит на любые цели без залога, ставка зависит от кредитной истории",
	ProductMortgage:     "долгосрочный кредит под залог недвижимости, возможны льготные государственные программы",
	ProductInvestments:  "брокерский счёт или ИИС для покупки ценных бумаг, доходность не гарантирована",
	ProductInsurance:    "страхование жизни, здоровья или имущества, часто продаётся вместе с кредитом",
	ProductMobileBank:   "приложение для переводов, платежей и управления продуктами банка",
}

var goalsByAge = []struct {
	maxAge int
	goals  []string
}{
	{24, []string{"накопить на первую крупную покупку", "начать жить отдельно", "получить образование"}},
	{34, []string{"накопить на первоначальный взнос", "создать подушку безопасности", "закрыть кредиты"}},
	{44, []string{"погасить ипотеку", "копить на образование детей", "увеличить доход"}},
	{54, []string{"начать копить на пенсию", "помочь детям с жильём", "сохранить накопления от инфляции"}},
	{64, []string{"обеспечить себе достойную пенсию", "сохранить накопления", "помогать внукам"}},
	{200, []string{"растянуть пенсию на все нужды", "оплачивать лекарства", "оставить что-то детям"}},
}

var literacyRules = map[models.LiteracyLevel][]string{
	models.LiteracyNone: {
		"Ты почти ничего не знаешь о финансовых продуктах и путаешь базовые понятия.",
		"Используй только бытовые слова, никаких терминов.",
		"Часто говори, что не уверен или не разбираешься.",
		"Опирайся на слухи, советы знакомых и личный опыт.",
	},
	models.LiteracyBeginner: {
		"Ты знаешь самые простые продукты: карты, вклады, кредиты.",
		"Иногда употребляй простые термины, но можешь путать детали.",
		"Допускай неточности в цифрах и условиях.",
		"Ориентируйся на рекламу и рекомендации сотрудников банка.",
	},
	models.LiteracyIntermediate: {
		"Ты уверенно пользуешься основными продуктами и понимаешь их условия.",
		"Употребляй термины к месту, но без профессионального жаргона.",
		"Сравнивай варианты на основе личного опыта.",
		"Иногда сомневайся в сложных вопросах инвестиций.",
	},
	models.LiteracyAdvanced: {
		"Ты хорошо разбираешься в финансах и инвестициях.",
		"Используй точные термины и приводи аргументы.",
		"Упоминай риски, доходность и налоговые аспекты.",
		"Допускай небольшие сомнения только в узкоспециальных темах.",
	},
	models.LiteracyExpert: {
		"Ты профессионально разбираешься в финансовых рынках и банковских продуктах.",
		"Говори уверенно, используй профессиональную терминологию.",
		"Анализируй ситуацию с разных сторон, приводи расчёты.",
		"Указывай на типичные ошибки непрофессионалов.",
	},
}

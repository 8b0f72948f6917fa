package models

// Question topics
const (
	TopicLoans       = "кредиты"
	TopicDeposits    = "вклады"
	TopicInvestments = "инвестиции"
	TopicCards       = "карты"
	TopicMortgage    = "ипотека"
	TopicMobileBank  = "мобильный банк"
	TopicService     = "обслуживание"
	TopicInsurance   = "страхование"
	TopicSavings     = "накопления"
	TopicGeneral     = "общее"
)

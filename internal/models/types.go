package models

import (
	"time"
)

// LiteracyLevel is the ordinal financial-knowledge category of a persona
type LiteracyLevel string

const (
	LiteracyNone         LiteracyLevel = "отсутствие знаний"
	LiteracyBeginner     LiteracyLevel = "начальный"
	LiteracyIntermediate LiteracyLevel = "средний"
	LiteracyAdvanced     LiteracyLevel = "продвинутый"
	LiteracyExpert       LiteracyLevel = "эксперт"
)

// LiteracyLevels lists levels in ascending order
var LiteracyLevels = []LiteracyLevel{
	LiteracyNone,
	LiteracyBeginner,
	LiteracyIntermediate,
	LiteracyAdvanced,
	LiteracyExpert,
}

// Index returns the ordinal position 0-4, or 0 for unknown values
func (l LiteracyLevel) Index() int {
	for i, level := range LiteracyLevels {
		if level == l {
			return i
		}
	}
	return 0
}

// QuestionType is the answer format of a question
type QuestionType string

const (
	QuestionOpen     QuestionType = "open"
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Persona represents a synthetic respondent
type Persona struct {
	ID            string   `json:"id"`
	Gender        string   `json:"gender"`
	Age           int      `json:"age"`
	Region        string   `json:"region"`
	City          string   `json:"city"`
	Profession    string   `json:"profession"`
	Education     string   `json:"education"`
	FamilyStatus  string   `json:"family_status"`
	Children      int      `json:"children"`
	IncomeBracket string   `json:"income_bracket"`
	IncomeIndex   int      `json:"income_index"`
	Hobbies       []string `json:"hobbies"`

	Financial  FinancialProfile  `json:"financial"`
	Behavioral BehavioralProfile `json:"behavioral"`
}

// Attitudes groups a persona's stance towards banks, credit and risk
type Attitudes struct {
	BankTrust     string `json:"bank_trust"`
	LoanAttitude  string `json:"loan_attitude"`
	RiskAttitude  string `json:"risk_attitude"`
	BehaviorStyle string `json:"behavior_style"`
}

// ResponseTargets are the numeric answer-quality goals handed to the model
type ResponseTargets struct {
	Accuracy    float64 `json:"accuracy"`
	Confidence  float64 `json:"confidence"`
	DetailLevel float64 `json:"detail_level"`
}

// FinancialProfile holds literacy-derived financial attributes
type FinancialProfile struct {
	LiteracyScore    float64         `json:"literacy_score"`
	Literacy         LiteracyLevel   `json:"literacy"`
	Products         map[string]bool `json:"products"`
	Attitudes        Attitudes       `json:"attitudes"`
	Vocabulary       []string        `json:"vocabulary"`
	Misconceptions   []string        `json:"misconceptions"`
	Goals            []string        `json:"goals"`
	BehaviorPatterns []string        `json:"behavior_patterns"`
	Targets          ResponseTargets `json:"targets"`
}

// BehavioralProfile holds the augmentor attachments of a persona
type BehavioralProfile struct {
	CognitiveBiases  map[string]float64   `json:"cognitive_biases"`
	EmotionalFactors map[string]float64   `json:"emotional_factors"`
	Linguistic       LinguisticProfile    `json:"linguistic"`
	LifeContext      LifeContext          `json:"life_context"`
	Inconsistency    InconsistencyProfile `json:"inconsistency"`
}

// LinguisticProfile describes how a persona talks
type LinguisticProfile struct {
	AgeGroup     string             `json:"age_group"`
	Region       string             `json:"region"`
	Device       string             `json:"device"`
	FillerWords  []string           `json:"filler_words"`
	Slang        []string           `json:"slang"`
	Dialect      []string           `json:"dialect"`
	ErrorProfile map[string]float64 `json:"error_profile"`
	ErrorLevel   float64            `json:"error_level"`
}

// LifeEvent is a recent life event with its sampled probability
type LifeEvent struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// LifeContext describes a persona's current circumstances
type LifeContext struct {
	Events          []LifeEvent        `json:"events"`
	Seasonal        map[string]float64 `json:"seasonal"`
	FamilyTradition string             `json:"family_tradition"`
	SocialBiases    map[string]float64 `json:"social_biases"`
}

// FatigueState tracks answering fatigue over a session
type FatigueState struct {
	Rate    float64 `json:"rate"`
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
}

// InconsistencyProfile describes how prone a persona is to contradict itself
type InconsistencyProfile struct {
	Level   float64            `json:"level"`
	Types   map[string]float64 `json:"types"`
	Fatigue FatigueState       `json:"fatigue"`
}

// Question represents a questionnaire item
type Question struct {
	ID      string       `json:"id" yaml:"id"`
	Text    string       `json:"text" yaml:"text"`
	Type    QuestionType `json:"type" yaml:"type"`
	Topic   string       `json:"topic,omitempty" yaml:"topic"`
	Options []string     `json:"options,omitempty" yaml:"options"`
	Context string       `json:"context,omitempty" yaml:"context"`
}

// GenerationRequest is a fully composed prompt ready for a backend
type GenerationRequest struct {
	PairID        int     `json:"pair_id"`
	PersonaID     string  `json:"persona_id"`
	QuestionID    string  `json:"question_id"`
	QuestionIndex int     `json:"question_index"`
	Prompt        string  `json:"prompt"`
	Backend       string  `json:"backend"`
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
}

// Answer is one generated response of a persona to a question
type Answer struct {
	ID         int       `json:"id"`
	PersonaID  string    `json:"persona_id"`
	QuestionID string    `json:"question_id"`
	Question   string    `json:"question"`
	Text       string    `json:"text"`
	Backend    string    `json:"backend,omitempty"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int       `json:"tokens_used"`
	Cached     bool      `json:"cached"`
	Timestamp  time.Time `json:"timestamp"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// ReviewSummary is the precomputed output of the review-corpus analysis
type ReviewSummary struct {
	FrequentTerms []string            `json:"frequent_terms"`
	TermsByTopic  map[string][]string `json:"terms_by_topic"`
	CommonIssues  []string            `json:"common_issues"`
	BankSentiment map[string]float64  `json:"bank_sentiment"`
}

// CacheEntry represents a cached response
type CacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/synth-respondents-go/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Localizer manages internationalization
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
}

// NewLocalizer creates a new localizer from the embedded message files
func NewLocalizer(cfg *config.I18nConfig) (*Localizer, error) {
	bundle := i18n.NewBundle(language.Russian)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"ru"}
	}

	// Load language files
	for _, lang := range languages {
		if _, err := bundle.LoadMessageFileFS(localeFS, fmt.Sprintf("locales/%s.json", lang)); err != nil {
			return nil, fmt.Errorf("failed to load language file %s: %w", lang, err)
		}
	}

	localizers := make(map[string]*i18n.Localizer)
	for _, lang := range languages {
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}

	defaultLanguage := cfg.DefaultLanguage
	if _, ok := localizers[defaultLanguage]; !ok {
		defaultLanguage = languages[0]
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
		localizers:      localizers,
	}, nil
}

func (l *Localizer) localizer(lang string) *i18n.Localizer {
	if localizer, exists := l.localizers[lang]; exists {
		return localizer
	}
	return l.localizers[l.defaultLanguage]
}

// Get returns localized message
func (l *Localizer) Get(lang, messageID string, data map[string]interface{}) string {
	msg, err := l.localizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID // Fallback to message ID
	}

	return msg
}

// GetPlural returns the plural form of messageID for count. The template sees
// the count as .Count.
func (l *Localizer) GetPlural(lang, messageID string, count int) string {
	msg, err := l.localizer(lang).Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]interface{}{"Count": count},
	})
	if err != nil {
		return messageID
	}
	return msg
}

// Message IDs
const (
	MsgReportTitle     = "report_title"
	MsgReportPairs     = "report_pairs"
	MsgReportPersonas  = "report_personas"
	MsgReportQuestions = "report_questions"
	MsgReportSucceeded = "report_succeeded"
	MsgReportFailed    = "report_failed"
	MsgReportErrorRate = "report_error_rate"
	MsgReportCacheHits = "report_cache_hits"
	MsgReportTokens    = "report_tokens"
	MsgReportBackend   = "report_backend"
	MsgReportDuration  = "report_duration"
	MsgReportErrors    = "report_errors"
)

// Package report summarizes a finished run.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/synth-respondents-go/internal/i18n"
	"github.com/synth-respondents-go/internal/models"
)

// BackendStats counts what one backend produced
type BackendStats struct {
	Answers int `json:"answers"`
	Tokens  int `json:"tokens"`
}

// Summary aggregates the answers of a run
type Summary struct {
	RunID     string                  `json:"run_id"`
	Personas  int                     `json:"personas"`
	Questions int                     `json:"questions"`
	Total     int                     `json:"total"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	ErrorRate float64                 `json:"error_rate"`
	CacheHits int                     `json:"cache_hits"`
	Tokens    int                     `json:"tokens"`
	Backends  map[string]BackendStats `json:"backends"`
	// Errors counts distinct error messages
	Errors   map[string]int `json:"errors,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Build summarizes answers. Cached answers count as succeeded.
func Build(runID string, personas, questions int, answers []models.Answer, duration time.Duration) Summary {
	s := Summary{
		RunID:     runID,
		Personas:  personas,
		Questions: questions,
		Total:     len(answers),
		Backends:  make(map[string]BackendStats),
		Errors:    make(map[string]int),
		Duration:  duration,
	}

	for _, a := range answers {
		if a.Failed {
			s.Failed++
			s.Errors[a.Error]++
			continue
		}
		s.Succeeded++
		if a.Cached {
			s.CacheHits++
		}
		s.Tokens += a.TokensUsed

		stats := s.Backends[a.Backend]
		stats.Answers++
		stats.Tokens += a.TokensUsed
		s.Backends[a.Backend] = stats
	}

	if s.Total > 0 {
		s.ErrorRate = float64(s.Failed) / float64(s.Total)
	}
	return s
}

// maxErrorLines caps the distinct errors listed in the text report
const maxErrorLines = 5

// Render formats the summary in lang
func Render(s Summary, l *i18n.Localizer, lang string) string {
	count := func(id string, n int) string {
		return l.Get(lang, id, map[string]interface{}{"Count": n})
	}

	lines := []string{
		l.Get(lang, i18n.MsgReportTitle, map[string]interface{}{"RunID": s.RunID}),
		l.GetPlural(lang, i18n.MsgReportPairs, s.Total),
		count(i18n.MsgReportPersonas, s.Personas),
		count(i18n.MsgReportQuestions, s.Questions),
		count(i18n.MsgReportSucceeded, s.Succeeded),
		count(i18n.MsgReportFailed, s.Failed),
		l.Get(lang, i18n.MsgReportErrorRate, map[string]interface{}{"Rate": fmt.Sprintf("%.1f%%", s.ErrorRate*100)}),
		count(i18n.MsgReportCacheHits, s.CacheHits),
		count(i18n.MsgReportTokens, s.Tokens),
	}

	backends := make([]string, 0, len(s.Backends))
	for name := range s.Backends {
		backends = append(backends, name)
	}
	sort.Strings(backends)
	for _, name := range backends {
		stats := s.Backends[name]
		lines = append(lines, "  "+l.Get(lang, i18n.MsgReportBackend, map[string]interface{}{
			"Backend": name,
			"Answers": stats.Answers,
			"Tokens":  stats.Tokens,
		}))
	}

	lines = append(lines, l.Get(lang, i18n.MsgReportDuration, map[string]interface{}{
		"Duration": s.Duration.Round(time.Millisecond).String(),
	}))

	if len(s.Errors) > 0 {
		lines = append(lines, l.Get(lang, i18n.MsgReportErrors, nil))
		for _, e := range topErrors(s.Errors, maxErrorLines) {
			lines = append(lines, fmt.Sprintf("  %dx %s", s.Errors[e], e))
		}
	}

	return strings.Join(lines, "\n")
}

func topErrors(errs map[string]int, n int) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if errs[keys[i]] != errs[keys[j]] {
			return errs[keys[i]] > errs[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

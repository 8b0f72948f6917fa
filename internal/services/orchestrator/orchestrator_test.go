package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/ai"
	"github.com/synth-respondents-go/internal/services/behavior"
	"github.com/synth-respondents-go/internal/services/cache"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/internal/services/persona"
	"github.com/synth-respondents-go/internal/services/prompt"
	"github.com/synth-respondents-go/internal/services/storage"
	"github.com/synth-respondents-go/pkg/logger"
	"github.com/synth-respondents-go/pkg/randutil"
)

type fakeBackend struct {
	name   string
	err    error
	tokens int
	calls  atomic.Int64
}

func (f *fakeBackend) Name() string         { return f.name }
func (f *fakeBackend) DefaultModel() string { return f.name + "-model" }

func (f *fakeBackend) Generate(ctx context.Context, req ai.Request) (ai.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ai.Result{}, f.err
	}
	return ai.Result{Text: req.Prompt, TokensUsed: f.tokens}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func fixtures(t *testing.T, n int) ([]models.Persona, []models.Question, *prompt.Composer) {
	t.Helper()
	kb := knowledge.NewBase()
	suite := behavior.NewSuite(fixedNow)
	personas, err := persona.NewGenerator(kb, suite).GenerateN(7, n)
	if err != nil {
		t.Fatalf("GenerateN failed: %v", err)
	}
	questions := []models.Question{
		{ID: "q1", Text: "Есть ли у вас вклад?", Type: models.QuestionOpen, Topic: models.TopicDeposits},
		{ID: "q2", Text: "Пользуетесь ли вы кредитной картой?", Type: models.QuestionOpen, Topic: models.TopicCards},
		{ID: "q3", Text: "Какой банк основной?", Type: models.QuestionSingle, Topic: models.TopicGeneral, Options: []string{"Сбер", "ВТБ"}},
	}
	return personas, questions, prompt.NewComposer(kb, suite, nil)
}

func newRegistry(t *testing.T, backends ...ai.Backend) *ai.Registry {
	t.Helper()
	r, err := ai.NewRegistryFromBackends("alpha", "beta", logger.NewDiscard(), backends...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}

func testOptions() Options {
	return Options{
		Seed:           11,
		Concurrency:    4,
		MaxAttempts:    3,
		BackoffBase:    time.Millisecond,
		TemperatureMax: 0.9,
		MaxTokens:      200,
	}
}

func TestRunBatchAnswersEveryPairInOrder(t *testing.T) {
	personas, questions, composer := fixtures(t, 3)
	alpha := &fakeBackend{name: "alpha", tokens: 10}
	o := NewOrchestrator(newRegistry(t, alpha), composer, nil, nil, nil, logger.NewDiscard())

	answers := o.RunBatch(context.Background(), personas, questions, testOptions())
	if len(answers) != 9 {
		t.Fatalf("expected 9 answers, got %d", len(answers))
	}
	for i, a := range answers {
		if a.ID != i+1 {
			t.Fatalf("answer %d has id %d", i, a.ID)
		}
		pi, qi := i/len(questions), i%len(questions)
		if a.PersonaID != personas[pi].ID || a.QuestionID != questions[qi].ID {
			t.Fatalf("answer %d mapped to wrong pair: %+v", i, a)
		}
		if a.Failed || a.Text == "" || a.Backend != "alpha" || a.Model != "alpha-model" {
			t.Fatalf("unexpected answer %+v", a)
		}
	}
	usage := o.Usage()
	if usage.Tokens != 90 || usage.TokensByBackend["alpha"] != 90 || usage.Generated != 9 {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestRunBatchFailsOverToSecondary(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	alpha := &fakeBackend{name: "alpha", err: &ai.BackendError{Backend: "alpha", StatusCode: 503, Err: errors.New("down")}}
	beta := &fakeBackend{name: "beta"}
	o := NewOrchestrator(newRegistry(t, alpha, beta), composer, nil, nil, nil, logger.NewDiscard())

	answers := o.RunBatch(context.Background(), personas, questions, testOptions())
	for _, a := range answers {
		if a.Failed || a.Backend != "beta" || a.Model != "beta-model" {
			t.Fatalf("expected answer from beta, got %+v", a)
		}
	}
	if alpha.calls.Load() != int64(len(answers)) || beta.calls.Load() != int64(len(answers)) {
		t.Fatalf("expected one call per backend per pair, got %d/%d", alpha.calls.Load(), beta.calls.Load())
	}
}

func TestRunBatchStopsAtMaxAttempts(t *testing.T) {
	personas, questions, composer := fixtures(t, 1)
	alpha := &fakeBackend{name: "alpha", err: &ai.BackendError{Backend: "alpha", StatusCode: 500, Err: errors.New("boom")}}
	o := NewOrchestrator(newRegistry(t, alpha), composer, nil, nil, nil, logger.NewDiscard())

	opts := testOptions()
	answers := o.RunBatch(context.Background(), personas, questions, opts)
	if got := alpha.calls.Load(); got != int64(len(answers)*opts.MaxAttempts) {
		t.Fatalf("expected %d calls, got %d", len(answers)*opts.MaxAttempts, got)
	}
	for _, a := range answers {
		if !a.Failed || !strings.Contains(a.Error, "all 3 attempts failed") || a.Text != "" {
			t.Fatalf("expected exhausted answer, got %+v", a)
		}
	}
	if o.Usage().Failed != int64(len(answers)) {
		t.Fatalf("expected failed counter %d, got %d", len(answers), o.Usage().Failed)
	}
}

func TestRunBatchFailsOverFromPreferredThirdBackend(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	alpha := &fakeBackend{name: "alpha"}
	beta := &fakeBackend{name: "beta"}
	gamma := &fakeBackend{name: "gamma", err: &ai.BackendError{Backend: "gamma", StatusCode: 503, Err: errors.New("down")}}
	o := NewOrchestrator(newRegistry(t, alpha, beta, gamma), composer, nil, nil, nil, logger.NewDiscard())

	opts := testOptions()
	opts.Backend = "gamma"
	answers := o.RunBatch(context.Background(), personas, questions, opts)
	for _, a := range answers {
		if a.Failed || a.Backend != "alpha" || a.Model != "alpha-model" {
			t.Fatalf("expected answer from alpha after gamma failed, got %+v", a)
		}
	}
	pairs := int64(len(answers))
	if gamma.calls.Load() != pairs || alpha.calls.Load() != pairs || beta.calls.Load() != 0 {
		t.Fatalf("expected gamma=%d alpha=%d beta=0, got %d/%d/%d",
			pairs, pairs, gamma.calls.Load(), alpha.calls.Load(), beta.calls.Load())
	}
}

func TestRunBatchExhaustedAnswerNamesLastTriedBackend(t *testing.T) {
	personas, questions, composer := fixtures(t, 1)
	alpha := &fakeBackend{name: "alpha", err: &ai.BackendError{Backend: "alpha", StatusCode: 503, Err: errors.New("down")}}
	beta := &fakeBackend{name: "beta", err: &ai.BackendError{Backend: "beta", StatusCode: 502, Err: errors.New("bad gateway")}}
	o := NewOrchestrator(newRegistry(t, alpha, beta), composer, nil, nil, nil, logger.NewDiscard())

	answers := o.RunBatch(context.Background(), personas, questions, testOptions())
	for _, a := range answers {
		// alpha, beta, alpha
		if !a.Failed || a.Backend != "alpha" || a.Model != "alpha-model" {
			t.Fatalf("expected exhausted answer on alpha, got %+v", a)
		}
		if !strings.Contains(a.Error, "alpha backend failed") {
			t.Fatalf("expected the last error to come from alpha, got %q", a.Error)
		}
	}
	pairs := int64(len(answers))
	if alpha.calls.Load() != 2*pairs || beta.calls.Load() != pairs {
		t.Fatalf("expected alpha=%d beta=%d, got %d/%d", 2*pairs, pairs, alpha.calls.Load(), beta.calls.Load())
	}
}

func TestRunBatchDoesNotRetryClientErrors(t *testing.T) {
	personas, questions, composer := fixtures(t, 1)
	alpha := &fakeBackend{name: "alpha", err: &ai.BackendError{Backend: "alpha", StatusCode: 401, Err: errors.New("bad key")}}
	o := NewOrchestrator(newRegistry(t, alpha), composer, nil, nil, nil, logger.NewDiscard())

	answers := o.RunBatch(context.Background(), personas, questions, testOptions())
	if got := alpha.calls.Load(); got != int64(len(answers)) {
		t.Fatalf("expected a single call per pair, got %d", got)
	}
}

func TestRunBatchServesRepeatsFromCache(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	alpha := &fakeBackend{name: "alpha", tokens: 5}
	c := cache.NewMemoryCache(logger.NewDiscard())
	o := NewOrchestrator(newRegistry(t, alpha), composer, c, nil, nil, logger.NewDiscard())

	first := o.RunBatch(context.Background(), personas, questions, testOptions())
	second := o.RunBatch(context.Background(), personas, questions, testOptions())

	if got := alpha.calls.Load(); got != int64(len(first)) {
		t.Fatalf("expected backend called once per pair, got %d", got)
	}
	if c.Len(context.Background()) != len(first) {
		t.Fatalf("expected %d cache entries, got %d", len(first), c.Len(context.Background()))
	}
	for i := range second {
		if !second[i].Cached || second[i].Text != first[i].Text || second[i].TokensUsed != 0 {
			t.Fatalf("expected cached copy of answer %d, got %+v", i, second[i])
		}
	}
	if o.Usage().CacheHits != int64(len(second)) {
		t.Fatalf("expected %d cache hits, got %d", len(second), o.Usage().CacheHits)
	}
}

func TestRunBatchIndependentOfConcurrency(t *testing.T) {
	personas, questions, composer := fixtures(t, 3)

	run := func(concurrency int) []models.Answer {
		o := NewOrchestrator(newRegistry(t, &fakeBackend{name: "alpha"}), composer, nil, nil, nil, logger.NewDiscard())
		opts := testOptions()
		opts.Concurrency = concurrency
		return o.RunBatch(context.Background(), personas, questions, opts)
	}

	serial, parallel := run(1), run(8)
	for i := range serial {
		// the fake backend echoes the prompt
		if serial[i].Text != parallel[i].Text {
			t.Fatalf("prompt of pair %d depends on scheduling", serial[i].ID)
		}
	}
}

func TestRequestMatchesBatchPrompt(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	o := NewOrchestrator(newRegistry(t, &fakeBackend{name: "alpha"}), composer, nil, nil, nil, logger.NewDiscard())
	opts := testOptions()

	answers := o.RunBatch(context.Background(), personas, questions, opts)
	req := o.Request(&personas[1], questions[2], 2, PairID(1, 2, len(questions)), opts)
	if req.Prompt != answers[req.PairID-1].Text {
		t.Fatal("Request should reproduce the prompt used in the batch")
	}
	if req.Backend != "alpha" || req.Temperature < 0 || req.Temperature > 1 || req.MaxTokens != 200 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestRunBatchCancelledContext(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	alpha := &fakeBackend{name: "alpha"}
	store := storage.NewMemoryStore(logger.NewDiscard())
	o := NewOrchestrator(newRegistry(t, alpha), composer, nil, store, nil, logger.NewDiscard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	answers := o.RunBatch(ctx, personas, questions, testOptions())
	if len(answers) != len(personas)*len(questions) {
		t.Fatalf("expected an answer per pair, got %d", len(answers))
	}
	for _, a := range answers {
		if !a.Failed {
			t.Fatalf("expected failed answer, got %+v", a)
		}
	}
	if alpha.calls.Load() != 0 {
		t.Fatal("backend must not be called on a cancelled context")
	}
	history, _ := store.History(context.Background(), personas[0].ID)
	if len(history) != len(questions) {
		t.Fatalf("expected failed answers stored, got %d", len(history))
	}
}

func TestRunBatchAppendsHistory(t *testing.T) {
	personas, questions, composer := fixtures(t, 2)
	store := storage.NewMemoryStore(logger.NewDiscard())
	o := NewOrchestrator(newRegistry(t, &fakeBackend{name: "alpha"}), composer, nil, store, nil, logger.NewDiscard())

	o.RunBatch(context.Background(), personas, questions, testOptions())
	history, err := store.History(context.Background(), personas[1].ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != len(questions) || history[0].ID != PairID(1, 0, len(questions)) {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestTemperatureFollowsLiteracy(t *testing.T) {
	rng := randutil.New(1)
	for _, level := range models.LiteracyLevels {
		p := &models.Persona{Financial: models.FinancialProfile{Literacy: level}}
		center := 0.9 - 0.1*float64(level.Index())
		for i := 0; i < 200; i++ {
			got := Temperature(rng, p, 0.9)
			if got < center-0.1-1e-9 || got > center+0.1+1e-9 || got < 0 || got > 1 {
				t.Fatalf("%s: temperature %v outside [%v, %v]", level, got, center-0.1, center+0.1)
			}
		}
	}
}

func TestExplicitTemperatureIsClamped(t *testing.T) {
	personas, questions, composer := fixtures(t, 1)
	o := NewOrchestrator(newRegistry(t, &fakeBackend{name: "alpha"}), composer, nil, nil, nil, logger.NewDiscard())
	opts := testOptions()
	hot := 1.7
	opts.Temperature = &hot
	if req := o.Request(&personas[0], questions[0], 0, 1, opts); req.Temperature != 1 {
		t.Fatalf("expected clamped temperature 1, got %v", req.Temperature)
	}
}

func TestPairID(t *testing.T) {
	if PairID(0, 0, 5) != 1 || PairID(2, 3, 5) != 14 {
		t.Fatal("unexpected pair numbering")
	}
}

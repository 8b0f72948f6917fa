// Package orchestrator runs every persona-question pair against the configured
// backends with caching, retry and failover.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/middleware"
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/ai"
	"github.com/synth-respondents-go/internal/services/cache"
	"github.com/synth-respondents-go/internal/services/prompt"
	"github.com/synth-respondents-go/internal/services/storage"
	"github.com/synth-respondents-go/pkg/logger"
	"github.com/synth-respondents-go/pkg/markdown"
	"github.com/synth-respondents-go/pkg/randutil"
)

// temperatureStep lowers sampling temperature per literacy level
const temperatureStep = 0.1

// Options control one batch
type Options struct {
	Seed           int64
	Concurrency    int
	MaxAttempts    int
	BackoffBase    time.Duration
	TemperatureMax float64
	// Temperature overrides the literacy-derived temperature when set
	Temperature *float64
	// Backend is the preferred backend name; empty means the registry primary
	Backend       string
	Model         string
	MaxTokens     int
	StripMarkdown bool
}

// OptionsFromConfig maps the generation config onto batch options
func OptionsFromConfig(cfg *config.GenerationConfig) Options {
	return Options{
		Seed:           cfg.Seed,
		Concurrency:    cfg.Concurrency,
		MaxAttempts:    cfg.MaxAttempts,
		BackoffBase:    cfg.BackoffBase,
		TemperatureMax: cfg.TemperatureMax,
		MaxTokens:      cfg.MaxTokens,
		StripMarkdown:  cfg.StripMarkdown,
	}
}

// ExhaustedRetriesError is recorded on an answer whose every attempt failed
type ExhaustedRetriesError struct {
	PairID   int
	Attempts int
	Err      error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("pair %d: all %d attempts failed: %v", e.PairID, e.Attempts, e.Err)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Err
}

// Usage aggregates what the orchestrator has done since it was created
type Usage struct {
	Tokens          int64
	TokensByBackend map[string]int64
	CacheHits       int64
	Generated       int64
	Failed          int64
}

// Orchestrator executes generation batches
type Orchestrator struct {
	registry *ai.Registry
	composer *prompt.Composer
	cache    cache.Service
	store    storage.Store
	metrics  *middleware.Metrics
	logger   *logrus.Logger
	now      func() time.Time

	tokens    atomic.Int64
	cacheHits atomic.Int64
	generated atomic.Int64
	failed    atomic.Int64

	mu              sync.Mutex
	tokensByBackend map[string]int64
}

// NewOrchestrator creates an orchestrator. cache, store and metrics may be nil.
func NewOrchestrator(registry *ai.Registry, composer *prompt.Composer, c cache.Service, store storage.Store, metrics *middleware.Metrics, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		registry:        registry,
		composer:        composer,
		cache:           c,
		store:           store,
		metrics:         metrics,
		logger:          logger,
		now:             time.Now,
		tokensByBackend: make(map[string]int64),
	}
}

// PairID numbers pairs persona-major starting at 1
func PairID(personaIndex, questionIndex, questionCount int) int {
	return personaIndex*questionCount + questionIndex + 1
}

// Temperature derives the sampling temperature of a persona: lower for higher
// literacy, with a small random spread
func Temperature(rng *rand.Rand, p *models.Persona, tMax float64) float64 {
	t := tMax - temperatureStep*float64(p.Financial.Literacy.Index()) + randutil.Between(rng, -0.1, 0.1)
	return randutil.Clamp(t, 0, 1)
}

type pair struct {
	id       int
	persona  *models.Persona
	question models.Question
	index    int
}

type plan struct {
	rng         *rand.Rand
	backend     ai.Backend
	backendName string
	model       string
	temperature float64
}

func (o *Orchestrator) prepare(pr pair, opts Options) plan {
	rng := randutil.Derive(opts.Seed, pr.persona.ID, pr.id)

	var temperature float64
	if opts.Temperature != nil {
		temperature = randutil.Clamp(*opts.Temperature, 0, 1)
	} else {
		temperature = Temperature(rng, pr.persona, opts.TemperatureMax)
	}

	pl := plan{rng: rng, temperature: temperature, backendName: opts.Backend, model: opts.Model}
	if o.registry != nil {
		pl.backend = o.registry.Choose(opts.Backend)
		pl.backendName = pl.backend.Name()
		pl.model = o.modelFor(pl.backend, opts)
	}
	return pl
}

func (o *Orchestrator) modelFor(b ai.Backend, opts Options) string {
	// an explicit model only applies to the preferred backend
	if opts.Model != "" && b.Name() == o.registry.Choose(opts.Backend).Name() {
		return opts.Model
	}
	return b.DefaultModel()
}

// Request composes the generation request of one pair exactly as RunBatch would
func (o *Orchestrator) Request(p *models.Persona, q models.Question, questionIndex, pairID int, opts Options) models.GenerationRequest {
	pr := pair{id: pairID, persona: p, question: q, index: questionIndex}
	pl := o.prepare(pr, opts)
	return models.GenerationRequest{
		PairID:        pairID,
		PersonaID:     p.ID,
		QuestionID:    q.ID,
		QuestionIndex: questionIndex,
		Prompt:        o.composer.Compose(p, q, questionIndex, pl.rng),
		Backend:       pl.backendName,
		Model:         pl.model,
		Temperature:   pl.temperature,
		MaxTokens:     opts.MaxTokens,
	}
}

// RunBatch answers every question for every persona and returns one answer per
// pair ordered by pair id. Failures never abort the batch; they are recorded on
// the answer instead.
func (o *Orchestrator) RunBatch(ctx context.Context, personas []models.Persona, questions []models.Question, opts Options) []models.Answer {
	qn := len(questions)
	answers := make([]models.Answer, len(personas)*qn)
	if len(answers) == 0 {
		return answers
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	o.logger.WithFields(logrus.Fields{
		"personas":    len(personas),
		"questions":   qn,
		"pairs":       len(answers),
		"concurrency": concurrency,
	}).Info("Starting generation batch")

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(concurrency)

	for pi := range personas {
		for qi := range questions {
			pr := pair{
				id:       PairID(pi, qi, qn),
				persona:  &personas[pi],
				question: questions[qi],
				index:    qi,
			}
			g.Go(func() error {
				answers[pr.id-1] = o.runPair(ctx, pr, opts)
				return nil
			})
		}
	}
	g.Wait()

	failed := 0
	for _, a := range answers {
		if a.Failed {
			failed++
		}
	}
	o.logger.WithFields(logrus.Fields{
		"pairs":    len(answers),
		"failed":   failed,
		"duration": time.Since(start),
	}).Info("Generation batch finished")

	return answers
}

func (o *Orchestrator) runPair(ctx context.Context, pr pair, opts Options) models.Answer {
	if o.metrics != nil {
		o.metrics.PairStarted()
		defer o.metrics.PairDone()
	}
	log := logger.WithPair(o.logger, pr.id, pr.persona.ID, pr.question.ID)

	answer := models.Answer{
		ID:         pr.id,
		PersonaID:  pr.persona.ID,
		QuestionID: pr.question.ID,
		Question:   pr.question.Text,
	}

	pl := o.prepare(pr, opts)
	key := cache.Fingerprint(pr.persona, pr.question, pl.model, pl.backendName, pl.temperature)

	if o.cache != nil {
		if text, ok := o.cache.Get(ctx, key); ok {
			o.cacheHits.Add(1)
			o.recordCache(true)
			answer.Text = text
			answer.Backend = pl.backendName
			answer.Model = pl.model
			answer.Cached = true
			answer.Timestamp = o.now()
			o.finish(ctx, log, answer, middleware.OutcomeCached)
			return answer
		}
		o.recordCache(false)
	}

	promptText := o.composer.Compose(pr.persona, pr.question, pr.index, pl.rng)
	res, backend, model, err := o.generate(ctx, log, pr.id, promptText, pl, opts)
	answer.Timestamp = o.now()
	if err != nil {
		answer.Failed = true
		answer.Error = err.Error()
		if backend != nil {
			answer.Backend = backend.Name()
			answer.Model = model
		}
		o.failed.Add(1)
		o.finish(ctx, log, answer, middleware.OutcomeFailed)
		return answer
	}

	text := res.Text
	if opts.StripMarkdown {
		if plain := markdown.ToPlainText(text); plain != "" {
			text = plain
		}
	}
	answer.Text = text
	answer.Backend = backend.Name()
	answer.Model = model
	answer.TokensUsed = res.TokensUsed
	o.addTokens(backend.Name(), res.TokensUsed)
	o.generated.Add(1)

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, model, text); err != nil {
			log.WithError(err).Warn("Failed to cache answer")
		}
	}
	o.finish(ctx, log, answer, middleware.OutcomeGenerated)
	return answer
}

// generate calls backends until one succeeds or attempts run out. After every
// failure that leaves attempts it switches to the registry's failover backend.
func (o *Orchestrator) generate(ctx context.Context, log *logrus.Entry, pairID int, promptText string, pl plan, opts Options) (ai.Result, ai.Backend, string, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if pl.backend == nil {
		return ai.Result{}, nil, "", &ExhaustedRetriesError{PairID: pairID, Err: ai.ErrNoBackend}
	}

	backend, model := pl.backend, pl.model
	var lastErr error
	attempt := 0
	for attempt < maxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempt++

		start := time.Now()
		res, err := backend.Generate(ctx, ai.Request{
			Prompt:      promptText,
			Model:       model,
			MaxTokens:   opts.MaxTokens,
			Temperature: pl.temperature,
		})
		o.recordRequest(backend.Name(), err, time.Since(start))
		if err == nil {
			return res, backend, model, nil
		}

		lastErr = err
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"backend": backend.Name(),
			"error":   err.Error(),
		}).Warn("Generation failed, retrying...")

		if attempt >= maxAttempts {
			break
		}

		var be *ai.BackendError
		permanent := errors.As(err, &be) && !be.Retryable()

		next := o.registry.Failover(backend)
		if next.Name() != backend.Name() {
			if o.metrics != nil {
				o.metrics.RecordFailover(backend.Name(), next.Name())
			}
			backend, model = next, o.modelFor(next, opts)
		} else if permanent {
			break
		}

		// Exponential backoff: base, 2*base, 4*base
		wait := opts.BackoffBase * time.Duration(1<<uint(attempt-1))
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = maxAttempts
		case <-time.After(wait):
		}
	}

	return ai.Result{}, backend, model, &ExhaustedRetriesError{PairID: pairID, Attempts: attempt, Err: lastErr}
}

func (o *Orchestrator) finish(ctx context.Context, log *logrus.Entry, answer models.Answer, outcome string) {
	if o.metrics != nil {
		o.metrics.RecordAnswer(outcome)
	}
	if o.store != nil {
		// error-tagged answers of a cancelled batch are still recorded
		if err := o.store.AppendAnswer(context.WithoutCancel(ctx), answer); err != nil {
			log.WithError(err).Warn("Failed to store answer")
		}
	}
	if answer.Failed {
		log.WithField("error", answer.Error).Error("Pair failed")
		return
	}
	log.WithFields(logrus.Fields{
		"backend": answer.Backend,
		"cached":  answer.Cached,
		"tokens":  answer.TokensUsed,
	}).Debug("Pair answered")
}

func (o *Orchestrator) recordCache(hit bool) {
	if o.metrics == nil {
		return
	}
	if hit {
		o.metrics.RecordCacheHit()
	} else {
		o.metrics.RecordCacheMiss()
	}
}

func (o *Orchestrator) recordRequest(backend string, err error, d time.Duration) {
	if o.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.RecordBackendRequest(backend, status, d)
}

func (o *Orchestrator) addTokens(backend string, n int) {
	o.tokens.Add(int64(n))
	o.mu.Lock()
	o.tokensByBackend[backend] += int64(n)
	o.mu.Unlock()
	if o.metrics != nil {
		o.metrics.RecordTokens(backend, n)
	}
}

// Usage returns a snapshot of the counters
func (o *Orchestrator) Usage() Usage {
	o.mu.Lock()
	byBackend := make(map[string]int64, len(o.tokensByBackend))
	for k, v := range o.tokensByBackend {
		byBackend[k] = v
	}
	o.mu.Unlock()

	return Usage{
		Tokens:          o.tokens.Load(),
		TokensByBackend: byBackend,
		CacheHits:       o.cacheHits.Load(),
		Generated:       o.generated.Load(),
		Failed:          o.failed.Load(),
	}
}

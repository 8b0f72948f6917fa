package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synth-respondents-go/internal/i18n"
	"github.com/synth-respondents-go/internal/middleware"
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/ai"
	"github.com/synth-respondents-go/internal/services/cache"
	"github.com/synth-respondents-go/internal/services/orchestrator"
	"github.com/synth-respondents-go/internal/services/prompt"
	"github.com/synth-respondents-go/internal/services/questions"
	"github.com/synth-respondents-go/internal/services/report"
	"github.com/synth-respondents-go/internal/services/storage"
	"github.com/synth-respondents-go/pkg/logger"
)

var (
	runQuestions   string
	runReviews     string
	runCount       int
	runOutput      string
	runBackend     string
	runModel       string
	runTemperature float64
	runLanguage    string
	runReportPath  string
)

// RunCmd generates personas and collects their answers
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer a questionnaire with synthetic respondents",
	Long: `Generate personas, ask every persona every question through the configured
backends and write the answers as JSON. A run summary is printed to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd, true)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		logger.TagRun(log, runID)
		log.WithField("seed", cfg.Generation.Seed).Info("Starting run")

		localizer, err := i18n.NewLocalizer(&cfg.I18n)
		if err != nil {
			return fmt.Errorf("failed to initialize i18n: %w", err)
		}

		metrics := middleware.NewMetrics()
		if cfg.Monitoring.Metrics.Enabled {
			server := middleware.NewMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path)
			go func() {
				log.WithFields(logrus.Fields{
					"port": cfg.Monitoring.Metrics.Port,
					"path": cfg.Monitoring.Metrics.Path,
				}).Info("Starting metrics server")

				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Error("Metrics server failed")
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()
		}

		storageManager, err := storage.NewManager(cfg, runID, metrics, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer func() {
			if err := storageManager.Close(context.Background()); err != nil {
				log.WithError(err).Error("Failed to purge run storage")
			}
		}()

		cacheService, err := cache.NewCache(cfg, storageManager.GetRedisClient(), runID, log)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}

		var waiter ai.Waiter
		if limiter := middleware.NewRateLimiter(cfg, log); limiter != nil {
			waiter = limiter
		}
		registry, err := ai.NewRegistry(ctx, cfg, waiter, log)
		if err != nil {
			return err
		}
		defer registry.Close()

		qs, err := questions.LoadFile(runQuestions)
		if err != nil {
			return err
		}
		review, err := loadReviews(runReviews)
		if err != nil {
			return err
		}

		gen, kb, suite := newGenerator()
		personas, err := generatePersonas(gen, cfg.Generation.Seed, runCount)
		if err != nil {
			return err
		}
		if err := storageManager.SavePersonas(ctx, personas); err != nil {
			return fmt.Errorf("failed to store personas: %w", err)
		}

		opts := orchestrator.OptionsFromConfig(&cfg.Generation)
		opts.Backend = runBackend
		opts.Model = runModel
		if cmd.Flags().Changed("temperature") {
			opts.Temperature = &runTemperature
		}

		orch := orchestrator.NewOrchestrator(registry, prompt.NewComposer(kb, suite, review), cacheService, storageManager, metrics, log)

		start := time.Now()
		answers := orch.RunBatch(ctx, personas, qs, opts)
		summary := report.Build(runID, len(personas), len(qs), answers, time.Since(start))

		if err := writeJSON(cmd.OutOrStdout(), runOutput, answers); err != nil {
			return err
		}
		if runReportPath != "" {
			if err := writeJSON(cmd.OutOrStdout(), runReportPath, summary); err != nil {
				return err
			}
		}

		lang := runLanguage
		if lang == "" {
			lang = cfg.I18n.DefaultLanguage
		}
		fmt.Fprintln(cmd.ErrOrStderr(), report.Render(summary, localizer, lang))

		if summary.Total > 0 && summary.Failed == summary.Total {
			return fmt.Errorf("all %d pairs failed", summary.Total)
		}
		return nil
	},
}

func init() {
	RunCmd.Flags().StringVarP(&runQuestions, "questions", "q", "", "Questionnaire file (.json, .yaml)")
	RunCmd.Flags().StringVar(&runReviews, "reviews", "", "Review summary file (.json)")
	RunCmd.Flags().IntVarP(&runCount, "count", "n", 10, "Number of personas")
	RunCmd.Flags().StringVarP(&runOutput, "output", "o", "-", "Answers file (- for stdout)")
	RunCmd.Flags().StringVar(&runBackend, "backend", "", "Preferred backend (openai, gemini, compatible)")
	RunCmd.Flags().StringVar(&runModel, "model", "", "Model for the preferred backend")
	RunCmd.Flags().Float64Var(&runTemperature, "temperature", 0, "Fixed sampling temperature")
	RunCmd.Flags().StringVar(&runLanguage, "lang", "", "Report language (ru, en)")
	RunCmd.Flags().StringVar(&runReportPath, "report", "", "Also write the summary as JSON to this file")

	RunCmd.MarkFlagRequired("questions")
}

func loadReviews(path string) (*models.ReviewSummary, error) {
	if path == "" {
		return nil, nil
	}
	return questions.LoadReviewSummaryFile(path)
}

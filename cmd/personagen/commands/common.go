// Package commands implements the personagen subcommands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synth-respondents-go/internal/config"
	"github.com/synth-respondents-go/internal/models"
	"github.com/synth-respondents-go/internal/services/behavior"
	"github.com/synth-respondents-go/internal/services/knowledge"
	"github.com/synth-respondents-go/internal/services/persona"
	"github.com/synth-respondents-go/pkg/logger"
)

var (
	configPath string
	envFile    string
	seedFlag   int64
)

// AddPersistentFlags registers the flags every subcommand shares
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file")
	cmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "Run seed (overrides generation.seed)")
}

// setup loads .env, configuration and the logger. validate requires backend
// credentials.
func setup(cmd *cobra.Command, validate bool) (*config.Config, *logrus.Logger, error) {
	// It's okay if .env doesn't exist
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	load := config.ReadConfig
	if validate {
		load = config.LoadConfig
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("seed") {
		cfg.Generation.Seed = seedFlag
	}
	if cfg.Generation.Seed == 0 {
		cfg.Generation.Seed = time.Now().UnixNano()
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// newGenerator wires the persona pipeline. The life-context model reads the wall clock.
func newGenerator() (*persona.Generator, knowledge.Service, *behavior.Suite) {
	kb := knowledge.NewBase()
	suite := behavior.NewSuite(nil)
	return persona.NewGenerator(kb, suite), kb, suite
}

func generatePersonas(gen *persona.Generator, seed int64, count int) ([]models.Persona, error) {
	if count < 1 {
		return nil, fmt.Errorf("persona count must be positive, got %d", count)
	}
	personas, err := gen.GenerateN(seed, count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate personas: %w", err)
	}
	return personas, nil
}

// openOutput returns stdout for "" or "-"
func openOutput(stdout io.Writer, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(stdout io.Writer, path string, v interface{}) error {
	out, err := openOutput(stdout, path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		out.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return out.Close()
}

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/synth-respondents-go/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Supported logging.format values
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Supported logging.output values. Answers go to stdout, so stderr is the default.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
)

// NewLogger builds the process logger from the logging section
func NewLogger(cfg *config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	formatter, err := formatterFor(cfg.Format)
	if err != nil {
		return nil, err
	}
	logger.SetFormatter(formatter)

	out, err := outputFor(cfg)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(out)

	return logger, nil
}

func formatterFor(format string) (logrus.Formatter, error) {
	switch format {
	case FormatJSON:
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}, nil
	case "", FormatText:
		return &logrus.TextFormatter{
			TimestampFormat: "15:04:05.000",
			FullTimestamp:   true,
		}, nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func outputFor(cfg *config.LoggingConfig) (io.Writer, error) {
	switch cfg.Output {
	case "", OutputStderr:
		return os.Stderr, nil
	case OutputStdout:
		return os.Stdout, nil
	case OutputFile:
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("log output %q requires logging.file.path", OutputFile)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		return &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize, // megabytes
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge, // days
			Compress:   true,
		}, nil
	}
	return nil, fmt.Errorf("unknown log output %q", cfg.Output)
}

// NewDiscard returns a logger that drops everything, for tests and dry runs
func NewDiscard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TagRun stamps run_id on every entry logger writes from now on, including
// entries from components that only hold the *logrus.Logger.
func TagRun(logger *logrus.Logger, runID string) {
	logger.AddHook(runHook{runID: runID})
}

type runHook struct {
	runID string
}

func (h runHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h runHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["run_id"]; !ok {
		entry.Data["run_id"] = h.runID
	}
	return nil
}

// WithPair adds the persona/question identity of a work item to logger
func WithPair(logger *logrus.Logger, pairID int, personaID, questionID string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"pair_id":     pairID,
		"persona_id":  personaID,
		"question_id": questionID,
	})
}

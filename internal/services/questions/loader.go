// Package questions loads questionnaires and the precomputed review summary.
package questions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/synth-respondents-go/internal/models"
)

// Format is a questionnaire encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MalformedInputError reports a questionnaire entry that cannot be used
type MalformedInputError struct {
	Index  int
	ID     string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed question %d (%s): %s", e.Index+1, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed question %d: %s", e.Index+1, e.Reason)
}

type document struct {
	Questions []models.Question `json:"questions" yaml:"questions"`
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported questionnaire format: %s", path)
	}
}

// LoadFile reads a questionnaire from a .json, .yaml or .yml file
func LoadFile(path string) ([]models.Question, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open questionnaire: %w", err)
	}
	defer f.Close()
	return Load(f, format)
}

// Load decodes a questionnaire. The document is either a list of questions or an
// object with a "questions" list. Missing ids, types and topics are filled in.
func Load(r io.Reader, format Format) ([]models.Question, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire: %w", err)
	}

	var list []models.Question
	switch format {
	case FormatJSON:
		list, err = decodeJSON(data)
	case FormatYAML:
		list, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported questionnaire format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode questionnaire: %w", err)
	}

	out := make([]models.Question, 0, len(list))
	for i, q := range list {
		normalized, err := normalize(i, q)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

func decodeJSON(data []byte) ([]models.Question, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []models.Question
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}
	var doc document
	err := json.Unmarshal(trimmed, &doc)
	return doc.Questions, err
}

func decodeYAML(data []byte) ([]models.Question, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var list []models.Question
		err := node.Content[0].Decode(&list)
		return list, err
	}
	var doc document
	err := node.Content[0].Decode(&doc)
	return doc.Questions, err
}

func normalize(i int, q models.Question) (models.Question, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, &MalformedInputError{Index: i, ID: q.ID, Reason: "question text is required"}
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("q%d", i+1)
	}

	switch q.Type {
	case "":
		q.Type = models.QuestionOpen
		if len(q.Options) > 0 {
			q.Type = models.QuestionSingle
		}
	case models.QuestionOpen, models.QuestionSingle, models.QuestionMultiple:
	default:
		return q, &MalformedInputError{Index: i, ID: q.ID, Reason: fmt.Sprintf("unknown question type %q", q.Type)}
	}
	if q.Type != models.QuestionOpen && len(q.Options) == 0 {
		return q, &MalformedInputError{Index: i, ID: q.ID, Reason: "choice question without options"}
	}

	if q.Topic == "" {
		q.Topic = InferTopic(q.Text)
	}
	return q, nil
}

// LoadReviewSummary decodes a precomputed review summary from JSON
func LoadReviewSummary(r io.Reader) (*models.ReviewSummary, error) {
	var summary models.ReviewSummary
	if err := json.NewDecoder(r).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode review summary: %w", err)
	}
	return &summary, nil
}

// LoadReviewSummaryFile reads a review summary from path
func LoadReviewSummaryFile(path string) (*models.ReviewSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open review summary: %w", err)
	}
	defer f.Close()
	return LoadReviewSummary(f)
}

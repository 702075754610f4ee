// Package extract turns free text into the structured batches the loaders
// consume, using a language model as the oracle.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/reconcile"
)

// ErrUnparseable is returned when the model output is not the expected shape
var ErrUnparseable = errors.New("model output is not valid")

// Extractor structures free text through a Model
type Extractor struct {
	model Model
	log   zerolog.Logger
}

// New creates an Extractor
func New(model Model, log zerolog.Logger) *Extractor {
	return &Extractor{
		model: model,
		log:   log.With().Str("component", "Extract").Logger(),
	}
}

// IntakeFromText structures a semi-structured visitor list into an intake
// batch for the given decision date and event.
func (e *Extractor) IntakeFromText(ctx context.Context, text string, date time.Time, event string) (models.IntakeBatch, error) {
	out, err := e.model.Generate(ctx, intakePrompt(text), true)
	if err != nil {
		return models.IntakeBatch{}, fmt.Errorf("failed to extract intake: %w", err)
	}

	entries, err := ParseIntakeEntries(out)
	if err != nil {
		e.log.Warn().Str("output", truncate(out, 500)).Msg("Unparseable intake output")
		return models.IntakeBatch{}, err
	}

	e.log.Info().Int("entries", len(entries)).Msg("Intake extracted")
	return models.IntakeBatch{
		Date:  date.Format("02/01/2006"),
		Event: event,
		List:  entries,
	}, nil
}

// RepliesFromText structures a welcomer's reply into reply entries
func (e *Extractor) RepliesFromText(ctx context.Context, text string) ([]models.ReplyEntry, error) {
	out, err := e.model.Generate(ctx, repliesPrompt(text), true)
	if err != nil {
		return nil, fmt.Errorf("failed to extract replies: %w", err)
	}

	entries, err := ParseReplyEntries(out)
	if err != nil {
		e.log.Warn().Str("output", truncate(out, 500)).Msg("Unparseable reply output")
		return nil, err
	}

	e.log.Info().Int("entries", len(entries)).Msg("Replies extracted")
	return entries, nil
}

// WelcomersCSV standardizes a raw welcomer signup export against the group
// export and returns the CSV with the loader's header.
func (e *Extractor) WelcomersCSV(ctx context.Context, welcomersCSV, groupsCSV string) (string, error) {
	out, err := e.model.Generate(ctx, welcomersPrompt(welcomersCSV, groupsCSV), false)
	if err != nil {
		return "", fmt.Errorf("failed to standardize welcomers: %w", err)
	}

	body := StripFences(out)
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	var b bytes.Buffer
	w := csv.NewWriter(&b)
	if err := w.Write(reconcile.WelcomerCSVHeader); err != nil {
		return "", err
	}
	for _, row := range rows {
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), reconcile.ColName) {
			continue
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	e.log.Info().Int("rows", len(rows)).Msg("Welcomer CSV standardized")
	return b.String(), nil
}

// ParseIntakeEntries reads a model answer holding a list of intake entries.
// A batch object with a "lista" field is accepted too.
func ParseIntakeEntries(out string) ([]models.IntakeEntry, error) {
	body := StripFences(out)

	var entries []models.IntakeEntry
	if err := json.Unmarshal([]byte(body), &entries); err == nil {
		return entries, nil
	}

	var batch models.IntakeBatch
	if err := json.Unmarshal([]byte(body), &batch); err != nil || batch.List == nil {
		return nil, fmt.Errorf("%w: expected a list of visitors", ErrUnparseable)
	}
	return batch.List, nil
}

// ParseReplyEntries reads a model answer holding a list of reply entries.
// A single object is accepted as a list of one.
func ParseReplyEntries(out string) ([]models.ReplyEntry, error) {
	body := StripFences(out)

	var entries []models.ReplyEntry
	if err := json.Unmarshal([]byte(body), &entries); err == nil {
		return entries, nil
	}

	var one models.ReplyEntry
	if err := json.Unmarshal([]byte(body), &one); err != nil || one.VisitorName == "" {
		return nil, fmt.Errorf("%w: expected a list of replies", ErrUnparseable)
	}
	return []models.ReplyEntry{one}, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// WriteJSON writes v as indented JSON, creating parent directories
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path, creating parent directories
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

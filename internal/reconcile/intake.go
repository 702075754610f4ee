package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

type intakeOutcome int

const (
	intakeLoaded intakeOutcome = iota
	intakeLoadedIncomplete
	intakeDiscarded
	intakeWelcomerNotFound
	intakeDuplicate
	intakeError
)

func (t *IntakeTally) add(o intakeOutcome) {
	switch o {
	case intakeLoaded:
		t.Loaded++
	case intakeLoadedIncomplete:
		t.Loaded++
		t.Incomplete++
	case intakeDiscarded:
		t.Discarded++
	case intakeWelcomerNotFound:
		t.WelcomerNotFound++
	case intakeDuplicate:
		t.Duplicate++
	default:
		t.Error++
	}
}

// DecodeIntakeBatch reads an intake batch object. Both "data" and "lista"
// must be present.
func DecodeIntakeBatch(r io.Reader) (models.IntakeBatch, error) {
	var raw struct {
		Date  *string              `json:"data"`
		Event string               `json:"evento"`
		List  *[]models.IntakeEntry `json:"lista"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return models.IntakeBatch{}, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if raw.Date == nil {
		return models.IntakeBatch{}, fmt.Errorf(`%w: missing "data"`, ErrInvalidBatch)
	}
	if raw.List == nil {
		return models.IntakeBatch{}, fmt.Errorf(`%w: missing "lista"`, ErrInvalidBatch)
	}
	return models.IntakeBatch{Date: *raw.Date, Event: raw.Event, List: *raw.List}, nil
}

// IntakeFile loads the intake batch stored at path
func (r *Reconciler) IntakeFile(ctx context.Context, path string) (IntakeTally, error) {
	f, err := os.Open(path)
	if err != nil {
		return IntakeTally{}, fmt.Errorf("failed to open intake batch: %w", err)
	}
	defer f.Close()

	batch, err := DecodeIntakeBatch(f)
	if err != nil {
		return IntakeTally{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Intake(ctx, batch)
}

// Intake loads every entry of batch under its decision date inside one
// transaction. Per-entry problems are counted, never returned; a returned
// error means nothing from the batch was committed.
func (r *Reconciler) Intake(ctx context.Context, batch models.IntakeBatch) (IntakeTally, error) {
	tally := IntakeTally{RunID: newRunID()}

	date, err := ParseDecisionDate(batch.Date)
	if err != nil {
		return tally, err
	}

	log := r.log.With().
		Str("run", tally.RunID).
		Str("step", "intake").
		Str("decision_date", date).
		Logger()
	log.Info().Int("entries", len(batch.List)).Msg("Starting intake load")

	err = r.store.WithTx(ctx, func(tx *storage.Tx) error {
		for i, entry := range batch.List {
			if err := ctx.Err(); err != nil {
				return err
			}
			tally.add(r.intakeEntry(ctx, tx, log.With().Int("entry", i+1).Logger(), entry, date, batch.Event))
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Intake load rolled back")
		return IntakeTally{RunID: tally.RunID}, fmt.Errorf("failed to load intake batch: %w", err)
	}

	log.Info().
		Int("loaded", tally.Loaded).
		Int("discarded", tally.Discarded).
		Int("welcomer_not_found", tally.WelcomerNotFound).
		Int("duplicate", tally.Duplicate).
		Int("error", tally.Error).
		Msg("Intake load finished")
	return tally, nil
}

func (r *Reconciler) intakeEntry(ctx context.Context, tx *storage.Tx, log zerolog.Logger, e models.IntakeEntry, date, batchEvent string) intakeOutcome {
	name := strings.TrimSpace(e.Name)
	welcomerRef := strings.TrimSpace(e.Welcomer)
	log = log.With().Str("visitor", name).Logger()

	plan := e.ActionPlan()
	if plan == models.PlanDiscard {
		log.Debug().Str("plan", e.Plan).Msg("Discarded by action plan")
		return intakeDiscarded
	}
	if name == "" || welcomerRef == "" {
		log.Warn().Str("plan", e.Plan).Msg("Action plan says load but essential fields are missing, discarding")
		return intakeDiscarded
	}

	welcomer, err := tx.FindWelcomer(ctx, welcomerRef)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn().Str("welcomer", welcomerRef).Msg("Welcomer not found, record skipped")
		return intakeWelcomerNotFound
	}
	if err != nil {
		log.Error().Err(err).Msg("Welcomer lookup failed")
		return intakeError
	}

	event := strings.TrimSpace(e.Event)
	if event == "" {
		event = strings.TrimSpace(batchEvent)
	}

	_, err = tx.InsertVisitor(ctx, models.NewVisitor{
		Name:         name,
		Age:          e.Age,
		Phone:        strings.TrimSpace(e.Phone),
		DecisionDate: date,
		WelcomerID:   welcomer.ID,
		Gender:       genderMarker(e.Gender),
		Event:        event,
	})
	switch {
	case storage.IsUniqueViolation(err):
		log.Info().Msg("Visitor already loaded for this date, skipped")
		return intakeDuplicate
	case err != nil:
		log.Error().Err(err).Msg("Failed to insert visitor")
		return intakeError
	}

	log.Debug().Int64("welcomer_id", welcomer.ID).Msg("Visitor loaded")
	if plan == models.PlanLoadIncomplete {
		return intakeLoadedIncomplete
	}
	return intakeLoaded
}

// genderMarker keeps the single-letter H/M marker, accepting words that
// start with it ("Homem", "mulher").
func genderMarker(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch strings.ToUpper(s[:1]) {
	case "H":
		return "H"
	case "M":
		return "M"
	}
	return ""
}

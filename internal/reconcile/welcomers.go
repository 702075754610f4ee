package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/identity"
	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

// Welcomer CSV columns, as produced by the standardization step
const (
	ColName      = "Nome"
	ColAlias     = "Apelido"
	ColBirthDate = "Nascimento"
	ColEmail     = "Email"
	ColPhone     = "Celular"
	ColGroup     = "GP"
)

// WelcomerCSVHeader is the header line of the standardized welcomer CSV
var WelcomerCSVHeader = []string{ColName, ColAlias, ColBirthDate, ColEmail, ColPhone, ColGroup}

// LoadWelcomersFile loads the welcomer CSV stored at path
func (r *Reconciler) LoadWelcomersFile(ctx context.Context, path string) (WelcomerTally, error) {
	f, err := os.Open(path)
	if err != nil {
		return WelcomerTally{}, fmt.Errorf("failed to open welcomer CSV: %w", err)
	}
	defer f.Close()
	return r.LoadWelcomers(ctx, f)
}

// LoadWelcomers inserts the welcomers listed in a standardized CSV payload.
// Each row resolves its group by leader key; groups are never created here.
// Any batch-level failure rolls back every insert of the call.
func (r *Reconciler) LoadWelcomers(ctx context.Context, src io.Reader) (WelcomerTally, error) {
	tally := WelcomerTally{RunID: newRunID()}
	log := r.log.With().Str("run", tally.RunID).Str("step", "welcomers").Logger()

	table, err := readCSV(src)
	if err != nil {
		return tally, fmt.Errorf("failed to read welcomer CSV: %w", err)
	}
	if err := table.require(ColName, ColEmail, ColGroup); err != nil {
		return tally, fmt.Errorf("failed to read welcomer CSV: %w", err)
	}

	log.Info().Int("rows", len(table.rows)).Msg("Starting welcomer load")

	err = r.store.WithTx(ctx, func(tx *storage.Tx) error {
		for i, row := range table.rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := i + 2
			w := models.Welcomer{
				Name:  table.get(row, ColName),
				Alias: table.get(row, ColAlias),
				Email: strings.ToLower(table.get(row, ColEmail)),
				Phone: table.get(row, ColPhone),
			}
			r.loadWelcomer(ctx, tx, log.With().Int("line", line).Logger(), &tally, w, table.get(row, ColGroup))
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Welcomer load rolled back")
		return WelcomerTally{RunID: tally.RunID}, fmt.Errorf("failed to load welcomers: %w", err)
	}

	log.Info().
		Int("loaded", tally.Loaded).
		Int("already_exists", tally.AlreadyExists).
		Int("group_not_found", tally.GroupNotFound).
		Int("line_error", tally.LineError).
		Msg("Welcomer load finished")
	return tally, nil
}

func (r *Reconciler) loadWelcomer(ctx context.Context, tx *storage.Tx, log zerolog.Logger, tally *WelcomerTally, w models.Welcomer, leader string) {
	if w.Name == "" || w.Email == "" || leader == "" {
		log.Warn().Msg("Incomplete line, skipped")
		tally.LineError++
		return
	}

	w.Name = identity.Normalize(w.Name)
	if w.Name == "" {
		log.Warn().Msg("Name has no usable characters, skipped")
		tally.LineError++
		return
	}

	// The leader column arrives normalized; normalizing again is a no-op
	// for it and rescues raw names.
	groupID, err := tx.FindGroupByLeader(ctx, identity.Normalize(leader))
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn().Str("leader", leader).Msg("Group not found, skipped")
		tally.GroupNotFound++
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Group lookup failed")
		tally.Error++
		return
	}
	w.GroupID = &groupID

	_, err = tx.InsertWelcomer(ctx, w)
	switch {
	case storage.IsUniqueViolation(err):
		log.Info().Str("email", w.Email).Msg("Welcomer already exists")
		tally.AlreadyExists++
	case err != nil:
		log.Error().Err(err).Str("email", w.Email).Msg("Failed to insert welcomer")
		tally.Error++
	default:
		tally.Loaded++
	}
}

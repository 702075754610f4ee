package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"elo-welcoming/internal/identity"
	"elo-welcoming/internal/storage"
)

// GroupLeaderColumn is the header the group export uses for leader names.
// Files with another single header are read from their first column.
const GroupLeaderColumn = "LÍDER_name"

// LoadGroupsFile loads the group CSV stored at path
func (r *Reconciler) LoadGroupsFile(ctx context.Context, path string) (GroupTally, error) {
	f, err := os.Open(path)
	if err != nil {
		return GroupTally{}, fmt.Errorf("failed to open group CSV: %w", err)
	}
	defer f.Close()
	return r.LoadGroups(ctx, f)
}

// LoadGroups creates one group per leader name, storing the normalized key.
func (r *Reconciler) LoadGroups(ctx context.Context, src io.Reader) (GroupTally, error) {
	tally := GroupTally{RunID: newRunID()}
	log := r.log.With().Str("run", tally.RunID).Str("step", "groups").Logger()

	table, err := readCSV(src)
	if err != nil {
		return tally, fmt.Errorf("failed to read group CSV: %w", err)
	}

	col := 0
	if i, ok := table.index[strings.ToLower(GroupLeaderColumn)]; ok {
		col = i
	}

	err = r.store.WithTx(ctx, func(tx *storage.Tx) error {
		for i, row := range table.rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			line := i + 2

			var raw string
			if col < len(row) {
				raw = row[col]
			}
			leader := identity.Normalize(raw)
			if leader == "" {
				log.Warn().Int("line", line).Msg("Blank leader name")
				tally.LineError++
				continue
			}

			_, err := tx.InsertGroup(ctx, leader)
			switch {
			case storage.IsUniqueViolation(err):
				log.Debug().Str("leader", leader).Msg("Group already exists")
				tally.AlreadyExists++
			case err != nil:
				log.Error().Err(err).Str("leader", leader).Msg("Failed to insert group")
				tally.Error++
			default:
				tally.Loaded++
			}
		}
		return nil
	})
	if err != nil {
		return GroupTally{RunID: tally.RunID}, fmt.Errorf("failed to load groups: %w", err)
	}

	log.Info().
		Int("loaded", tally.Loaded).
		Int("already_exists", tally.AlreadyExists).
		Int("line_error", tally.LineError).
		Msg("Group load finished")
	return tally, nil
}

package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

type replyOutcome int

const (
	replyUpdated replyOutcome = iota
	replyAmbiguous
	replyNotFound
	replyMalformed
	replyError
)

func (t *ReplyTally) add(o replyOutcome, rows int64) {
	switch o {
	case replyUpdated:
		t.Updated++
	case replyAmbiguous:
		t.Ambiguous++
	case replyNotFound:
		t.NotFound++
	case replyMalformed:
		t.Malformed++
	default:
		t.Error++
	}
	t.RowsAffected += rows
}

// DecodeReplyBatch reads a reply batch, which must be a JSON array
func DecodeReplyBatch(r io.Reader) ([]models.ReplyEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: reply batch must be a JSON array", ErrInvalidBatch)
	}

	var entries []models.ReplyEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	return entries, nil
}

// RepliesFile applies the reply batch stored at path
func (r *Reconciler) RepliesFile(ctx context.Context, path string) (ReplyTally, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReplyTally{}, fmt.Errorf("failed to open reply batch: %w", err)
	}
	defer f.Close()

	entries, err := DecodeReplyBatch(f)
	if err != nil {
		return ReplyTally{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Replies(ctx, entries)
}

// Replies applies welcomer replies to Notified records across all welcomers.
func (r *Reconciler) Replies(ctx context.Context, entries []models.ReplyEntry) (ReplyTally, error) {
	return r.replies(ctx, entries, 0)
}

// RepliesFrom applies replies sent by one welcomer, matching only that
// welcomer's visitors.
func (r *Reconciler) RepliesFrom(ctx context.Context, welcomerID int64, entries []models.ReplyEntry) (ReplyTally, error) {
	return r.replies(ctx, entries, welcomerID)
}

func (r *Reconciler) replies(ctx context.Context, entries []models.ReplyEntry, welcomerID int64) (ReplyTally, error) {
	tally := ReplyTally{RunID: newRunID()}
	logCtx := r.log.With().Str("run", tally.RunID).Str("step", "replies")
	if welcomerID != 0 {
		logCtx = logCtx.Int64("welcomer_id", welcomerID)
	}
	log := logCtx.Logger()

	log.Info().Int("entries", len(entries)).Msg("Starting reply load")

	err := r.store.WithTx(ctx, func(tx *storage.Tx) error {
		for i, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			tally.add(r.replyEntry(ctx, tx, log.With().Int("entry", i+1).Logger(), e, welcomerID))
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Reply load rolled back")
		return ReplyTally{RunID: tally.RunID}, fmt.Errorf("failed to load replies: %w", err)
	}

	log.Info().
		Int("updated", tally.Updated).
		Int("ambiguous", tally.Ambiguous).
		Int("not_found", tally.NotFound).
		Int("malformed", tally.Malformed).
		Int("error", tally.Error).
		Int64("rows_affected", tally.RowsAffected).
		Msg("Reply load finished")
	return tally, nil
}

func (r *Reconciler) replyEntry(ctx context.Context, tx *storage.Tx, log zerolog.Logger, e models.ReplyEntry, welcomerID int64) (replyOutcome, int64) {
	name := strings.TrimSpace(e.VisitorName)
	status := strings.TrimSpace(e.Status)
	log = log.With().Str("visitor", name).Logger()

	if name == "" || status == "" {
		log.Warn().Msg("Reply is missing visitor name or status")
		return replyMalformed, 0
	}
	if models.IsReserved(status) {
		log.Warn().Str("status", status).Msg("Reply status is a lifecycle stage, not an outcome")
		return replyMalformed, 0
	}

	var obs *string
	if e.Observation != nil {
		o := strings.TrimSpace(*e.Observation)
		obs = &o
	}

	n, err := tx.ApplyReply(ctx, name, models.Resolved(status), obs, welcomerID)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("Failed to apply reply")
		return replyError, 0
	case n == 0:
		log.Info().Msg("No notified visitor matches, not found or already updated")
		return replyNotFound, 0
	case n > 1:
		log.Warn().Int64("rows", n).Str("status", status).Msg("Reply matched several visitors, all updated")
		return replyAmbiguous, n
	}
	log.Debug().Str("status", status).Msg("Reply applied")
	return replyUpdated, n
}

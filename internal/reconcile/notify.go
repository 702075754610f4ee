package reconcile

import (
	"context"
	"fmt"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

// Notify sends every welcomer with Pending visitors their list and moves
// exactly the sent records to Notified. Each welcomer's transition commits
// right after a successful send; a failed send leaves the records Pending
// for the next cycle.
func (r *Reconciler) Notify(ctx context.Context, n Notifier) (NotifyTally, error) {
	tally := NotifyTally{RunID: newRunID()}
	log := r.log.With().Str("run", tally.RunID).Str("step", "notify").Logger()

	welcomers, err := r.store.PendingWelcomers(ctx)
	if err != nil {
		return tally, fmt.Errorf("failed to list welcomers with pending visitors: %w", err)
	}
	if len(welcomers) == 0 {
		log.Info().Msg("No pending visitors to notify")
		return tally, nil
	}

	log.Info().Int("welcomers", len(welcomers)).Msg("Starting notification cycle")

	for _, w := range welcomers {
		if err := ctx.Err(); err != nil {
			return tally, err
		}
		wlog := log.With().Int64("welcomer_id", w.ID).Str("welcomer", w.Name).Logger()

		visitors, err := r.store.PendingVisitors(ctx, w.ID)
		if err != nil {
			wlog.Error().Err(err).Msg("Failed to load pending visitors")
			tally.Error++
			continue
		}
		if len(visitors) == 0 {
			// Resolved between the two reads.
			continue
		}

		if err := n.Notify(ctx, w, visitors); err != nil {
			wlog.Warn().Err(err).Int("visitors", len(visitors)).Msg("Send failed, visitors kept pending")
			tally.SendFailed++
			continue
		}

		ids := make([]int64, len(visitors))
		for i, v := range visitors {
			ids[i] = v.ID
		}

		// The send already happened; record it even if ctx was cancelled meanwhile.
		markCtx := context.WithoutCancel(ctx)
		var moved int64
		err = r.store.WithTx(markCtx, func(tx *storage.Tx) error {
			var err error
			moved, err = tx.MarkNotified(markCtx, ids)
			return err
		})
		if err != nil {
			wlog.Error().Err(err).Msg("Sent but failed to mark visitors notified")
			tally.Error++
			continue
		}

		wlog.Info().Int64("visitors", moved).Msg("Welcomer notified")
		tally.WelcomersNotified++
		tally.VisitorsNotified += int(moved)
	}

	log.Info().
		Int("welcomers_notified", tally.WelcomersNotified).
		Int("visitors_notified", tally.VisitorsNotified).
		Int("send_failed", tally.SendFailed).
		Int("error", tally.Error).
		Msg("Notification cycle finished")
	return tally, nil
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, welcomer models.Welcomer, visitors []models.Visitor) error

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, welcomer models.Welcomer, visitors []models.Visitor) error {
	return f(ctx, welcomer, visitors)
}

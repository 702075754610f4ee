// Package notify delivers pending visitor lists to welcomers.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
)

// LogNotifier only logs what would be sent. Every send succeeds, so a
// notification cycle run with it still moves records to Notified.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a dry-run notifier
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "DryRun").Logger()}
}

// Notify implements reconcile.Notifier
func (n *LogNotifier) Notify(_ context.Context, welcomer models.Welcomer, visitors []models.Visitor) error {
	names := make([]string, len(visitors))
	for i, v := range visitors {
		names[i] = v.Name
	}
	n.log.Info().
		Str("welcomer", welcomer.Name).
		Str("email", welcomer.Email).
		Strs("visitors", names).
		Msg("Would notify welcomer")
	return nil
}

// Package reconcile loads structured batches into the store and keeps
// visitor records moving through Pending, Notified and their resolved
// outcomes. Every operation runs synchronously, counts each input entry in
// exactly one outcome bucket and only fails as a whole on batch-level
// problems (unreadable or malformed input, store unavailable).
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"elo-welcoming/internal/models"
	"elo-welcoming/internal/storage"
)

// Batch-fatal errors
var (
	ErrInvalidBatch  = errors.New("invalid batch")
	ErrInvalidDate   = errors.New("invalid decision date")
	ErrMissingColumn = errors.New("missing required column")
)

// Notifier delivers a welcomer's pending visitor list over some channel
type Notifier interface {
	Notify(ctx context.Context, welcomer models.Welcomer, visitors []models.Visitor) error
}

// Reconciler runs the load, notification and reply steps against one store
type Reconciler struct {
	store *storage.Storage
	log   zerolog.Logger
}

// New creates a Reconciler over store
func New(store *storage.Storage, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		log:   log.With().Str("component", "Reconcile").Logger(),
	}
}

func newRunID() string {
	return uuid.NewString()
}

var decisionDateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2006-01-02",
}

// ParseDecisionDate accepts dd/mm/yyyy (the batch format), dd/mm/yy and
// yyyy-mm-dd and returns the stored yyyy-mm-dd form.
func ParseDecisionDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range decisionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

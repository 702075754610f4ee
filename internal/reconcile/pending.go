package reconcile

import (
	"context"
	"fmt"
	"strings"

	"elo-welcoming/internal/models"
)

// PendingLevel grades a welcomer's backlog
type PendingLevel string

// Backlog levels
const (
	LevelGreen  PendingLevel = "green"
	LevelYellow PendingLevel = "yellow"
	LevelRed    PendingLevel = "red"
)

// LevelFor grades a pending count: up to two is fine, three needs
// attention, more is overdue.
func LevelFor(pending int) PendingLevel {
	switch {
	case pending <= 2:
		return LevelGreen
	case pending == 3:
		return LevelYellow
	default:
		return LevelRed
	}
}

// PendingRow is one welcomer's line of the pending report
type PendingRow struct {
	models.PendingCount
	Level PendingLevel `json:"level"`
}

// PendingSummary is the pending backlog per welcomer for a decision date range
type PendingSummary struct {
	From  string       `json:"from,omitempty"`
	To    string       `json:"to,omitempty"`
	Rows  []PendingRow `json:"rows"`
	Total int          `json:"total"`
}

// PendingReport counts Pending visitors per welcomer. from and to accept the
// same date formats as intake batches; either may be empty.
func (r *Reconciler) PendingReport(ctx context.Context, from, to string) (PendingSummary, error) {
	var err error
	sum := PendingSummary{}
	if from != "" {
		if sum.From, err = ParseDecisionDate(from); err != nil {
			return sum, err
		}
	}
	if to != "" {
		if sum.To, err = ParseDecisionDate(to); err != nil {
			return sum, err
		}
	}

	counts, err := r.store.PendingByWelcomer(ctx, sum.From, sum.To)
	if err != nil {
		return sum, fmt.Errorf("failed to build pending report: %w", err)
	}
	for _, c := range counts {
		sum.Rows = append(sum.Rows, PendingRow{PendingCount: c, Level: LevelFor(c.Pending)})
		sum.Total += c.Pending
	}
	return sum, nil
}

func (s PendingSummary) String() string {
	var b strings.Builder
	b.WriteString("--- Pending visitors per welcomer")
	if s.From != "" || s.To != "" {
		fmt.Fprintf(&b, " (%s to %s)", orDash(s.From), orDash(s.To))
	}
	b.WriteString(" ---\n")
	if len(s.Rows) == 0 {
		b.WriteString("No pending visitors.\n")
	}
	for _, row := range s.Rows {
		name := row.WelcomerName
		if name == "" {
			name = "(no welcomer)"
		}
		fmt.Fprintf(&b, "%-30s %-24s %4d  %s\n", name, orDash(row.GroupLeader), row.Pending, row.Level)
	}
	fmt.Fprintf(&b, "%-30s %-24s %4d\n", "Total", "", s.Total)
	b.WriteString(strings.Repeat("-", 45))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package reconcile

import (
	"fmt"
	"strings"
)

// IntakeTally counts intake outcomes. Incomplete is informational: it is the
// part of Loaded whose plan asked the welcomer for missing optional data.
type IntakeTally struct {
	RunID            string `json:"run_id"`
	Loaded           int    `json:"loaded"`
	Discarded        int    `json:"discarded"`
	WelcomerNotFound int    `json:"welcomer_not_found"`
	Duplicate        int    `json:"duplicate"`
	Error            int    `json:"error"`
	Incomplete       int    `json:"incomplete"`
}

// Total is the number of entries accounted for
func (t IntakeTally) Total() int {
	return t.Loaded + t.Discarded + t.WelcomerNotFound + t.Duplicate + t.Error
}

func (t IntakeTally) String() string {
	return report("Intake load", t.RunID, [][2]any{
		{"Loaded", fmt.Sprintf("%d (%d missing optional data)", t.Loaded, t.Incomplete)},
		{"Discarded (missing essential data)", t.Discarded},
		{"Welcomer not found", t.WelcomerNotFound},
		{"Duplicates (already loaded)", t.Duplicate},
		{"Errors", t.Error},
	})
}

// WelcomerTally counts welcomer load outcomes
type WelcomerTally struct {
	RunID         string `json:"run_id"`
	Loaded        int    `json:"loaded"`
	AlreadyExists int    `json:"already_exists"`
	GroupNotFound int    `json:"group_not_found"`
	LineError     int    `json:"line_error"`
	Error         int    `json:"error"`
}

// Total is the number of rows accounted for
func (t WelcomerTally) Total() int {
	return t.Loaded + t.AlreadyExists + t.GroupNotFound + t.LineError + t.Error
}

func (t WelcomerTally) String() string {
	return report("Welcomer load", t.RunID, [][2]any{
		{"New welcomers", t.Loaded},
		{"Skipped (already exist)", t.AlreadyExists},
		{"Errors (group not found)", t.GroupNotFound},
		{"Errors (incomplete lines)", t.LineError},
		{"Errors (store)", t.Error},
	})
}

// GroupTally counts group load outcomes
type GroupTally struct {
	RunID         string `json:"run_id"`
	Loaded        int    `json:"loaded"`
	AlreadyExists int    `json:"already_exists"`
	LineError     int    `json:"line_error"`
	Error         int    `json:"error"`
}

// Total is the number of rows accounted for
func (t GroupTally) Total() int {
	return t.Loaded + t.AlreadyExists + t.LineError + t.Error
}

func (t GroupTally) String() string {
	return report("Group load", t.RunID, [][2]any{
		{"New groups", t.Loaded},
		{"Skipped (already exist)", t.AlreadyExists},
		{"Errors (blank leader)", t.LineError},
		{"Errors (store)", t.Error},
	})
}

// NotifyTally counts notification cycle outcomes per welcomer
type NotifyTally struct {
	RunID             string `json:"run_id"`
	WelcomersNotified int    `json:"welcomers_notified"`
	VisitorsNotified  int    `json:"visitors_notified"`
	SendFailed        int    `json:"send_failed"`
	Error             int    `json:"error"`
}

// Total is the number of welcomers accounted for
func (t NotifyTally) Total() int {
	return t.WelcomersNotified + t.SendFailed + t.Error
}

func (t NotifyTally) String() string {
	return report("Notification cycle", t.RunID, [][2]any{
		{"Welcomers notified", t.WelcomersNotified},
		{"Visitors moved to Notificado", t.VisitorsNotified},
		{"Send failures (kept Pendente)", t.SendFailed},
		{"Errors (store)", t.Error},
	})
}

// ReplyTally counts reply outcomes. Ambiguous entries matched more than one
// record; all of them were updated.
type ReplyTally struct {
	RunID        string `json:"run_id"`
	Updated      int    `json:"updated"`
	Ambiguous    int    `json:"ambiguous"`
	NotFound     int    `json:"not_found"`
	Malformed    int    `json:"malformed"`
	Error        int    `json:"error"`
	RowsAffected int64  `json:"rows_affected"`
}

// Total is the number of entries accounted for
func (t ReplyTally) Total() int {
	return t.Updated + t.Ambiguous + t.NotFound + t.Malformed + t.Error
}

func (t ReplyTally) String() string {
	return report("Reply load", t.RunID, [][2]any{
		{"Updated", t.Updated},
		{"Updated, matched several visitors", t.Ambiguous},
		{"Not found or already updated", t.NotFound},
		{"Malformed entries", t.Malformed},
		{"Errors (store)", t.Error},
		{"Rows changed", t.RowsAffected},
	})
}

func report(title, runID string, lines [][2]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s report", title)
	if runID != "" {
		fmt.Fprintf(&b, " (run %s)", runID)
	}
	b.WriteString(" ---\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "%-36s %v\n", l[0].(string)+":", l[1])
	}
	b.WriteString(strings.Repeat("-", 45))
	return b.String()
}

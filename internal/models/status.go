package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StatusKind is the lifecycle stage of a visitor record
type StatusKind int

const (
	StatusPending StatusKind = iota
	StatusNotified
	StatusResolved
)

// Wire values persisted in acolhimento.status_contato
const (
	PendingValue  = "Pendente"
	NotifiedValue = "Notificado"
)

// Outcomes a welcomer usually reports back. The vocabulary comes from the
// reply extraction step and is not closed, so any other text is still a
// valid resolved outcome.
const (
	OutcomeInterested  = "Atendeu e tem interesse"
	OutcomeHasChurch   = "Atendeu e já tem igreja"
	OutcomeNoAnswer    = "Não atendeu"
	OutcomeWrongNumber = "Número incorreto"
	OutcomeIgnored     = "Ignorado"
)

// KnownOutcomes lists the outcomes offered to the extraction step.
var KnownOutcomes = []string{
	OutcomeInterested,
	OutcomeHasChurch,
	OutcomeNoAnswer,
	OutcomeWrongNumber,
	OutcomeIgnored,
}

// ContactStatus represents the contact status of a visitor record:
// Pending, Notified, or Resolved carrying the free-text outcome.
type ContactStatus struct {
	Kind    StatusKind
	Outcome string
}

// Pending returns the initial status of every loaded visitor.
func Pending() ContactStatus { return ContactStatus{Kind: StatusPending} }

// Notified returns the status set once the welcomer was told about the visitor.
func Notified() ContactStatus { return ContactStatus{Kind: StatusNotified} }

// Resolved returns a status carrying the outcome reported by the welcomer.
func Resolved(outcome string) ContactStatus {
	return ContactStatus{Kind: StatusResolved, Outcome: strings.TrimSpace(outcome)}
}

// ParseContactStatus maps a stored value back to a ContactStatus.
// Empty input is treated as Pending, matching the column default.
func ParseContactStatus(s string) ContactStatus {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, PendingValue):
		return Pending()
	case strings.EqualFold(s, NotifiedValue):
		return Notified()
	default:
		return Resolved(s)
	}
}

// IsReserved reports whether s names a lifecycle stage rather than an outcome.
func IsReserved(s string) bool {
	return ParseContactStatus(s).Kind != StatusResolved
}

func (s ContactStatus) String() string {
	switch s.Kind {
	case StatusPending:
		return PendingValue
	case StatusNotified:
		return NotifiedValue
	default:
		return s.Outcome
	}
}

// Value implements driver.Valuer
func (s ContactStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements sql.Scanner
func (s *ContactStatus) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Pending()
	case string:
		*s = ParseContactStatus(v)
	case []byte:
		*s = ParseContactStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ContactStatus", src)
	}
	return nil
}

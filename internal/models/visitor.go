package models

import "time"

// Group represents a small ministry group (GP), keyed by its leader
type Group struct {
	ID         int64  `json:"id"`
	LeaderName string `json:"leader_name"`
}

// Welcomer represents a volunteer responsible for contacting visitors
type Welcomer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	GroupID *int64 `json:"group_id,omitempty"`
}

// Visitor is one visitor's welcome-and-follow-up entry for a decision date
type Visitor struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Age          *int          `json:"age,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	DecisionDate string        `json:"decision_date"`
	LoadedAt     time.Time     `json:"loaded_at"`
	Status       ContactStatus `json:"-"`
	Observation  string        `json:"observation,omitempty"`
	WelcomerID   *int64        `json:"welcomer_id,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	Event        string        `json:"event,omitempty"`
}

// NewVisitor holds the fields written when a visitor is loaded
type NewVisitor struct {
	Name         string
	Age          *int
	Phone        string
	DecisionDate string
	WelcomerID   int64
	Gender       string
	Event        string
}

// PendingCount is the number of pending visitors assigned to one welcomer
type PendingCount struct {
	WelcomerName string `json:"welcomer_name"`
	GroupLeader  string `json:"group_leader,omitempty"`
	Pending      int    `json:"pending"`
}

package models

import "strings"

// ActionPlan tells the intake step how to treat one extracted record
type ActionPlan int

const (
	PlanLoad ActionPlan = iota
	PlanLoadIncomplete
	PlanDiscard
)

// Plan tags emitted by the extraction step
const (
	PlanDiscardTag    = "Descartar registro por falta de dados essenciais"
	PlanIncompleteTag = "Carregar registro e solicitar dados faltantes ao acolhedor"
	PlanLoadTag       = "Carregar registro normalmente"
)

func (p ActionPlan) String() string {
	switch p {
	case PlanDiscard:
		return PlanDiscardTag
	case PlanLoadIncomplete:
		return PlanIncompleteTag
	default:
		return PlanLoadTag
	}
}

// IntakeBatch is the structured visitor list for one decision date
type IntakeBatch struct {
	Date  string        `json:"data"`
	Event string        `json:"evento,omitempty"`
	List  []IntakeEntry `json:"lista"`
}

// IntakeEntry is one visitor as extracted from the free-text list
type IntakeEntry struct {
	Name     string `json:"nome"`
	Age      *int   `json:"idade"`
	Phone    string `json:"celular,omitempty"`
	Welcomer string `json:"acolhedor"`
	Plan     string `json:"plano_de_acao"`
	Gender   string `json:"HouM,omitempty"`
	Event    string `json:"evento,omitempty"`
}

// ActionPlan classifies the upstream tag. An empty or unknown tag is
// derived from the fields with the same rules the extraction step uses.
func (e IntakeEntry) ActionPlan() ActionPlan {
	tag := strings.ToLower(e.Plan)
	switch {
	case strings.Contains(tag, "descartar"):
		return PlanDiscard
	case strings.Contains(tag, "solicitar") || strings.Contains(tag, "faltantes"):
		return PlanLoadIncomplete
	case strings.Contains(tag, "normalmente"):
		return PlanLoad
	}
	return e.DerivePlan()
}

// DerivePlan applies the intake rules: missing name or welcomer discards the
// record, missing age or phone loads it and asks the welcomer for the rest.
func (e IntakeEntry) DerivePlan() ActionPlan {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Welcomer) == "" {
		return PlanDiscard
	}
	if e.Age == nil || strings.TrimSpace(e.Phone) == "" {
		return PlanLoadIncomplete
	}
	return PlanLoad
}

// ReplyEntry is one visitor outcome extracted from a welcomer's reply
type ReplyEntry struct {
	VisitorName string  `json:"nome_visitante"`
	Status      string  `json:"status_resposta"`
	Observation *string `json:"observacao,omitempty"`
}

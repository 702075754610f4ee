package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elo-welcoming/internal/models"
)

type fakeModel struct {
	out        string
	err        error
	prompt     string
	jsonOutput bool
}

func (m *fakeModel) Generate(_ context.Context, prompt string, jsonOutput bool) (string, error) {
	m.prompt, m.jsonOutput = prompt, jsonOutput
	return m.out, m.err
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[]\n```\n", `[]`},
		{"csv fence", "```csv\n\"a\",\"b\"\n```", `"a","b"`},
		{"whitespace", "  \n[]\n  ", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestIntakeFromText(t *testing.T) {
	m := &fakeModel{out: "```json\n" + `[
		{"nome": "Ana Silva", "idade": 30, "celular": "11999990000", "acolhedor": "Maria", "plano_de_acao": "Carregar registro normalmente", "HouM": "M"},
		{"nome": "", "idade": null, "celular": "", "acolhedor": "Maria", "plano_de_acao": "Descartar registro por falta de dados essenciais"}
	]` + "\n```"}
	e := New(m, zerolog.Nop())

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	batch, err := e.IntakeFromText(context.Background(), "Ana Silva 30 anos 11999990000 - Maria\n??? - Maria", date, "Culto de domingo")
	require.NoError(t, err)

	assert.True(t, m.jsonOutput)
	assert.Contains(t, m.prompt, "Ana Silva 30 anos")
	assert.Contains(t, m.prompt, models.PlanDiscardTag)

	assert.Equal(t, "10/03/2024", batch.Date)
	assert.Equal(t, "Culto de domingo", batch.Event)
	require.Len(t, batch.List, 2)
	assert.Equal(t, models.PlanLoad, batch.List[0].ActionPlan())
	assert.Equal(t, models.PlanDiscard, batch.List[1].ActionPlan())
	assert.Nil(t, batch.List[1].Age)
}

func TestIntakeFromText_Errors(t *testing.T) {
	e := New(&fakeModel{out: "Desculpe, não consegui."}, zerolog.Nop())
	_, err := e.IntakeFromText(context.Background(), "x", time.Now(), "")
	require.ErrorIs(t, err, ErrUnparseable)

	e = New(&fakeModel{err: errors.New("quota exceeded")}, zerolog.Nop())
	_, err = e.IntakeFromText(context.Background(), "x", time.Now(), "")
	require.ErrorContains(t, err, "quota exceeded")
}

func TestParseIntakeEntries_BatchObject(t *testing.T) {
	entries, err := ParseIntakeEntries(`{"data": "10/03/2024", "lista": [{"nome": "Ana", "acolhedor": "Maria"}]}`)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ana", entries[0].Name)
}

func TestRepliesFromText(t *testing.T) {
	m := &fakeModel{out: `[{"nome_visitante": "Ana", "status_resposta": "Não atendeu", "observacao": null}]`}
	e := New(m, zerolog.Nop())

	entries, err := e.RepliesFromText(context.Background(), "Liguei pra Ana e ninguém atendeu")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OutcomeNoAnswer, entries[0].Status)
	for _, s := range models.KnownOutcomes {
		assert.Contains(t, m.prompt, s)
	}
}

func TestParseReplyEntries_SingleObject(t *testing.T) {
	entries, err := ParseReplyEntries(`{"nome_visitante": "Bruno", "status_resposta": "Ignorado"}`)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = ParseReplyEntries(`{"foo": 1}`)
	require.ErrorIs(t, err, ErrUnparseable)
}

func TestWelcomersCSV(t *testing.T) {
	m := &fakeModel{out: "```csv\n" +
		`"Maria Souza","Maria","1990-01-01","maria@example.com","(11) 98888-7777","Líder João"` + "\n" +
		`"Pedro Alves","","","pedro@example.com","","Líder João"` + "\n```"}
	e := New(m, zerolog.Nop())

	out, err := e.WelcomersCSV(context.Background(), "raw welcomers", "raw groups")
	require.NoError(t, err)
	assert.False(t, m.jsonOutput)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nome", "Apelido", "Nascimento", "Email", "Celular", "GP"}, rows[0])
	assert.Equal(t, "pedro@example.com", rows[2][3])
}

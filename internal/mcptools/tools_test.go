package mcptools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elo-welcoming/internal/notify"
	"elo-welcoming/internal/reconcile"
	"elo-welcoming/internal/storage"
)

func newTestReconciler(t *testing.T) *reconcile.Reconciler {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "igreja_dados.db"), storage.DriverPureGo)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rec := reconcile.New(store, zerolog.Nop())
	ctx := context.Background()
	_, err = rec.LoadGroups(ctx, strings.NewReader("LÍDER_name\nlider_joao\n"))
	require.NoError(t, err)
	return rec
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestDefinitions(t *testing.T) {
	rec := newTestReconciler(t)

	intake := NewIntakeTool(rec).Definition()
	assert.Equal(t, "load_intake", intake.Name)
	assert.Contains(t, intake.InputSchema.Required, "batch")

	replies := NewRepliesTool(rec).Definition()
	assert.Contains(t, replies.InputSchema.Required, "replies")

	pending := NewPendingReportTool(rec).Definition()
	assert.Empty(t, pending.InputSchema.Required)
	assert.Contains(t, pending.InputSchema.Properties, "from")
}

func TestWorkflowThroughTools(t *testing.T) {
	rec := newTestReconciler(t)
	ctx := context.Background()

	res, err := NewLoadWelcomersTool(rec).Handle(ctx, makeReq(map[string]interface{}{
		"csv": "Nome,Apelido,Nascimento,Email,Celular,GP\nMaria,Maria,,maria@example.com,,lider_joao\n",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	res, err = NewIntakeTool(rec).Handle(ctx, makeReq(map[string]interface{}{
		"batch": `{"data": "10/03/2024", "lista": [{"nome": "Ana Silva", "idade": 30, "celular": "11999990000", "acolhedor": "Maria", "plano_de_acao": "Carregar registro normalmente"}]}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), `"loaded": 1`)

	res, err = NewPendingReportTool(rec).Handle(ctx, makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "maria")

	res, err = NewNotifyTool(rec, notify.NewLogNotifier(zerolog.Nop())).Handle(ctx, makeReq(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), `"visitors_notified": 1`)

	res, err = NewRepliesTool(rec).Handle(ctx, makeReq(map[string]interface{}{
		"replies": `[{"nome_visitante": "Ana", "status_resposta": "Não atendeu"}]`,
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), `"updated": 1`)
}

func TestBadPayloadIsToolError(t *testing.T) {
	rec := newTestReconciler(t)

	res, err := NewIntakeTool(rec).Handle(context.Background(), makeReq(map[string]interface{}{"batch": `{"lista": []}`}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = NewRepliesTool(rec).Handle(context.Background(), makeReq(map[string]interface{}{"replies": `{}`}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewServer(t *testing.T) {
	s := NewServer(newTestReconciler(t), notify.NewLogNotifier(zerolog.Nop()))
	require.NotNil(t, s)
}

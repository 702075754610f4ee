// Package mcptools exposes the welcoming workflow steps as MCP tools.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"elo-welcoming/internal/reconcile"
)

// result renders a tally as its report followed by the JSON form
func result(report fmt.Stringer) *mcp.CallToolResult {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(report.String())
	}
	return mcp.NewToolResultText(report.String() + "\n\n```json\n" + string(data) + "\n```")
}

// IntakeTool handles the load_intake MCP tool.
type IntakeTool struct {
	rec *reconcile.Reconciler
}

// NewIntakeTool creates an IntakeTool
func NewIntakeTool(rec *reconcile.Reconciler) *IntakeTool {
	return &IntakeTool{rec: rec}
}

// Definition returns the MCP tool definition for load_intake.
func (t *IntakeTool) Definition() mcp.Tool {
	return mcp.NewTool("load_intake",
		mcp.WithDescription("Load a structured intake batch of new visitors. Every loaded visitor starts as Pendente."),
		mcp.WithString("batch",
			mcp.Required(),
			mcp.Description(`Intake batch JSON: {"data": "dd/mm/yyyy", "evento": "...", "lista": [{"nome", "idade", "celular", "acolhedor", "plano_de_acao"}]}`),
		),
	)
}

// Handle processes the load_intake tool call.
func (t *IntakeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batch, err := reconcile.DecodeIntakeBatch(strings.NewReader(req.GetString("batch", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tally, err := t.rec.Intake(ctx, batch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("intake failed: %v", err)), nil
	}
	return result(tally), nil
}

// NotifyTool handles the notify_welcomers MCP tool.
type NotifyTool struct {
	rec      *reconcile.Reconciler
	notifier reconcile.Notifier
}

// NewNotifyTool creates a NotifyTool sending through notifier
func NewNotifyTool(rec *reconcile.Reconciler, notifier reconcile.Notifier) *NotifyTool {
	return &NotifyTool{rec: rec, notifier: notifier}
}

// Definition returns the MCP tool definition for notify_welcomers.
func (t *NotifyTool) Definition() mcp.Tool {
	return mcp.NewTool("notify_welcomers",
		mcp.WithDescription("Send every welcomer their pending visitors and mark the sent visitors as Notificado."),
	)
}

// Handle processes the notify_welcomers tool call.
func (t *NotifyTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tally, err := t.rec.Notify(ctx, t.notifier)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("notification cycle failed: %v", err)), nil
	}
	return result(tally), nil
}

// RepliesTool handles the load_replies MCP tool.
type RepliesTool struct {
	rec *reconcile.Reconciler
}

// NewRepliesTool creates a RepliesTool
func NewRepliesTool(rec *reconcile.Reconciler) *RepliesTool {
	return &RepliesTool{rec: rec}
}

// Definition returns the MCP tool definition for load_replies.
func (t *RepliesTool) Definition() mcp.Tool {
	return mcp.NewTool("load_replies",
		mcp.WithDescription("Apply welcomer replies to Notificado visitors. Names match by substring."),
		mcp.WithString("replies",
			mcp.Required(),
			mcp.Description(`Reply batch JSON array: [{"nome_visitante": "...", "status_resposta": "...", "observacao": "..."}]`),
		),
	)
}

// Handle processes the load_replies tool call.
func (t *RepliesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := reconcile.DecodeReplyBatch(strings.NewReader(req.GetString("replies", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tally, err := t.rec.Replies(ctx, entries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reply load failed: %v", err)), nil
	}
	return result(tally), nil
}

// LoadWelcomersTool handles the load_welcomers MCP tool.
type LoadWelcomersTool struct {
	rec *reconcile.Reconciler
}

// NewLoadWelcomersTool creates a LoadWelcomersTool
func NewLoadWelcomersTool(rec *reconcile.Reconciler) *LoadWelcomersTool {
	return &LoadWelcomersTool{rec: rec}
}

// Definition returns the MCP tool definition for load_welcomers.
func (t *LoadWelcomersTool) Definition() mcp.Tool {
	return mcp.NewTool("load_welcomers",
		mcp.WithDescription("Load welcomers from a standardized CSV. Groups must already exist."),
		mcp.WithString("csv",
			mcp.Required(),
			mcp.Description("CSV text with header Nome,Apelido,Nascimento,Email,Celular,GP"),
		),
	)
}

// Handle processes the load_welcomers tool call.
func (t *LoadWelcomersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tally, err := t.rec.LoadWelcomers(ctx, strings.NewReader(req.GetString("csv", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("welcomer load failed: %v", err)), nil
	}
	return result(tally), nil
}

// PendingReportTool handles the pending_report MCP tool.
type PendingReportTool struct {
	rec *reconcile.Reconciler
}

// NewPendingReportTool creates a PendingReportTool
func NewPendingReportTool(rec *reconcile.Reconciler) *PendingReportTool {
	return &PendingReportTool{rec: rec}
}

// Definition returns the MCP tool definition for pending_report.
func (t *PendingReportTool) Definition() mcp.Tool {
	return mcp.NewTool("pending_report",
		mcp.WithDescription("Count Pendente visitors per welcomer, graded green (up to 2), yellow (3) or red (more)."),
		mcp.WithString("from", mcp.Description("First decision date, dd/mm/yyyy")),
		mcp.WithString("to", mcp.Description("Last decision date, dd/mm/yyyy")),
	)
}

// Handle processes the pending_report tool call.
func (t *PendingReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := t.rec.PendingReport(ctx, req.GetString("from", ""), req.GetString("to", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pending report failed: %v", err)), nil
	}
	return result(sum), nil
}

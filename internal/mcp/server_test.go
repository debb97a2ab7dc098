package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/pocketfin/pocketfin/internal/engine"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/store"
)

type scriptedProvider struct {
	reply string
}

func (p *scriptedProvider) Complete(context.Context, []llm.Message, llm.CompletionOpts) (string, error) {
	return p.reply, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func setupTestServer(t *testing.T, reply string) (*server.MCPServer, store.Store) {
	t.Helper()
	st, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	eng := engine.New(st, &scriptedProvider{reply: reply}, slog.New(slog.DiscardHandler), engine.Options{})
	return NewServer(ServerConfig{Engine: eng, Store: st}), st
}

// callTool invokes an MCP tool through the server's JSON-RPC entry point.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestNewServer(t *testing.T) {
	srv, _ := setupTestServer(t, "Hello!")
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestChatToolRecordsExpense(t *testing.T) {
	srv, st := setupTestServer(t, "Recorded your $21 haircut under Personal Care.")

	result := callTool(t, srv, "pocketfin_chat", map[string]any{
		"user_id":     "u1",
		"message":     "add expense 21 for a haircut",
		"entitlement": "free",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var res engine.TurnResult
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.CreatedRecordType != engine.RecordTransaction || res.CreatedRecordID == "" {
		t.Fatalf("expected a transaction record, got %+v", res)
	}

	rows, err := st.ListTransactions(context.Background(), "u1", store.ListOpts{Limit: 10})
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected 1 transaction, got %d (%v)", len(rows), err)
	}
	if !rows[0].Amount.Equal(decimal.NewFromInt(21)) {
		t.Fatalf("wrong amount: %s", rows[0].Amount)
	}
}

func TestChatToolRequiresUserID(t *testing.T) {
	srv, _ := setupTestServer(t, "ok")
	result := callTool(t, srv, "pocketfin_chat", map[string]any{"message": "hi"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestTransactionsTool(t *testing.T) {
	srv, st := setupTestServer(t, "ok")

	err := st.AddTransaction(context.Background(), &store.Transaction{
		ID: "t1", OwnerID: "u1", Kind: store.KindExpense,
		Amount: decimal.NewFromInt(40), Category: "Groceries",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	result := callTool(t, srv, "pocketfin_transactions", map[string]any{"user_id": "u1"})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}
	if !strings.Contains(getTextContent(t, result), "Groceries") {
		t.Fatalf("missing transaction in output: %s", getTextContent(t, result))
	}

	// Other owners' rows never leak.
	other := callTool(t, srv, "pocketfin_transactions", map[string]any{"user_id": "u2"})
	if strings.Contains(getTextContent(t, other), "Groceries") {
		t.Fatal("cross-owner leak in transactions tool")
	}
}

func TestTargetsTool(t *testing.T) {
	srv, st := setupTestServer(t, "ok")

	err := st.AddTarget(context.Background(), &store.Target{
		ID: "g1", OwnerID: "u1", Title: "New Phone",
		TargetAmount: decimal.NewFromInt(900), TargetType: store.TargetSavings,
	})
	if err != nil {
		t.Fatalf("AddTarget: %v", err)
	}

	result := callTool(t, srv, "pocketfin_targets", map[string]any{"user_id": "u1"})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}
	if !strings.Contains(getTextContent(t, result), "New Phone") {
		t.Fatalf("missing target in output: %s", getTextContent(t, result))
	}
}

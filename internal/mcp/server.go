// Package mcp provides a Model Context Protocol server for PocketFin.
//
// It exposes the chat pipeline plus read access to recorded transactions and
// targets as MCP tools over stdio, so desktop assistants can drive the same
// engine the HTTP API does.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pocketfin/pocketfin/internal/engine"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Engine  *engine.Engine
	Store   store.Store
	Version string
}

// dbMu serializes tool calls that touch the database. The mcp-go library
// dispatches handlers concurrently via goroutines, and SQLite supports only
// one writer at a time; the mutex keeps a chat turn's write visible to the
// list tools that follow it.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all PocketFin tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"PocketFin",
		ver,
		server.WithToolCapabilities(false),
	)

	registerChatTool(s, cfg.Engine)
	registerTransactionsTool(s, cfg.Store)
	registerTargetsTool(s, cfg.Store)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerChatTool(s *server.MCPServer, eng *engine.Engine) {
	tool := mcp.NewTool("pocketfin_chat",
		mcp.WithDescription("Send a message to the PocketFin finance assistant. Records expenses, income, savings targets and spending limits from the conversation and returns the assistant's reply."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owner identity for records and entitlement checks"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message for this turn"),
		),
		mcp.WithString("history",
			mcp.Description(`Prior turns as a JSON array of {"role","content"} objects, oldest first`),
		),
		mcp.WithString("entitlement",
			mcp.Description("Client-asserted plan hint: free or premium"),
			mcp.Enum("free", "premium"),
		),
		mcp.WithString("currency",
			mcp.Description("Profile currency code for new targets (default USD)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}
		message, err := req.RequireString("message")
		if err != nil || strings.TrimSpace(message) == "" {
			return mcp.NewToolResultError("message is required"), nil
		}

		var messages []llm.Message
		if raw, err := req.RequireString("history"); err == nil && strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &messages); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid history: %v", err)), nil
			}
		}
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

		turnReq := engine.TurnRequest{Messages: messages, UserID: userID}
		if hint, err := req.RequireString("entitlement"); err == nil {
			turnReq.EntitlementHint = hint
		}
		if currency, err := req.RequireString("currency"); err == nil {
			turnReq.Currency = currency
		}

		res, err := eng.HandleTurn(ctx, turnReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("chat error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(res, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerTransactionsTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("pocketfin_transactions",
		mcp.WithDescription("List a user's recorded transactions, newest first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owner identity"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows (default: 20, max: 100)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		limit := 20
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
			if limit > 100 {
				limit = 100
			}
		}

		rows, err := st.ListTransactions(ctx, userID, store.ListOpts{Limit: limit})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(rows, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerTargetsTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("pocketfin_targets",
		mcp.WithDescription("List a user's active savings targets and spending limits."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Owner identity"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		rows, err := st.ListTargets(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(rows, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

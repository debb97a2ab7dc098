// Package api exposes the chat pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pocketfin/pocketfin/internal/engine"
	"github.com/pocketfin/pocketfin/internal/llm"
)

// TurnHandler is the part of the engine the HTTP layer needs.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req engine.TurnRequest) (*engine.TurnResult, error)
}

// Server routes HTTP traffic to the turn pipeline.
type Server struct {
	engine TurnHandler
	log    *slog.Logger
}

func NewServer(eng TurnHandler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: eng, log: log}
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	h = Logger(s.log)(h)
	h = Recovery(s.log)(h)
	h = RequestID(h)
	return h
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	UserID         string        `json:"user_id"`
	ConversationID string        `json:"conversation_id"`
	Currency       string        `json:"currency"`
	Entitlement    string        `json:"entitlement"`
	Messages       []chatMessage `json:"messages"`
}

type chatResponse struct {
	Reply             string `json:"reply"`
	RequiresUpgrade   bool   `json:"requires_upgrade"`
	Intent            string `json:"intent"`
	CreatedRecordID   string `json:"created_record_id,omitempty"`
	CreatedRecordType string `json:"created_record_type,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Messages) == 0 {
		WriteError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		switch role {
		case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		default:
			WriteError(w, http.StatusBadRequest, "unknown message role: "+m.Role)
			return
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	res, err := s.engine.HandleTurn(r.Context(), engine.TurnRequest{
		Messages:        messages,
		UserID:          req.UserID,
		ConversationID:  req.ConversationID,
		Currency:        req.Currency,
		EntitlementHint: req.Entitlement,
	})
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			WriteError(w, http.StatusGatewayTimeout, "The assistant took too long to respond. Please retry.")
			return
		}
		s.log.Error("turn failed", "user", req.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to handle the message")
		return
	}

	WriteJSON(w, http.StatusOK, chatResponse{
		Reply:             res.ReplyText,
		RequiresUpgrade:   res.RequiresUpgrade,
		Intent:            res.Intent,
		CreatedRecordID:   res.CreatedRecordID,
		CreatedRecordType: res.CreatedRecordType,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

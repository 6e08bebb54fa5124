package model

import (
	"context"
	"time"
)

// ResponseType tags which path produced a chat turn.
type ResponseType string

const (
	ResponseTypeRAG   ResponseType = "rag"
	ResponseTypeAgent ResponseType = "agent"
	ResponseTypeTool  ResponseType = "tool"
)

// ChatTurn is one immutable exchange: the user's input and the bot's reply.
// Turns are append-only; ordering is by Timestamp ascending.
type ChatTurn struct {
	UserID      string       `json:"user_id"`
	UserInput   string       `json:"user_input"`
	BotResponse string       `json:"bot_response"`
	Type        ResponseType `json:"type"`
	ToolUsed    string       `json:"tool_used,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// ChatLog is the append-only store of prior turns per user.
type ChatLog interface {
	// Append persists a single turn. Turns are never mutated or deleted.
	Append(ctx context.Context, turn ChatTurn) error

	// Recent returns up to limit turns for the user, oldest first.
	Recent(ctx context.Context, userID string, limit int) ([]ChatTurn, error)
}

// QueryInput is the inbound (user, message) pair entering the orchestrator.
type QueryInput struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

// Answer is the orchestrator's final result for one request.
type Answer struct {
	Text     string       `json:"text"`
	Type     ResponseType `json:"type"`
	ToolUsed string       `json:"tool_used,omitempty"`
}

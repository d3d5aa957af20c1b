package store

import (
	"ai-salesagent-be/pkg/ragindex"
	"ai-salesagent-be/pkg/topic"
)

// History roles. Append order per answered question is fixed: user, then ai.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// HistoryEntry is one turn of the conversation.
type HistoryEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ComparisonState holds the two topics of comparison mode.
type ComparisonState struct {
	A topic.Topic `json:"A"`
	B topic.Topic `json:"B"`
}

// Session is the single mutable entity of a conversation: current topic,
// cached document text, the in-memory chunk index, the append-only history
// and the optional comparison state. Mutated only through the orchestrator's
// entry points, one call completing before the next.
type Session struct {
	ID         string
	Topic      *topic.Topic
	DocText    string
	RagEnabled bool
	Index      *ragindex.Index
	History    []HistoryEntry
	Compare    *ComparisonState
}

// NewSession returns a fresh session with RAG enabled by default.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		RagEnabled: true,
		History:    []HistoryEntry{},
	}
}

// Reset clears everything back to the just-created state.
func (s *Session) Reset() {
	s.Topic = nil
	s.DocText = ""
	s.Index = nil
	s.History = s.History[:0]
	s.Compare = nil
}

package dto

import (
	"ai-salesagent-be/pkg/answer"
	"ai-salesagent-be/pkg/store"
	"ai-salesagent-be/pkg/topic"
)

// InitTopicResponse keeps the flat primary/meta shape the sidebar renders,
// with the full orchestrator result alongside.
type InitTopicResponse struct {
	Primary     string      `json:"primary"`
	Meta        topic.Meta  `json:"meta"`
	RagEnabled  bool        `json:"rag_enabled"`
	IndexStatus string      `json:"index_status"`
	Topic       interface{} `json:"topic"`
}

type AskResponse struct {
	Answer  string         `json:"answer"`
	Sources []string       `json:"sources"`
	Raw     *answer.Result `json:"raw"`
}

type HistoryResponse []store.HistoryEntry

type ClearResponse struct {
	Ok bool `json:"ok"`
}

type RagToggleResponse struct {
	RagEnabled bool `json:"rag_enabled"`
}

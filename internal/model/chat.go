package model

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn 是客户端回放的一轮历史对话。
type ConversationTurn struct {
	Role    string   `json:"role" validate:"required,oneof=user assistant"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question string             `json:"question" validate:"required"`
	History  []ConversationTurn `json:"history" validate:"omitempty,dive"`
}

// ChatResponse is always returned to the web layer, degraded or not.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// DocumentView is the body of GET /api/documents/:id.
type DocumentView struct {
	ID string `json:"id"`
	Source
	Language string   `json:"language,omitempty"`
	Subject  []string `json:"subject,omitempty"`
	Spatial  []string `json:"spatial,omitempty"`
	FullText string   `json:"full_text"`
}

package domain

import "fmt"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ConversationMessage is one turn of a conversation. Order is turn order.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AssistantRequest is the body accepted by the assistant relay.
type AssistantRequest struct {
	Messages     []ConversationMessage `json:"messages"`
	SystemPrompt string                `json:"systemPrompt,omitempty"`
}

// Validate checks the request shape. Message content is not constrained.
func (r *AssistantRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: messages is required", ErrInvalidRequest)
	}
	for i, m := range r.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: messages[%d].role %q is not one of user, assistant, system", ErrInvalidRequest, i, m.Role)
		}
	}
	return nil
}

// LatestUserMessage returns the content of the last user turn, or "".
func LatestUserMessage(messages []ConversationMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

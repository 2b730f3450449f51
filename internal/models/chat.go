package models

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn in the assistant conversation.
type ChatMessage struct {
	Role ChatRole
	Text string
}

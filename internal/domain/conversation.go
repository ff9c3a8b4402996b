package domain

// Message is one entry in a conversation timeline.
// Messages are immutable once appended.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	Seq            int64 // position in the conversation, assigned by the store
	Role           Role
	Content        string
	CreatedAt      Timestamp

	// ToolCall is set on assistant messages that request a tool invocation.
	ToolCall *ToolCall
	// ToolCallID and ToolName are set on tool messages and point back to
	// the invocation they answer.
	ToolCallID string
	ToolName   string
}

// Conversation is the chat thread between one user and the assistant.
type Conversation struct {
	ID        ConversationID
	UserID    UserID
	Title     string
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// ToolCall is a single invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON object
}

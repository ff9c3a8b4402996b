package domain

import "context"

// ModelClient is the boundary to the hosted language model.
type ModelClient interface {
	Complete(ctx context.Context, req ModelRequest) (*ModelResponse, error)
}

// ModelRequest is one round sent to the model.
type ModelRequest struct {
	System     string
	Messages   []*Message
	Tools      []ToolSpec
	ToolChoice ToolChoice
}

// ModelResponse carries either a text reply, tool invocations, or both.
type ModelResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// ConversationStore defines conversation persistence.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	UpdateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id ConversationID) (*Conversation, error)
	ListConversationsByUser(ctx context.Context, userID UserID, limit int) ([]*Conversation, error)
}

// MessageStore defines message persistence. AppendMessages writes all of
// msgs or none of them and assigns consecutive Seq values.
// GetMessagesByConversation returns messages in Seq order; limit <= 0 means all.
type MessageStore interface {
	AppendMessages(ctx context.Context, msgs ...*Message) error
	GetMessagesByConversation(ctx context.Context, conversationID ConversationID, limit int) ([]*Message, error)
}

// TaskStore defines task persistence. Every lookup is scoped to a user;
// a task owned by somebody else is reported as ErrNotFound.
// CreateTask assigns the task ID.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, userID UserID, id TaskID) (*Task, error)
	ListTasks(ctx context.Context, userID UserID, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, userID UserID, id TaskID) error
}

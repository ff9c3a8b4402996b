package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// Store implements the conversation, message and task ports on Firestore.
//
// Layout:
//
//	conversations/{id}                 conversation + message_count
//	conversations/{id}/messages/{id}   messages, ordered by seq
//	tasks/{id}                         tasks, id is the decimal task id
//	counters/tasks                     last issued task id
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (TODO_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) messagesCol(conversationID domain.ConversationID) *firestore.CollectionRef {
	return s.conversationDoc(conversationID).Collection("messages")
}

func (s *Store) tasksCol() *firestore.CollectionRef {
	return s.client.Collection("tasks")
}

func (s *Store) taskDoc(id domain.TaskID) *firestore.DocumentRef {
	return s.tasksCol().Doc(strconv.FormatInt(int64(id), 10))
}

func (s *Store) taskCounter() *firestore.DocumentRef {
	return s.client.Collection("counters").Doc("tasks")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type conversationDoc struct {
	UserID       string    `firestore:"user_id"`
	Title        string    `firestore:"title"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
	MessageCount int64     `firestore:"message_count"`
}

type toolCallDoc struct {
	ID        string `firestore:"id"`
	Name      string `firestore:"name"`
	Arguments string `firestore:"arguments"`
}

type messageDoc struct {
	ConversationID string       `firestore:"conversation_id"`
	Seq            int64        `firestore:"seq"`
	Role           string       `firestore:"role"`
	Content        string       `firestore:"content"`
	ToolCall       *toolCallDoc `firestore:"tool_call"`
	ToolCallID     string       `firestore:"tool_call_id"`
	ToolName       string       `firestore:"tool_name"`
	CreatedAt      time.Time    `firestore:"created_at"`
}

type taskDoc struct {
	ID          int64     `firestore:"id"`
	UserID      string    `firestore:"user_id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Completed   bool      `firestore:"completed"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

type counterDoc struct {
	Last int64 `firestore:"last"`
}

func toConversation(id string, doc conversationDoc) *domain.Conversation {
	return &domain.Conversation{
		ID:        domain.ConversationID(id),
		UserID:    domain.UserID(doc.UserID),
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func fromMessage(msg *domain.Message) messageDoc {
	doc := messageDoc{
		ConversationID: string(msg.ConversationID),
		Seq:            msg.Seq,
		Role:           string(msg.Role),
		Content:        msg.Content,
		ToolCallID:     msg.ToolCallID,
		ToolName:       msg.ToolName,
		CreatedAt:      msg.CreatedAt,
	}
	if msg.ToolCall != nil {
		doc.ToolCall = &toolCallDoc{
			ID:        msg.ToolCall.ID,
			Name:      msg.ToolCall.Name,
			Arguments: msg.ToolCall.Arguments,
		}
	}
	return doc
}

func toMessage(id string, doc messageDoc) *domain.Message {
	msg := &domain.Message{
		ID:             domain.MessageID(id),
		ConversationID: domain.ConversationID(doc.ConversationID),
		Seq:            doc.Seq,
		Role:           domain.Role(doc.Role),
		Content:        doc.Content,
		ToolCallID:     doc.ToolCallID,
		ToolName:       doc.ToolName,
		CreatedAt:      doc.CreatedAt,
	}
	if doc.ToolCall != nil {
		msg.ToolCall = &domain.ToolCall{
			ID:        doc.ToolCall.ID,
			Name:      doc.ToolCall.Name,
			Arguments: doc.ToolCall.Arguments,
		}
	}
	return msg
}

func fromTask(task *domain.Task) taskDoc {
	return taskDoc{
		ID:          int64(task.ID),
		UserID:      string(task.UserID),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func toTask(doc taskDoc) *domain.Task {
	return &domain.Task{
		ID:          domain.TaskID(doc.ID),
		UserID:      domain.UserID(doc.UserID),
		Title:       doc.Title,
		Description: doc.Description,
		Completed:   doc.Completed,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

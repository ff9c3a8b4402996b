package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.ConversationID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.ConversationID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessages(_ context.Context, msgs ...*domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range msgs {
		msg.Seq = int64(len(s.messages[msg.ConversationID]) + 1)
		m := *msg
		s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], &m)
	}
	return nil
}

// GetMessagesByConversation returns the last `limit` messages in order.
// If limit <= 0, returns all.
func (s *MessageStore) GetMessagesByConversation(_ context.Context, conversationID domain.ConversationID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

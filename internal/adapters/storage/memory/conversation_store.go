package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
	}
}

func (s *ConversationStore) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; exists {
		return errors.New("conversation already exists")
	}

	c := *conv
	s.conversations[conv.ID] = &c
	return nil
}

func (s *ConversationStore) UpdateConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; !exists {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
	}

	c := *conv
	s.conversations[conv.ID] = &c
	return nil
}

func (s *ConversationStore) GetConversation(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	c := *conv
	return &c, nil
}

// ListConversationsByUser returns the user's conversations, most recently
// updated first.
func (s *ConversationStore) ListConversationsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			c := *conv
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

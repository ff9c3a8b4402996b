package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	doc := conversationDoc{
		UserID:    string(conv.UserID),
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	if _, err := s.conversationDoc(conv.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateConversation: %w", err)
	}
	return nil
}

// UpdateConversation leaves message_count alone; only AppendMessages moves it.
func (s *Store) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.conversationDoc(conv.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: conv.Title},
		{Path: "updated_at", Value: conv.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore UpdateConversation: %w", err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	snap, err := s.conversationDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}
	return toConversation(snap.Ref.ID, doc), nil
}

func (s *Store) ListConversationsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	q := s.conversationsCol().Where("user_id", "==", string(userID)).OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.Conversation{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListConversationsByUser: %w", err)
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode conversationDoc: %w", err)
		}
		out = append(out, toConversation(snap.Ref.ID, doc))
	}
	return out, nil
}

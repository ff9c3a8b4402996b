package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

// AppendMessages bumps each conversation's message_count and writes msgs in
// one transaction, so seq stays gapless under concurrent appends and a batch
// is never half written.
func (s *Store) AppendMessages(ctx context.Context, msgs ...*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	seqs := make([]int64, len(msgs))
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Firestore wants every read before the first write.
		counts := map[domain.ConversationID]int64{}
		for _, msg := range msgs {
			if _, ok := counts[msg.ConversationID]; ok {
				continue
			}
			snap, err := tx.Get(s.conversationDoc(msg.ConversationID))
			if err != nil {
				return err
			}
			var conv conversationDoc
			if err := snap.DataTo(&conv); err != nil {
				return fmt.Errorf("decode conversationDoc: %w", err)
			}
			counts[msg.ConversationID] = conv.MessageCount
		}

		for i, msg := range msgs {
			counts[msg.ConversationID]++
			seqs[i] = counts[msg.ConversationID]

			doc := fromMessage(msg)
			doc.Seq = seqs[i]
			if err := tx.Create(s.messagesCol(msg.ConversationID).Doc(string(msg.ID)), doc); err != nil {
				return err
			}
		}

		for id, count := range counts {
			if err := tx.Update(s.conversationDoc(id), []firestore.Update{{Path: "message_count", Value: count}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("conversation %s: %w", msgs[0].ConversationID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore AppendMessages: %w", err)
	}

	for i, msg := range msgs {
		msg.Seq = seqs[i]
	}
	return nil
}

// GetMessagesByConversation returns the last `limit` messages in seq order.
// If limit <= 0, returns all.
func (s *Store) GetMessagesByConversation(ctx context.Context, conversationID domain.ConversationID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(conversationID).OrderBy("seq", firestore.Asc)
	if limit > 0 {
		q = s.messagesCol(conversationID).OrderBy("seq", firestore.Desc).Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.Message{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesByConversation: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, toMessage(snap.Ref.ID, doc))
	}

	if limit > 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

package sqlite

import (
	"context"
	"fmt"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// AppendMessages stores msgs in one transaction, each with the next seq of
// its conversation.
func (s *Store) AppendMessages(ctx context.Context, msgs ...*domain.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite AppendMessages: %w", err)
	}
	defer tx.Rollback()

	seqs := make([]int64, len(msgs))
	for i, msg := range msgs {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?`,
			string(msg.ConversationID),
		).Scan(&seqs[i]); err != nil {
			return fmt.Errorf("sqlite AppendMessages: next seq: %w", err)
		}

		var callID, callName, callArgs string
		if msg.ToolCall != nil {
			callID, callName, callArgs = msg.ToolCall.ID, msg.ToolCall.Name, msg.ToolCall.Arguments
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, seq, role, content, call_id, call_name, call_args, tool_call_id, tool_name, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(msg.ID), string(msg.ConversationID), seqs[i], string(msg.Role), msg.Content,
			callID, callName, callArgs, msg.ToolCallID, msg.ToolName, formatTime(msg.CreatedAt),
		); err != nil {
			return fmt.Errorf("sqlite AppendMessages: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite AppendMessages: commit: %w", err)
	}
	for i, msg := range msgs {
		msg.Seq = seqs[i]
	}
	return nil
}

// GetMessagesByConversation returns the last `limit` messages in seq order.
// If limit <= 0, returns all.
func (s *Store) GetMessagesByConversation(ctx context.Context, conversationID domain.ConversationID, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT * FROM (
			SELECT id, seq, role, content, call_id, call_name, call_args, tool_call_id, tool_name, created_at
			FROM messages WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		string(conversationID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite GetMessagesByConversation: %w", err)
	}
	defer rows.Close()

	out := []*domain.Message{}
	for rows.Next() {
		var (
			m                          domain.Message
			id, role, created          string
			callID, callName, callArgs string
		)
		if err := rows.Scan(&id, &m.Seq, &role, &m.Content, &callID, &callName, &callArgs, &m.ToolCallID, &m.ToolName, &created); err != nil {
			return nil, fmt.Errorf("sqlite GetMessagesByConversation: %w", err)
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}

		m.ID = domain.MessageID(id)
		m.ConversationID = conversationID
		m.Role = domain.Role(role)
		if callID != "" || callName != "" {
			m.ToolCall = &domain.ToolCall{ID: callID, Name: callName, Arguments: callArgs}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

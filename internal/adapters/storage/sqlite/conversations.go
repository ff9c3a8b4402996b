package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		string(conv.ID), string(conv.UserID), conv.Title, formatTime(conv.CreatedAt), formatTime(conv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateConversation: %w", err)
	}
	return nil
}

func (s *Store) UpdateConversation(ctx context.Context, conv *domain.Conversation) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		conv.Title, formatTime(conv.UpdatedAt), string(conv.ID),
	)
	if err != nil {
		return fmt.Errorf("sqlite UpdateConversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ?`,
		string(id),
	)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetConversation: %w", err)
	}
	return conv, nil
}

// ListConversationsByUser returns the most recently updated conversations first.
func (s *Store) ListConversationsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations
		 WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`,
		string(userID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListConversationsByUser: %w", err)
	}
	defer rows.Close()

	out := []*domain.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite ListConversationsByUser: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(sc scanner) (*domain.Conversation, error) {
	var (
		conv             domain.Conversation
		id, userID       string
		created, updated string
	)
	if err := sc.Scan(&id, &userID, &conv.Title, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if conv.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	conv.ID = domain.ConversationID(id)
	conv.UserID = domain.UserID(userID)
	return &conv, nil
}

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/PabloGalante/todo-agent/internal/app/agentflow"
	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

const maxTitleLen = 60

type Service struct {
	conversationStore domain.ConversationStore
	messageStore      domain.MessageStore
	dispatcher        *agentflow.Dispatcher
	now               func() time.Time
	newID             func() string
}

func NewService(
	conversationStore domain.ConversationStore,
	messageStore domain.MessageStore,
	dispatcher *agentflow.Dispatcher,
) *Service {
	return &Service{
		conversationStore: conversationStore,
		messageStore:      messageStore,
		dispatcher:        dispatcher,
		now:               time.Now,
		newID:             uuid.NewString,
	}
}

type TurnInput struct {
	UserID         domain.UserID
	Text           string
	ConversationID domain.ConversationID // optional
}

type TurnOutput struct {
	Reply          string
	ConversationID domain.ConversationID
	// Messages are the messages appended during the turn.
	Messages []*domain.Message
}

// HandleTurn runs one user message through the assistant. A missing, unknown
// or foreign ConversationID starts a new conversation. Once started, a turn
// runs to completion even if ctx is canceled.
func (s *Service) HandleTurn(ctx context.Context, in TurnInput) (*TurnOutput, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	ctx = context.WithoutCancel(ctx)

	conv, err := s.lookupOrCreate(ctx, in.UserID, in.ConversationID, in.Text)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", conv.ID,
		"user_id", conv.UserID,
	)
	log.Info("handling turn")

	res, err := s.dispatcher.Run(ctx, conv, in.Text)
	if err != nil {
		log.Error("turn failed", "error", err)
		return nil, err
	}

	conv.UpdatedAt = s.now()
	// The reply is already stored; a stale UpdatedAt only affects ordering.
	if err := s.conversationStore.UpdateConversation(ctx, conv); err != nil {
		log.Error("failed to update conversation", "error", err)
	}

	return &TurnOutput{
		Reply:          res.Reply,
		ConversationID: conv.ID,
		Messages:       res.Appended,
	}, nil
}

func (s *Service) lookupOrCreate(ctx context.Context, userID domain.UserID, id domain.ConversationID, firstMessage string) (*domain.Conversation, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	if id != "" {
		conv, err := s.conversationStore.GetConversation(ctx, id)
		switch {
		case err == nil && conv.UserID == userID:
			return conv, nil
		case err == nil:
			log.Warn("conversation belongs to another user, starting a new one", "conversation_id", id)
		case errors.Is(err, domain.ErrNotFound):
			log.Info("conversation not found, starting a new one", "conversation_id", id)
		default:
			log.Error("failed to load conversation", "conversation_id", id, "error", err)
			return nil, err
		}
	}

	return s.StartConversation(ctx, userID, titleFrom(firstMessage))
}

// StartConversation creates an empty conversation for userID.
func (s *Service) StartConversation(ctx context.Context, userID domain.UserID, title string) (*domain.Conversation, error) {
	now := s.now()
	conv := &domain.Conversation{
		ID:        domain.ConversationID(s.newID()),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversationStore.CreateConversation(ctx, conv); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to create conversation", "user_id", userID, "error", err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("conversation started",
		"conversation_id", conv.ID,
		"user_id", userID)
	return conv, nil
}

// GetTimeline returns a conversation and its messages. Conversations of
// other users are reported as not found.
func (s *Service) GetTimeline(
	ctx context.Context,
	userID domain.UserID,
	id domain.ConversationID,
	limit int,
) (*domain.Conversation, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", id,
		"limit", limit,
	)

	conv, err := s.conversationStore.GetConversation(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if conv.UserID != userID {
		return nil, nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	msgs, err := s.messageStore.GetMessagesByConversation(ctx, id, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched conversation timeline", "message_count", len(msgs))
	return conv, msgs, nil
}

func (s *Service) ListConversations(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.conversationStore.ListConversationsByUser(ctx, userID, limit)
}

func titleFrom(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxTitleLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxTitleLen-1]) + "…"
}

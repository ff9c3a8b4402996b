package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/PabloGalante/todo-agent/internal/app/conversation"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

const conversationNotFound = "Conversation not found"

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

type conversationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type toolCallResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type messageResponse struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Seq            int64             `json:"seq"`
	Role           string            `json:"role"`
	Content        string            `json:"content"`
	ToolCall       *toolCallResponse `json:"tool_call,omitempty"`
	ToolCallID     string            `json:"tool_call_id,omitempty"`
	ToolName       string            `json:"tool_name,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type getConversationResponse struct {
	Conversation conversationResponse `json:"conversation"`
	Messages     []messageResponse    `json:"messages"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

// /api/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if len(pathParts(r.URL.Path, "/api/chat")) > 0 {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.conv.HandleTurn(r.Context(), conversation.TurnInput{
		UserID:         s.userFrom(r),
		Text:           req.Message,
		ConversationID: domain.ConversationID(req.ConversationID),
	})
	if err != nil {
		writeError(w, r, err, conversationNotFound)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       out.Reply,
		ConversationID: string(out.ConversationID),
	})
}

// /api/conversations or /api/conversations/{id}
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	parts := pathParts(r.URL.Path, "/api/conversations")
	switch len(parts) {
	case 0:
		s.handleListConversations(w, r, limit)
	case 1:
		s.handleGetConversation(w, r, domain.ConversationID(parts[0]), limit)
	default:
		notFound(w, "not found")
	}
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request, limit int) {
	convs, err := s.conv.ListConversations(r.Context(), s.userFrom(r), limit)
	if err != nil {
		writeError(w, r, err, conversationNotFound)
		return
	}

	out := make([]conversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request, id domain.ConversationID, limit int) {
	conv, msgs, err := s.conv.GetTimeline(r.Context(), s.userFrom(r), id, limit)
	if err != nil {
		writeError(w, r, err, conversationNotFound)
		return
	}

	writeJSON(w, http.StatusOK, getConversationResponse{
		Conversation: toConversationResponse(conv),
		Messages:     toMessagesResponse(msgs),
	})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toConversationResponse(c *domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:        string(c.ID),
		UserID:    string(c.UserID),
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		Seq:            m.Seq,
		Role:           string(m.Role),
		Content:        m.Content,
		ToolCallID:     m.ToolCallID,
		ToolName:       m.ToolName,
		CreatedAt:      m.CreatedAt,
	}
	if m.ToolCall != nil {
		resp.ToolCall = &toolCallResponse{
			ID:        m.ToolCall.ID,
			Name:      m.ToolCall.Name,
			Arguments: m.ToolCall.Arguments,
		}
	}
	return resp
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

package domain

import "time"

type ConversationID string
type UserID string
type MessageID string
type TaskID int64

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// TaskFilter narrows a task listing by completion state.
type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterPending   TaskFilter = "pending"
	TaskFilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter maps free-form input to a TaskFilter. Unknown or empty
// values fall back to TaskFilterAll.
func ParseTaskFilter(s string) TaskFilter {
	switch TaskFilter(s) {
	case TaskFilterPending, TaskFilterCompleted:
		return TaskFilter(s)
	default:
		return TaskFilterAll
	}
}

// Matches reports whether a task with the given completion flag passes the filter.
func (f TaskFilter) Matches(completed bool) bool {
	switch f {
	case TaskFilterPending:
		return !completed
	case TaskFilterCompleted:
		return completed
	default:
		return true
	}
}

type Timestamp = time.Time

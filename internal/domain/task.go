package domain

// Task is the todo item the assistant and the REST endpoints operate on.
type Task struct {
	ID          TaskID    `json:"id"`
	UserID      UserID    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

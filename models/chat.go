package models

import "time"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of a user's AI chat history
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest sends a message to the AI assistant
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// TutorRequest asks a question scoped to a lesson
type TutorRequest struct {
	Question string `json:"question"`
}

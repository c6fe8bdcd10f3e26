package models

import "time"

// Invite statuses
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteRejected = "rejected"
)

// MaxClassMembers caps class size
const MaxClassMembers = 50

// ClassGroup is a study group; a user belongs to at most one class
type ClassGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID int       `json:"creator_id"`
	Members   []int     `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassInvite is a pending/answered invitation into a class
type ClassInvite struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	FromUserID int       `json:"from_user_id"`
	ToUserID   int       `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	// Decorations for the invite list, not persisted
	ClassName    string `json:"class_name,omitempty"`
	FromUserName string `json:"from_user_name,omitempty"`
}

// ClassChatMessage is one message in a class chat room
type ClassChatMessage struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateClassRequest names a new class
type CreateClassRequest struct {
	Name string `json:"name"`
}

// InviteRequest invites a user into the caller's class
type InviteRequest struct {
	ToUserID int `json:"to_user_id"`
}

// ClassMessageRequest posts to the class chat
type ClassMessageRequest struct {
	Content string `json:"content"`
}

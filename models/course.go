package models

import "time"

// Course statuses
const (
	CourseActive    = "active"
	CourseCompleted = "completed"
	CoursePaused    = "paused"
)

// Course is the full content tree a learner progresses through. Modules
// and assignments are persisted as a single JSON document alongside the
// scalar columns, so the struct is the source of truth for their shape.
type Course struct {
	ID          string       `json:"id"`
	UserID      int          `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Goal        string       `json:"goal"`
	Duration    int          `json:"duration"` // days
	Modules     []Module     `json:"modules"`
	Assignments []Assignment `json:"assignments"`
	Progress    int          `json:"progress"` // 0-100
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Lessons     []Lesson `json:"lessons"`
	Completed   bool     `json:"completed"`
}

type Lesson struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Duration  int    `json:"duration"` // minutes
	Completed bool   `json:"completed"`
}

type Assignment struct {
	ID          string     `json:"id"`
	ModuleID    string     `json:"module_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score,omitempty"` // 0-100
}

type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Type          string   `json:"type"` // multiple-choice, text, code
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	UserAnswer    string   `json:"user_answer,omitempty"`
}

// GenerateCourseRequest asks the AI collaborator for a new course
type GenerateCourseRequest struct {
	Goal     string `json:"goal"`
	Duration int    `json:"duration"`
}

// SubmitAssignmentRequest carries answers matched to questions by position
type SubmitAssignmentRequest struct {
	Answers []string `json:"answers"`
}

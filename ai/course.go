package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/google/uuid"
)

const courseBlueprint = `{
  "title": "Course title",
  "description": "Course description",
  "modules": [
    {
      "title": "Module title",
      "description": "Module description",
      "lessons": [
        {
          "title": "Lesson title",
          "content": "DETAILED lesson content",
          "duration": 45
        }
      ]
    }
  ],
  "assignments": [
    {
      "moduleId": "0",
      "title": "Assignment title",
      "description": "Assignment description",
      "questions": [
        {
          "question": "Question text",
          "type": "multiple-choice",
          "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
          "correctAnswer": "Option 1"
        }
      ]
    }
  ]
}`

// Raw shapes as the model returns them
type rawCourse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Modules     []rawModule     `json:"modules"`
	Assignments []rawAssignment `json:"assignments"`
}

type rawModule struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Lessons     []rawLesson `json:"lessons"`
}

type rawLesson struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration int    `json:"duration"`
}

type rawAssignment struct {
	ModuleID    string        `json:"moduleId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Questions   []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

func moduleCount(duration int) int {
	n := (duration + 29) / 30
	if n < 4 {
		n = 4
	}
	if n > 8 {
		n = 8
	}
	return n
}

// GenerateCourse asks the collaborator for a full course outline plus
// lesson content and normalizes the reply into a Course tree. Missing
// fields get defaults; a reply without a modules array is a hard error.
func (c *Client) GenerateCourse(ctx context.Context, userID int, goal string, duration int) (*models.Course, error) {
	utils.LogAI("Generating course for goal %q (%d days)", goal, duration)

	prompt := fmt.Sprintf(`Create a DETAILED and ENGAGING educational course for the following goal: "%s"
Course duration: %d days

Return the course structure as JSON with this exact shape:
%s

IMPORTANT REQUIREMENTS FOR LESSON CONTENT:
1. Every lesson must be DETAILED (at least 800-1500 words)
2. Use markdown formatting: **bold** for key terms, *italics* for emphasis, ### headings for lesson sections, bullet lists, > quotes for important notes
3. Structure each lesson as: introduction, theory block, 2-3 practical examples, self-check exercises, summary
4. Use CONCRETE examples, dialogues and situations
5. Lesson duration should be 30-60 minutes

STRUCTURE REQUIREMENTS:
- Create %d modules
- Each module must contain 4-6 lessons
- Add a review assignment with 5-8 questions after each module; moduleId is the zero-based module index as a string
- Questions must be practical and test understanding

Respond in the same language as the goal. Return ONLY the JSON, no extra text.`,
		goal, duration, courseBlueprint, moduleCount(duration))

	text, err := c.generate(ctx, c.cfg.APIKey, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractJSON(text)
	if err != nil {
		utils.LogError("Course generation returned no JSON: %s", truncate(text, 200))
		return nil, err
	}

	var raw rawCourse
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parse course JSON: %w", err)
	}
	if raw.Modules == nil {
		return nil, fmt.Errorf("AI returned an invalid structure: missing modules array")
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       raw.Title,
		Description: raw.Description,
		Goal:        goal,
		Duration:    duration,
		Status:      models.CourseActive,
		CreatedAt:   time.Now(),
	}
	if course.Title == "" {
		course.Title = "New course"
	}

	for i, m := range raw.Modules {
		mod := models.Module{
			ID:          fmt.Sprintf("%d", i),
			Title:       m.Title,
			Description: m.Description,
		}
		if mod.Title == "" {
			mod.Title = fmt.Sprintf("Module %d", i+1)
		}
		for j, l := range m.Lessons {
			lesson := models.Lesson{
				ID:       fmt.Sprintf("%d-%d", i, j),
				Title:    l.Title,
				Content:  l.Content,
				Duration: l.Duration,
			}
			if lesson.Title == "" {
				lesson.Title = fmt.Sprintf("Lesson %d", j+1)
			}
			if lesson.Duration == 0 {
				lesson.Duration = 30
			}
			mod.Lessons = append(mod.Lessons, lesson)
		}
		course.Modules = append(course.Modules, mod)
	}

	for i, a := range raw.Assignments {
		asg := models.Assignment{
			ID:          fmt.Sprintf("assignment-%d", i),
			ModuleID:    a.ModuleID,
			Title:       a.Title,
			Description: a.Description,
		}
		if asg.ModuleID == "" {
			asg.ModuleID = "0"
		}
		if asg.Title == "" {
			asg.Title = fmt.Sprintf("Assignment %d", i+1)
		}
		for j, q := range a.Questions {
			asg.Questions = append(asg.Questions, models.Question{
				ID:            fmt.Sprintf("q-%d-%d", i, j),
				Question:      q.Question,
				Type:          q.Type,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
			})
		}
		course.Assignments = append(course.Assignments, asg)
	}

	utils.LogAI("Course %q generated: %d modules, %d assignments", course.Title, len(course.Modules), len(course.Assignments))
	return course, nil
}

package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colearn-app/colearn-api/models"
)

// Environment utilities
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// Answer checking utilities
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// CheckAnswer compares a user answer against a question's correct answer.
// Multiple-choice answers must match the stored option exactly (ignoring
// case and surrounding whitespace); free-text and code answers use the
// same normalized comparison because grading happens against a single
// reference answer.
func CheckAnswer(question *models.Question, userAnswer string) bool {
	return NormalizeAnswer(userAnswer) == NormalizeAnswer(question.CorrectAnswer)
}

// ScoreAssignment grades a full answer set. Answers are matched by
// position; missing answers count as wrong. An assignment with no
// questions scores 0.
func ScoreAssignment(questions []models.Question, answers []string) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i := range questions {
		if i < len(answers) && CheckAnswer(&questions[i], answers[i]) {
			correct++
		}
	}
	return int(float64(correct)/float64(len(questions))*100 + 0.5)
}

// Validation utilities
func ValidateRegisterRequest(req *models.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("username is required")
	}

	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("email is required")
	}

	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("invalid email address")
	}

	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return fmt.Errorf("password is required")
	}

	if len(req.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	return nil
}

func ValidateCourseRequest(req *models.GenerateCourseRequest) error {
	if strings.TrimSpace(req.Goal) == "" {
		return fmt.Errorf("goal is required")
	}

	if req.Duration < 1 || req.Duration > 365 {
		return fmt.Errorf("duration must be between 1 and 365 days")
	}

	return nil
}

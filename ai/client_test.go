package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelReply(text string) []byte {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return b
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "primary",
		Model:   "test-model",
		BaseURL: srv.URL,
	})
}

func TestChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "test-model")
		assert.Equal(t, "primary", r.URL.Query().Get("key"))
		w.Write(modelReply("Hello there!"))
	})

	answer, err := client.Chat(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", answer)
}

func TestChatServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Chat(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatNoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Chat(context.Background(), "hi", "")
	assert.Error(t, err)
}

func TestChatMissingKey(t *testing.T) {
	client := NewClient(Config{Model: "test-model"})
	_, err := client.Chat(context.Background(), "hi", "")
	assert.Error(t, err)
}

func TestAskTutorKeyFailover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "tutor" {
			http.Error(w, "key disabled", http.StatusForbidden)
			return
		}
		w.Write(modelReply("Short answer."))
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:   "primary",
		TutorKey: "tutor",
		Model:    "test-model",
		BaseURL:  srv.URL,
	})

	answer, err := client.AskTutor(context.Background(), "lesson text", "why?")
	require.NoError(t, err)
	assert.Equal(t, "Short answer.", answer)
}

func TestGenerateCourse(t *testing.T) {
	courseJSON := `{
		"title": "Spanish Basics",
		"description": "Learn Spanish",
		"modules": [
			{
				"title": "Greetings",
				"lessons": [
					{"title": "Hola", "content": "Say hola.", "duration": 45},
					{"title": "", "content": "More greetings."}
				]
			}
		],
		"assignments": [
			{
				"moduleId": "0",
				"title": "Review",
				"questions": [
					{"question": "How do you say hello?", "type": "multiple-choice", "options": ["Hola", "Adios"], "correctAnswer": "Hola"}
				]
			}
		]
	}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply(fmt.Sprintf("```json\n%s\n```", courseJSON)))
	})

	course, err := client.GenerateCourse(context.Background(), 9, "learn spanish", 30)
	require.NoError(t, err)

	assert.NotEmpty(t, course.ID)
	assert.Equal(t, 9, course.UserID)
	assert.Equal(t, "Spanish Basics", course.Title)
	assert.Equal(t, "learn spanish", course.Goal)
	assert.Equal(t, 30, course.Duration)

	require.Len(t, course.Modules, 1)
	assert.Equal(t, "0", course.Modules[0].ID)
	require.Len(t, course.Modules[0].Lessons, 2)
	assert.Equal(t, "0-0", course.Modules[0].Lessons[0].ID)
	// missing fields get defaults
	assert.Equal(t, "Lesson 2", course.Modules[0].Lessons[1].Title)
	assert.Equal(t, 30, course.Modules[0].Lessons[1].Duration)

	require.Len(t, course.Assignments, 1)
	assert.Equal(t, "assignment-0", course.Assignments[0].ID)
	assert.Equal(t, "0", course.Assignments[0].ModuleID)
	require.Len(t, course.Assignments[0].Questions, 1)
	assert.Equal(t, "q-0-0", course.Assignments[0].Questions[0].ID)
}

func TestGenerateCourseRejectsMissingModules(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelReply(`{"title": "broken"}`))
	})

	_, err := client.GenerateCourse(context.Background(), 1, "goal", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modules")
}

func TestModuleCount(t *testing.T) {
	tests := []struct {
		duration int
		want     int
	}{
		{1, 4},
		{30, 4},
		{120, 4},
		{150, 5},
		{240, 8},
		{365, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, moduleCount(tt.duration), "duration=%d", tt.duration)
	}
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCourse stores a small two-module course directly, bypassing the
// AI generation step.
func seedCourse(t *testing.T, env *testEnv, userID int) *models.Course {
	t.Helper()

	course := &models.Course{
		ID:     "course-1",
		UserID: userID,
		Title:  "Go Basics",
		Status: models.CourseActive,
		Modules: []models.Module{
			{ID: "0", Title: "Syntax", Lessons: []models.Lesson{
				{ID: "0-0", Title: "Variables"},
				{ID: "0-1", Title: "Functions"},
			}},
			{ID: "1", Title: "Types", Lessons: []models.Lesson{
				{ID: "1-0", Title: "Structs"},
			}},
		},
		Assignments: []models.Assignment{
			{ID: "assignment-0", ModuleID: "0", Title: "Review", Questions: []models.Question{
				{ID: "q-0-0", Question: "2+2?", Type: "text", CorrectAnswer: "4"},
				{ID: "q-0-1", Question: "3+3?", Type: "text", CorrectAnswer: "6"},
			}},
		},
	}
	require.NoError(t, env.database.SaveCourse(course))
	return course
}

func TestCompleteLesson(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")
	seedCourse(t, env, user.ID)

	rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/0-0/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Course models.Course    `json:"course"`
		Events []models.XpEvent `json:"events"`
	}
	decode(t, rec, &resp)

	assert.Equal(t, 33, resp.Course.Progress)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, gamification.XPLesson, resp.Events[0].XPGained)
	assert.Contains(t, resp.Events[0].NewBadges, gamification.BadgeFirstLesson)

	t.Run("repeat completion is a no-op", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/0-0/complete", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)
		assert.Empty(t, resp.Events)
	})

	t.Run("locked lesson rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/1-0/complete", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/9-9/complete", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("finishing a module pays module XP", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/0-1/complete", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)

		require.Len(t, resp.Events, 2)
		assert.Equal(t, gamification.XPModule, resp.Events[1].XPGained)
		assert.True(t, resp.Course.Modules[0].Completed)
	})

	t.Run("finishing the course pays course XP", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/lessons/1-0/complete", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)

		assert.Equal(t, 100, resp.Course.Progress)
		assert.Equal(t, models.CourseCompleted, resp.Course.Status)
		require.Len(t, resp.Events, 3)
		assert.Equal(t, gamification.XPCourse, resp.Events[2].XPGained)
	})
}

func TestSubmitAssignment(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")
	seedCourse(t, env, user.ID)

	t.Run("locked until module lessons done", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/assignments/assignment-0/submit", token,
			models.SubmitAssignmentRequest{Answers: []string{"4", "6"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	env.do(t, http.MethodPost, "/courses/course-1/lessons/0-0/complete", token, nil)
	env.do(t, http.MethodPost, "/courses/course-1/lessons/0-1/complete", token, nil)

	t.Run("perfect submission", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/assignments/assignment-0/submit", token,
			models.SubmitAssignmentRequest{Answers: []string{"4", "6"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Score  int              `json:"score"`
			Events []models.XpEvent `json:"events"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, 100, resp.Score)
		require.Len(t, resp.Events, 1)
		assert.Equal(t, gamification.XPAssignmentMax, resp.Events[0].XPGained)
		assert.Contains(t, resp.Events[0].NewBadges, gamification.BadgePerfectScore)
	})

	t.Run("resubmission scores but pays no XP", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/assignments/assignment-0/submit", token,
			models.SubmitAssignmentRequest{Answers: []string{"4", "wrong"}})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Score  int              `json:"score"`
			Events []models.XpEvent `json:"events"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, 50, resp.Score)
		assert.Empty(t, resp.Events)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/courses/course-1/assignments/assignment-9/submit", token,
			models.SubmitAssignmentRequest{Answers: []string{"4"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCourseOwnership(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "ana")
	_, strangerToken := env.signUp(t, "ben")
	seedCourse(t, env, user.ID)

	rec := env.do(t, http.MethodGet, "/courses/course-1", strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/courses/course-1/lessons/0-0/complete", strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndDeleteCourses(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")
	seedCourse(t, env, user.ID)

	rec := env.do(t, http.MethodGet, "/courses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Course
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = env.do(t, http.MethodDelete, "/courses/course-1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/courses", token, nil)
	decode(t, rec, &list)
	assert.Empty(t, list)
}

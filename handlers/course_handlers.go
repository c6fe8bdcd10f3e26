package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/courses"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

type CourseHandlers struct {
	db *db.DB
	ai *ai.Client
}

func NewCourseHandlers(database *db.DB, aiClient *ai.Client) *CourseHandlers {
	return &CourseHandlers{db: database, ai: aiClient}
}

func (ch *CourseHandlers) HandleCourses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		ch.generateCourse(w, r)
	case http.MethodGet:
		ch.listCourses(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCourseByID dispatches /courses/{id} and its nested lesson,
// assignment, and tutor routes.
func (ch *CourseHandlers) HandleCourseByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/courses/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		ch.getCourse(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		ch.deleteCourse(w, r, parts[0])
	case len(parts) == 4 && parts[1] == "lessons" && parts[3] == "complete" && r.Method == http.MethodPost:
		ch.completeLesson(w, r, parts[0], parts[2])
	case len(parts) == 4 && parts[1] == "lessons" && parts[3] == "tutor" && r.Method == http.MethodPost:
		ch.askTutor(w, r, parts[0], parts[2])
	case len(parts) == 4 && parts[1] == "assignments" && parts[3] == "submit" && r.Method == http.MethodPost:
		ch.submitAssignment(w, r, parts[0], parts[2])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (ch *CourseHandlers) generateCourse(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /courses (user %d)", session.UserID)

	var req models.GenerateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateCourseRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	course, err := ch.ai.GenerateCourse(r.Context(), session.UserID, req.Goal, req.Duration)
	if err != nil {
		utils.LogError("Course generation failed for user %d: %v", session.UserID, err)
		http.Error(w, "Course generation failed", http.StatusBadGateway)
		return
	}

	if err := ch.db.SaveCourse(course); err != nil {
		utils.LogError("Failed to save generated course: %v", err)
		http.Error(w, "Failed to save course", http.StatusInternalServerError)
		return
	}

	utils.LogHTTP("Course generated: %s (%d modules) for user %d", course.Title, len(course.Modules), session.UserID)
	writeJSON(w, http.StatusCreated, course)
}

func (ch *CourseHandlers) listCourses(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	list, err := ch.db.GetCourses(session.UserID)
	if err != nil {
		utils.LogError("Failed to list courses for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to list courses", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (ch *CourseHandlers) getCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	session := getSessionFromContext(r.Context())

	course, err := ch.loadCourse(w, session.UserID, courseID)
	if course == nil || err != nil {
		return
	}

	writeJSON(w, http.StatusOK, course)
}

func (ch *CourseHandlers) deleteCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("DELETE /courses/%s (user %d)", courseID, session.UserID)

	if err := ch.db.DeleteCourse(courseID, session.UserID); err != nil {
		utils.LogError("Failed to delete course %s: %v", courseID, err)
		http.Error(w, "Failed to delete course", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Course deleted"})
}

// completeLesson marks a lesson done, recalculates progress, and pays
// out XP for the lesson plus any module or course completion the
// lesson triggered. Completing an already-done lesson changes nothing.
func (ch *CourseHandlers) completeLesson(w http.ResponseWriter, r *http.Request, courseID, lessonID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /courses/%s/lessons/%s/complete (user %d)", courseID, lessonID, session.UserID)

	course, err := ch.loadCourse(w, session.UserID, courseID)
	if course == nil || err != nil {
		return
	}

	mi, li := courses.FindLesson(course, lessonID)
	if mi < 0 {
		http.Error(w, "Lesson not found", http.StatusNotFound)
		return
	}

	mod := &course.Modules[mi]
	if !courses.ModuleUnlocked(course, mi) || !courses.LessonUnlocked(mod, li) {
		http.Error(w, "Lesson is locked", http.StatusForbidden)
		return
	}

	if mod.Lessons[li].Completed {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"course": course,
			"events": []models.XpEvent{},
		})
		return
	}

	moduleWasDone := mod.Completed
	courseWasDone := course.Status == models.CourseCompleted

	mod.Lessons[li].Completed = true
	courses.RecalcProgress(course)

	record, err := ch.db.GetGamification(session.UserID)
	if err != nil {
		utils.LogError("Failed to load gamification for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load record", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	events := []models.XpEvent{gamification.AwardLessonComplete(record, now)}
	if !moduleWasDone && mod.Completed {
		events = append(events, gamification.AwardModuleComplete(record))
	}
	if !courseWasDone && course.Status == models.CourseCompleted {
		events = append(events, gamification.AwardCourseComplete(record))
	}

	if err := ch.db.SaveCourse(course); err != nil {
		utils.LogError("Failed to save course %s: %v", courseID, err)
		http.Error(w, "Failed to save course", http.StatusInternalServerError)
		return
	}
	if err := ch.db.SaveGamification(record); err != nil {
		utils.LogError("Failed to save gamification for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to save record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course": course,
		"events": events,
		"record": record,
		"level":  gamification.GetLevel(record.XP),
	})
}

// submitAssignment scores the submitted answers against the stored
// questions. XP is only awarded for the first completion; later
// submissions can still improve the recorded score.
func (ch *CourseHandlers) submitAssignment(w http.ResponseWriter, r *http.Request, courseID, assignmentID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /courses/%s/assignments/%s/submit (user %d)", courseID, assignmentID, session.UserID)

	var req models.SubmitAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	course, err := ch.loadCourse(w, session.UserID, courseID)
	if course == nil || err != nil {
		return
	}

	idx := courses.FindAssignment(course, assignmentID)
	if idx < 0 {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	assignment := &course.Assignments[idx]
	if !courses.AssignmentUnlocked(course, assignment.ModuleID) {
		http.Error(w, "Assignment is locked", http.StatusForbidden)
		return
	}

	firstCompletion := !assignment.Completed

	score := utils.ScoreAssignment(assignment.Questions, req.Answers)
	for i := range assignment.Questions {
		if i < len(req.Answers) {
			assignment.Questions[i].UserAnswer = req.Answers[i]
		}
	}
	if assignment.Score == nil || score > *assignment.Score {
		assignment.Score = &score
	}
	assignment.Completed = true

	var events []models.XpEvent
	var record *models.UserGamification
	if firstCompletion {
		record, err = ch.db.GetGamification(session.UserID)
		if err != nil {
			utils.LogError("Failed to load gamification for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to load record", http.StatusInternalServerError)
			return
		}
		events = append(events, gamification.AwardAssignmentComplete(record, score, time.Now()))
		if err := ch.db.SaveGamification(record); err != nil {
			utils.LogError("Failed to save gamification for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to save record", http.StatusInternalServerError)
			return
		}
	}

	if err := ch.db.SaveCourse(course); err != nil {
		utils.LogError("Failed to save course %s: %v", courseID, err)
		http.Error(w, "Failed to save course", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"score":      score,
		"assignment": assignment,
		"events":     events,
	}
	if record != nil {
		resp["record"] = record
		resp["level"] = gamification.GetLevel(record.XP)
	}
	writeJSON(w, http.StatusOK, resp)
}

// askTutor answers a question scoped to one lesson's content
func (ch *CourseHandlers) askTutor(w http.ResponseWriter, r *http.Request, courseID, lessonID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /courses/%s/lessons/%s/tutor (user %d)", courseID, lessonID, session.UserID)

	var req models.TutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "Missing question", http.StatusBadRequest)
		return
	}

	course, err := ch.loadCourse(w, session.UserID, courseID)
	if course == nil || err != nil {
		return
	}

	mi, li := courses.FindLesson(course, lessonID)
	if mi < 0 {
		http.Error(w, "Lesson not found", http.StatusNotFound)
		return
	}

	answer, err := ch.ai.AskTutor(r.Context(), course.Modules[mi].Lessons[li].Content, req.Question)
	if err != nil {
		utils.LogError("Tutor request failed for user %d: %v", session.UserID, err)
		http.Error(w, "Tutor unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// loadCourse fetches an owned course, writing the error response
// itself when the course is missing or the query fails.
func (ch *CourseHandlers) loadCourse(w http.ResponseWriter, userID int, courseID string) (*models.Course, error) {
	course, err := ch.db.GetCourse(courseID, userID)
	if err != nil {
		utils.LogError("Failed to load course %s: %v", courseID, err)
		http.Error(w, "Failed to load course", http.StatusInternalServerError)
		return nil, err
	}
	if course == nil {
		http.Error(w, "Course not found", http.StatusNotFound)
		return nil, nil
	}
	return course, nil
}

package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

// courseData is the JSON document stored in the courses.data column
type courseData struct {
	Modules     []models.Module     `json:"modules"`
	Assignments []models.Assignment `json:"assignments"`
}

// SaveCourse upserts the whole course, tree included. The caller is
// the single writer, so last-writer-wins is acceptable here.
func (db *DB) SaveCourse(course *models.Course) error {
	utils.LogDB("Saving course %s for user %d (progress %d%%)", course.ID, course.UserID, course.Progress)
	start := time.Now()

	data, err := json.Marshal(courseData{
		Modules:     course.Modules,
		Assignments: course.Assignments,
	})
	if err != nil {
		utils.LogError("Failed to marshal course tree: %v", err)
		return err
	}

	_, err = db.Exec(`
		INSERT INTO courses (id, user_id, title, description, goal, duration, progress, status, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			progress = excluded.progress,
			status = excluded.status,
			data = excluded.data
	`, course.ID, course.UserID, course.Title, course.Description, course.Goal,
		course.Duration, course.Progress, course.Status, string(data), course.CreatedAt)

	if err != nil {
		utils.LogError("SaveCourse failed: %v (%v)", err, time.Since(start))
		return err
	}

	utils.LogDB("Course %s saved in %v", course.ID, time.Since(start))
	return nil
}

func scanCourse(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Course, error) {
	var c models.Course
	var data string
	err := scanner.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Goal,
		&c.Duration, &c.Progress, &c.Status, &data, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	var tree courseData
	if err := json.Unmarshal([]byte(data), &tree); err != nil {
		// A corrupt tree degrades to an empty course rather than failing the list
		utils.LogError("Corrupt course tree for %s: %v", c.ID, err)
		tree = courseData{}
	}
	c.Modules = tree.Modules
	c.Assignments = tree.Assignments
	return &c, nil
}

const courseColumns = "id, user_id, title, description, goal, duration, progress, status, data, created_at"

func (db *DB) GetCourse(id string, userID int) (*models.Course, error) {
	course, err := scanCourse(db.QueryRow(
		"SELECT "+courseColumns+" FROM courses WHERE id = ? AND user_id = ?", id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return course, err
}

func (db *DB) GetCourses(userID int) ([]*models.Course, error) {
	rows, err := db.Query(
		"SELECT "+courseColumns+" FROM courses WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		utils.LogError("GetCourses failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (db *DB) DeleteCourse(id string, userID int) error {
	utils.LogDB("Deleting course %s for user %d", id, userID)
	_, err := db.Exec("DELETE FROM courses WHERE id = ? AND user_id = ?", id, userID)
	return err
}

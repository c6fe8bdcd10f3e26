package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

// GetGamification returns the user's ledger record, creating a zeroed
// one on first access.
func (db *DB) GetGamification(userID int) (*models.UserGamification, error) {
	g, err := db.scanGamification(userID)
	if err == nil {
		return g, nil
	}
	if err != sql.ErrNoRows {
		utils.LogError("GetGamification(%d) failed: %v", userID, err)
		return nil, err
	}

	utils.LogDB("Creating gamification record for user %d", userID)
	if _, err := db.Exec("INSERT INTO gamification (user_id) VALUES (?)", userID); err != nil {
		return nil, err
	}
	return db.scanGamification(userID)
}

func (db *DB) scanGamification(userID int) (*models.UserGamification, error) {
	var g models.UserGamification
	var badges string
	err := db.QueryRow(`
		SELECT user_id, xp, streak, last_active_date, badges, lessons_today,
		       total_lessons, total_courses, total_assignments
		FROM gamification WHERE user_id = ?
	`, userID).Scan(&g.UserID, &g.XP, &g.Streak, &g.LastActiveDate, &badges,
		&g.LessonsToday, &g.TotalLessons, &g.TotalCourses, &g.TotalAssignments)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(badges), &g.Badges); err != nil {
		utils.LogError("Corrupt badge set for user %d, resetting read: %v", userID, err)
		g.Badges = []string{}
	}
	if g.Badges == nil {
		g.Badges = []string{}
	}
	return &g, nil
}

func (db *DB) SaveGamification(g *models.UserGamification) error {
	badges, err := json.Marshal(g.Badges)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE gamification
		SET xp = ?, streak = ?, last_active_date = ?, badges = ?, lessons_today = ?,
		    total_lessons = ?, total_courses = ?, total_assignments = ?
		WHERE user_id = ?
	`, g.XP, g.Streak, g.LastActiveDate, string(badges), g.LessonsToday,
		g.TotalLessons, g.TotalCourses, g.TotalAssignments, g.UserID)
	if err != nil {
		utils.LogError("SaveGamification(%d) failed: %v", g.UserID, err)
	}
	return err
}

// GetGamificationMany loads ledger records for a member list. Users
// without a record yet appear as zeroed entries.
func (db *DB) GetGamificationMany(userIDs []int) ([]models.UserGamification, error) {
	records := make([]models.UserGamification, 0, len(userIDs))
	if len(userIDs) == 0 {
		return records, nil
	}

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := db.Query(`
		SELECT user_id, xp, streak, last_active_date, badges, lessons_today,
		       total_lessons, total_courses, total_assignments
		FROM gamification WHERE user_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int]bool)
	for rows.Next() {
		var g models.UserGamification
		var badges string
		if err := rows.Scan(&g.UserID, &g.XP, &g.Streak, &g.LastActiveDate, &badges,
			&g.LessonsToday, &g.TotalLessons, &g.TotalCourses, &g.TotalAssignments); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(badges), &g.Badges); err != nil {
			g.Badges = []string{}
		}
		records = append(records, g)
		seen[g.UserID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range userIDs {
		if !seen[id] {
			records = append(records, models.UserGamification{UserID: id, Badges: []string{}})
		}
	}
	return records, nil
}

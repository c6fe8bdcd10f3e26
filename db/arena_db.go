package db

import (
	"database/sql"
	"encoding/json"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

// GetArenaProfile returns the user's competitive record, creating one
// with the starting rating and token balance on first access.
func (db *DB) GetArenaProfile(userID int) (*models.ArenaProfile, error) {
	p, err := db.scanArenaProfile(userID)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		utils.LogError("GetArenaProfile(%d) failed: %v", userID, err)
		return nil, err
	}

	utils.LogDB("Creating arena profile for user %d", userID)
	if _, err := db.Exec("INSERT INTO arena_profiles (user_id) VALUES (?)", userID); err != nil {
		return nil, err
	}
	return db.scanArenaProfile(userID)
}

func (db *DB) scanArenaProfile(userID int) (*models.ArenaProfile, error) {
	var p models.ArenaProfile
	err := db.QueryRow(`
		SELECT user_id, arena_rating, duels_won, duels_lost, bosses_defeated,
		       arena_tokens, win_streak, best_win_streak
		FROM arena_profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.ArenaRating, &p.DuelsWon, &p.DuelsLost,
		&p.BossesDefeated, &p.ArenaTokens, &p.WinStreak, &p.BestWinStreak)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) SaveArenaProfile(p *models.ArenaProfile) error {
	_, err := db.Exec(`
		UPDATE arena_profiles
		SET arena_rating = ?, duels_won = ?, duels_lost = ?, bosses_defeated = ?,
		    arena_tokens = ?, win_streak = ?, best_win_streak = ?
		WHERE user_id = ?
	`, p.ArenaRating, p.DuelsWon, p.DuelsLost, p.BossesDefeated,
		p.ArenaTokens, p.WinStreak, p.BestWinStreak, p.UserID)
	if err != nil {
		utils.LogError("SaveArenaProfile(%d) failed: %v", p.UserID, err)
	}
	return err
}

// AllArenaProfiles feeds the leaderboard rebuild job.
func (db *DB) AllArenaProfiles() ([]models.ArenaProfile, error) {
	rows, err := db.Query(`
		SELECT user_id, arena_rating, duels_won, duels_lost, bosses_defeated,
		       arena_tokens, win_streak, best_win_streak
		FROM arena_profiles
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.ArenaProfile{}
	for rows.Next() {
		var p models.ArenaProfile
		if err := rows.Scan(&p.UserID, &p.ArenaRating, &p.DuelsWon, &p.DuelsLost,
			&p.BossesDefeated, &p.ArenaTokens, &p.WinStreak, &p.BestWinStreak); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// TopArenaProfiles is the SQL fallback when the redis leaderboard is
// unavailable.
func (db *DB) TopArenaProfiles(n int) ([]models.ArenaRank, error) {
	rows, err := db.Query(`
		SELECT p.user_id, u.username, p.arena_rating
		FROM arena_profiles p JOIN users u ON u.id = p.user_id
		ORDER BY p.arena_rating DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := []models.ArenaRank{}
	for rows.Next() {
		var r models.ArenaRank
		if err := rows.Scan(&r.UserID, &r.Username, &r.ArenaRating); err != nil {
			return nil, err
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// SaveDuel archives a finished duel.
func (db *DB) SaveDuel(d *models.Duel) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO duels (id, user_id, topic, difficulty, status, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data
	`, d.ID, d.UserID, d.Topic, d.AIDifficulty, d.Status, string(data), d.CreatedAt)
	if err != nil {
		utils.LogError("SaveDuel(%s) failed: %v", d.ID, err)
	}
	return err
}

func (db *DB) GetDuelHistory(userID int, limit int) ([]*models.Duel, error) {
	rows, err := db.Query(`
		SELECT data FROM duels WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	duels := []*models.Duel{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var d models.Duel
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			utils.LogError("Corrupt duel record skipped: %v", err)
			continue
		}
		duels = append(duels, &d)
	}
	return duels, rows.Err()
}

// SaveBossFight archives a boss fight, transcript included.
func (db *DB) SaveBossFight(f *models.BossFight) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO boss_fights (id, user_id, topic, difficulty, status, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data
	`, f.ID, f.UserID, f.Topic, f.Difficulty, f.Status, string(data), f.CreatedAt)
	if err != nil {
		utils.LogError("SaveBossFight(%s) failed: %v", f.ID, err)
	}
	return err
}

func (db *DB) GetBossFightHistory(userID int, limit int) ([]*models.BossFight, error) {
	rows, err := db.Query(`
		SELECT data FROM boss_fights WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fights := []*models.BossFight{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var f models.BossFight
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			utils.LogError("Corrupt boss fight record skipped: %v", err)
			continue
		}
		fights = append(fights, &f)
	}
	return fights, rows.Err()
}

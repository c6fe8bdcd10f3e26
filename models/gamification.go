package models

// UserGamification is the per-user XP/streak/badge record. Created
// lazily on first access; XP and the badge set only ever grow.
type UserGamification struct {
	UserID           int      `json:"user_id"`
	XP               int      `json:"xp"`
	Streak           int      `json:"streak"`
	LastActiveDate   string   `json:"last_active_date"` // YYYY-MM-DD, empty until first activity
	Badges           []string `json:"badges"`
	LessonsToday     int      `json:"lessons_today"`
	TotalLessons     int      `json:"total_lessons"`
	TotalCourses     int      `json:"total_courses"`
	TotalAssignments int      `json:"total_assignments"`
}

// HasBadge reports whether the badge id has already been granted.
func (g *UserGamification) HasBadge(id string) bool {
	for _, b := range g.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Badge describes a one-time achievement
type Badge struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// XpEvent is the result of a single ledger transition
type XpEvent struct {
	XPGained  int      `json:"xp_gained"`
	NewBadges []string `json:"new_badges"`
	LeveledUp bool     `json:"leveled_up"`
	OldLevel  int      `json:"old_level"`
	NewLevel  int      `json:"new_level"`
}

// LevelInfo is derived from XP, never stored
type LevelInfo struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	CurrentXP   int    `json:"current_xp"`
	NextLevelXP int    `json:"next_level_xp"`
	Progress    int    `json:"progress"` // percent toward the next threshold
}

// LeaderboardRow ranks a class member by XP
type LeaderboardRow struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
	Streak   int    `json:"streak"`
}

// Package gamification implements the XP/streak/badge ledger as pure
// transitions over a UserGamification record. Every operation takes an
// explicit clock value so streak behavior is deterministic under test;
// the caller persists the mutated record.
package gamification

import (
	"sort"
	"time"

	"github.com/colearn-app/colearn-api/models"
)

// XP amounts for qualifying events
const (
	XPLesson        = 25
	XPModule        = 200
	XPCourse        = 500
	XPDailyLogin    = 10
	XPDuelWin       = 50
	XPAssignmentMax = 100
	XPAssignmentHi  = 75
	XPAssignmentLo  = 50
)

// BossXPReward maps boss difficulty to the XP granted on victory
var BossXPReward = map[string]int{
	"normal":    150,
	"hard":      200,
	"nightmare": 300,
}

func dayString(t time.Time) string {
	return t.Format("2006-01-02")
}

// updateStreak advances the consecutive-day counter: a same-day call is
// a no-op, yesterday extends the streak, anything older resets it to 1.
func updateStreak(g *models.UserGamification, now time.Time) {
	today := dayString(now)
	if g.LastActiveDate == today {
		return
	}
	if g.LastActiveDate == dayString(now.AddDate(0, 0, -1)) {
		g.Streak++
	} else {
		g.Streak = 1
	}
	g.LastActiveDate = today
}

func finishEvent(g *models.UserGamification, oldLevel, xpGained int, newBadges []string) models.XpEvent {
	newLevel := GetLevel(g.XP).Level
	if newBadges == nil {
		newBadges = []string{}
	}
	return models.XpEvent{
		XPGained:  xpGained,
		NewBadges: newBadges,
		LeveledUp: newLevel > oldLevel,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// AwardLessonComplete records a finished lesson.
func AwardLessonComplete(g *models.UserGamification, now time.Time) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	updateStreak(g, now)
	g.XP += XPLesson
	g.TotalLessons++
	g.LessonsToday++
	newBadges := checkBadges(g)
	return finishEvent(g, oldLevel, XPLesson, newBadges)
}

// AwardAssignmentComplete records a graded assignment. A perfect score
// grants the perfect_score badge; the grant is idempotent.
func AwardAssignmentComplete(g *models.UserGamification, score int, now time.Time) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	updateStreak(g, now)

	xp := XPAssignmentLo
	switch {
	case score == 100:
		xp = XPAssignmentMax
	case score >= 80:
		xp = XPAssignmentHi
	}
	g.XP += xp
	g.TotalAssignments++

	var newBadges []string
	if score == 100 && !g.HasBadge(BadgePerfectScore) {
		g.Badges = append(g.Badges, BadgePerfectScore)
		newBadges = append(newBadges, BadgePerfectScore)
	}
	newBadges = append(newBadges, checkBadges(g)...)
	return finishEvent(g, oldLevel, xp, newBadges)
}

// AwardModuleComplete records a fully finished module.
func AwardModuleComplete(g *models.UserGamification) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	g.XP += XPModule

	var newBadges []string
	if !g.HasBadge(BadgeModuleMaster) {
		g.Badges = append(g.Badges, BadgeModuleMaster)
		newBadges = append(newBadges, BadgeModuleMaster)
	}
	newBadges = append(newBadges, checkBadges(g)...)
	return finishEvent(g, oldLevel, XPModule, newBadges)
}

// AwardCourseComplete records a finished course.
func AwardCourseComplete(g *models.UserGamification) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	g.XP += XPCourse
	g.TotalCourses++
	newBadges := checkBadges(g)
	return finishEvent(g, oldLevel, XPCourse, newBadges)
}

// AwardDuelWin records an arena duel victory.
func AwardDuelWin(g *models.UserGamification, now time.Time) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	updateStreak(g, now)
	g.XP += XPDuelWin
	newBadges := checkBadges(g)
	return finishEvent(g, oldLevel, XPDuelWin, newBadges)
}

// AwardBossDefeat records a boss fight victory; XP scales with the
// fight's difficulty.
func AwardBossDefeat(g *models.UserGamification, difficulty string, now time.Time) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	updateStreak(g, now)
	xp, ok := BossXPReward[difficulty]
	if !ok {
		xp = BossXPReward["normal"]
	}
	g.XP += xp
	newBadges := checkBadges(g)
	return finishEvent(g, oldLevel, xp, newBadges)
}

// AwardSocialBadge grants the class membership badge once.
func AwardSocialBadge(g *models.UserGamification) models.XpEvent {
	oldLevel := GetLevel(g.XP).Level
	var newBadges []string
	if !g.HasBadge(BadgeSocial) {
		g.Badges = append(g.Badges, BadgeSocial)
		newBadges = append(newBadges, BadgeSocial)
	}
	return finishEvent(g, oldLevel, 0, newBadges)
}

// RecordDailyLogin grants the daily login bonus at most once per day
// and resets the per-day lesson counter. A repeat call on the same day
// changes nothing and gains no XP.
func RecordDailyLogin(g *models.UserGamification, now time.Time) models.XpEvent {
	if g.LastActiveDate == dayString(now) {
		level := GetLevel(g.XP).Level
		return models.XpEvent{NewBadges: []string{}, OldLevel: level, NewLevel: level}
	}
	oldLevel := GetLevel(g.XP).Level
	updateStreak(g, now)
	g.XP += XPDailyLogin
	g.LessonsToday = 0
	newBadges := checkBadges(g)
	return finishEvent(g, oldLevel, XPDailyLogin, newBadges)
}

// ClassLeaderboard ranks member records by XP, highest first.
func ClassLeaderboard(records []models.UserGamification, names map[int]string) []models.LeaderboardRow {
	rows := make([]models.LeaderboardRow, 0, len(records))
	for _, g := range records {
		rows = append(rows, models.LeaderboardRow{
			UserID:   g.UserID,
			Username: names[g.UserID],
			XP:       g.XP,
			Level:    GetLevel(g.XP).Level,
			Streak:   g.Streak,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].XP > rows[j].XP })
	return rows
}

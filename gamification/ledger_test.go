package gamification

import (
	"testing"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		xp          int
		level       int
		name        string
		nextLevelXP int
		progress    int
	}{
		{0, 1, "Novice", 100, 0},
		{99, 1, "Novice", 100, 99},
		{100, 2, "Apprentice", 300, 0},
		{250, 2, "Apprentice", 300, 75},
		{600, 4, "Scholar", 1000, 0},
		{2500, 7, "Grandmaster", 2500, 100},
		{9999, 7, "Grandmaster", 2500, 100},
	}

	for _, tt := range tests {
		info := GetLevel(tt.xp)
		assert.Equal(t, tt.level, info.Level, "xp=%d", tt.xp)
		assert.Equal(t, tt.name, info.Name, "xp=%d", tt.xp)
		assert.Equal(t, tt.nextLevelXP, info.NextLevelXP, "xp=%d", tt.xp)
		assert.Equal(t, tt.progress, info.Progress, "xp=%d", tt.xp)
	}
}

func TestStreakTransitions(t *testing.T) {
	t.Run("first activity starts streak at 1", func(t *testing.T) {
		g := &models.UserGamification{UserID: 1}
		AwardLessonComplete(g, day1)
		assert.Equal(t, 1, g.Streak)
		assert.Equal(t, "2025-03-10", g.LastActiveDate)
	})

	t.Run("next day extends streak", func(t *testing.T) {
		g := &models.UserGamification{UserID: 1, Streak: 4, LastActiveDate: "2025-03-09"}
		AwardLessonComplete(g, day1)
		assert.Equal(t, 5, g.Streak)
	})

	t.Run("same day does not extend", func(t *testing.T) {
		g := &models.UserGamification{UserID: 1, Streak: 4, LastActiveDate: "2025-03-10"}
		AwardLessonComplete(g, day1)
		assert.Equal(t, 4, g.Streak)
	})

	t.Run("gap resets to 1", func(t *testing.T) {
		g := &models.UserGamification{UserID: 1, Streak: 12, LastActiveDate: "2025-03-07"}
		AwardLessonComplete(g, day1)
		assert.Equal(t, 1, g.Streak)
	})
}

func TestAwardLessonComplete(t *testing.T) {
	g := &models.UserGamification{UserID: 1}
	event := AwardLessonComplete(g, day1)

	assert.Equal(t, XPLesson, event.XPGained)
	assert.Equal(t, XPLesson, g.XP)
	assert.Equal(t, 1, g.TotalLessons)
	assert.Equal(t, 1, g.LessonsToday)
	assert.Contains(t, event.NewBadges, BadgeFirstLesson)

	// badge is never granted twice
	event = AwardLessonComplete(g, day1)
	assert.NotContains(t, event.NewBadges, BadgeFirstLesson)
}

func TestAwardAssignmentComplete(t *testing.T) {
	tests := []struct {
		score int
		xp    int
	}{
		{100, XPAssignmentMax},
		{95, XPAssignmentHi},
		{80, XPAssignmentHi},
		{79, XPAssignmentLo},
		{0, XPAssignmentLo},
	}

	for _, tt := range tests {
		g := &models.UserGamification{UserID: 1}
		event := AwardAssignmentComplete(g, tt.score, day1)
		assert.Equal(t, tt.xp, event.XPGained, "score=%d", tt.score)
	}

	t.Run("perfect score badge", func(t *testing.T) {
		g := &models.UserGamification{UserID: 1}
		event := AwardAssignmentComplete(g, 100, day1)
		assert.Contains(t, event.NewBadges, BadgePerfectScore)

		event = AwardAssignmentComplete(g, 100, day1)
		assert.NotContains(t, event.NewBadges, BadgePerfectScore)
	})
}

func TestAwardModuleAndCourse(t *testing.T) {
	g := &models.UserGamification{UserID: 1}

	event := AwardModuleComplete(g)
	assert.Equal(t, XPModule, event.XPGained)
	assert.Contains(t, event.NewBadges, BadgeModuleMaster)
	assert.True(t, event.LeveledUp)

	event = AwardCourseComplete(g)
	assert.Equal(t, XPCourse, event.XPGained)
	assert.Contains(t, event.NewBadges, BadgeFirstCourse)
	assert.Equal(t, 1, g.TotalCourses)
}

func TestAwardBossDefeat(t *testing.T) {
	for difficulty, want := range BossXPReward {
		g := &models.UserGamification{UserID: 1}
		event := AwardBossDefeat(g, difficulty, day1)
		assert.Equal(t, want, event.XPGained, "difficulty=%s", difficulty)
	}

	g := &models.UserGamification{UserID: 1}
	event := AwardBossDefeat(g, "unknown", day1)
	assert.Equal(t, BossXPReward["normal"], event.XPGained)
}

func TestRecordDailyLogin(t *testing.T) {
	g := &models.UserGamification{UserID: 1, LessonsToday: 3}

	event := RecordDailyLogin(g, day1)
	assert.Equal(t, XPDailyLogin, event.XPGained)
	assert.Equal(t, 0, g.LessonsToday)
	assert.Equal(t, 1, g.Streak)

	// second call on the same day is a no-op
	event = RecordDailyLogin(g, day1.Add(2*time.Hour))
	assert.Equal(t, 0, event.XPGained)
	assert.Equal(t, XPDailyLogin, g.XP)
	assert.Empty(t, event.NewBadges)
}

func TestStreakBadges(t *testing.T) {
	g := &models.UserGamification{UserID: 1}

	var last models.XpEvent
	for i := 0; i < 3; i++ {
		last = AwardLessonComplete(g, day1.AddDate(0, 0, i))
	}
	require.Equal(t, 3, g.Streak)
	assert.Contains(t, last.NewBadges, BadgeStreak3)
	assert.True(t, g.HasBadge(BadgeStreak3))
	assert.False(t, g.HasBadge(BadgeStreak7))
}

func TestSpeedLearnerBadge(t *testing.T) {
	g := &models.UserGamification{UserID: 1}

	var last models.XpEvent
	for i := 0; i < 5; i++ {
		last = AwardLessonComplete(g, day1)
	}
	assert.Contains(t, last.NewBadges, BadgeSpeedLearner)
}

func TestAwardSocialBadge(t *testing.T) {
	g := &models.UserGamification{UserID: 1}

	event := AwardSocialBadge(g)
	assert.Equal(t, 0, event.XPGained)
	assert.Equal(t, []string{BadgeSocial}, event.NewBadges)

	event = AwardSocialBadge(g)
	assert.Empty(t, event.NewBadges)
}

func TestClassLeaderboard(t *testing.T) {
	records := []models.UserGamification{
		{UserID: 1, XP: 150, Streak: 2},
		{UserID: 2, XP: 700, Streak: 9},
		{UserID: 3, XP: 150, Streak: 1},
	}
	names := map[int]string{1: "ana", 2: "ben", 3: "cleo"}

	rows := ClassLeaderboard(records, names)
	require.Len(t, rows, 3)
	assert.Equal(t, "ben", rows[0].Username)
	assert.Equal(t, 4, rows[0].Level)
	// equal XP keeps input order
	assert.Equal(t, 1, rows[1].UserID)
	assert.Equal(t, 3, rows[2].UserID)
}

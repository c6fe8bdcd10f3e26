package gamification

import "github.com/colearn-app/colearn-api/models"

// Badge identifiers
const (
	BadgeFirstLesson  = "first_lesson"
	BadgeTenLessons   = "ten_lessons"
	BadgeFirstCourse  = "first_course"
	BadgeStreak3      = "streak_3"
	BadgeStreak7      = "streak_7"
	BadgeStreak30     = "streak_30"
	BadgePerfectScore = "perfect_score"
	BadgeModuleMaster = "module_master"
	BadgeSpeedLearner = "speed_learner"
	BadgeSocial       = "social"
)

// AllBadges is the full catalog served to clients
var AllBadges = []models.Badge{
	{ID: BadgeFirstLesson, Icon: "🎯", Name: "First Steps", Description: "Complete your first lesson"},
	{ID: BadgeFirstCourse, Icon: "🏆", Name: "Graduate", Description: "Complete your first course"},
	{ID: BadgeStreak3, Icon: "🔥", Name: "On Fire", Description: "Keep a 3-day streak"},
	{ID: BadgeStreak7, Icon: "⚡", Name: "Unstoppable", Description: "Keep a 7-day streak"},
	{ID: BadgeStreak30, Icon: "💎", Name: "Diamond Will", Description: "Keep a 30-day streak"},
	{ID: BadgePerfectScore, Icon: "💯", Name: "Perfectionist", Description: "Score 100% on an assignment"},
	{ID: BadgeModuleMaster, Icon: "📦", Name: "Module Master", Description: "Complete a full module"},
	{ID: BadgeSpeedLearner, Icon: "⚡", Name: "Speed Learner", Description: "Finish 5 lessons in one day"},
	{ID: BadgeSocial, Icon: "👥", Name: "Social Butterfly", Description: "Join a class"},
	{ID: BadgeTenLessons, Icon: "📚", Name: "Bookworm", Description: "Complete 10 lessons"},
}

// checkBadges evaluates the declarative rule table against the current
// record and grants anything newly qualified. Grants are idempotent
// and never retracted.
func checkBadges(g *models.UserGamification) []string {
	var newBadges []string
	tryAward := func(id string, condition bool) {
		if condition && !g.HasBadge(id) {
			g.Badges = append(g.Badges, id)
			newBadges = append(newBadges, id)
		}
	}

	tryAward(BadgeFirstLesson, g.TotalLessons >= 1)
	tryAward(BadgeTenLessons, g.TotalLessons >= 10)
	tryAward(BadgeFirstCourse, g.TotalCourses >= 1)
	tryAward(BadgeStreak3, g.Streak >= 3)
	tryAward(BadgeStreak7, g.Streak >= 7)
	tryAward(BadgeStreak30, g.Streak >= 30)
	tryAward(BadgeSpeedLearner, g.LessonsToday >= 5)

	return newBadges
}

package gamification

import "github.com/colearn-app/colearn-api/models"

type levelStep struct {
	Level int
	XP    int
	Name  string
}

// Levels is a fixed ascending threshold table. The current level is the
// highest threshold at or below the user's XP.
var Levels = []levelStep{
	{1, 0, "Novice"},
	{2, 100, "Apprentice"},
	{3, 300, "Student"},
	{4, 600, "Scholar"},
	{5, 1000, "Expert"},
	{6, 1500, "Master"},
	{7, 2500, "Grandmaster"},
}

// GetLevel derives level info from an XP total. Progress toward the
// next threshold saturates at 100 on the top level.
func GetLevel(xp int) models.LevelInfo {
	current := Levels[0]
	currentIdx := 0
	for i, l := range Levels {
		if xp >= l.XP {
			current = l
			currentIdx = i
		}
	}

	info := models.LevelInfo{
		Level:     current.Level,
		Name:      current.Name,
		CurrentXP: xp,
	}

	if currentIdx+1 < len(Levels) {
		next := Levels[currentIdx+1]
		info.NextLevelXP = next.XP
		progress := int(float64(xp-current.XP)/float64(next.XP-current.XP)*100 + 0.5)
		if progress > 100 {
			progress = 100
		}
		info.Progress = progress
	} else {
		info.NextLevelXP = current.XP
		info.Progress = 100
	}

	return info
}

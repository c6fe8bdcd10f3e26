package arena

import (
	"fmt"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/google/uuid"
)

const bossPlayerHP = 100

// BossConfig fixes the per-difficulty shape of a boss fight
type BossConfig struct {
	Name      string
	Avatar    string
	HP        int
	MaxRounds int
	XPReward  int
}

// BossConfigs keys fight parameters by difficulty
var BossConfigs = map[string]BossConfig{
	"normal":    {Name: "Strict Professor", Avatar: "👨‍🏫", HP: 100, MaxRounds: 6, XPReward: 150},
	"hard":      {Name: "Evil Expert", Avatar: "😈", HP: 120, MaxRounds: 7, XPReward: 200},
	"nightmare": {Name: "Knowledge Master", Avatar: "🐉", HP: 150, MaxRounds: 8, XPReward: 300},
}

// NewBossFight builds a fresh fight with the boss's opening line
// already on the transcript.
func NewBossFight(userID int, topic, difficulty, intro string) (*models.BossFight, error) {
	cfg, ok := BossConfigs[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown boss difficulty: %s", difficulty)
	}
	now := time.Now()
	return &models.BossFight{
		ID:          uuid.NewString(),
		UserID:      userID,
		Topic:       topic,
		Difficulty:  difficulty,
		Status:      models.BossInProgress,
		PlayerHP:    bossPlayerHP,
		PlayerMaxHP: bossPlayerHP,
		BossHP:      cfg.HP,
		BossMaxHP:   cfg.HP,
		BossName:    cfg.Name,
		BossAvatar:  cfg.Avatar,
		Messages: []models.BossMessage{
			{Role: "boss", Content: intro, Timestamp: now},
		},
		Round:     1,
		MaxRounds: cfg.MaxRounds,
		XPReward:  cfg.XPReward,
		CreatedAt: now,
	}, nil
}

// ApplyBossTurn folds one AI-judged round into the fight: the boss's
// narrative joins the transcript, both HP pools take the returned
// damage, and the round counter advances. Victory is checked before
// defeat, so a round that empties both pools counts as a win.
func ApplyBossTurn(f *models.BossFight, narrative string, playerDamage, bossDamage int) error {
	if f.Status != models.BossInProgress {
		return fmt.Errorf("boss fight already %s", f.Status)
	}

	f.Messages = append(f.Messages, models.BossMessage{
		Role:        "boss",
		Content:     narrative,
		DamageDealt: playerDamage,
		Timestamp:   time.Now(),
	})
	f.PlayerHP = clampHP(f.PlayerHP - playerDamage)
	f.BossHP = clampHP(f.BossHP - bossDamage)
	f.Round++

	if f.BossHP <= 0 {
		f.Status = models.BossVictory
	} else if f.PlayerHP <= 0 || f.Round > f.MaxRounds {
		f.Status = models.BossDefeat
	}
	return nil
}

// AddPlayerMessage appends the player's free-text answer to the
// transcript before the AI collaborator judges it.
func AddPlayerMessage(f *models.BossFight, content string) {
	f.Messages = append(f.Messages, models.BossMessage{
		Role:      "player",
		Content:   content,
		Timestamp: time.Now(),
	})
}

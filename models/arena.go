package models

import "time"

// Duel statuses
const (
	DuelPlaying  = "playing"
	DuelAITurn   = "ai_turn"
	DuelFinished = "finished"
)

// Boss fight statuses
const (
	BossInProgress = "in_progress"
	BossVictory    = "victory"
	BossDefeat     = "defeat"
)

// ArenaProfile is a user's persistent competitive record
type ArenaProfile struct {
	UserID         int `json:"user_id"`
	ArenaRating    int `json:"arena_rating"`
	DuelsWon       int `json:"duels_won"`
	DuelsLost      int `json:"duels_lost"`
	BossesDefeated int `json:"bosses_defeated"`
	ArenaTokens    int `json:"arena_tokens"`
	WinStreak      int `json:"win_streak"`
	BestWinStreak  int `json:"best_win_streak"`
}

// DuelQuestion is a single quiz question in a duel
type DuelQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
}

// Duel is a quiz battle session against a simulated AI opponent.
// Active duels live in memory; finished duels persist to history.
type Duel struct {
	ID           string         `json:"id"`
	UserID       int            `json:"user_id"`
	Topic        string         `json:"topic"`
	Questions    []DuelQuestion `json:"questions"`
	Index        int            `json:"index"`
	PlayerHP     int            `json:"player_hp"`
	AIHP         int            `json:"ai_hp"`
	PlayerScore  int            `json:"player_score"`
	AIScore      int            `json:"ai_score"`
	Combo        int            `json:"combo"`
	MaxCombo     int            `json:"max_combo"`
	AIName       string         `json:"ai_name"`
	AIAvatar     string         `json:"ai_avatar"`
	AIDifficulty string         `json:"ai_difficulty"` // easy, medium, hard
	Status       string         `json:"status"`
	WinnerIsUser *bool          `json:"winner_is_user,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DuelAnswerResult reports the resolution of one question round
type DuelAnswerResult struct {
	PlayerCorrect bool   `json:"player_correct"`
	AICorrect     bool   `json:"ai_correct"`
	PlayerPoints  int    `json:"player_points"`
	AIPoints      int    `json:"ai_points"`
	PlayerDamage  int    `json:"player_damage"` // damage taken by the player
	AIDamage      int    `json:"ai_damage"`     // damage taken by the AI
	Combo         int    `json:"combo"`
	AIThinkMs     int    `json:"ai_think_ms"` // UX pacing hint, not game logic
	Status        string `json:"status"`
}

// BossMessage is one entry of the boss fight transcript
type BossMessage struct {
	Role        string    `json:"role"` // player or boss
	Content     string    `json:"content"`
	DamageDealt int       `json:"damage_dealt,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BossFight is a conversational battle against an AI-narrated adversary
type BossFight struct {
	ID          string        `json:"id"`
	UserID      int           `json:"user_id"`
	Topic       string        `json:"topic"`
	Difficulty  string        `json:"difficulty"` // normal, hard, nightmare
	Status      string        `json:"status"`
	PlayerHP    int           `json:"player_hp"`
	PlayerMaxHP int           `json:"player_max_hp"`
	BossHP      int           `json:"boss_hp"`
	BossMaxHP   int           `json:"boss_max_hp"`
	BossName    string        `json:"boss_name"`
	BossAvatar  string        `json:"boss_avatar"`
	Messages    []BossMessage `json:"messages"`
	Round       int           `json:"round"`
	MaxRounds   int           `json:"max_rounds"`
	XPReward    int           `json:"xp_reward"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ArenaRank is one leaderboard row
type ArenaRank struct {
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	ArenaRating int    `json:"arena_rating"`
}

// StartDuelRequest begins a duel on a topic
type StartDuelRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// DuelAnswerRequest submits an answer with its latency
type DuelAnswerRequest struct {
	Answer string `json:"answer"`
	TimeMs int    `json:"time_ms"`
}

// StartBossRequest begins a boss fight
type StartBossRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// BossMessageRequest sends the player's free-text answer
type BossMessageRequest struct {
	Message string `json:"message"`
}

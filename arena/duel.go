// Package arena implements the battle resolvers for quiz duels and
// boss fights. Resolution is pure state transition over in-memory
// records; randomness is injected so outcomes are deterministic under
// test.
package arena

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/google/uuid"
)

// Duel damage/scoring constants
const (
	duelStartHP      = 100
	duelDamage       = 20
	duelBothWrongDmg = 8
	comboMultiplier  = 0.15
)

// AIOpponent fixes the simulated opponent's per-question accuracy
type AIOpponent struct {
	Name     string
	Avatar   string
	Accuracy float64
}

// AIOpponents keys opponent behavior by difficulty
var AIOpponents = map[string]AIOpponent{
	"easy":   {Name: "Rookie Bot", Avatar: "🤖", Accuracy: 0.40},
	"medium": {Name: "Smarty 3000", Avatar: "🧠", Accuracy: 0.65},
	"hard":   {Name: "AI Genius", Avatar: "👾", Accuracy: 0.85},
}

// NewDuel builds a fresh duel session over a generated question list.
func NewDuel(userID int, topic, difficulty string, questions []models.DuelQuestion) (*models.Duel, error) {
	opp, ok := AIOpponents[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown duel difficulty: %s", difficulty)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("a duel needs at least one question")
	}
	return &models.Duel{
		ID:           uuid.NewString(),
		UserID:       userID,
		Topic:        topic,
		Questions:    questions,
		PlayerHP:     duelStartHP,
		AIHP:         duelStartHP,
		AIName:       opp.Name,
		AIAvatar:     opp.Avatar,
		AIDifficulty: difficulty,
		Status:       models.DuelPlaying,
		CreatedAt:    time.Now(),
	}, nil
}

// ResolveAnswer applies one full question round: the player's answer is
// checked against the known correct answer, the AI opponent rolls
// correct/incorrect at its fixed accuracy, and HP/score/combo update
// per the damage table. The duel then advances, finishing when the
// question list is exhausted or either HP pool reaches zero.
func ResolveAnswer(d *models.Duel, answer string, elapsed time.Duration, rng *rand.Rand) (*models.DuelAnswerResult, error) {
	if d.Status != models.DuelPlaying {
		return nil, fmt.Errorf("duel is not accepting answers (status %s)", d.Status)
	}

	q := d.Questions[d.Index]
	playerCorrect := answer == q.CorrectAnswer
	aiCorrect := rng.Float64() < AIOpponents[d.AIDifficulty].Accuracy
	elapsedSec := int(elapsed / time.Second)

	res := &models.DuelAnswerResult{
		PlayerCorrect: playerCorrect,
		AICorrect:     aiCorrect,
		AIThinkMs:     800 + rng.Intn(600),
	}

	switch {
	case playerCorrect && !aiCorrect:
		d.AIHP = clampHP(d.AIHP - duelDamage)
		d.Combo++
		if d.Combo > d.MaxCombo {
			d.MaxCombo = d.Combo
		}
		bonus := max(0, 15-elapsedSec)
		pts := int(float64(10+bonus)*(1+float64(d.Combo)*comboMultiplier) + 0.5)
		d.PlayerScore += pts
		res.PlayerPoints = pts
		res.AIDamage = duelDamage

	case !playerCorrect && aiCorrect:
		d.PlayerHP = clampHP(d.PlayerHP - duelDamage)
		d.Combo = 0
		d.AIScore += 10
		res.AIPoints = 10
		res.PlayerDamage = duelDamage

	case playerCorrect && aiCorrect:
		bonus := max(0, 10-elapsedSec)
		d.PlayerScore += 5 + bonus
		d.AIScore += 5
		d.Combo++
		if d.Combo > d.MaxCombo {
			d.MaxCombo = d.Combo
		}
		res.PlayerPoints = 5 + bonus
		res.AIPoints = 5

	default: // both wrong
		d.PlayerHP = clampHP(d.PlayerHP - duelBothWrongDmg)
		d.AIHP = clampHP(d.AIHP - duelBothWrongDmg)
		d.Combo = 0
		res.PlayerDamage = duelBothWrongDmg
		res.AIDamage = duelBothWrongDmg
	}

	res.Combo = d.Combo
	advance(d)
	res.Status = d.Status
	return res, nil
}

func advance(d *models.Duel) {
	d.Index++
	if d.Index >= len(d.Questions) || d.PlayerHP <= 0 || d.AIHP <= 0 {
		d.Status = models.DuelFinished
		won := d.PlayerHP > d.AIHP ||
			(d.PlayerHP == d.AIHP && d.PlayerScore > d.AIScore)
		d.WinnerIsUser = &won
	}
}

// PlayerWon reports the duel outcome; false until the duel finishes.
func PlayerWon(d *models.Duel) bool {
	return d.WinnerIsUser != nil && *d.WinnerIsUser
}

// Profile adjustment constants. Two reward schemes existed historically
// (+25/−15 with a token stake vs. the live +20/−10/+15); the live
// single-player scheme is canonical here.
const (
	RatingWinDelta  = 20
	RatingLossDelta = 10
	TokensPerWin    = 15
)

// ApplyDuelOutcome folds a finished duel into the persistent profile.
func ApplyDuelOutcome(p *models.ArenaProfile, won bool) {
	if won {
		p.DuelsWon++
		p.ArenaRating += RatingWinDelta
		p.ArenaTokens += TokensPerWin
		p.WinStreak++
		if p.WinStreak > p.BestWinStreak {
			p.BestWinStreak = p.WinStreak
		}
	} else {
		p.DuelsLost++
		p.ArenaRating = max(0, p.ArenaRating-RatingLossDelta)
		p.WinStreak = 0
	}
}

func clampHP(hp int) int {
	if hp < 0 {
		return 0
	}
	return hp
}

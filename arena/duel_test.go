package arena

import (
	"math/rand"
	"testing"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duelQuestions(n int) []models.DuelQuestion {
	qs := make([]models.DuelQuestion, n)
	for i := range qs {
		qs[i] = models.DuelQuestion{
			ID:            "q",
			Question:      "?",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}
	}
	return qs
}

// seedWithAIRoll finds a seed whose first roll makes the simulated
// opponent answer the way the test needs.
func seedWithAIRoll(t *testing.T, accuracy float64, wantCorrect bool) *rand.Rand {
	t.Helper()
	for seed := int64(0); seed < 10000; seed++ {
		if (rand.New(rand.NewSource(seed)).Float64() < accuracy) == wantCorrect {
			return rand.New(rand.NewSource(seed))
		}
	}
	t.Fatal("no suitable seed found")
	return nil
}

func TestNewDuel(t *testing.T) {
	duel, err := NewDuel(7, "algebra", "easy", duelQuestions(5))
	require.NoError(t, err)

	assert.NotEmpty(t, duel.ID)
	assert.Equal(t, 7, duel.UserID)
	assert.Equal(t, 100, duel.PlayerHP)
	assert.Equal(t, 100, duel.AIHP)
	assert.Equal(t, "Rookie Bot", duel.AIName)
	assert.Equal(t, models.DuelPlaying, duel.Status)
	assert.Nil(t, duel.WinnerIsUser)

	_, err = NewDuel(7, "algebra", "impossible", duelQuestions(5))
	assert.Error(t, err)

	_, err = NewDuel(7, "algebra", "easy", nil)
	assert.Error(t, err)
}

func TestResolveAnswerDamageTable(t *testing.T) {
	accuracy := AIOpponents["medium"].Accuracy

	t.Run("player correct, ai wrong", func(t *testing.T) {
		duel, _ := NewDuel(1, "go", "medium", duelQuestions(5))
		rng := seedWithAIRoll(t, accuracy, false)

		res, err := ResolveAnswer(duel, "a", 5*time.Second, rng)
		require.NoError(t, err)

		assert.True(t, res.PlayerCorrect)
		assert.False(t, res.AICorrect)
		assert.Equal(t, 80, duel.AIHP)
		assert.Equal(t, 100, duel.PlayerHP)
		assert.Equal(t, 1, res.Combo)
		// (10 + 10s time bonus) * 1.15 combo multiplier, rounded
		assert.Equal(t, 23, res.PlayerPoints)
		assert.Equal(t, 20, res.AIDamage)
		assert.Equal(t, 0, res.PlayerDamage)
	})

	t.Run("player wrong, ai correct", func(t *testing.T) {
		duel, _ := NewDuel(1, "go", "medium", duelQuestions(5))
		duel.Combo = 3
		rng := seedWithAIRoll(t, accuracy, true)

		res, err := ResolveAnswer(duel, "b", 5*time.Second, rng)
		require.NoError(t, err)

		assert.Equal(t, 80, duel.PlayerHP)
		assert.Equal(t, 100, duel.AIHP)
		assert.Equal(t, 0, duel.Combo)
		assert.Equal(t, 10, res.AIPoints)
		assert.Equal(t, 20, res.PlayerDamage)
	})

	t.Run("both correct", func(t *testing.T) {
		duel, _ := NewDuel(1, "go", "medium", duelQuestions(5))
		rng := seedWithAIRoll(t, accuracy, true)

		res, err := ResolveAnswer(duel, "a", 5*time.Second, rng)
		require.NoError(t, err)

		assert.Equal(t, 100, duel.PlayerHP)
		assert.Equal(t, 100, duel.AIHP)
		// 5 base + max(0, 10-5) time bonus
		assert.Equal(t, 10, res.PlayerPoints)
		assert.Equal(t, 5, res.AIPoints)
		assert.Equal(t, 1, res.Combo)
	})

	t.Run("both wrong", func(t *testing.T) {
		duel, _ := NewDuel(1, "go", "medium", duelQuestions(5))
		duel.Combo = 2
		rng := seedWithAIRoll(t, accuracy, false)

		res, err := ResolveAnswer(duel, "b", 5*time.Second, rng)
		require.NoError(t, err)

		assert.Equal(t, 92, duel.PlayerHP)
		assert.Equal(t, 92, duel.AIHP)
		assert.Equal(t, 0, duel.Combo)
		assert.Equal(t, 8, res.PlayerDamage)
		assert.Equal(t, 8, res.AIDamage)
	})
}

func TestDuelFinishesAfterLastQuestion(t *testing.T) {
	duel, _ := NewDuel(1, "go", "easy", duelQuestions(3))
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 3; i++ {
		require.Equal(t, models.DuelPlaying, duel.Status)
		_, err := ResolveAnswer(duel, "a", time.Second, rng)
		require.NoError(t, err)
	}

	assert.Equal(t, models.DuelFinished, duel.Status)
	require.NotNil(t, duel.WinnerIsUser)

	_, err := ResolveAnswer(duel, "a", time.Second, rng)
	assert.Error(t, err)
}

func TestWinnerTieBreakOnScore(t *testing.T) {
	duel, _ := NewDuel(1, "go", "medium", duelQuestions(1))
	duel.PlayerScore = 40
	rng := seedWithAIRoll(t, AIOpponents["medium"].Accuracy, false)

	// both wrong: HP stays even, accumulated score decides
	_, err := ResolveAnswer(duel, "b", time.Second, rng)
	require.NoError(t, err)

	require.Equal(t, models.DuelFinished, duel.Status)
	assert.True(t, PlayerWon(duel))
}

func TestApplyDuelOutcome(t *testing.T) {
	t.Run("win", func(t *testing.T) {
		p := &models.ArenaProfile{UserID: 1, ArenaRating: 1000, ArenaTokens: 100, WinStreak: 2, BestWinStreak: 2}
		ApplyDuelOutcome(p, true)

		assert.Equal(t, 1020, p.ArenaRating)
		assert.Equal(t, 115, p.ArenaTokens)
		assert.Equal(t, 1, p.DuelsWon)
		assert.Equal(t, 3, p.WinStreak)
		assert.Equal(t, 3, p.BestWinStreak)
	})

	t.Run("loss", func(t *testing.T) {
		p := &models.ArenaProfile{UserID: 1, ArenaRating: 1000, ArenaTokens: 100, WinStreak: 5, BestWinStreak: 5}
		ApplyDuelOutcome(p, false)

		assert.Equal(t, 990, p.ArenaRating)
		assert.Equal(t, 100, p.ArenaTokens)
		assert.Equal(t, 1, p.DuelsLost)
		assert.Equal(t, 0, p.WinStreak)
		assert.Equal(t, 5, p.BestWinStreak)
	})

	t.Run("rating never negative", func(t *testing.T) {
		p := &models.ArenaProfile{UserID: 1, ArenaRating: 5}
		ApplyDuelOutcome(p, false)
		assert.Equal(t, 0, p.ArenaRating)
	})
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDuel(t *testing.T, env *testEnv, userID int, questions int) *models.Duel {
	t.Helper()

	qs := make([]models.DuelQuestion, questions)
	for i := range qs {
		qs[i] = models.DuelQuestion{
			ID:            "q",
			Question:      "?",
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
		}
	}
	duel, err := arena.NewDuel(userID, "go", "easy", qs)
	require.NoError(t, err)
	env.battles.PutDuel(duel)
	return duel
}

func TestArenaProfileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "ana")

	rec := env.do(t, http.MethodGet, "/arena/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.ArenaProfile
	decode(t, rec, &profile)
	assert.Equal(t, 1000, profile.ArenaRating)
	assert.Equal(t, 100, profile.ArenaTokens)
}

func TestDuelAnswerFlow(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")
	duel := seedDuel(t, env, user.ID, 1)

	rec := env.do(t, http.MethodPost, "/arena/duels/"+duel.ID+"/answer", token,
		models.DuelAnswerRequest{Answer: "a", TimeMs: 3000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result  models.DuelAnswerResult `json:"result"`
		Duel    models.Duel             `json:"duel"`
		Profile *models.ArenaProfile    `json:"profile"`
	}
	decode(t, rec, &resp)

	assert.True(t, resp.Result.PlayerCorrect)
	assert.Equal(t, models.DuelFinished, resp.Duel.Status)
	require.NotNil(t, resp.Duel.WinnerIsUser)
	require.NotNil(t, resp.Profile)

	if *resp.Duel.WinnerIsUser {
		assert.Equal(t, 1020, resp.Profile.ArenaRating)
		assert.Equal(t, 1, resp.Profile.DuelsWon)
	} else {
		assert.Equal(t, 990, resp.Profile.ArenaRating)
		assert.Equal(t, 1, resp.Profile.DuelsLost)
	}

	t.Run("finished duel leaves the store", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/arena/duels/"+duel.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("duel lands in history", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/arena/duels/history", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var history []models.Duel
		decode(t, rec, &history)
		require.Len(t, history, 1)
		assert.Equal(t, duel.ID, history[0].ID)
	})
}

func TestDuelOwnership(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.signUp(t, "ana")
	_, strangerToken := env.signUp(t, "ben")
	duel := seedDuel(t, env, user.ID, 1)

	rec := env.do(t, http.MethodGet, "/arena/duels/"+duel.ID, strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/arena/duels/"+duel.ID+"/answer", strangerToken,
		models.DuelAnswerRequest{Answer: "a"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArenaLeaderboardFallsBackToSQL(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.signUp(t, "ana")
	_, tokenB := env.signUp(t, "ben")

	// touch both profiles so they exist
	env.do(t, http.MethodGet, "/arena/profile", tokenA, nil)
	env.do(t, http.MethodGet, "/arena/profile", tokenB, nil)

	rec := env.do(t, http.MethodGet, "/arena/leaderboard", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ranks []models.ArenaRank
	decode(t, rec, &ranks)
	require.Len(t, ranks, 2)
	assert.NotEmpty(t, ranks[0].Username)
}

func TestBossFightState(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")

	fight, err := arena.NewBossFight(user.ID, "math", "normal", "Prepare yourself.")
	require.NoError(t, err)
	env.battles.PutBossFight(fight)

	rec := env.do(t, http.MethodGet, "/arena/boss/"+fight.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.BossFight
	decode(t, rec, &got)
	assert.Equal(t, "Strict Professor", got.BossName)
	require.Len(t, got.Messages, 1)

	t.Run("finished fight rejects messages", func(t *testing.T) {
		fight.Status = models.BossVictory
		rec := env.do(t, http.MethodPost, "/arena/boss/"+fight.ID+"/message", token,
			models.BossMessageRequest{Message: "hello"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("starting without a topic is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/arena/boss", token, models.StartBossRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

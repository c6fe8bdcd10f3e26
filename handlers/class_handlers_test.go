package handlers

import (
	"net/http"
	"testing"

	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ana, anaToken := env.signUp(t, "ana")
	ben, benToken := env.signUp(t, "ben")

	// create
	rec := env.do(t, http.MethodPost, "/classes", anaToken, models.CreateClassRequest{Name: "Study Group"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var class models.ClassGroup
	decode(t, rec, &class)
	assert.Equal(t, ana.ID, class.CreatorID)

	t.Run("creator earns the social badge", func(t *testing.T) {
		record, err := env.database.GetGamification(ana.ID)
		require.NoError(t, err)
		assert.True(t, record.HasBadge(gamification.BadgeSocial))
	})

	t.Run("second class rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/classes", anaToken, models.CreateClassRequest{Name: "Another"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	// invite ben
	rec = env.do(t, http.MethodPost, "/classes/"+class.ID+"/invite", anaToken, models.InviteRequest{ToUserID: ben.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invite models.ClassInvite
	decode(t, rec, &invite)

	t.Run("outsider cannot invite", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/classes/"+class.ID+"/invite", benToken, models.InviteRequest{ToUserID: ben.ID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invitee sees the invite", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/invites", benToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var invites []models.ClassInvite
		decode(t, rec, &invites)
		require.Len(t, invites, 1)
		assert.Equal(t, "Study Group", invites[0].ClassName)
	})

	// accept
	rec = env.do(t, http.MethodPost, "/invites/"+invite.ID+"/accept", benToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var joined models.ClassGroup
	decode(t, rec, &joined)
	assert.ElementsMatch(t, []int{ana.ID, ben.ID}, joined.Members)

	t.Run("members listed", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/classes/"+class.ID+"/members", benToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var members []models.User
		decode(t, rec, &members)
		assert.Len(t, members, 2)
	})

	t.Run("chat round trip", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/classes/"+class.ID+"/messages", anaToken,
			models.ClassMessageRequest{Content: "welcome ben"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodGet, "/classes/"+class.ID+"/messages", benToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var messages []models.ClassChatMessage
		decode(t, rec, &messages)
		require.Len(t, messages, 1)
		assert.Equal(t, "welcome ben", messages[0].Content)
		assert.Equal(t, ana.ID, messages[0].UserID)
	})

	t.Run("leaderboard ranks members", func(t *testing.T) {
		record, err := env.database.GetGamification(ben.ID)
		require.NoError(t, err)
		record.XP = 300
		require.NoError(t, env.database.SaveGamification(record))

		rec := env.do(t, http.MethodGet, "/classes/"+class.ID+"/leaderboard", anaToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []models.LeaderboardRow
		decode(t, rec, &rows)
		require.Len(t, rows, 2)
		assert.Equal(t, ben.ID, rows[0].UserID)
	})

	t.Run("only the creator renames", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/classes/"+class.ID, benToken, models.CreateClassRequest{Name: "Hijacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPut, "/classes/"+class.ID, anaToken, models.CreateClassRequest{Name: "Renamed Group"})
		require.Equal(t, http.StatusOK, rec.Code)

		var renamed models.ClassGroup
		decode(t, rec, &renamed)
		assert.Equal(t, "Renamed Group", renamed.Name)
	})

	t.Run("leave", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/classes/leave", benToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/classes/"+class.ID+"/members", benToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRejectInviteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, anaToken := env.signUp(t, "ana")
	ben, benToken := env.signUp(t, "ben")

	rec := env.do(t, http.MethodPost, "/classes", anaToken, models.CreateClassRequest{Name: "Study Group"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var class models.ClassGroup
	decode(t, rec, &class)

	rec = env.do(t, http.MethodPost, "/classes/"+class.ID+"/invite", anaToken, models.InviteRequest{ToUserID: ben.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var invite models.ClassInvite
	decode(t, rec, &invite)

	rec = env.do(t, http.MethodPost, "/invites/"+invite.ID+"/reject", benToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/invites", benToken, nil)
	var invites []models.ClassInvite
	decode(t, rec, &invites)
	assert.Empty(t, invites)

	// ben never joined, no social badge
	record, err := env.database.GetGamification(ben.ID)
	require.NoError(t, err)
	assert.False(t, record.HasBadge(gamification.BadgeSocial))
}

func TestGetMyClass(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "ana")

	rec := env.do(t, http.MethodGet, "/classes", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.do(t, http.MethodPost, "/classes", token, models.CreateClassRequest{Name: "Study Group"})

	rec = env.do(t, http.MethodGet, "/classes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var class models.ClassGroup
	decode(t, rec, &class)
	assert.Equal(t, "Study Group", class.Name)
}

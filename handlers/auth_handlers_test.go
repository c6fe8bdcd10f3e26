package handlers

import (
	"net/http"
	"testing"

	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, token := env.signUp(t, "ana")
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, token)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
			Username: "ana",
			Email:    "ana@example.com",
			Name:     "Ana",
			Password: "secret123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login with correct password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
			Email:    "ana@example.com",
			Password: "secret123",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			User    models.User    `json:"user"`
			Session models.Session `json:"session"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "ana", resp.User.Username)
		assert.NotEmpty(t, resp.Session.ID)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
			Email:    "ana@example.com",
			Password: "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login with unknown email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "ana")

	rec := env.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	decode(t, rec, &me)
	assert.Equal(t, user.ID, me.ID)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bogus token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/me", "not-a-session", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "ana")

	rec := env.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "ana")

	name := "Ana Prime"
	rec := env.do(t, http.MethodPut, "/auth/profile", token, models.ProfileUpdateRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	decode(t, rec, &user)
	assert.Equal(t, "Ana Prime", user.Name)
}

func TestSearchUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "ana")
	env.signUp(t, "benny")

	rec := env.do(t, http.MethodGet, "/users/search?q=benny", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	decode(t, rec, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "benny", users[0].Username)

	t.Run("requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/users/search?q=benny", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires query", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/users/search", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

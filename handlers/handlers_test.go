package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/models"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	database *db.DB
	sessions *auth.SessionStore
	battles  *arena.BattleStore
}

// newTestEnv wires the full router against a throwaway database, with
// no redis and no job queue.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	sessions := auth.NewSessionStore()
	emailService := auth.NewEmailService(&models.EmailConfig{})
	aiClient := ai.NewClient(ai.Config{})
	battles := arena.NewBattleStore()
	leaderboard := arena.NewLeaderboard(nil)

	return &testEnv{
		router:   NewRouter(database, sessions, emailService, aiClient, battles, leaderboard, nil),
		database: database,
		sessions: sessions,
		battles:  battles,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user through the API and returns the session token
func (e *testEnv) signUp(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Name:     "Test " + username,
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User    models.User    `json:"user"`
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp.User, resp.Session.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

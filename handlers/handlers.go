package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/arena"
	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/jobs"
	"github.com/colearn-app/colearn-api/utils"
)

// API wrapper to hold all handlers
type API struct {
	authHandlers         *AuthHandlers
	gamificationHandlers *GamificationHandlers
	courseHandlers       *CourseHandlers
	chatHandlers         *ChatHandlers
	classHandlers        *ClassHandlers
	arenaHandlers        *ArenaHandlers
}

func NewAPI(database *db.DB, sessionStore *auth.SessionStore, emailService *auth.EmailService,
	aiClient *ai.Client, battles *arena.BattleStore, leaderboard *arena.Leaderboard,
	jobManager *jobs.JobManager) *API {
	return &API{
		authHandlers:         NewAuthHandlers(database, sessionStore, emailService, jobManager),
		gamificationHandlers: NewGamificationHandlers(database),
		courseHandlers:       NewCourseHandlers(database, aiClient),
		chatHandlers:         NewChatHandlers(database, aiClient),
		classHandlers:        NewClassHandlers(database, emailService, jobManager),
		arenaHandlers:        NewArenaHandlers(database, aiClient, battles, leaderboard),
	}
}

func NewRouter(database *db.DB, sessionStore *auth.SessionStore, emailService *auth.EmailService,
	aiClient *ai.Client, battles *arena.BattleStore, leaderboard *arena.Leaderboard,
	jobManager *jobs.JobManager) http.Handler {
	api := NewAPI(database, sessionStore, emailService, aiClient, battles, leaderboard, jobManager)

	mux := http.NewServeMux()
	requireAuth := authMiddleware(sessionStore)

	// Health check (no auth required)
	mux.HandleFunc("/health", healthCheck)

	// Auth endpoints (handle their own auth as needed)
	mux.HandleFunc("/auth/", api.authHandlers.HandleAuth)

	// Everything below requires a valid session
	mux.HandleFunc("/users/search", requireAuth(api.authHandlers.SearchUsers))

	mux.HandleFunc("/gamification", requireAuth(api.gamificationHandlers.GetRecord))
	mux.HandleFunc("/gamification/", requireAuth(api.gamificationHandlers.HandleGamification))

	mux.HandleFunc("/courses", requireAuth(api.courseHandlers.HandleCourses))
	mux.HandleFunc("/courses/", requireAuth(api.courseHandlers.HandleCourseByID))

	mux.HandleFunc("/chat", requireAuth(api.chatHandlers.HandleChat))

	mux.HandleFunc("/classes", requireAuth(api.classHandlers.HandleClasses))
	mux.HandleFunc("/classes/", requireAuth(api.classHandlers.HandleClassByID))
	mux.HandleFunc("/invites", requireAuth(api.classHandlers.ListInvites))
	mux.HandleFunc("/invites/", requireAuth(api.classHandlers.HandleInviteByID))

	mux.HandleFunc("/arena/", requireAuth(api.arenaHandlers.HandleArena))

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("Health check requested")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("Failed to encode response: %v", err)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/jobs"
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

type AuthHandlers struct {
	db           *db.DB
	sessionStore *auth.SessionStore
	emailService *auth.EmailService
	jobManager   *jobs.JobManager
}

func NewAuthHandlers(database *db.DB, sessionStore *auth.SessionStore, emailService *auth.EmailService, jobManager *jobs.JobManager) *AuthHandlers {
	return &AuthHandlers{
		db:           database,
		sessionStore: sessionStore,
		emailService: emailService,
		jobManager:   jobManager,
	}
}

func (ah *AuthHandlers) HandleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/auth/")

	switch {
	case path == "register" && r.Method == http.MethodPost:
		ah.register(w, r)
	case path == "login" && r.Method == http.MethodPost:
		ah.login(w, r)
	case path == "logout" && r.Method == http.MethodPost:
		ah.logout(w, r)
	case path == "me" && r.Method == http.MethodGet:
		ah.getCurrentUserInfo(w, r)
	case path == "profile" && r.Method == http.MethodPut:
		ah.updateProfile(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (ah *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/register")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in register request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := ah.db.CreateUser(req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			http.Error(w, err.Error(), http.StatusConflict)
		} else {
			utils.LogError("Failed to create user: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	// Welcome email goes through the job queue so registration never
	// waits on SMTP
	if ah.jobManager != nil {
		subject, body := ah.emailService.BuildWelcomeEmail(user)
		if err := ah.jobManager.QueueWelcomeEmail(user.Email, subject, body, user.ID); err != nil {
			utils.LogError("Failed to queue welcome email: %v", err)
		}
	}

	session := ah.sessionStore.CreateSession(user)

	utils.LogHTTP("User registered successfully: %s (ID: %d)", user.Username, user.ID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"session": session,
	})
}

func (ah *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/login")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.LogHTTP("Invalid JSON in login request: %v", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, hash, err := ah.db.GetUserCredentials(req.Email)
	if err != nil {
		utils.LogHTTP("Login failed for email: %s", req.Email)
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !utils.CheckPassword(hash, req.Password) {
		utils.LogHTTP("Login failed for user: %s", user.Username)
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	session := ah.sessionStore.CreateSession(user)

	utils.LogHTTP("User logged in: %s (ID: %d)", user.Username, user.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"session": session,
	})
}

func (ah *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("POST /auth/logout")

	sessionID := extractSessionFromRequest(r)
	if sessionID != "" {
		ah.sessionStore.DeleteSession(sessionID)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (ah *AuthHandlers) getCurrentUserInfo(w http.ResponseWriter, r *http.Request) {
	session := ah.requireSession(w, r)
	if session == nil {
		return
	}

	user, err := ah.db.GetUserByID(session.UserID)
	if err != nil {
		utils.LogError("Failed to load user %d: %v", session.UserID, err)
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (ah *AuthHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	session := ah.requireSession(w, r)
	if session == nil {
		return
	}

	utils.LogHTTP("PUT /auth/profile (user %d)", session.UserID)

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := ah.db.UpdateUserProfile(session.UserID, req)
	if err != nil {
		utils.LogError("Failed to update profile for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SearchUsers finds users by name, email, or username for class invites
func (ah *AuthHandlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := getSessionFromContext(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Missing search query", http.StatusBadRequest)
		return
	}

	users, err := ah.db.SearchUsers(query, session.UserID)
	if err != nil {
		utils.LogError("User search failed: %v", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// requireSession is for /auth/ endpoints that sit outside the shared
// auth middleware but still need a valid session.
func (ah *AuthHandlers) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	sessionID := extractSessionFromRequest(r)
	if sessionID == "" {
		http.Error(w, "Missing session token", http.StatusUnauthorized)
		return nil
	}
	session, exists := ah.sessionStore.GetSession(sessionID)
	if !exists {
		http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
		return nil
	}
	return session
}

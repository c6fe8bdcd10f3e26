package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/utils"
)

type GamificationHandlers struct {
	db *db.DB
}

func NewGamificationHandlers(database *db.DB) *GamificationHandlers {
	return &GamificationHandlers{db: database}
}

// GetRecord serves GET /gamification: the user's record plus the
// derived level and the full badge catalog.
func (gh *GamificationHandlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := getSessionFromContext(r.Context())

	record, err := gh.db.GetGamification(session.UserID)
	if err != nil {
		utils.LogError("Failed to load gamification for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load record", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":     record,
		"level":      gamification.GetLevel(record.XP),
		"all_badges": gamification.AllBadges,
	})
}

func (gh *GamificationHandlers) HandleGamification(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/gamification/")

	switch {
	case path == "daily-login" && r.Method == http.MethodPost:
		gh.dailyLogin(w, r)
	case path == "badges" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, gamification.AllBadges)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// dailyLogin records today's check-in. Calling it twice on the same
// day yields a zero event, so clients can fire it on every app load.
func (gh *GamificationHandlers) dailyLogin(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /gamification/daily-login (user %d)", session.UserID)

	record, err := gh.db.GetGamification(session.UserID)
	if err != nil {
		utils.LogError("Failed to load gamification for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load record", http.StatusInternalServerError)
		return
	}

	event := gamification.RecordDailyLogin(record, time.Now())

	if event.XPGained > 0 || len(event.NewBadges) > 0 {
		if err := gh.db.SaveGamification(record); err != nil {
			utils.LogError("Failed to save gamification for user %d: %v", session.UserID, err)
			http.Error(w, "Failed to save record", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event":  event,
		"record": record,
		"level":  gamification.GetLevel(record.XP),
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/ai"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/google/uuid"
)

type ChatHandlers struct {
	db *db.DB
	ai *ai.Client
}

func NewChatHandlers(database *db.DB, aiClient *ai.Client) *ChatHandlers {
	return &ChatHandlers{db: database, ai: aiClient}
}

func (ch *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		ch.sendMessage(w, r)
	case http.MethodGet:
		ch.getHistory(w, r)
	case http.MethodDelete:
		ch.clearHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// sendMessage relays one message to the AI assistant. The user's
// message persists before the AI call, so a failed call still leaves
// it in history.
func (ch *ChatHandlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /chat (user %d)", session.UserID)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Missing message", http.StatusBadRequest)
		return
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    session.UserID,
		Role:      models.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}
	if err := ch.db.SaveChatMessage(userMsg); err != nil {
		utils.LogError("Failed to save chat message: %v", err)
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	reply, err := ch.ai.Chat(r.Context(), req.Message, req.Context)
	if err != nil {
		utils.LogError("Chat request failed for user %d: %v", session.UserID, err)
		http.Error(w, "Assistant unavailable", http.StatusBadGateway)
		return
	}

	aiMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    session.UserID,
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}
	if err := ch.db.SaveChatMessage(aiMsg); err != nil {
		utils.LogError("Failed to save assistant message: %v", err)
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, aiMsg)
}

func (ch *ChatHandlers) getHistory(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	history, err := ch.db.GetChatHistory(session.UserID)
	if err != nil {
		utils.LogError("Failed to load chat history for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (ch *ChatHandlers) clearHistory(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("DELETE /chat (user %d)", session.UserID)

	if err := ch.db.ClearChatHistory(session.UserID); err != nil {
		utils.LogError("Failed to clear chat history for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to clear history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}

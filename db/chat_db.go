package db

import (
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

func (db *DB) SaveChatMessage(m *models.ChatMessage) error {
	_, err := db.Exec(`
		INSERT INTO chat_messages (id, user_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Role, m.Content, m.Timestamp)
	if err != nil {
		utils.LogError("SaveChatMessage failed: %v", err)
	}
	return err
}

func (db *DB) GetChatHistory(userID int) ([]models.ChatMessage, error) {
	rows, err := db.Query(`
		SELECT id, user_id, role, content, created_at
		FROM chat_messages WHERE user_id = ? ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (db *DB) ClearChatHistory(userID int) error {
	utils.LogDB("Clearing chat history for user %d", userID)
	_, err := db.Exec("DELETE FROM chat_messages WHERE user_id = ?", userID)
	return err
}

package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

func (db *DB) CreateUser(req models.RegisterRequest) (*models.User, error) {
	utils.LogDB("Creating user: %s (%s)", req.Username, req.Email)
	start := time.Now()

	if err := utils.ValidateRegisterRequest(&req); err != nil {
		return nil, err
	}

	if existing, _ := db.GetUserByEmail(req.Email); existing != nil {
		return nil, fmt.Errorf("a user with this email already exists")
	}
	if existing, _ := db.GetUserByUsername(req.Username); existing != nil {
		return nil, fmt.Errorf("a user with this username already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		return nil, err
	}

	result, err := db.Exec(`
		INSERT INTO users (username, email, name, password_hash)
		VALUES (?, ?, ?, ?)
	`, req.Username, req.Email, req.Name, hashedPassword)

	if err != nil {
		utils.LogError("CreateUser failed: %v (%v)", err, time.Since(start))
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		utils.LogError("Failed to get LastInsertId for user: %v", err)
		return nil, err
	}

	utils.LogDB("User created with ID %d in %v", id, time.Since(start))
	return db.GetUserByID(int(id))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userColumns = "id, username, email, name, avatar, created_at, updated_at"

func (db *DB) GetUserByID(id int) (*models.User, error) {
	return scanUser(db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// GetUserCredentials fetches the stored password hash for login checks.
func (db *DB) GetUserCredentials(email string) (*models.User, string, error) {
	var u models.User
	var hash string
	err := db.QueryRow(`
		SELECT id, username, email, name, avatar, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Avatar, &hash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

func (db *DB) UpdateUserProfile(id int, req models.ProfileUpdateRequest) (*models.User, error) {
	utils.LogDB("Updating profile for user %d", id)

	var sets []string
	var args []interface{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *req.Avatar)
	}
	if len(sets) == 0 {
		return db.GetUserByID(id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := db.Exec(query, args...); err != nil {
		utils.LogError("UpdateUserProfile failed: %v", err)
		return nil, err
	}
	return db.GetUserByID(id)
}

// SearchUsers finds users by name, email or username substring,
// excluding the caller. Used for class invitations.
func (db *DB) SearchUsers(query string, excludeUserID int) ([]models.User, error) {
	utils.LogDB("Searching users: %q (excluding %d)", query, excludeUserID)

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := db.Query(`
		SELECT `+userColumns+` FROM users
		WHERE id != ?
		  AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(username) LIKE ?)
		ORDER BY username
		LIMIT 20
	`, excludeUserID, pattern, pattern, pattern)
	if err != nil {
		utils.LogError("SearchUsers failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUsernames maps user IDs to usernames for leaderboard decoration.
func (db *DB) GetUsernames(ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query("SELECT id, username FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/google/uuid"
)

// CreateClass starts a new class with the creator as first member. A
// user can belong to at most one class.
func (db *DB) CreateClass(name string, creatorID int) (*models.ClassGroup, error) {
	utils.LogDB("Creating class %q for user %d", name, creatorID)

	if existing, err := db.GetUserClass(creatorID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("you are already in a class")
	}

	class := &models.ClassGroup{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO classes (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)
	`, class.ID, class.Name, class.CreatorID, class.CreatedAt); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		INSERT INTO class_members (class_id, user_id) VALUES (?, ?)
	`, class.ID, creatorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	class.Members = []int{creatorID}
	return class, nil
}

func (db *DB) getClassMemberIDs(classID string) ([]int, error) {
	rows, err := db.Query(
		"SELECT user_id FROM class_members WHERE class_id = ? ORDER BY joined_at", classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (db *DB) GetClassByID(classID string) (*models.ClassGroup, error) {
	var c models.ClassGroup
	err := db.QueryRow(`
		SELECT id, name, creator_id, created_at FROM classes WHERE id = ?
	`, classID).Scan(&c.ID, &c.Name, &c.CreatorID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Members, err = db.getClassMemberIDs(classID)
	return &c, err
}

// GetUserClass returns the class the user belongs to, or nil.
func (db *DB) GetUserClass(userID int) (*models.ClassGroup, error) {
	var classID string
	err := db.QueryRow(
		"SELECT class_id FROM class_members WHERE user_id = ?", userID).Scan(&classID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return db.GetClassByID(classID)
}

func (db *DB) RenameClass(classID, newName string) error {
	utils.LogDB("Renaming class %s to %q", classID, newName)
	_, err := db.Exec("UPDATE classes SET name = ? WHERE id = ?", newName, classID)
	return err
}

func (db *DB) GetClassMembers(classID string) ([]models.User, error) {
	rows, err := db.Query(`
		SELECT u.id, u.username, u.email, u.name, u.avatar, u.created_at, u.updated_at
		FROM class_members m JOIN users u ON u.id = m.user_id
		WHERE m.class_id = ? ORDER BY m.joined_at
	`, classID)
	if err != nil {
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

// InviteUserToClass validates the full invite rule set before creating
// a pending invite: the class must exist with room to spare, and the
// target must be free of classes and pending invites.
func (db *DB) InviteUserToClass(classID string, fromUserID, toUserID int) (*models.ClassInvite, error) {
	utils.LogDB("Inviting user %d to class %s", toUserID, classID)

	class, err := db.GetClassByID(classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, fmt.Errorf("class not found")
	}
	if len(class.Members) >= models.MaxClassMembers {
		return nil, fmt.Errorf("the class already has %d members", models.MaxClassMembers)
	}
	for _, m := range class.Members {
		if m == toUserID {
			return nil, fmt.Errorf("user is already in this class")
		}
	}

	if other, err := db.GetUserClass(toUserID); err != nil {
		return nil, err
	} else if other != nil {
		return nil, fmt.Errorf("user is already in another class")
	}

	var pending int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM class_invites
		WHERE class_id = ? AND to_user_id = ? AND status = 'pending'
	`, classID, toUserID).Scan(&pending)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("an invite has already been sent")
	}

	invite := &models.ClassInvite{
		ID:         uuid.NewString(),
		ClassID:    classID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     models.InvitePending,
		CreatedAt:  time.Now(),
	}
	_, err = db.Exec(`
		INSERT INTO class_invites (id, class_id, from_user_id, to_user_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, invite.ID, invite.ClassID, invite.FromUserID, invite.ToUserID, invite.Status, invite.CreatedAt)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// GetIncomingInvites lists a user's pending invites decorated with the
// class and sender names.
func (db *DB) GetIncomingInvites(userID int) ([]models.ClassInvite, error) {
	rows, err := db.Query(`
		SELECT i.id, i.class_id, i.from_user_id, i.to_user_id, i.status, i.created_at,
		       COALESCE(c.name, 'Unknown class'), COALESCE(u.name, 'Unknown user')
		FROM class_invites i
		LEFT JOIN classes c ON c.id = i.class_id
		LEFT JOIN users u ON u.id = i.from_user_id
		WHERE i.to_user_id = ? AND i.status = 'pending'
		ORDER BY i.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.ClassInvite{}
	for rows.Next() {
		var inv models.ClassInvite
		if err := rows.Scan(&inv.ID, &inv.ClassID, &inv.FromUserID, &inv.ToUserID,
			&inv.Status, &inv.CreatedAt, &inv.ClassName, &inv.FromUserName); err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// AcceptInvite revalidates that the class still exists and has room
// before joining. An invite for a deleted class is removed.
func (db *DB) AcceptInvite(inviteID string, userID int) (*models.ClassGroup, error) {
	var inv models.ClassInvite
	err := db.QueryRow(`
		SELECT id, class_id, from_user_id, to_user_id, status FROM class_invites WHERE id = ?
	`, inviteID).Scan(&inv.ID, &inv.ClassID, &inv.FromUserID, &inv.ToUserID, &inv.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite not found")
	}
	if err != nil {
		return nil, err
	}
	if inv.ToUserID != userID {
		return nil, fmt.Errorf("invite not found")
	}
	if inv.Status != models.InvitePending {
		return nil, fmt.Errorf("invite has already been answered")
	}

	class, err := db.GetClassByID(inv.ClassID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		db.Exec("DELETE FROM class_invites WHERE id = ?", inviteID)
		return nil, fmt.Errorf("the class no longer exists")
	}
	if len(class.Members) >= models.MaxClassMembers {
		return nil, fmt.Errorf("the class already has %d members", models.MaxClassMembers)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO class_members (class_id, user_id) VALUES (?, ?)
	`, inv.ClassID, userID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		UPDATE class_invites SET status = 'accepted' WHERE id = ?
	`, inviteID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return db.GetClassByID(inv.ClassID)
}

func (db *DB) RejectInvite(inviteID string, userID int) error {
	result, err := db.Exec(`
		UPDATE class_invites SET status = 'rejected'
		WHERE id = ? AND to_user_id = ? AND status = 'pending'
	`, inviteID, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("invite not found")
	}
	return nil
}

// LeaveClass removes the member; an emptied class is deleted.
func (db *DB) LeaveClass(userID int) error {
	class, err := db.GetUserClass(userID)
	if err != nil {
		return err
	}
	if class == nil {
		return fmt.Errorf("you are not in a class")
	}

	utils.LogDB("User %d leaving class %s", userID, class.ID)
	if _, err := db.Exec(
		"DELETE FROM class_members WHERE class_id = ? AND user_id = ?", class.ID, userID); err != nil {
		return err
	}

	if len(class.Members) <= 1 {
		utils.LogDB("Class %s is empty, deleting", class.ID)
		_, err = db.Exec("DELETE FROM classes WHERE id = ?", class.ID)
	}
	return err
}

func (db *DB) SaveClassMessage(m *models.ClassChatMessage) error {
	_, err := db.Exec(`
		INSERT INTO class_messages (id, class_id, user_id, user_name, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.ClassID, m.UserID, m.UserName, m.Content, m.Timestamp)
	if err != nil {
		utils.LogError("SaveClassMessage failed: %v", err)
	}
	return err
}

func (db *DB) GetClassMessages(classID string) ([]models.ClassChatMessage, error) {
	rows, err := db.Query(`
		SELECT id, class_id, user_id, user_name, content, created_at
		FROM class_messages WHERE class_id = ? ORDER BY created_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ClassChatMessage{}
	for rows.Next() {
		var m models.ClassChatMessage
		if err := rows.Scan(&m.ID, &m.ClassID, &m.UserID, &m.UserName, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteStaleInvites sweeps pending invites older than the cutoff.
func (db *DB) DeleteStaleInvites(olderThan time.Time) (int64, error) {
	result, err := db.Exec(`
		DELETE FROM class_invites WHERE status = 'pending' AND created_at < ?
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

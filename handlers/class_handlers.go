package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/db"
	"github.com/colearn-app/colearn-api/gamification"
	"github.com/colearn-app/colearn-api/jobs"
	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/google/uuid"
)

type ClassHandlers struct {
	db           *db.DB
	emailService *auth.EmailService
	jobManager   *jobs.JobManager
}

func NewClassHandlers(database *db.DB, emailService *auth.EmailService, jobManager *jobs.JobManager) *ClassHandlers {
	return &ClassHandlers{
		db:           database,
		emailService: emailService,
		jobManager:   jobManager,
	}
}

func (clh *ClassHandlers) HandleClasses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		clh.createClass(w, r)
	case http.MethodGet:
		clh.getMyClass(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (clh *ClassHandlers) HandleClassByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/classes/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] == "leave" && r.Method == http.MethodPost:
		clh.leaveClass(w, r)
	case len(parts) == 1 && r.Method == http.MethodPut:
		clh.renameClass(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "members" && r.Method == http.MethodGet:
		clh.getMembers(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "invite" && r.Method == http.MethodPost:
		clh.inviteUser(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "messages" && r.Method == http.MethodGet:
		clh.getMessages(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "messages" && r.Method == http.MethodPost:
		clh.postMessage(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "leaderboard" && r.Method == http.MethodGet:
		clh.getLeaderboard(w, r, parts[0])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (clh *ClassHandlers) createClass(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /classes (user %d)", session.UserID)

	var req models.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Missing class name", http.StatusBadRequest)
		return
	}

	class, err := clh.db.CreateClass(strings.TrimSpace(req.Name), session.UserID)
	if err != nil {
		if strings.Contains(err.Error(), "already") {
			http.Error(w, err.Error(), http.StatusConflict)
		} else {
			utils.LogError("Failed to create class: %v", err)
			http.Error(w, "Failed to create class", http.StatusInternalServerError)
		}
		return
	}

	clh.grantSocialBadge(session.UserID)

	utils.LogHTTP("Class created: %s (%s) by user %d", class.Name, class.ID, session.UserID)
	writeJSON(w, http.StatusCreated, class)
}

func (clh *ClassHandlers) getMyClass(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())

	class, err := clh.db.GetUserClass(session.UserID)
	if err != nil {
		utils.LogError("Failed to load class for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load class", http.StatusInternalServerError)
		return
	}
	if class == nil {
		http.Error(w, "Not in a class", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, class)
}

func (clh *ClassHandlers) renameClass(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("PUT /classes/%s (user %d)", classID, session.UserID)

	var req models.CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Missing class name", http.StatusBadRequest)
		return
	}

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if class.CreatorID != session.UserID {
		http.Error(w, "Only the class creator can rename it", http.StatusForbidden)
		return
	}

	if err := clh.db.RenameClass(classID, strings.TrimSpace(req.Name)); err != nil {
		utils.LogError("Failed to rename class %s: %v", classID, err)
		http.Error(w, "Failed to rename class", http.StatusInternalServerError)
		return
	}

	class.Name = strings.TrimSpace(req.Name)
	writeJSON(w, http.StatusOK, class)
}

func (clh *ClassHandlers) getMembers(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if !isMember(class, session.UserID) {
		http.Error(w, "Not a class member", http.StatusForbidden)
		return
	}

	members, err := clh.db.GetClassMembers(classID)
	if err != nil {
		utils.LogError("Failed to load members of class %s: %v", classID, err)
		http.Error(w, "Failed to load members", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (clh *ClassHandlers) inviteUser(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /classes/%s/invite (user %d)", classID, session.UserID)

	var req models.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if !isMember(class, session.UserID) {
		http.Error(w, "Not a class member", http.StatusForbidden)
		return
	}

	invite, err := clh.db.InviteUserToClass(classID, session.UserID, req.ToUserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	// Notify the invitee by email, off the request path
	if clh.jobManager != nil {
		toUser, err := clh.db.GetUserByID(req.ToUserID)
		if err == nil {
			fromName := session.Username
			if from, err := clh.db.GetUserByID(session.UserID); err == nil && from.Name != "" {
				fromName = from.Name
			}
			subject, body := clh.emailService.BuildInviteEmail(toUser, fromName, class.Name)
			if err := clh.jobManager.QueueInviteEmail(toUser.Email, subject, body, toUser.ID, classID); err != nil {
				utils.LogError("Failed to queue invite email: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusCreated, invite)
}

func (clh *ClassHandlers) leaveClass(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /classes/leave (user %d)", session.UserID)

	if err := clh.db.LeaveClass(session.UserID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Left class"})
}

func (clh *ClassHandlers) getMessages(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if !isMember(class, session.UserID) {
		http.Error(w, "Not a class member", http.StatusForbidden)
		return
	}

	messages, err := clh.db.GetClassMessages(classID)
	if err != nil {
		utils.LogError("Failed to load messages of class %s: %v", classID, err)
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (clh *ClassHandlers) postMessage(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())

	var req models.ClassMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "Missing message content", http.StatusBadRequest)
		return
	}

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if !isMember(class, session.UserID) {
		http.Error(w, "Not a class member", http.StatusForbidden)
		return
	}

	userName := session.Username
	if user, err := clh.db.GetUserByID(session.UserID); err == nil && user.Name != "" {
		userName = user.Name
	}

	msg := &models.ClassChatMessage{
		ID:        uuid.NewString(),
		ClassID:   classID,
		UserID:    session.UserID,
		UserName:  userName,
		Content:   req.Content,
		Timestamp: time.Now(),
	}
	if err := clh.db.SaveClassMessage(msg); err != nil {
		utils.LogError("Failed to save class message: %v", err)
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// getLeaderboard ranks class members by total XP
func (clh *ClassHandlers) getLeaderboard(w http.ResponseWriter, r *http.Request, classID string) {
	session := getSessionFromContext(r.Context())

	class := clh.loadClass(w, classID)
	if class == nil {
		return
	}
	if !isMember(class, session.UserID) {
		http.Error(w, "Not a class member", http.StatusForbidden)
		return
	}

	records, err := clh.db.GetGamificationMany(class.Members)
	if err != nil {
		utils.LogError("Failed to load gamification for class %s: %v", classID, err)
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	names, err := clh.db.GetUsernames(class.Members)
	if err != nil {
		utils.LogError("Failed to load usernames for class %s: %v", classID, err)
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, gamification.ClassLeaderboard(records, names))
}

func (clh *ClassHandlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := getSessionFromContext(r.Context())

	invites, err := clh.db.GetIncomingInvites(session.UserID)
	if err != nil {
		utils.LogError("Failed to load invites for user %d: %v", session.UserID, err)
		http.Error(w, "Failed to load invites", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, invites)
}

func (clh *ClassHandlers) HandleInviteByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/invites/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || r.Method != http.MethodPost {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch parts[1] {
	case "accept":
		clh.acceptInvite(w, r, parts[0])
	case "reject":
		clh.rejectInvite(w, r, parts[0])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (clh *ClassHandlers) acceptInvite(w http.ResponseWriter, r *http.Request, inviteID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /invites/%s/accept (user %d)", inviteID, session.UserID)

	class, err := clh.db.AcceptInvite(inviteID, session.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	clh.grantSocialBadge(session.UserID)

	writeJSON(w, http.StatusOK, class)
}

func (clh *ClassHandlers) rejectInvite(w http.ResponseWriter, r *http.Request, inviteID string) {
	session := getSessionFromContext(r.Context())
	utils.LogHTTP("POST /invites/%s/reject (user %d)", inviteID, session.UserID)

	if err := clh.db.RejectInvite(inviteID, session.UserID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Invite rejected"})
}

// grantSocialBadge awards the join-a-class badge; failures only log
// since the membership change already happened.
func (clh *ClassHandlers) grantSocialBadge(userID int) {
	record, err := clh.db.GetGamification(userID)
	if err != nil {
		utils.LogError("Failed to load gamification for user %d: %v", userID, err)
		return
	}
	event := gamification.AwardSocialBadge(record)
	if len(event.NewBadges) == 0 {
		return
	}
	if err := clh.db.SaveGamification(record); err != nil {
		utils.LogError("Failed to save gamification for user %d: %v", userID, err)
	}
}

func (clh *ClassHandlers) loadClass(w http.ResponseWriter, classID string) *models.ClassGroup {
	class, err := clh.db.GetClassByID(classID)
	if err != nil {
		utils.LogError("Failed to load class %s: %v", classID, err)
		http.Error(w, "Failed to load class", http.StatusInternalServerError)
		return nil
	}
	if class == nil {
		http.Error(w, "Class not found", http.StatusNotFound)
		return nil
	}
	return class
}

func isMember(class *models.ClassGroup, userID int) bool {
	for _, id := range class.Members {
		if id == userID {
			return true
		}
	}
	return false
}

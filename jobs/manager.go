package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/colearn-app/colearn-api/auth"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/hibiken/asynq"
)

const (
	TypeSendEmail = "email:send"
)

type JobManager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

type EmailPayload struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Type     string            `json:"type"`     // "welcome", "class_invite", "notification"
	Metadata map[string]string `json:"metadata"` // Extra data for logging/tracking
}

func NewJobManager(redisURL string) *JobManager {
	addr := strings.TrimPrefix(redisURL, "redis://")
	redisOpt := asynq.RedisClientOpt{
		Addr: addr,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6, // Welcome emails
			"default":  3, // Invite notifications
			"low":      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			utils.LogError("Job failed: type=%s error=%v", task.Type(), err)
		}),
		Logger: &AsynqLogger{},
	})

	mux := asynq.NewServeMux()

	return &JobManager{
		client: client,
		server: server,
		mux:    mux,
	}
}

func (jm *JobManager) RegisterHandlers(emailService *auth.EmailService) {
	jm.mux.HandleFunc(TypeSendEmail, jm.handleSendEmail(emailService))
}

func (jm *JobManager) Start() error {
	utils.LogJobs("Starting job queue worker...")
	return jm.server.Run(jm.mux)
}

func (jm *JobManager) Stop() {
	utils.LogShutdown("Stopping job queue...")
	jm.server.Stop()
	jm.server.Shutdown()
	jm.client.Close()
}

// QueueEmail - Generic method to queue any email
func (jm *JobManager) QueueEmail(to, subject, body, emailType string, metadata map[string]string, priority string) error {
	if metadata == nil {
		metadata = make(map[string]string)
	}

	payload := EmailPayload{
		To:       to,
		Subject:  subject,
		Body:     body,
		Type:     emailType,
		Metadata: metadata,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	task := asynq.NewTask(TypeSendEmail, payloadBytes)

	queue := "default"
	maxRetries := 3
	timeout := 60 * time.Second

	switch priority {
	case "critical":
		queue = "critical"
		maxRetries = 5
		timeout = 120 * time.Second
	case "low":
		queue = "low"
		maxRetries = 2
		timeout = 30 * time.Second
	}

	info, err := jm.client.Enqueue(task,
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetries),
		asynq.Timeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}

	utils.LogJobs("Queued email job: ID=%s type=%s to=%s priority=%s", info.ID, emailType, to, priority)
	return nil
}

func (jm *JobManager) QueueWelcomeEmail(to, subject, body string, userID int) error {
	metadata := map[string]string{
		"user_id": fmt.Sprintf("%d", userID),
	}
	return jm.QueueEmail(to, subject, body, "welcome", metadata, "critical")
}

func (jm *JobManager) QueueInviteEmail(to, subject, body string, userID int, classID string) error {
	metadata := map[string]string{
		"user_id":  fmt.Sprintf("%d", userID),
		"class_id": classID,
	}
	return jm.QueueEmail(to, subject, body, "class_invite", metadata, "default")
}

func (jm *JobManager) handleSendEmail(emailService *auth.EmailService) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload EmailPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal email payload: %w", err)
		}

		utils.LogJobs("Processing email job: type=%s to=%s subject=%s", payload.Type, payload.To, payload.Subject)

		if err := emailService.SendEmail(payload.To, payload.Subject, payload.Body); err != nil {
			metadataStr := ""
			for k, v := range payload.Metadata {
				metadataStr += fmt.Sprintf("%s=%s ", k, v)
			}

			return fmt.Errorf("failed to send %s email to %s (metadata: %s): %w",
				payload.Type, payload.To, metadataStr, err)
		}

		utils.LogJobs("Successfully sent %s email to %s", payload.Type, payload.To)
		return nil
	}
}

// Custom logger bridging asynq onto the tagged log helpers
type AsynqLogger struct{}

func (l *AsynqLogger) Debug(args ...interface{}) {
	utils.LogDebug(fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	utils.LogInfo(fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	utils.LogError(fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	utils.LogError(fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	utils.LogError(fmt.Sprint(args...))
}

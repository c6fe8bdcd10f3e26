package auth

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

// LoadEmailConfig loads email configuration from environment
func LoadEmailConfig() *models.EmailConfig {
	return &models.EmailConfig{
		SMTPHost:    utils.GetEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:    utils.GetEnvInt("SMTP_PORT", 465),
		Username:    utils.GetEnvOrDefault("SMTP_USERNAME", ""),
		Password:    utils.GetEnvOrDefault("SMTP_PASSWORD", ""),
		FromAddress: utils.GetEnvOrDefault("FROM_EMAIL", "noreply@colearn.app"),
		FromName:    utils.GetEnvOrDefault("FROM_NAME", "CoLearn"),
		BaseURL:     utils.GetEnvOrDefault("BASE_URL", "http://localhost:8080"),
	}
}

// EmailService handles email sending
type EmailService struct {
	config *models.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(config *models.EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (es *EmailService) BuildWelcomeEmail(user *models.User) (string, string) {
	subject := "Welcome to CoLearn!"
	body := fmt.Sprintf(`Hello %s,

Welcome to CoLearn, your AI-assisted learning platform!

Here is how to get started:
- Generate your first course from any learning goal
- Work through lessons in order and earn XP along the way
- Challenge the Arena when you feel confident

Log in any time at %s.

Happy learning,
The CoLearn Team`, user.Name, es.config.BaseURL)

	return subject, body
}

func (es *EmailService) BuildInviteEmail(toUser *models.User, fromName, className string) (string, string) {
	subject := fmt.Sprintf("%s invited you to join %q on CoLearn", fromName, className)
	body := fmt.Sprintf(`Hello %s,

%s invited you to join the class %q on CoLearn.

Open the app at %s and check your invites to accept or decline.

Happy learning,
The CoLearn Team`, toUser.Name, fromName, className, es.config.BaseURL)

	return subject, body
}

func (es *EmailService) SendEmail(to, subject, body string) error {
	if es.config.Username == "" || es.config.Password == "" {
		utils.LogInfo("SMTP not configured, logging email instead")
		utils.LogInfo("=== EMAIL ===")
		utils.LogInfo("To: %s", to)
		utils.LogInfo("Subject: %s", subject)
		utils.LogInfo("Body: %s", body)
		utils.LogInfo("=============")
		return nil
	}

	return es.sendEmail(to, subject, body)
}

// sendEmail sends an email using SMTP with SSL support
func (es *EmailService) sendEmail(to, subject, body string) error {
	utils.LogInfo("Sending email to %s: %s", to, subject)

	// Prepare message
	message := fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", es.config.FromName, es.config.FromAddress, to, subject, body)

	// For port 465 (implicit SSL), we need to establish SSL connection first
	addr := fmt.Sprintf("%s:%d", es.config.SMTPHost, es.config.SMTPPort)

	var conn net.Conn
	var err error

	if es.config.SMTPPort == 465 {
		// Port 465 uses implicit SSL (SMTPS)
		utils.LogDebug("Connecting to SMTP server %s with SSL", addr)
		tlsConfig := &tls.Config{
			ServerName: es.config.SMTPHost,
		}
		conn, err = tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			utils.LogError("Failed to establish SSL connection to %s: %v", addr, err)
			return err
		}
	} else {
		// Port 587 or 25 uses plain connection with STARTTLS
		utils.LogDebug("Connecting to SMTP server %s (plain)", addr)
		conn, err = net.Dial("tcp", addr)
		if err != nil {
			utils.LogError("Failed to connect to %s: %v", addr, err)
			return err
		}
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, es.config.SMTPHost)
	if err != nil {
		utils.LogError("Failed to create SMTP client: %v", err)
		return err
	}
	defer client.Quit()

	// For non-SSL connections, try STARTTLS if available
	if es.config.SMTPPort != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{
				ServerName: es.config.SMTPHost,
			}
			if err = client.StartTLS(tlsConfig); err != nil {
				utils.LogError("Failed to start TLS: %v", err)
				return err
			}
			utils.LogDebug("STARTTLS initiated successfully")
		}
	}

	auth := smtp.PlainAuth("", es.config.Username, es.config.Password, es.config.SMTPHost)
	if err = client.Auth(auth); err != nil {
		utils.LogError("SMTP authentication failed: %v", err)
		return err
	}

	if err = client.Mail(es.config.FromAddress); err != nil {
		utils.LogError("Failed to set sender: %v", err)
		return err
	}
	if err = client.Rcpt(to); err != nil {
		utils.LogError("Failed to set recipient: %v", err)
		return err
	}

	writer, err := client.Data()
	if err != nil {
		utils.LogError("Failed to open data writer: %v", err)
		return err
	}
	defer writer.Close()

	if _, err = writer.Write([]byte(message)); err != nil {
		utils.LogError("Failed to write message: %v", err)
		return err
	}

	utils.LogInfo("Email sent successfully to %s", to)
	return nil
}

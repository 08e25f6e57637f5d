package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOrDefault("SMTP_FROM", "noreply@langroom.app"),
		appURL:   getEnvOrDefault("APP_URL", "http://localhost:3000"),
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendPasswordResetEmail sends a password reset email to the user
func (e *EmailService) SendPasswordResetEmail(toEmail, resetToken, userName string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Reset token for %s: %s", toEmail, resetToken)
		return fmt.Errorf("SMTP not configured")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", e.appURL, resetToken)

	subject := "Reset Your Password - Langroom"
	body := e.buildPasswordResetEmailBody(userName, resetLink)

	return e.sendEmail(toEmail, subject, body)
}

// SendWelcomeEmail greets a student whose account a teacher just created
func (e *EmailService) SendWelcomeEmail(toEmail, userName, teacherName string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping welcome email for %s", toEmail)
		return nil
	}

	subject := "Welcome to Langroom"
	body := e.buildWelcomeEmailBody(userName, teacherName)

	return e.sendEmail(toEmail, subject, body)
}

// buildPasswordResetEmailBody creates the HTML email body for password reset
func (e *EmailService) buildPasswordResetEmailBody(userName, resetLink string) string {
	if userName == "" {
		userName = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset Your Password - Langroom</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
        }
        .logo h1 {
            color: #1d4e89;
            font-size: 28px;
            margin: 0;
        }
        .button {
            display: inline-block;
            background-color: #1d4e89;
            color: #ffffff !important;
            padding: 14px 28px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 600;
            margin: 20px 0;
        }
        .link-text {
            word-break: break-all;
            color: #666;
            font-size: 12px;
            background-color: #f5f5f5;
            padding: 10px;
            border-radius: 4px;
        }
        .warning {
            background-color: #fff3cd;
            border: 1px solid #ffc107;
            border-radius: 4px;
            padding: 12px;
            margin-top: 20px;
            font-size: 13px;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo"><h1>Langroom</h1></div>

        <h2>Reset Your Password</h2>

        <p>Hello %s,</p>

        <p>We received a request to reset the password for your Langroom account. Click the button below to create a new password:</p>

        <p style="text-align: center;">
            <a href="%s" class="button">Reset Password</a>
        </p>

        <p>If the button doesn't work, copy and paste this link into your browser:</p>
        <div class="link-text">%s</div>

        <div class="warning">
            <strong>Important:</strong> This link will expire in 1 hour. If you didn't request a password reset, you can safely ignore this email.
        </div>

        <div class="footer">
            <p><strong>Langroom</strong> — your language school, online</p>
        </div>
    </div>
</body>
</html>`, userName, resetLink, resetLink)
}

// buildWelcomeEmailBody creates the HTML email body for new student accounts
func (e *EmailService) buildWelcomeEmailBody(userName, teacherName string) string {
	if userName == "" {
		userName = "there"
	}
	if teacherName == "" {
		teacherName = "Your teacher"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to Langroom</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="color: #1d4e89;">Welcome to Langroom</h1>
    <p>Hello %s,</p>
    <p>%s has created a Langroom account for you. Log in at <a href="%s">%s</a> with the email address this message was sent to and the password your teacher shared with you.</p>
    <p>Once inside you'll find your courses, assignments, and vocabulary challenges.</p>
    <p style="margin-top: 30px; font-size: 12px; color: #666;">Langroom — your language school, online</p>
</body>
</html>`, userName, teacherName, e.appURL, e.appURL)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("Langroom <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email sent successfully to: %s", to)
	return nil
}

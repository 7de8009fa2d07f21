package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-hirestream-backend/config"
)

// EmailService sends candidate-facing notifications via SMTP.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
}

// StatusEmailData holds the data for application status notification emails
type StatusEmailData struct {
	CandidateName string
	JobTitle      string
	Company       string
	Status        string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

// IsConfigured reports whether SMTP credentials are present.
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

const statusEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Application Update</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .status { background: white; padding: 15px; border-left: 4px solid #0066cc; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Application Update</h1>
        </div>
        <div class="content">
            <p>Hi {{.CandidateName}},</p>
            <p>There is an update on your application for <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>.</p>
            <div class="status">New status: <strong>{{.Status}}</strong></div>
        </div>
        <div class="footer">
            <p>You are receiving this email because you applied through HireStream.</p>
        </div>
    </div>
</body>
</html>`

var statusTmpl = template.Must(template.New("status").Parse(statusEmailTemplate))

// SendStatusUpdate notifies a candidate about an application status change.
func (s *EmailService) SendStatusUpdate(to string, data StatusEmailData) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}

	var body bytes.Buffer
	if err := statusTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := bytes.Buffer{}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.fromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: Update on your application for %s\r\n", data.JobTitle))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

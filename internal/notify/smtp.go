package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/kavachhq/kavach-backend/internal/config"
	"github.com/kavachhq/kavach-backend/internal/models"
)

// Mailer sends alert emails over SMTP.
type Mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (m *Mailer) SendAlert(ctx context.Context, to string, alert models.Alert) error {
	if m.host == "" {
		return ErrNotConfigured
	}

	subject := fmt.Sprintf("%s Alert: %s", alert.Level, alert.Type)
	body := alertEmailBody(alert)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

func alertEmailBody(alert models.Alert) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
  <h2 style="color: #d32f2f;">Kavach Disaster Alert</h2>
  <p><strong>Alert Level:</strong> %s</p>
  <p><strong>Alert Type:</strong> %s</p>
  <p>%s</p>
  <p><strong>Location:</strong> %s<br>
     <strong>Current Value:</strong> %g<br>
     <strong>Your Threshold:</strong> %g<br>
     <strong>Time:</strong> %s</p>
  <p style="color: #d32f2f;"><strong>Please take necessary precautions and stay safe.</strong></p>
  <p style="color: #666; font-size: 12px;">- Kavach Disaster Alert Team</p>
</body>
</html>`,
		alert.Level, alert.Type, alert.Message, alert.Location, alert.Value, alert.Threshold, alert.Timestamp)
}

package notifier

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/yeremiapane/kitchen-queue/utils"
)

// Email is one outbound notification message.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func SMTPConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// Mailer is the fire-and-forget email side channel. When an outbound queue
// is configured, messages are published there and delivered by the consumer
// worker; otherwise delivery happens on a detached goroutine. Either way
// SendAsync returns immediately and failures only get logged, never
// propagated to the transaction that triggered the mail.
type Mailer struct {
	queue *Queue
	cfg   SMTPConfig
}

func NewMailer(queue *Queue, cfg SMTPConfig) *Mailer {
	return &Mailer{queue: queue, cfg: cfg}
}

// SendAsync implements lifecycle.MailSender.
func (m *Mailer) SendAsync(to, subject, body string) {
	msg := Email{To: to, Subject: subject, Body: body}

	if m.queue != nil {
		err := m.queue.Publish(msg)
		if err == nil {
			return
		}
		utils.ErrorLogger.Printf("notifier: queue publish failed, sending directly: %v", err)
	}

	go func() {
		if err := m.Deliver(msg); err != nil {
			utils.ErrorLogger.Printf("notifier: email to %s failed: %v", msg.To, err)
		}
	}()
}

// Deliver sends one email over SMTP. Used directly and as the queue
// consumer handler.
func (m *Mailer) Deliver(msg Email) error {
	if m.cfg.Host == "" {
		utils.InfoLogger.Printf("notifier: SMTP not configured, dropping email to %s (%s)", msg.To, msg.Subject)
		return nil
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, msg.To, msg.Subject, msg.Body)
	return smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(payload))
}

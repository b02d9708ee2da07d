// Package email sends appointment confirmations to the lead over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/skip2/go-qrcode"
	gomail "github.com/wneessen/go-mail"
)

const qrFileName = "meet-qr.png"

// Sender delivers the confirmation email via a direct SMTP connection.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      *logger.Logger
}

func NewSender(cfg config.NotifyConfig, log *logger.Logger) *Sender {
	return &Sender{
		host:     cfg.GetSMTPHost(),
		port:     cfg.GetSMTPPort(),
		username: cfg.GetSMTPUsername(),
		password: cfg.GetSMTPPassword(),
		from:     cfg.GetEmailFrom(),
		log:      log,
	}
}

func (s *Sender) Name() string {
	return "email"
}

// Configured reports whether an SMTP username is set. The password is
// only checked at send time, where a bad login surfaces as a send error.
func (s *Sender) Configured() bool {
	return s != nil && s.username != ""
}

// Send emails the appointment confirmation to the lead. When a meeting
// link is present the mail carries a Join button plus an inline QR code.
func (s *Sender) Send(ctx context.Context, lead domain.Lead, processed domain.ProcessedLead, meetLink string) error {
	if !s.Configured() {
		return fmt.Errorf("smtp username not configured")
	}

	data := confirmationData{
		Name:     processed.Name,
		Model:    processed.Model,
		Datetime: processed.Datetime,
		Phone:    processed.Phone,
		LeadID:   lead.ID(),
		MeetLink: meetLink,
	}

	var qr []byte
	if meetLink != "" {
		png, err := qrcode.Encode(meetLink, qrcode.Medium, 160)
		if err != nil {
			s.log.Warn("meet qr generation failed", "error", err)
		} else {
			qr = png
			data.HasQR = true
		}
	}

	html, err := renderConfirmation(data)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("email from: %w", err)
	}
	if err := msg.To(lead.Email); err != nil {
		return fmt.Errorf("email to: %w", err)
	}
	msg.Subject(fmt.Sprintf("✅ Appointment Confirmed - %s", processed.Model))
	msg.SetBodyString(gomail.TypeTextPlain, plainConfirmation(data))
	msg.AddAlternativeString(gomail.TypeTextHTML, html)
	if data.HasQR {
		if err := msg.EmbedReader(qrFileName, bytes.NewReader(qr)); err != nil {
			return fmt.Errorf("embed qr: %w", err)
		}
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Info("confirmation email sent", "to", lead.Email)
	return nil
}

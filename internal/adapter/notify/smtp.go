// Package notify holds the delivery channels behind notify.Sink.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"retailbank-backoffice/pkg/mask"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"
)

type SMTPConfig struct {
	Host           string
	Port           int
	User           string
	Pass           string
	From           string
	InsecureVerify bool
	Timeout        time.Duration
}

// SMTPSink sends plain-text mail through one dialer per process.
type SMTPSink struct {
	dialer *mail.Dialer
	from   string
	log    *logrus.Logger
}

func NewSMTPSink(cfg SMTPConfig, log *logrus.Logger) *SMTPSink {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureVerify,
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPSink{dialer: d, from: from, log: log}
}

func (s *SMTPSink) Notify(ctx context.Context, email, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.WithFields(logrus.Fields{"recipient": mask.Email(email), "subject": subject}).Info("mail sent")
	return nil
}

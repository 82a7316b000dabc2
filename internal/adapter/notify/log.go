package notify

import (
	"context"

	"retailbank-backoffice/pkg/mask"

	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to the log instead of delivering them. It is
// used when mail is disabled.
type LogSink struct{ log *logrus.Logger }

func NewLogSink(log *logrus.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Notify(_ context.Context, email, subject, body string) error {
	s.log.WithFields(logrus.Fields{
		"recipient": mask.Email(email),
		"subject":   subject,
		"length":    len(body),
	}).Info("notification (mail disabled)")
	return nil
}

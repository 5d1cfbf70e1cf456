// Package notify delivers outbound notifications (bug reports, interview
// requests) to the team mailbox.
package notify

import (
	"context"
	"log/slog"
)

type Message struct {
	Subject string
	Text    string
	HTML    string
}

type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// LogSink only logs. It is used when no SMTP credentials are configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "notification not mailed, smtp disabled",
		"subject", msg.Subject,
		"text_len", len(msg.Text),
		"html", msg.HTML != "")
	return nil
}

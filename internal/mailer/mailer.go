// Package mailer sends transactional email. Delivery is per recipient and
// failures are reported as data so callers can account for partial sends.
package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/yukikurage/cse-council-api/internal/logging"
	"golang.org/x/sync/errgroup"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	ToName      string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient is returned for a message without an address.
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// RecipientError is the delivery failure for one recipient.
type RecipientError struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

// Report tallies a batch send.
type Report struct {
	SentCount int
	Errors    []RecipientError
}

// SendAll delivers msgs with at most limit sends in flight. A failed send
// never cancels the others; every message is attempted exactly once.
func SendAll(ctx context.Context, m Mailer, msgs []Message, limit int) Report {
	if limit < 1 {
		limit = 1
	}

	var (
		mu     sync.Mutex
		report Report
		g      errgroup.Group
	)
	g.SetLimit(limit)

	logger := logging.FromContext(ctx)

	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			err := m.Send(ctx, msg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("email delivery failed", slog.String("recipient", msg.To), slog.Any("error", err))
				report.Errors = append(report.Errors, RecipientError{Recipient: msg.To, Error: err.Error()})
				return nil
			}
			report.SentCount++
			return nil
		})
	}

	_ = g.Wait()
	return report
}

// LogMailer records messages in the log instead of delivering them. It is
// used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logging.FromContext(ctx).Info("email not delivered (no SMTP host configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

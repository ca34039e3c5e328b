package mailer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"github.com/yukikurage/cse-council-api/internal/config"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingMailer struct {
	mu       sync.Mutex
	sent     []string
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *recordingMailer) Send(_ context.Context, msg Message) error {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if r.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	r.mu.Lock()
	r.sent = append(r.sent, msg.To)
	r.mu.Unlock()
	return nil
}

func messagesFor(addrs ...string) []Message {
	msgs := make([]Message, len(addrs))
	for i, a := range addrs {
		msgs[i] = Message{To: a, Subject: "Convocation"}
	}
	return msgs
}

func TestSendAll_AllSucceed(t *testing.T) {
	m := &recordingMailer{}
	report := SendAll(context.Background(), m, messagesFor("a@x.fr", "b@x.fr", "c@x.fr"), 2)

	assert.Equal(t, 3, report.SentCount)
	assert.Empty(t, report.Errors)
	assert.ElementsMatch(t, []string{"a@x.fr", "b@x.fr", "c@x.fr"}, m.sent)
	assert.LessOrEqual(t, m.peak.Load(), int32(2))
}

func TestSendAll_PartialFailure(t *testing.T) {
	m := &recordingMailer{fail: map[string]bool{"b@x.fr": true}}
	report := SendAll(context.Background(), m, messagesFor("a@x.fr", "b@x.fr", "c@x.fr"), 4)

	assert.Equal(t, 2, report.SentCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "b@x.fr", report.Errors[0].Recipient)
	assert.Equal(t, "mailbox unavailable", report.Errors[0].Error)
}

func TestSendAll_Empty(t *testing.T) {
	report := SendAll(context.Background(), &recordingMailer{}, nil, 0)
	assert.Zero(t, report.SentCount)
	assert.Empty(t, report.Errors)
}

func TestLogMailer(t *testing.T) {
	var m LogMailer
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@x.fr"}))
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestNew_SelectsImplementation(t *testing.T) {
	_, isLog := New(config.MailConfig{}).(LogMailer)
	assert.True(t, isLog)

	_, isSMTP := New(config.MailConfig{SMTPHost: "smtp.example.org", SMTPPort: 587}).(*SMTPMailer)
	assert.True(t, isSMTP)
}

func TestSMTPMailer_Build(t *testing.T) {
	s := NewSMTPMailer(config.MailConfig{From: "cse@example.org", FromName: "CSE"})

	m, err := s.build(Message{
		To:      "marie@example.org",
		ToName:  "Marie",
		Subject: "Convocation",
		HTML:    "<p>Bonjour</p>",
		Text:    "Bonjour",
		Attachments: []Attachment{
			{Filename: "convocation.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Convocation"}, m.GetGenHeader(mail.HeaderSubject))
	assert.Len(t, m.GetAttachments(), 1)

	_, err = s.build(Message{To: "not an address"})
	assert.Error(t, err)
}

func TestRenderConvocation(t *testing.T) {
	duration := 30
	subject, html, text, err := RenderConvocation(ConvocationData{
		OrganizationName: "CSE Acme",
		RecipientName:    "Marie <Curie>",
		MeetingTypeLabel: "Réunion ordinaire",
		DateLabel:        "vendredi 20 juin 2025",
		Time:             "14:30",
		Location:         "Salle A",
		Agenda: []ConvocationAgendaItem{
			{Order: 1, Title: "Budget", Duration: &duration, DescriptionHTML: "<p>Vote</p>", DescriptionText: "Vote"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Convocation CSE Acme - vendredi 20 juin 2025", subject)
	assert.Contains(t, html, "Marie &lt;Curie&gt;")
	assert.Contains(t, html, "<p>Vote</p>")
	assert.Contains(t, html, "(30 min)")
	assert.Contains(t, text, "1. Budget (30 min)")
	assert.Contains(t, text, "Salle A")
}

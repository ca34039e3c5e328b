package testfixtures

import (
	"context"
	"errors"
	"sync"

	"github.com/yukikurage/cse-council-api/internal/mailer"
)

// ErrMailRejected is returned by FakeMailer for failing recipients.
var ErrMailRejected = errors.New("recipient rejected")

// FakeMailer records messages and fails for the configured recipients.
type FakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
	failAll bool
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{failFor: map[string]bool{}}
}

// FailFor makes sends to the given addresses fail.
func (m *FakeMailer) FailFor(addrs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range addrs {
		m.failFor[a] = true
	}
}

// FailAll makes every send fail.
func (m *FakeMailer) FailAll() {
	m.mu.Lock()
	m.failAll = true
	m.mu.Unlock()
}

func (m *FakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failFor[msg.To] {
		return ErrMailRejected
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *FakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

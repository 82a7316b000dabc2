package notifymock

import (
	"context"
	"sync"

	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/internal/domain/notify"
)

var (
	_ notify.Sink        = (*Sink)(nil)
	_ identity.Directory = (*Directory)(nil)
)

type Message struct {
	Email   string
	Subject string
	Body    string
}

// Sink records every message; Err, if set, is returned after recording.
type Sink struct {
	mu   sync.Mutex
	Err  error
	Sent []Message
}

func (s *Sink) Notify(_ context.Context, email, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, Message{Email: email, Subject: subject, Body: body})
	return s.Err
}

func (s *Sink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Sent...)
}

// Directory serves users from a map keyed by owner id.
type Directory struct {
	Users map[string]identity.BasicInfo
	Err   error
}

func (d *Directory) GetBasicInfo(_ context.Context, ownerID string) (*identity.BasicInfo, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	u, ok := d.Users[ownerID]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return &u, nil
}

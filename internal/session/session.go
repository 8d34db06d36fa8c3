// Package session holds the operator's access token and centralizes handling
// of failed remote calls. Every store routes non-OK statuses here instead of
// returning errors past its own boundary.
package session

import (
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
)

// Notifier surfaces messages to the operator.
type Notifier interface {
	Error(message string)
}

type Session struct {
	mu        sync.Mutex
	token     string
	notify    Notifier
	log       *logrus.Logger
	onExpired func()
}

func New(notify Notifier, log *logrus.Logger) *Session {
	return &Session{notify: notify, log: log}
}

// OnExpired registers a callback fired when an Unauthorized response clears
// the session, so the gateway can tell connected clients to re-login.
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = fn
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token implements platform.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CheckAuth inspects a failed remote call. Unauthorized clears the session and
// notifies the expiry callback; every failure surfaces its message to the
// operator.
func (s *Session) CheckAuth(status int, message string) {
	if status == http.StatusUnauthorized {
		s.mu.Lock()
		s.token = ""
		expired := s.onExpired
		s.mu.Unlock()
		s.log.Warn("session expired, clearing token")
		if expired != nil {
			expired()
		}
	}
	if message == "" {
		message = "Sorry, something went wrong"
	}
	s.log.WithField("status", status).Error(message)
	if s.notify != nil {
		s.notify.Error(message)
	}
}

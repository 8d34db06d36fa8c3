package session

import (
	"net/http"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeNotify struct {
	mu     sync.Mutex
	errors []string
}

func (f *fakeNotify) Error(m string) {
	f.mu.Lock()
	f.errors = append(f.errors, m)
	f.mu.Unlock()
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestUnauthorizedClearsTokenAndFiresExpiry(t *testing.T) {
	notify := &fakeNotify{}
	s := New(notify, testLogger())
	s.SetToken("tok-1")

	expired := 0
	s.OnExpired(func() { expired++ })
	s.CheckAuth(http.StatusUnauthorized, "token expired")

	if s.Token() != "" {
		t.Fatalf("expected token cleared, got %q", s.Token())
	}
	if expired != 1 {
		t.Fatalf("expected expiry callback once, got %d", expired)
	}
	if len(notify.errors) != 1 || notify.errors[0] != "token expired" {
		t.Fatalf("expected error surfaced, got %v", notify.errors)
	}
}

func TestOtherFailuresKeepToken(t *testing.T) {
	s := New(&fakeNotify{}, testLogger())
	s.SetToken("tok-1")
	s.CheckAuth(http.StatusInternalServerError, "boom")
	if s.Token() != "tok-1" {
		t.Fatalf("expected token kept on non-auth failure, got %q", s.Token())
	}
}

func TestEmptyMessageGetsFallback(t *testing.T) {
	notify := &fakeNotify{}
	s := New(notify, testLogger())
	s.CheckAuth(http.StatusBadRequest, "")
	if len(notify.errors) != 1 || notify.errors[0] != "Sorry, something went wrong" {
		t.Fatalf("expected fallback message, got %v", notify.errors)
	}
}

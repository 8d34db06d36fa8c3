// Package notify fans operator-facing events out to subscribers. The gateway
// bridges the hub onto a websocket so the dashboard can render toasts and
// react to feed refreshes without polling.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event kinds. Notices carry a human message; the other kinds are signals.
const (
	KindNotice         = "notice"
	KindFeedRefresh    = "feed_refresh"
	KindSessionExpired = "session_expired"
)

type Event struct {
	Kind    string `json:"kind"`
	Level   Level  `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	At      int64  `json:"at"`
}

const subscriberBuffer = 16

type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	log  *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		subs: make(map[chan Event]struct{}),
		log:  log,
	}
}

// Subscribe returns a receive channel and a cancel func. Cancel must be called
// on teardown or the subscription leaks.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. A subscriber that cannot
// keep up has the event dropped rather than blocking the publisher.
func (h *Hub) Publish(ev Event) {
	if ev.At == 0 {
		ev.At = time.Now().UnixMilli()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn("notify: subscriber full, dropping event")
		}
	}
}

func (h *Hub) Success(message string) { h.notice(LevelSuccess, message) }
func (h *Hub) Info(message string)    { h.notice(LevelInfo, message) }
func (h *Hub) Warning(message string) { h.notice(LevelWarning, message) }
func (h *Hub) Error(message string)   { h.notice(LevelError, message) }

func (h *Hub) notice(level Level, message string) {
	h.Publish(Event{Kind: KindNotice, Level: level, Message: message})
}

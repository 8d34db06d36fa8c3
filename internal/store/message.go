package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"monitor-console/internal/models"
	"monitor-console/internal/prefs"
)

// Preferences is the persisted-settings collaborator; satisfied by
// prefs.Store.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// RefreshOption is one selectable auto-refresh interval. Zero means off.
type RefreshOption struct {
	Label    string        `json:"label"`
	Interval time.Duration `json:"interval"`
}

// RefreshOptions lists the selectable intervals, off first.
func RefreshOptions() []RefreshOption {
	return []RefreshOption{
		{Label: "Off", Interval: 0},
		{Label: "30s", Interval: 30 * time.Second},
		{Label: "1m", Interval: time.Minute},
		{Label: "5m", Interval: 5 * time.Minute},
		{Label: "15m", Interval: 15 * time.Minute},
		{Label: "30m", Interval: 30 * time.Minute},
	}
}

// MessageStore is the message feed controller: a paged store plus a recurring
// refresh timer and a page-local weight highlight threshold.
type MessageStore struct {
	*Store[models.Message]

	path  string
	prefs Preferences
	log   *logrus.Logger

	mu               sync.Mutex
	filterBy         map[string]any
	sortBy           map[string]string
	page             int
	highlightWeight  float64
	highlightContent bool
	interval         time.Duration
	stopRefresh      chan struct{}
	onRefresh        func([]models.Message)
}

func NewMessageStore(base *Store[models.Message], path string, p Preferences, log *logrus.Logger) *MessageStore {
	m := &MessageStore{
		Store: base,
		path:  path,
		prefs: p,
		log:   log,
		page:  1,
	}
	m.restore()
	return m
}

// restore loads the persisted refresh interval and highlight toggle; a stored
// interval arms the timer immediately.
func (m *MessageStore) restore() {
	if m.prefs == nil {
		return
	}
	ctx := context.Background()
	if v, ok, err := m.prefs.Get(ctx, prefs.KeyMessageHighlightContent); err == nil && ok {
		m.highlightContent = v == "true"
	}
	if v, ok, err := m.prefs.Get(ctx, prefs.KeyMessageRefreshInterval); err == nil && ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			m.SetRefreshInterval(time.Duration(ms) * time.Millisecond)
		}
	}
}

// ListMessages fetches one feed page, recomputes the highlight threshold from
// it, and publishes the page sorted by weight descending. The query becomes
// the stored query the refresh timer replays.
func (m *MessageStore) ListMessages(ctx context.Context, filterBy map[string]any, sortBy map[string]string, page int) {
	if page <= 0 {
		page = 1
	}
	m.mu.Lock()
	m.filterBy = filterBy
	m.sortBy = sortBy
	m.page = page
	m.mu.Unlock()

	m.list(ctx, filterBy, sortBy, page)
}

func (m *MessageStore) list(ctx context.Context, filterBy map[string]any, sortBy map[string]string, page int) {
	messages := m.List(ctx, m.path, ListOptions{
		FilterBy:   filterBy,
		SortBy:     sortBy,
		Page:       page,
		ReturnOnly: true,
	})

	if len(messages) == 0 {
		m.SetData(nil)
		m.notifyRefresh(nil)
		return
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Weight > messages[j].Weight
	})

	// Page-local heuristic, not a global percentile: take the highest and
	// lowest weight on this page (lowest counts as 0 under 2 rows), average
	// as max + min/2, and highlight everything at or above 80% of that.
	minWeight := 0.0
	if len(messages) > 1 {
		minWeight = messages[len(messages)-1].Weight
	}
	average := messages[0].Weight + minWeight/2
	threshold := average - average*0.2

	m.mu.Lock()
	m.highlightWeight = threshold
	m.mu.Unlock()

	m.SetData(messages)
	m.notifyRefresh(messages)
}

func (m *MessageStore) notifyRefresh(messages []models.Message) {
	m.mu.Lock()
	fn := m.onRefresh
	m.mu.Unlock()
	if fn != nil {
		fn(messages)
	}
}

// OnRefresh registers a callback fired with the new page after every feed
// load, including timer-driven ones.
func (m *MessageStore) OnRefresh(fn func([]models.Message)) {
	m.mu.Lock()
	m.onRefresh = fn
	m.mu.Unlock()
}

// HighlightWeight returns the current threshold; messages with weight at or
// above it are emphasized.
func (m *MessageStore) HighlightWeight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.highlightWeight
}

// Highlighted reports whether one message clears the current threshold.
func (m *MessageStore) Highlighted(msg models.Message) bool {
	return msg.Weight >= m.HighlightWeight()
}

func (m *MessageStore) HighlightContent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.highlightContent
}

// SetHighlightContent toggles content emphasis and persists the choice.
func (m *MessageStore) SetHighlightContent(ctx context.Context, enabled bool) {
	m.mu.Lock()
	m.highlightContent = enabled
	m.mu.Unlock()
	if m.prefs != nil {
		if err := m.prefs.Set(ctx, prefs.KeyMessageHighlightContent, strconv.FormatBool(enabled)); err != nil {
			m.log.WithError(err).Warn("persist highlight toggle failed")
		}
	}
}

// RefreshInterval returns the active interval; zero means off.
func (m *MessageStore) RefreshInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// RefreshActive reports whether a timer is armed.
func (m *MessageStore) RefreshActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopRefresh != nil
}

// SetRefreshInterval persists and arms the auto-refresh timer. Any existing
// timer is cleared first, so at most one is ever live; zero only clears. The
// timer replays the stored filter, sort, and page without resetting them.
func (m *MessageStore) SetRefreshInterval(interval time.Duration) {
	m.mu.Lock()
	m.interval = interval
	if m.stopRefresh != nil {
		close(m.stopRefresh)
		m.stopRefresh = nil
	}
	var stop chan struct{}
	if interval > 0 {
		stop = make(chan struct{})
		m.stopRefresh = stop
	}
	m.mu.Unlock()

	if m.prefs != nil {
		if err := m.prefs.Set(context.Background(), prefs.KeyMessageRefreshInterval, strconv.FormatInt(interval.Milliseconds(), 10)); err != nil {
			m.log.WithError(err).Warn("persist refresh interval failed")
		}
	}

	if stop == nil {
		return
	}
	go m.refreshLoop(interval, stop)
}

func (m *MessageStore) refreshLoop(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			filterBy, sortBy, page := m.filterBy, m.sortBy, m.page
			m.mu.Unlock()
			m.list(context.Background(), filterBy, sortBy, page)
		}
	}
}

// Reset stops the refresh timer and clears query state along with the base
// store. The persisted interval survives; only the live timer dies.
func (m *MessageStore) Reset() {
	m.mu.Lock()
	if m.stopRefresh != nil {
		close(m.stopRefresh)
		m.stopRefresh = nil
	}
	m.filterBy = nil
	m.sortBy = nil
	m.page = 1
	m.highlightWeight = 0
	m.mu.Unlock()
	m.Store.Reset()
}

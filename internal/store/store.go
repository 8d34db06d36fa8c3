// Package store implements the shared data-access layer behind every entity
// screen: paginated listing, create/update/delete, and the message feed
// controller built on top of it.
package store

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"monitor-console/internal/models"
	"monitor-console/internal/platform"
)

// AuthHandler is where every failed remote call lands. It never returns an
// error back; the store resolves to untouched state instead.
type AuthHandler interface {
	CheckAuth(status int, message string)
}

// Notifier surfaces operation outcomes to the operator.
type Notifier interface {
	Success(message string)
	Info(message string)
	Warning(message string)
	Error(message string)
}

// Store is the single source of truth for one entity's list/create/update/
// delete lifecycle. All mutation happens through its own methods; readers get
// snapshots.
type Store[T any] struct {
	client *platform.Client
	auth   AuthHandler
	notify Notifier
	log    *logrus.Logger

	mu       sync.Mutex
	fetching bool
	saving   bool
	data     []T
	pageCtx  models.PageContext
}

func New[T any](client *platform.Client, auth AuthHandler, notify Notifier, log *logrus.Logger) *Store[T] {
	return &Store[T]{
		client: client,
		auth:   auth,
		notify: notify,
		log:    log,
	}
}

// ListOptions parameterizes one List call. A zero Page means page 1.
type ListOptions struct {
	FilterBy   map[string]any
	SortBy     map[string]string
	Page       int
	ReturnOnly bool
}

type listPayload[T any] struct {
	Data        []T                `json:"data"`
	PageContext models.PageContext `json:"page_context"`
}

// List fetches one page. At most one list call is in flight per store; a call
// issued while another is outstanding is dropped and returns nil. On success
// the page context is taken from the response and, unless ReturnOnly, the
// held data is replaced wholesale with the page's rows.
func (s *Store[T]) List(ctx context.Context, path string, opt ListOptions) []T {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return nil
	}
	s.fetching = true
	s.mu.Unlock()
	defer s.setFetching(false)

	status, env := s.client.Get(ctx, path, platform.ListQuery(opt.Page, opt.FilterBy, opt.SortBy))
	if status != http.StatusOK {
		s.auth.CheckAuth(status, env.Message)
		return nil
	}

	var payload listPayload[T]
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		s.log.WithError(err).Error("list: malformed payload")
		s.auth.CheckAuth(http.StatusInternalServerError, "Something went wrong")
		return nil
	}

	s.mu.Lock()
	s.pageCtx = payload.PageContext
	if !opt.ReturnOnly {
		s.data = payload.Data
	}
	s.mu.Unlock()
	return payload.Data
}

// Save POSTs a new entity. Saves and updates share one in-flight guard; the
// completion callback runs only on success, after the success notification.
func (s *Store[T]) Save(ctx context.Context, path string, body any, done func()) {
	s.write(ctx, http.MethodPost, path, body, done)
}

// Update PUTs an existing entity.
func (s *Store[T]) Update(ctx context.Context, path string, body any, done func()) {
	s.write(ctx, http.MethodPut, path, body, done)
}

func (s *Store[T]) write(ctx context.Context, method, path string, body any, done func()) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return
	}
	s.saving = true
	s.mu.Unlock()
	defer s.setSaving(false)

	var status int
	var env platform.Envelope
	if method == http.MethodPut {
		status, env = s.client.Put(ctx, path, body)
	} else {
		status, env = s.client.Post(ctx, path, body)
	}

	if status != http.StatusOK {
		s.auth.CheckAuth(status, env.Message)
		return
	}
	s.notify.Success(env.Message)
	if done != nil {
		done()
	}
}

// Delete removes the entity server-side, then optimistically drops the
// matching row (by idField, default "_id") from the held data without a
// re-fetch. A failed delete leaves the data untouched and returns false.
func (s *Store[T]) Delete(ctx context.Context, path, id, idField string) bool {
	if idField == "" {
		idField = "_id"
	}

	status, env := s.client.Delete(ctx, path+"/"+id)
	if status != http.StatusOK {
		s.auth.CheckAuth(status, env.Message)
		return false
	}

	s.mu.Lock()
	kept := make([]T, 0, len(s.data))
	for _, row := range s.data {
		if v, ok := fieldValue(row, idField); ok && v == id {
			continue
		}
		kept = append(kept, row)
	}
	s.data = kept
	s.mu.Unlock()

	s.notify.Success(env.Message)
	return true
}

// Reset clears in-flight flags and held data; called on screen unmount so a
// later re-mount starts clean.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	s.fetching = false
	s.saving = false
	s.data = nil
	s.pageCtx = models.PageContext{}
	s.mu.Unlock()
}

// Data returns a snapshot copy of the held rows.
func (s *Store[T]) Data() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.data))
	copy(out, s.data)
	return out
}

// SetData replaces the held rows. Used by the message feed, which post-sorts
// the page before publishing it.
func (s *Store[T]) SetData(rows []T) {
	s.mu.Lock()
	s.data = rows
	s.mu.Unlock()
}

func (s *Store[T]) PageContext() models.PageContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCtx
}

func (s *Store[T]) IsFetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

func (s *Store[T]) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Store[T]) setFetching(v bool) {
	s.mu.Lock()
	s.fetching = v
	s.mu.Unlock()
}

func (s *Store[T]) setSaving(v bool) {
	s.mu.Lock()
	s.saving = v
	s.mu.Unlock()
}

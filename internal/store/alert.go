package store

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"monitor-console/internal/alert"
	"monitor-console/internal/models"
	"monitor-console/internal/platform"
)

// AlertStore wraps the paged store with the alert edit flow: compiling the
// form on save and decompiling a stored alert when opening it for edit.
type AlertStore struct {
	*Store[models.Alert]

	client   *platform.Client
	auth     AuthHandler
	notify   Notifier
	basePath string

	mu      sync.Mutex
	info    models.AlertInfo
	filters []models.AlertFilterForm
}

func NewAlertStore(base *Store[models.Alert], client *platform.Client, auth AuthHandler, notify Notifier, basePath string) *AlertStore {
	return &AlertStore{
		Store:    base,
		client:   client,
		auth:     auth,
		notify:   notify,
		basePath: basePath,
	}
}

// SaveAlert compiles the form and creates or updates the alert. A form that
// compiles to zero filters is refused client-side; nothing is sent.
func (a *AlertStore) SaveAlert(ctx context.Context, info models.AlertInfo, filters []models.AlertFilterForm, action models.ActionType, done func()) {
	req, err := alert.Compile(info, filters)
	if err != nil {
		a.notify.Warning(err.Error())
		return
	}

	if action == models.ActionCreate {
		a.Save(ctx, a.basePath, req, done)
		return
	}
	a.Update(ctx, a.basePath+"/"+info.ID, req, done)
}

// Edit fetches one alert and decompiles it into form state, then runs the
// callback so the caller can open the modal.
func (a *AlertStore) Edit(ctx context.Context, id string, done func()) {
	status, env := a.client.Get(ctx, a.basePath+"/"+id, nil)
	if status != http.StatusOK {
		a.auth.CheckAuth(status, env.Message)
		return
	}

	var al models.Alert
	if err := json.Unmarshal(env.Payload, &al); err != nil {
		a.auth.CheckAuth(http.StatusInternalServerError, "Something went wrong")
		return
	}

	info, filters := alert.Decompile(al)
	a.mu.Lock()
	a.info = info
	a.filters = filters
	a.mu.Unlock()

	if done != nil {
		done()
	}
}

// Form returns the decompiled edit state from the last Edit call.
func (a *AlertStore) Form() (models.AlertInfo, []models.AlertFilterForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	filters := make([]models.AlertFilterForm, len(a.filters))
	copy(filters, a.filters)
	return a.info, filters
}

// Reset clears edit state along with the base store.
func (a *AlertStore) Reset() {
	a.mu.Lock()
	a.info = models.AlertInfo{}
	a.filters = nil
	a.mu.Unlock()
	a.Store.Reset()
}

// Package export walks every page of a listing endpoint and flattens the
// result into one tabular file, restricted to a fixed field projection.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"monitor-console/internal/models"
	"monitor-console/internal/platform"
	"monitor-console/internal/sheet"
)

type AuthHandler interface {
	CheckAuth(status int, message string)
}

type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

type Aggregator struct {
	client *platform.Client
	auth   AuthHandler
	notify Notifier
	log    *logrus.Logger

	mu        sync.Mutex
	exporting bool
}

func New(client *platform.Client, auth AuthHandler, notify Notifier, log *logrus.Logger) *Aggregator {
	return &Aggregator{
		client: client,
		auth:   auth,
		notify: notify,
		log:    log,
	}
}

func (a *Aggregator) IsExporting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exporting
}

// Export fetches every page of the listing sequentially, projects each record
// to the requested fields, and writes the file. Nothing is written until the
// whole walk succeeds: a page failure aborts with no partial file, and an
// empty listing is an informational outcome, not an error. Returns the number
// of rows written and whether the walk completed.
func (a *Aggregator) Export(ctx context.Context, path string, fields []string, writer sheet.Writer, out io.Writer) (int, bool) {
	a.mu.Lock()
	if a.exporting {
		a.mu.Unlock()
		return 0, false
	}
	a.exporting = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.exporting = false
		a.mu.Unlock()
	}()

	records, pageCtx, ok := a.fetchPage(ctx, path, 1)
	if !ok {
		return 0, false
	}
	for page := 2; page <= pageCtx.LastPage; page++ {
		more, _, ok := a.fetchPage(ctx, path, page)
		if !ok {
			return 0, false
		}
		records = append(records, more...)
	}

	if len(records) == 0 {
		a.notify.Info("No data to export")
		return 0, true
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, project(record, fields))
	}

	if err := writer.Write(out, fields, rows); err != nil {
		a.log.WithError(err).Error("export: write failed")
		a.notify.Error(err.Error())
		return 0, false
	}

	a.notify.Success(fmt.Sprintf("Exported %d rows", len(rows)))
	return len(rows), true
}

// fetchPage reads one listing window. The listing endpoints accept no per-page
// parameter; the walk runs at whatever window size the platform's page_context
// reports.
func (a *Aggregator) fetchPage(ctx context.Context, path string, page int) ([]map[string]any, models.PageContext, bool) {
	status, env := a.client.Get(ctx, path, platform.ListQuery(page, nil, nil))
	if status != http.StatusOK {
		a.auth.CheckAuth(status, env.Message)
		return nil, models.PageContext{}, false
	}

	var payload struct {
		Data        []map[string]any   `json:"data"`
		PageContext models.PageContext `json:"page_context"`
	}
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		a.log.WithError(err).Error("export: malformed payload")
		a.auth.CheckAuth(http.StatusInternalServerError, "Something went wrong")
		return nil, models.PageContext{}, false
	}
	return payload.Data, payload.PageContext, true
}

// project keeps only the requested fields. Provider credentials are the one
// irregular case: api_id and api_hash live nested under config, not top
// level.
func project(record map[string]any, fields []string) map[string]any {
	config, _ := record["config"].(map[string]any)

	row := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "api_id", "api_hash":
			if config != nil {
				row[f] = config[f]
				continue
			}
			row[f] = record[f]
		default:
			row[f] = record[f]
		}
	}
	return row
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"monitor-console/internal/platform"
	"monitor-console/internal/sheet"
)

type fakeAuth struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeAuth) CheckAuth(status int, message string) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAuth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotify struct {
	mu        sync.Mutex
	successes []string
	infos     []string
	errors    []string
}

func (f *fakeNotify) Success(m string) { f.mu.Lock(); f.successes = append(f.successes, m); f.mu.Unlock() }
func (f *fakeNotify) Info(m string)    { f.mu.Lock(); f.infos = append(f.infos, m); f.mu.Unlock() }
func (f *fakeNotify) Error(m string)   { f.mu.Lock(); f.errors = append(f.errors, m); f.mu.Unlock() }

type recordingWriter struct {
	writes int
	fields []string
	rows   []map[string]any
}

func (w *recordingWriter) Write(out io.Writer, fields []string, rows []map[string]any) error {
	w.writes++
	w.fields = fields
	w.rows = rows
	_, err := out.Write([]byte("file"))
	return err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestAggregator(srv *httptest.Server) (*Aggregator, *fakeAuth, *fakeNotify) {
	auth := &fakeAuth{}
	notify := &fakeNotify{}
	client := platform.NewWithClient(srv.URL, srv.Client(), nil)
	return New(client, auth, notify, testLogger()), auth, notify
}

func pageResponse(w http.ResponseWriter, rows []map[string]any, page, lastPage, total int) {
	json.NewEncoder(w).Encode(map[string]any{
		"code":    200,
		"message": "ok",
		"payload": map[string]any{
			"data": rows,
			"page_context": map[string]any{
				"current_page": page, "per_page": 50, "last_page": lastPage, "total": total,
			},
		},
	})
}

func TestExportWalksEveryPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		rows := []map[string]any{
			{"name": fmt.Sprintf("s%d-a", page)},
			{"name": fmt.Sprintf("s%d-b", page)},
		}
		pageResponse(w, rows, page, 3, 6)
	}))
	defer srv.Close()

	a, _, notify := newTestAggregator(srv)
	writer := &recordingWriter{}
	var buf bytes.Buffer

	n, ok := a.Export(context.Background(), "/servers", []string{"name"}, writer, &buf)
	if !ok || n != 6 {
		t.Fatalf("expected 6 rows ok, got n=%d ok=%v", n, ok)
	}
	if writer.writes != 1 {
		t.Fatalf("expected exactly one file write, got %d", writer.writes)
	}
	if len(writer.rows) != 6 || writer.rows[0]["name"] != "s1-a" || writer.rows[5]["name"] != "s3-b" {
		t.Fatalf("expected pages concatenated in order, got %v", writer.rows)
	}
	if len(notify.successes) != 1 || notify.successes[0] != "Exported 6 rows" {
		t.Fatalf("expected success notification, got %v", notify.successes)
	}
}

func TestExportProjectsProviderCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageResponse(w, []map[string]any{
			{
				"name":   "Acme",
				"type":   "telegram",
				"config": map[string]any{"api_id": 12345, "api_hash": "secret"},
			},
		}, 1, 1, 1)
	}))
	defer srv.Close()

	a, _, _ := newTestAggregator(srv)
	writer := &recordingWriter{}
	var buf bytes.Buffer

	n, ok := a.Export(context.Background(), "/providers", []string{"name", "api_id", "api_hash"}, writer, &buf)
	if !ok || n != 1 {
		t.Fatalf("expected 1 row ok, got n=%d ok=%v", n, ok)
	}
	row := writer.rows[0]
	if row["name"] != "Acme" {
		t.Fatalf("expected top-level name, got %v", row)
	}
	if row["api_id"] != float64(12345) || row["api_hash"] != "secret" {
		t.Fatalf("expected credentials lifted from nested config, got %v", row)
	}
	if _, ok := row["type"]; ok {
		t.Fatalf("expected unrequested field dropped, got %v", row)
	}
}

func TestExportEmptyListingWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageResponse(w, []map[string]any{}, 1, 1, 0)
	}))
	defer srv.Close()

	a, _, notify := newTestAggregator(srv)
	writer := &recordingWriter{}
	var buf bytes.Buffer

	n, ok := a.Export(context.Background(), "/servers", []string{"name"}, writer, &buf)
	if !ok || n != 0 {
		t.Fatalf("expected 0 rows ok, got n=%d ok=%v", n, ok)
	}
	if writer.writes != 0 || buf.Len() != 0 {
		t.Fatal("empty listing must not produce a file")
	}
	if len(notify.infos) != 1 || notify.infos[0] != "No data to export" {
		t.Fatalf("expected informational notice, got %v", notify.infos)
	}
}

func TestExportMidWalkFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"code": 500, "message": "boom", "payload": nil})
			return
		}
		pageResponse(w, []map[string]any{{"name": "a"}}, 1, 3, 3)
	}))
	defer srv.Close()

	a, auth, _ := newTestAggregator(srv)
	writer := &recordingWriter{}
	var buf bytes.Buffer

	n, ok := a.Export(context.Background(), "/servers", []string{"name"}, writer, &buf)
	if ok || n != 0 {
		t.Fatalf("expected aborted walk, got n=%d ok=%v", n, ok)
	}
	if writer.writes != 0 || buf.Len() != 0 {
		t.Fatal("aborted walk must not produce a partial file")
	}
	if auth.count() != 1 {
		t.Fatalf("expected failure routed to auth handler once, got %d", auth.count())
	}
}

func TestExportUsesRealCSVWriter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageResponse(w, []map[string]any{
			{"name": "w1", "weight": 2.5},
			{"name": "w2", "weight": 4},
		}, 1, 1, 2)
	}))
	defer srv.Close()

	a, _, _ := newTestAggregator(srv)
	writer, ok := sheet.WriterFor(sheet.ExtCSV)
	if !ok {
		t.Fatal("csv writer missing")
	}
	var buf bytes.Buffer

	n, walked := a.Export(context.Background(), "/weights", []string{"name", "weight"}, writer, &buf)
	if !walked || n != 2 {
		t.Fatalf("expected 2 rows, got n=%d ok=%v", n, walked)
	}
	want := "name,weight\nw1,2.5\nw2,4\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv output:\n%q\nwant\n%q", buf.String(), want)
	}
}

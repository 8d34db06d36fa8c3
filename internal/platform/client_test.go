package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestListQuery(t *testing.T) {
	q := ListQuery(2, map[string]any{"server_id": "s1"}, map[string]string{"weight": "desc"})
	if q.Get("page") != "2" {
		t.Fatalf("expected page 2, got %q", q.Get("page"))
	}
	var filter map[string]any
	if err := json.Unmarshal([]byte(q.Get("filter_by")), &filter); err != nil || filter["server_id"] != "s1" {
		t.Fatalf("bad filter_by %q: %v", q.Get("filter_by"), err)
	}
	var sortBy map[string]string
	if err := json.Unmarshal([]byte(q.Get("sort_by")), &sortBy); err != nil || sortBy["weight"] != "desc" {
		t.Fatalf("bad sort_by %q: %v", q.Get("sort_by"), err)
	}
}

func TestListQueryOmitsEmptyMaps(t *testing.T) {
	q := ListQuery(0, nil, map[string]string{})
	if q.Get("page") != "1" {
		t.Fatalf("expected zero page clamped to 1, got %q", q.Get("page"))
	}
	if _, ok := q["filter_by"]; ok {
		t.Fatal("expected filter_by absent when empty")
	}
	if _, ok := q["sort_by"]; ok {
		t.Fatal("expected sort_by absent when empty")
	}
}

func TestGetDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "tok-1" {
			t.Errorf("expected token header, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "ok", "payload": []string{"a"}})
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client(), staticToken("tok-1"))
	status, env := c.Get(context.Background(), "/things", nil)
	if status != http.StatusOK || env.Code != 200 || env.Message != "ok" {
		t.Fatalf("unexpected response: %d %+v", status, env)
	}
	var payload []string
	if err := json.Unmarshal(env.Payload, &payload); err != nil || len(payload) != 1 {
		t.Fatalf("bad payload: %v %v", env.Payload, err)
	}
}

func TestTransportFailureLooksLikeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewWithClient(srv.URL, nil, nil)
	status, env := c.Get(context.Background(), "/things", nil)
	if status != http.StatusInternalServerError {
		t.Fatalf("expected synthetic 500, got %d", status)
	}
	if env.Message != "Something went wrong" {
		t.Fatalf("expected generic message, got %q", env.Message)
	}
}

func TestNonEnvelopeBodyKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client(), nil)
	status, env := c.Get(context.Background(), "/things", nil)
	if status != http.StatusBadGateway || env.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 carried through, got %d %+v", status, env)
	}
	if env.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected status text fallback, got %q", env.Message)
	}
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["name"] != "x" {
			t.Errorf("bad body: %v %v", body, err)
		}
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "created", "payload": nil})
	}))
	defer srv.Close()

	c := NewWithClient(srv.URL, srv.Client(), nil)
	status, env := c.Post(context.Background(), "/things", map[string]any{"name": "x"})
	if status != http.StatusOK || env.Message != "created" {
		t.Fatalf("unexpected response: %d %+v", status, env)
	}
}

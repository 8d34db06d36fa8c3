// Package platform is the HTTP client for the message-monitoring platform's
// REST API. Every endpoint answers with the same envelope: code, message, and
// an endpoint-specific payload.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// transportFailureMessage is what callers see when no response arrived at all.
// A transport failure is indistinguishable from a server 500 downstream.
const transportFailureMessage = "Something went wrong"

const defaultTimeout = 30 * time.Second

// Envelope is the platform's uniform response body.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return NewWithClient(baseURL, &http.Client{Timeout: defaultTimeout}, tokens)
}

func NewWithClient(baseURL string, hc *http.Client, tokens TokenSource) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		tokens:  tokens,
	}
}

// ListQuery builds the standard listing parameters. filter_by and sort_by are
// JSON-encoded and omitted entirely when empty.
func ListQuery(page int, filterBy map[string]any, sortBy map[string]string) url.Values {
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if len(filterBy) > 0 {
		if buf, err := json.Marshal(filterBy); err == nil {
			q.Set("filter_by", string(buf))
		}
	}
	if len(sortBy) > 0 {
		if buf, err := json.Marshal(sortBy); err == nil {
			q.Set("sort_by", string(buf))
		}
	}
	return q
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (int, Envelope) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (int, Envelope) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (int, Envelope) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (int, Envelope) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (int, Envelope) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return transportFailure()
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return transportFailure()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportFailure()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure()
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Non-envelope body (proxy error page and the like); keep the status,
		// fall back to its text.
		env = Envelope{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return resp.StatusCode, env
}

func transportFailure() (int, Envelope) {
	return http.StatusInternalServerError, Envelope{
		Code:    http.StatusInternalServerError,
		Message: transportFailureMessage,
	}
}

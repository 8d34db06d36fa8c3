// Package importer pushes parsed spreadsheet rows to an entity's batch import
// endpoint: validate against the field schema, split into fixed-size chunks,
// submit sequentially, and reconcile per-row status from each response.
package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"monitor-console/internal/platform"
)

type Status string

const (
	StatusInvalid   Status = "Invalid"
	StatusValid     Status = "Valid"
	StatusImporting Status = "Importing"
	StatusImported  Status = "Imported"
	StatusError     Status = "Error"
)

const DefaultChunkSize = 25

const internalErrorMessage = "internal server error"

// Row is one parsed spreadsheet row. Key is a client-generated identity that
// exists before the server ever assigns an _id.
type Row struct {
	Key     string         `json:"key"`
	Fields  map[string]any `json:"fields"`
	Status  Status         `json:"status,omitempty"`
	Message string         `json:"message,omitempty"`
}

// FieldSchema describes the entity's importable columns.
type FieldSchema struct {
	Fields   []string
	Optional []string
	Numeric  []string
}

// AuthHandler and Notifier mirror the store collaborators.
type AuthHandler interface {
	CheckAuth(status int, message string)
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

type Pipeline struct {
	client    *platform.Client
	auth      AuthHandler
	notify    Notifier
	log       *logrus.Logger
	chunkSize int

	mu        sync.Mutex
	importing bool
	rows      []*Row
}

func New(client *platform.Client, auth AuthHandler, notify Notifier, log *logrus.Logger, chunkSize int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Pipeline{
		client:    client,
		auth:      auth,
		notify:    notify,
		log:       log,
		chunkSize: chunkSize,
	}
}

// SetRows loads freshly parsed rows, replacing any previous batch. Every row
// gets a client key; statuses start unset until validation.
func (p *Pipeline) SetRows(parsed []map[string]any) {
	rows := make([]*Row, 0, len(parsed))
	for _, fields := range parsed {
		rows = append(rows, &Row{Key: uuid.NewString(), Fields: fields})
	}
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()
}

// Rows returns a snapshot of the batch with current statuses.
func (p *Pipeline) Rows() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Row, len(p.rows))
	for i, r := range p.rows {
		out[i] = *r
	}
	return out
}

func (p *Pipeline) IsImporting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.importing
}

// Reset discards the batch.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.rows = nil
	p.importing = false
	p.mu.Unlock()
}

// Import validates the batch and submits it in chunks. The gate is strict
// all-or-nothing: one invalid row refuses the whole submission before any
// network call. Chunks go out sequentially, in original row order, each row
// coerced per the schema; entityKey is the plural body key the endpoint
// expects (e.g. "providers").
func (p *Pipeline) Import(ctx context.Context, path, entityKey string, schema FieldSchema) {
	p.mu.Lock()
	if p.importing || len(p.rows) == 0 {
		p.mu.Unlock()
		return
	}
	p.importing = true
	rows := p.rows
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.importing = false
		p.mu.Unlock()
	}()

	if !p.validate(rows, schema) {
		p.notify.Error("Some rows are invalid, fix them and try again")
		return
	}

	for start := 0; start < len(rows); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		p.submitChunk(ctx, path, entityKey, rows[start:end], schema)
	}
}

// validate marks every row Invalid or Valid. A field listed as optional may be
// absent, everything else must be present, and a numeric field that is present
// must parse; catching bad numbers here keeps coerce from silently dropping a
// value the server would otherwise see as absent.
func (p *Pipeline) validate(rows []*Row, schema FieldSchema) bool {
	optional := make(map[string]bool, len(schema.Optional))
	for _, f := range schema.Optional {
		optional[f] = true
	}
	numeric := make(map[string]bool, len(schema.Numeric))
	for _, f := range schema.Numeric {
		numeric[f] = true
	}

	ok := true
	p.mu.Lock()
	for _, row := range rows {
		row.Status = StatusValid
		row.Message = ""
		for _, f := range schema.Fields {
			v := row.Fields[f]
			if v == nil {
				if optional[f] {
					continue
				}
				row.Status = StatusInvalid
				row.Message = "missing required field: " + f
				ok = false
				break
			}
			if numeric[f] {
				if _, err := strconv.ParseFloat(asString(v), 64); err != nil {
					row.Status = StatusInvalid
					row.Message = "field is not a number: " + f
					ok = false
					break
				}
			}
		}
	}
	p.mu.Unlock()
	return ok
}

func (p *Pipeline) submitChunk(ctx context.Context, path, entityKey string, chunk []*Row, schema FieldSchema) {
	p.setStatus(chunk, StatusImporting, "")

	body := make([]map[string]any, 0, len(chunk))
	for _, row := range chunk {
		body = append(body, coerce(row.Fields, schema))
	}

	status, env := p.client.Post(ctx, path, map[string]any{entityKey: body})
	p.reconcile(chunk, status, env)
}

// coerce builds the wire row: schema fields only (UI columns never leave the
// client), numeric fields parsed as numbers, everything else stringified.
func coerce(fields map[string]any, schema FieldSchema) map[string]any {
	numeric := make(map[string]bool, len(schema.Numeric))
	for _, f := range schema.Numeric {
		numeric[f] = true
	}

	out := make(map[string]any, len(schema.Fields)+1)
	// carry _id when the sheet has one so batch errors can name the row
	if id := asString(fields["_id"]); id != "" {
		out["_id"] = id
	}
	for _, f := range schema.Fields {
		v, ok := fields[f]
		if !ok || v == nil {
			continue
		}
		if numeric[f] {
			if n, err := strconv.ParseFloat(asString(v), 64); err == nil {
				out[f] = n
			}
			continue
		}
		out[f] = asString(v)
	}
	return out
}

type rowError struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
}

// reconcile applies one chunk response to its rows.
//
// 200 means every row landed. 500 (and transport failures, which look the
// same) carries no per-row detail, so every row fails with a generic message.
// 400 carries per-row error objects: each is matched to its row by _id when
// the sheet supplied one; entries without a usable identifier fall back to
// positional order over the still-unmatched rows. Rows no entry claims were
// accepted and become Imported.
func (p *Pipeline) reconcile(chunk []*Row, status int, env platform.Envelope) {
	switch status {
	case http.StatusOK:
		p.setStatus(chunk, StatusImported, "")
	case http.StatusInternalServerError:
		p.setStatus(chunk, StatusError, internalErrorMessage)
	case http.StatusBadRequest:
		var rowErrors []rowError
		if err := json.Unmarshal(env.Payload, &rowErrors); err != nil {
			p.log.WithError(err).Error("import: malformed error payload")
			p.setStatus(chunk, StatusError, env.Message)
			return
		}
		p.applyRowErrors(chunk, rowErrors)
	default:
		p.auth.CheckAuth(status, env.Message)
		p.setStatus(chunk, StatusError, env.Message)
	}
}

func (p *Pipeline) applyRowErrors(chunk []*Row, rowErrors []rowError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	byID := make(map[string]*Row, len(chunk))
	for _, row := range chunk {
		row.Status = StatusImported
		row.Message = ""
		if id := asString(row.Fields["_id"]); id != "" {
			byID[id] = row
		}
	}

	claimed := make(map[*Row]bool, len(rowErrors))
	var positional []rowError
	for _, re := range rowErrors {
		if row, ok := byID[re.ID]; ok && re.ID != "" {
			row.Status = StatusError
			row.Message = re.Message
			claimed[row] = true
			continue
		}
		positional = append(positional, re)
	}

	// Entries the server couldn't identify land on the chunk's unclaimed
	// rows in order.
	i := 0
	for _, re := range positional {
		for i < len(chunk) && claimed[chunk[i]] {
			i++
		}
		if i >= len(chunk) {
			break
		}
		chunk[i].Status = StatusError
		chunk[i].Message = re.Message
		claimed[chunk[i]] = true
	}
}

func (p *Pipeline) setStatus(chunk []*Row, status Status, message string) {
	p.mu.Lock()
	for _, row := range chunk {
		row.Status = status
		row.Message = message
	}
	p.mu.Unlock()
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		buf, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(buf)
	}
}

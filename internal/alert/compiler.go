// Package alert compiles the alert edit form, a variable-length list of
// field/operator/value rows, into the platform's normalized filter/rule
// payload, and decompiles a stored alert back into form rows for editing.
package alert

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"monitor-console/internal/models"
)

// FieldType maps a form-facing field to its server field name and value type.
type FieldType struct {
	Field string           `json:"field"`
	Name  string           `json:"name"`
	Type  models.ValueType `json:"type"`
}

var fieldTypes = []FieldType{
	{Field: "providers", Name: "provider_id", Type: models.TypeObjectID},
	{Field: "servers", Name: "server_id", Type: models.TypeObjectID},
	{Field: "channels", Name: "channel_id", Type: models.TypeObjectID},
	{Field: "author_username", Name: "author_username", Type: models.TypeString},
	{Field: "received_at", Name: "received_at", Type: models.TypeDateTime},
	{Field: "content", Name: "content", Type: models.TypeSearch},
}

// Fields returns the filterable fields, in form display order.
func Fields() []FieldType {
	out := make([]FieldType, len(fieldTypes))
	copy(out, fieldTypes)
	return out
}

// FieldByForm looks a field up by its form-facing name.
func FieldByForm(field string) (FieldType, bool) {
	for _, ft := range fieldTypes {
		if ft.Field == field {
			return ft, true
		}
	}
	return FieldType{}, false
}

// FieldByName looks a field up by its server field name.
func FieldByName(name string) (FieldType, bool) {
	for _, ft := range fieldTypes {
		if ft.Name == name {
			return ft, true
		}
	}
	return FieldType{}, false
}

// OperatorsFor returns the operator set a value type admits.
func OperatorsFor(t models.ValueType) []models.Operator {
	switch t {
	case models.TypeDateTime:
		return []models.Operator{models.OpWithin}
	case models.TypeSearch:
		return []models.Operator{models.OpContain}
	default:
		return []models.Operator{models.OpEqual, models.OpIn}
	}
}

// ErrNoFilters refuses a save with nothing concrete to match on.
var ErrNoFilters = errors.New("at least one filter is required")

// Compile turns the edit form into the save/update payload. Rows missing a
// value or operator are dropped; the request is refused when nothing remains.
// The received_at window's start is stamped now, at compile time, not at row
// edit time.
func Compile(info models.AlertInfo, filters []models.AlertFilterForm) (models.AlertRequest, error) {
	req := models.AlertRequest{
		Name:          info.Name,
		FrequencyType: info.FrequencyType,
		Filters:       []models.AlertFilter{},
		Rules:         []models.AlertRule{},
	}

	if info.Type != "" && info.Operator != "" && info.Times != "" {
		times, err := strconv.ParseFloat(info.Times, 64)
		if err != nil {
			return models.AlertRequest{}, fmt.Errorf("rule times %q is not a number", info.Times)
		}
		req.Rules = append(req.Rules, models.AlertRule{
			Type:     info.Type,
			Operator: info.Operator,
			Times:    times,
		})
	}

	for _, f := range filters {
		if f.Value == nil || f.Operator == "" {
			continue
		}
		ft, ok := FieldByForm(f.Field)
		if !ok {
			continue
		}

		compiled := models.AlertFilter{
			Field:    ft.Name,
			Type:     ft.Type,
			Operator: f.Operator,
		}

		switch {
		case isReferenceField(f.Field):
			if f.Operator == models.OpEqual {
				sv, ok := selectValue(f.Value)
				if !ok {
					continue
				}
				compiled.Value = sv.Value
			} else {
				ids := selectValues(f.Value)
				if len(ids) == 0 {
					continue
				}
				compiled.Value = ids
			}
		case f.Field == "received_at":
			compiled.Value = relativeWindow(f.Value)
		default:
			compiled.Value = f.Value
		}

		req.Filters = append(req.Filters, compiled)
	}

	if len(req.Filters) == 0 {
		return models.AlertRequest{}, ErrNoFilters
	}
	return req, nil
}

// Decompile rebuilds the edit form from a stored alert. Reference values
// arrive hydrated (id joined to display name) and are reshaped into the
// value/label structure the form expects; each row gets a fresh stable key.
func Decompile(al models.Alert) (models.AlertInfo, []models.AlertFilterForm) {
	info := models.AlertInfo{
		ID:            al.ID,
		Name:          al.Name,
		FrequencyType: al.FrequencyType,
	}
	if len(al.Rules) > 0 {
		rule := al.Rules[0]
		info.Type = rule.Type
		info.Operator = rule.Operator
		info.Times = strconv.FormatFloat(rule.Times, 'f', -1, 64)
	}

	forms := make([]models.AlertFilterForm, 0, len(al.Filters))
	for _, f := range al.Filters {
		form := models.AlertFilterForm{
			Key:      uuid.NewString(),
			Type:     f.Type,
			Operator: f.Operator,
			Value:    f.Value,
		}
		if ft, ok := FieldByName(f.Field); ok {
			form.Field = ft.Field
		} else {
			form.Field = f.Field
		}

		switch f.Field {
		case "provider_id":
			form.Value = reshapeReference(f.Value, f.Operator, "_id", "name")
		case "server_id":
			form.Value = reshapeReference(f.Value, f.Operator, "server_id", "server_name")
		case "channel_id":
			form.Value = reshapeReference(f.Value, f.Operator, "channel_id", "channel_name")
		}

		forms = append(forms, form)
	}
	return info, forms
}

func isReferenceField(field string) bool {
	switch field {
	case "providers", "servers", "channels":
		return true
	}
	return false
}

// selectValue coerces a form value into its value/label pair. Values arrive
// either typed (from Go callers) or as decoded JSON maps (from the gateway).
func selectValue(v any) (models.SelectValue, bool) {
	switch val := v.(type) {
	case models.SelectValue:
		return val, true
	case map[string]any:
		sv := models.SelectValue{
			Value: asString(val["value"]),
			Label: asString(val["label"]),
		}
		return sv, sv.Value != ""
	}
	return models.SelectValue{}, false
}

func selectValues(v any) []string {
	var items []any
	switch val := v.(type) {
	case []models.SelectValue:
		ids := make([]string, 0, len(val))
		for _, sv := range val {
			ids = append(ids, sv.Value)
		}
		return ids
	case []any:
		items = val
	default:
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if sv, ok := selectValue(item); ok {
			ids = append(ids, sv.Value)
		}
	}
	return ids
}

// relativeWindow shapes the received_at value: the last N units, ending now.
func relativeWindow(v any) models.AlertWindow {
	window := models.AlertWindow{
		Start: time.Now().UnixMilli(),
		Value: 1,
		Unit:  models.UnitMinutes,
	}
	switch val := v.(type) {
	case models.AlertWindow:
		window.Value = val.Value
		if val.Unit != "" {
			window.Unit = val.Unit
		}
	case map[string]any:
		if n, err := strconv.Atoi(asString(val["value"])); err == nil && n > 0 {
			window.Value = n
		}
		if unit := asString(val["unit"]); unit != "" {
			window.Unit = unit
		}
	}
	return window
}

// reshapeReference converts a hydrated server value into the form's
// value/label shape, singular for Equal and a list otherwise.
func reshapeReference(v any, op models.Operator, idKey, labelKey string) any {
	if op == models.OpEqual {
		if m, ok := v.(map[string]any); ok {
			return models.SelectValue{
				Value: asString(m[idKey]),
				Label: asString(m[labelKey]),
			}
		}
		return v
	}

	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]models.SelectValue, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, models.SelectValue{
				Value: asString(m[idKey]),
				Label: asString(m[labelKey]),
			})
		}
	}
	return out
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", v)
}

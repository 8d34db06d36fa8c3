package store

import (
	"fmt"
	"reflect"
	"strings"
)

// fieldValue extracts a row's value for a wire field name, stringified for
// comparison. Rows are either decoded structs (matched by json tag) or raw
// map[string]any rows from the generic gateway stores.
func fieldValue(row any, field string) (string, bool) {
	if m, ok := row.(map[string]any); ok {
		v, ok := m[field]
		if !ok || v == nil {
			return "", false
		}
		return stringify(v), true
	}

	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", false
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == field {
			return stringify(v.Field(i).Interface()), true
		}
	}
	return "", false
}

func stringify(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

// Package jsonutil implements JSON helpers for wire types that must
// round-trip fields they do not model. Bayeux packets and Kahoot message
// payloads both carry open key sets; decoding must keep the unknown keys
// so they survive re-serialization untouched.
package jsonutil

import (
	"encoding/json"
	"reflect"
	"strings"
)

// UnmarshalExtra decodes data into v and returns every top-level key that
// does not correspond to a json-tagged field of v. Returns nil when there
// are no unknown keys.
func UnmarshalExtra(data []byte, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	for _, name := range fieldNames(v) {
		delete(all, name)
	}

	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// MarshalExtra encodes v and merges the extra keys into the resulting
// object. Fields of v win on collision.
func MarshalExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(extra)+8)
	for k, val := range extra {
		merged[k] = val
	}
	// Unmarshaling into a non-nil map overwrites colliding keys.
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// fieldNames lists the effective JSON object keys of v's struct fields,
// skipping unexported fields and fields tagged "-".
func fieldNames(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

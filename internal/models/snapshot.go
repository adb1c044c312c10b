package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the full field-value state of an entity at a point in time.
// Unlike a plain map, a Snapshot remembers field order: emitted JSON follows
// the entity type's declared order, and that order is what changed_fields
// ordering is derived from.
type Snapshot struct {
	keys   []string
	values map[string]any
}

// NewSnapshot returns an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{values: map[string]any{}}
}

// SnapshotFrom builds a Snapshot containing exactly the given keys in order,
// taking values from m. Keys missing from m are present with a nil value, so
// a created entity always carries its full declared field set.
func SnapshotFrom(keys []string, m map[string]any) *Snapshot {
	s := &Snapshot{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]any, len(keys)),
	}
	for _, k := range keys {
		s.keys = append(s.keys, k)
		s.values[k] = m[k]
	}

	return s
}

// Set stores a value, appending the key to the order if it is new.
func (s *Snapshot) Set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value for key and whether the key is present.
func (s *Snapshot) Get(key string) (any, bool) {
	v, ok := s.values[key]

	return v, ok
}

// Keys returns the field names in declared order. The returned slice is
// shared; callers must not mutate it.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}

	return s.keys
}

// Len returns the number of fields.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.keys)
}

// Map returns a copy of the snapshot as a plain map (order lost).
func (s *Snapshot) Map() map[string]any {
	if s == nil {
		return nil
	}

	m := make(map[string]any, len(s.values))
	for k, v := range s.values {
		m[k] = v
	}

	return m
}

// Merge returns a new Snapshot with the same field order where keys present
// in overlay replace the current values. Keys in overlay that the snapshot
// does not declare are ignored; the registry rejects them before this point.
func (s *Snapshot) Merge(overlay map[string]any) *Snapshot {
	out := &Snapshot{
		keys:   append([]string(nil), s.keys...),
		values: make(map[string]any, len(s.values)),
	}
	for k, v := range s.values {
		out.values[k] = v
	}
	for k, v := range overlay {
		if _, ok := out.values[k]; ok {
			out.values[k] = v
		}
	}

	return out
}

// MarshalJSON emits the fields as a JSON object in declared order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshalling snapshot key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshalling snapshot value for %q: %w", k, err)
		}
		buf.Write(vb)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its document key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	s.keys = nil
	s.values = map[string]any{}

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding snapshot: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding snapshot key: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decoding snapshot: non-string key %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding snapshot value for %q: %w", key, err)
		}

		s.Set(key, normalizeNumbers(value))
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	return nil
}

// normalizeNumbers converts json.Number values (from UseNumber decoding) to
// float64 so snapshots compare consistently regardless of their source.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}

		return t.String()
	case map[string]any:
		for k, mv := range t {
			t[k] = normalizeNumbers(mv)
		}

		return t
	case []any:
		for i, sv := range t {
			t[i] = normalizeNumbers(sv)
		}

		return t
	default:
		return v
	}
}

package models_test

import (
	"encoding/json"
	"testing"

	"github.com/chroniclehq/chronicle/internal/models"
)

func TestSnapshot_MarshalPreservesDeclaredOrder(t *testing.T) {
	s := models.SnapshotFrom(
		[]string{"username", "email", "full_name", "is_active"},
		map[string]any{"username": "alice", "email": "a@example.com", "is_active": true},
	)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"username":"alice","email":"a@example.com","full_name":null,"is_active":true}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestSnapshot_UnmarshalPreservesDocumentOrder(t *testing.T) {
	in := `{"b":2,"a":1,"c":{"nested":3}}`

	var s models.Snapshot
	if err := json.Unmarshal([]byte(in), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	keys := s.Keys()
	want := []string{"b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}

	// Numbers decode to float64 regardless of representation.
	if v, _ := s.Get("b"); v != 2.0 {
		t.Errorf("b = %#v, want float64(2)", v)
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestSnapshot_UnmarshalNull(t *testing.T) {
	var s models.Snapshot
	if err := json.Unmarshal([]byte("null"), &s); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty snapshot, got %d fields", s.Len())
	}
}

func TestSnapshot_MarshalNil(t *testing.T) {
	var s *models.Snapshot
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal nil: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("marshal nil = %s, want null", data)
	}
}

func TestSnapshot_MergeKeepsOrderAndIgnoresUnknown(t *testing.T) {
	s := models.SnapshotFrom(
		[]string{"name", "price"},
		map[string]any{"name": "Widget", "price": 9.99},
	)

	merged := s.Merge(map[string]any{"price": 12.5, "bogus": true})

	if v, _ := merged.Get("price"); v != 12.5 {
		t.Errorf("price = %v, want 12.5", v)
	}
	if v, _ := merged.Get("name"); v != "Widget" {
		t.Errorf("name = %v, want Widget", v)
	}
	if _, ok := merged.Get("bogus"); ok {
		t.Error("undeclared key must not be merged in")
	}

	// The original snapshot is untouched.
	if v, _ := s.Get("price"); v != 9.99 {
		t.Errorf("original price mutated to %v", v)
	}
}

func TestSnapshot_SetAppendsNewKeys(t *testing.T) {
	s := models.NewSnapshot()
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 10)

	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
	if v, _ := s.Get("a"); v != 10 {
		t.Errorf("a = %v, want 10", v)
	}
}

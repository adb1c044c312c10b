package models

import (
	"fmt"
	"sync"
)

// FieldSpec declares one field of an entity type.
type FieldSpec struct {
	Name     string
	Required bool
}

// EntityType declares the known field set of a tracked entity type.
// Field order here is the canonical order for emitted snapshots and for
// changed_fields ordering.
type EntityType struct {
	Name   string
	Fields []FieldSpec
}

// FieldOrder returns the declared field names in order.
func (et *EntityType) FieldOrder() []string {
	names := make([]string, len(et.Fields))
	for i, f := range et.Fields {
		names[i] = f.Name
	}

	return names
}

// ValidateCreate checks a create payload: all required fields present,
// no unknown fields.
func (et *EntityType) ValidateCreate(data map[string]any) error {
	if err := et.rejectUnknown(data); err != nil {
		return err
	}

	for _, f := range et.Fields {
		if !f.Required {
			continue
		}
		if v, ok := data[f.Name]; !ok || v == nil {
			return InvalidArgumentf("%s: field %q is required", et.Name, f.Name)
		}
	}

	return nil
}

// ValidateUpdate checks an update payload: non-empty, no unknown fields.
func (et *EntityType) ValidateUpdate(data map[string]any) error {
	if len(data) == 0 {
		return InvalidArgumentf("%s: update data must not be empty", et.Name)
	}

	return et.rejectUnknown(data)
}

func (et *EntityType) rejectUnknown(data map[string]any) error {
	for k := range data {
		known := false
		for _, f := range et.Fields {
			if f.Name == k {
				known = true

				break
			}
		}
		if !known {
			return InvalidArgumentf("%s: unknown field %q", et.Name, k)
		}
	}

	return nil
}

// NewSnapshot builds the full-field snapshot for a payload: every declared
// field appears, in declared order, with nil for fields the payload omits.
func (et *EntityType) NewSnapshot(data map[string]any) *Snapshot {
	return SnapshotFrom(et.FieldOrder(), data)
}

// Registry maps entity type names to their declared field sets. Safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*EntityType
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: map[string]*EntityType{}}
}

// Register adds or replaces an entity type declaration.
func (r *Registry) Register(et *EntityType) error {
	if et.Name == "" {
		return fmt.Errorf("entity type name must not be empty")
	}

	if len(et.Fields) == 0 {
		return fmt.Errorf("entity type %q declares no fields", et.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[et.Name] = et

	return nil
}

// Lookup returns the declaration for name, or ErrInvalidArgument if the
// type is not registered.
func (r *Registry) Lookup(name string) (*EntityType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	et, ok := r.types[name]
	if !ok {
		return nil, InvalidArgumentf("unknown entity type %q", name)
	}

	return et, nil
}

// Names returns the registered type names (unordered).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}

	return names
}

// DefaultRegistry returns a registry with the built-in entity types.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	//nolint:errcheck // static declarations, cannot fail.
	r.Register(&EntityType{
		Name: "user",
		Fields: []FieldSpec{
			{Name: "username", Required: true},
			{Name: "email", Required: true},
			{Name: "full_name"},
			{Name: "is_active"},
		},
	})

	//nolint:errcheck // static declarations, cannot fail.
	r.Register(&EntityType{
		Name: "product",
		Fields: []FieldSpec{
			{Name: "name", Required: true},
			{Name: "description"},
			{Name: "price", Required: true},
			{Name: "category"},
			{Name: "stock_quantity"},
		},
	})

	return r
}

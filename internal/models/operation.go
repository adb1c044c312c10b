package models

// Operation actions accepted by the execute endpoint.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Operation is one entity mutation to apply under a transaction. It is the
// tagged-variant shape of the polymorphic operation payloads: the entity
// type selects the field set, the action selects which parts are required.
type Operation struct {
	EntityType string         `json:"type"`
	Action     string         `json:"operation"`
	EntityID   string         `json:"entity_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// ChangeType maps the action to its audit change type. Unknown actions
// return the empty string.
func (op *Operation) ChangeType() ChangeType {
	switch op.Action {
	case ActionCreate:
		return ChangeCreated
	case ActionUpdate:
		return ChangeUpdated
	case ActionDelete:
		return ChangeDeleted
	default:
		return ""
	}
}

// Validate checks the operation shape against the registry: the entity type
// must be registered, the action known, ids present for update/delete, and
// data valid for the declared field set.
func (op *Operation) Validate(reg *Registry) error {
	et, err := reg.Lookup(op.EntityType)
	if err != nil {
		return err
	}

	switch op.Action {
	case ActionCreate:
		return et.ValidateCreate(op.Data)
	case ActionUpdate:
		if op.EntityID == "" {
			return InvalidArgumentf("%s update: entity_id is required", op.EntityType)
		}

		return et.ValidateUpdate(op.Data)
	case ActionDelete:
		if op.EntityID == "" {
			return InvalidArgumentf("%s delete: entity_id is required", op.EntityType)
		}
		if len(op.Data) > 0 {
			return InvalidArgumentf("%s delete: data must be empty", op.EntityType)
		}

		return nil
	default:
		return InvalidArgumentf("unknown operation %q", op.Action)
	}
}

// ExecuteRequest is the payload for applying a batch of operations.
type ExecuteRequest struct {
	Operations []Operation `json:"operations"`
}

// Validate checks the batch shape. Per-operation validation happens again
// in the engine; this catches empty batches at the door.
func (r *ExecuteRequest) Validate() error {
	if len(r.Operations) == 0 {
		return InvalidArgumentf("operations must not be empty")
	}

	if len(r.Operations) > 1000 {
		return InvalidArgumentf("batch exceeds maximum of 1000 operations")
	}

	return nil
}

// OperationResult reports the outcome of one operation within a batch.
// Failed operations carry Error and no Record; prior successful operations
// remain committed and audited (no automatic rollback).
type OperationResult struct {
	Index   int           `json:"index"`
	Success bool          `json:"success"`
	Record  *ChangeRecord `json:"record,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Package diff computes field-level change sets between entity snapshots.
//
// The engine hands every mutation through ComputeChange to produce the
// draft audit record; the audit store assigns the id on append.
package diff

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/chroniclehq/chronicle/internal/models"
)

// ComputeChange builds a draft ChangeRecord for the given mutation.
//
// CREATED requires before to be absent; the record carries all fields of
// the created entity in new_values. DELETED requires before and records the
// final pre-deletion snapshot in new_values (see models.ChangeRecord).
// UPDATED requires both snapshots and computes changed_fields as exactly
// the fields whose values differ structurally, ordered by the after
// snapshot's field order. An empty changed_fields list is still emitted;
// suppression of no-op updates is a caller concern.
func ComputeChange(
	ref models.EntityRef,
	changeType models.ChangeType,
	before, after *models.Snapshot,
	author string,
	commitDate time.Time,
) (*models.ChangeRecord, error) {
	rec := &models.ChangeRecord{
		EntityType: ref.Type,
		EntityID:   ref.ID,
		ChangeType: changeType,
		Author:     author,
		CommitDate: commitDate,
	}

	switch changeType {
	case models.ChangeCreated:
		if before != nil {
			return nil, models.InvalidArgumentf("create must not supply a before snapshot")
		}
		if after == nil {
			return nil, models.InvalidArgumentf("create requires an after snapshot")
		}
		rec.NewValues = after

	case models.ChangeDeleted:
		if before == nil {
			return nil, models.InvalidArgumentf("delete requires a before snapshot")
		}
		if after != nil {
			return nil, models.InvalidArgumentf("delete must not supply an after snapshot")
		}
		// Deleted snapshot rides in new_values for display purposes.
		rec.NewValues = before

	case models.ChangeUpdated:
		if before == nil || after == nil {
			return nil, models.InvalidArgumentf("update requires before and after snapshots")
		}
		rec.OldValues = before
		rec.NewValues = after
		rec.ChangedFields = changedFields(before, after)

	default:
		return nil, models.InvalidArgumentf("unknown change type %q", changeType)
	}

	return rec, nil
}

// changedFields returns the fields whose values differ between the two
// snapshots, in the after snapshot's field order. Fields only present in
// before count as changed too (appended after the ordered walk).
func changedFields(before, after *models.Snapshot) []string {
	changed := make([]string, 0)

	for _, k := range after.Keys() {
		newVal, _ := after.Get(k)

		oldVal, existed := before.Get(k)
		if !existed || !Equal(oldVal, newVal) {
			changed = append(changed, k)
		}
	}

	for _, k := range before.Keys() {
		if _, exists := after.Get(k); !exists {
			changed = append(changed, k)
		}
	}

	return changed
}

// Equal reports structural equality between two field values. Numeric
// values compare by value regardless of representation; strings are
// case-sensitive; nil is distinct from the empty string and from zero.
// Composite values fall back to canonical JSON comparison.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)

		return bok && af == bf
	}

	if as, ok := a.(string); ok {
		bs, bok := b.(string)

		return bok && as == bs
	}

	if ab, ok := a.(bool); ok {
		bb, bok := b.(bool)

		return bok && ab == bb
	}

	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(aj, bj)
}

// asFloat converts any numeric representation to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

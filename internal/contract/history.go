// Package contract implements contract CRUD with a versioned change
// history: every mutation stores a field-level diff and a full
// snapshot, and versions are strictly increasing per contract.
package contract

import (
	"fmt"
	"reflect"

	"github.com/Messano/brain-hr-hub/internal/models"
)

// Diff compares two flat snapshots and returns the fields whose values
// differ under shallow comparison. A field present on one side only is
// a change against nil. Returns nil when nothing changed.
func Diff(prev, curr map[string]any) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)

	for k, oldVal := range prev {
		newVal, ok := curr[k]
		if !ok {
			changes[k] = models.FieldChange{Old: oldVal, New: nil}
			continue
		}
		if !shallowEqual(oldVal, newVal) {
			changes[k] = models.FieldChange{Old: oldVal, New: newVal}
		}
	}
	for k, newVal := range curr {
		if _, ok := prev[k]; !ok {
			changes[k] = models.FieldChange{Old: nil, New: newVal}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

// shallowEqual is strict comparison with no deep-object awareness:
// values of different types or of non-comparable types are never
// equal.
func shallowEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// FormatValue renders one snapshot value for display. It is a pure
// function of the value and never mutates the stored diff.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case bool:
		if val {
			return "Oui"
		}
		return "Non"
	default:
		return fmt.Sprintf("%v", val)
	}
}

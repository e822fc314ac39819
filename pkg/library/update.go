package library

import (
	"sort"
)

// FieldValue is one proposed field change, tagged with the catalog that
// supplied it for auditability.
type FieldValue struct {
	Value  any
	Source Source
}

// MergedUpdate is the proposed set of field changes for one record,
// keyed by field name. It never contains user-owned fields; that
// invariant is structural, since user-owned properties have no Field
// representation and Set only accepts Fields.
type MergedUpdate map[Field]FieldValue

// Set records a proposed change. Empty values are dropped so a merge can
// never overwrite a populated field with nothing.
func (u MergedUpdate) Set(f Field, value any, source Source) {
	if IsEmptyValue(value) {
		return
	}
	u[f] = FieldValue{Value: value, Source: source}
}

// Fields returns the update's field names in sorted order so iteration
// is deterministic.
func (u MergedUpdate) Fields() []Field {
	fields := make([]Field, 0, len(u))
	for f := range u {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// IsEmpty reports whether the update proposes no changes.
func (u MergedUpdate) IsEmpty() bool {
	return len(u) == 0
}

// IsEmptyValue reports whether a field value counts as "no information":
// nil, empty string, zero number, empty slice, or zero Date.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case []string:
		return len(val) == 0
	case Date:
		return val.IsZero()
	default:
		return false
	}
}

// ValuesEqual compares two field values for the purpose of diffing a
// merged update against a record's current state.
func ValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Date:
		bv, ok := b.(Date)
		return ok && av == bv
	default:
		return a == b
	}
}

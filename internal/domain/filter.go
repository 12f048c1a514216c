package domain

import (
	"fmt"
	"reflect"
	"strings"
)

// FilterOp is a filter clause operator.
type FilterOp int

const (
	OpEquals FilterOp = iota
	OpNotEquals
	OpContains
	OpNotContains
	OpIn
	OpNotIn
)

var filterOpNames = map[string]FilterOp{
	"equals":       OpEquals,
	"not_equals":   OpNotEquals,
	"contains":     OpContains,
	"not_contains": OpNotContains,
	"in":           OpIn,
	"not_in":       OpNotIn,
}

// FilterClause is one predicate over one field key: an operator plus its
// operand. Operand shape is validated at parse time, so evaluation never has
// to re-check it.
type FilterClause struct {
	Op      FilterOp
	Operand any
}

// FilterSet maps field key to clause. An item matches the set iff it matches
// every clause (logical AND).
type FilterSet map[string]FilterClause

// ParseFilterSet validates a caller-supplied filters object. Each entry must
// be an object holding exactly one known operator; in/not_in operands must be
// arrays.
func ParseFilterSet(raw map[string]any) (FilterSet, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	set := make(FilterSet, len(raw))
	for key, rawClause := range raw {
		clause, ok := rawClause.(map[string]any)
		if !ok || len(clause) == 0 {
			return nil, &InvalidArgumentError{
				Reason: fmt.Sprintf("Filter for '%s' must be an object with a single operator", key),
			}
		}
		if len(clause) > 1 {
			return nil, &InvalidArgumentError{
				Reason: fmt.Sprintf("Filter for '%s' must use exactly one operator", key),
			}
		}
		for opName, operand := range clause {
			op, ok := filterOpNames[opName]
			if !ok {
				return nil, &InvalidArgumentError{
					Reason: fmt.Sprintf("Unknown filter operator '%s' for '%s'", opName, key),
				}
			}
			if op == OpIn || op == OpNotIn {
				if _, ok := operand.([]any); !ok {
					return nil, &InvalidArgumentError{
						Reason: fmt.Sprintf("Filter operator '%s' for '%s' requires an array operand", opName, key),
					}
				}
			}
			set[key] = FilterClause{Op: op, Operand: operand}
		}
	}
	return set, nil
}

// Matches reports whether the item satisfies every clause in the set. A
// clause whose field key has no matching field on the item evaluates against
// a nil value: it fails equals/contains/in and passes their negations, since
// an absent value equals nothing and contains nothing.
func (fs FilterSet) Matches(item map[string]any) bool {
	for key, clause := range fs {
		if !clause.matches(fieldValueByKey(item, key)) {
			return false
		}
	}
	return true
}

// fieldValueByKey extracts the value of the first field on the item whose key
// matches. Missing field, missing fields array, or malformed entries all
// yield nil.
func fieldValueByKey(item map[string]any, key string) any {
	fields, _ := item["fields"].([]any)
	for _, rf := range fields {
		fm, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		if k, _ := fm["key"].(string); k == key {
			return ExtractFieldValue(fm)
		}
	}
	return nil
}

func (c FilterClause) matches(value any) bool {
	switch c.Op {
	case OpEquals:
		return equalsValue(value, c.Operand)
	case OpNotEquals:
		return !equalsValue(value, c.Operand)
	case OpContains:
		return containsValue(value, c.Operand)
	case OpNotContains:
		return !containsValue(value, c.Operand)
	case OpIn:
		operands, _ := c.Operand.([]any)
		return inValues(value, operands)
	case OpNotIn:
		operands, _ := c.Operand.([]any)
		return !inValues(value, operands)
	}
	return false
}

// equalsValue compares an extracted field value against a clause operand.
// Array-typed extractions (select, user, ...) equal a scalar operand when the
// operand is a member, so {"select": ["active"]} equals "active". String
// comparison is case-sensitive.
func equalsValue(value, operand any) bool {
	if value == nil {
		return false
	}
	if list, ok := value.([]any); ok {
		if operandList, ok := operand.([]any); ok {
			return reflect.DeepEqual(list, operandList)
		}
		for _, v := range list {
			if scalarEqual(v, operand) {
				return true
			}
		}
		return false
	}
	return scalarEqual(value, operand)
}

// containsValue renders the extracted value as a string and checks for the
// operand as a case-insensitive substring.
func containsValue(value, operand any) bool {
	if value == nil {
		return false
	}
	needle := strings.ToLower(fmt.Sprintf("%v", operand))
	hay := strings.ToLower(fmt.Sprintf("%v", value))
	return strings.Contains(hay, needle)
}

// inValues reports membership in the operand array. An array-typed extraction
// is in the operands when the two share at least one element.
func inValues(value any, operands []any) bool {
	if value == nil {
		return false
	}
	if list, ok := value.([]any); ok {
		for _, v := range list {
			for _, o := range operands {
				if scalarEqual(v, o) {
					return true
				}
			}
		}
		return false
	}
	for _, o := range operands {
		if scalarEqual(value, o) {
			return true
		}
	}
	return false
}

// scalarEqual compares two scalar values, treating numeric types as equal
// when their values coincide (JSON decoding yields float64, callers may pass
// ints).
func scalarEqual(a, b any) bool {
	if af, ok := toFloat64(a); ok {
		bf, ok := toFloat64(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat64(v any) (float64, bool) {
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
	}
	return 0, false
}

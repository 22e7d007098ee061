package merge

import (
	"fmt"
)

// TypeMismatchError reports two structurally incompatible values at a key.
// It is fatal: the merge engine never coerces across kinds.
type TypeMismatchError struct {
	Key       string
	LeftType  string
	RightType string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("merge: key %q already exists with type %s, cannot merge with type %s",
		e.Key, e.LeftType, e.RightType)
}

// UnsupportedTypeError reports a value outside the mergeable domain
// (nil, bool, number, string, []any, map[string]any).
type UnsupportedTypeError struct {
	Key  string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("merge: key %q has unsupported type %s", e.Key, e.Type)
}

// ValueConflictError reports two unequal scalars of the same kind that have
// no concatenation semantics (numbers, bools).
type ValueConflictError struct {
	Key string
}

func (e *ValueConflictError) Error() string {
	return fmt.Sprintf("merge: key %q already exists with a different value", e.Key)
}

// kind classifies a value within the mergeable domain.
type kind int

const (
	kindInvalid kind = iota
	kindNil
	kindBool
	kindNumber
	kindString
	kindList
	kindMap
)

func kindOf(v any) kind {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return kindNumber
	case string:
		return kindString
	case []any:
		return kindList
	case map[string]any:
		return kindMap
	default:
		return kindInvalid
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// Dicts merges two maps key by key. Keys present on only one side pass
// through; keys present on both recurse into the value merge rules:
// nil absorbs, strings concatenate (equal strings included), lists go
// through Lists, nested maps recurse, equal scalars pass through.
// Incompatible kinds at a key fail with *TypeMismatchError.
func Dicts(left, right map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		merged[k] = v
	}
	for k, rv := range right {
		lv, ok := merged[k]
		switch {
		case rv == nil:
			if !ok {
				merged[k] = nil
			}
		case !ok || lv == nil:
			merged[k] = rv
		default:
			mv, err := value(k, lv, rv)
			if err != nil {
				return nil, err
			}
			merged[k] = mv
		}
	}
	return merged, nil
}

// Lists concatenates two lists, with one exception: a right-side map element
// carrying an integer "index" key is merged (via Dicts) into the left-side
// element with the same index value when one exists, instead of appended.
// This pairs interleaved fragments of parallel tool calls by slot rather
// than by array position.
func Lists(left, right []any) ([]any, error) {
	if left == nil && right == nil {
		return nil, nil
	}
	merged := make([]any, len(left))
	copy(merged, left)
	for _, e := range right {
		em, ok := e.(map[string]any)
		if !ok {
			merged = append(merged, e)
			continue
		}
		idx, ok := em["index"]
		if !ok || kindOf(idx) != kindNumber {
			merged = append(merged, e)
			continue
		}
		pos := -1
		for i, le := range merged {
			lm, ok := le.(map[string]any)
			if !ok {
				continue
			}
			lidx, ok := lm["index"]
			if ok && kindOf(lidx) == kindNumber && asFloat(lidx) == asFloat(idx) {
				pos = i
				break
			}
		}
		if pos < 0 {
			merged = append(merged, e)
			continue
		}
		mv, err := Dicts(merged[pos].(map[string]any), em)
		if err != nil {
			return nil, err
		}
		merged[pos] = mv
	}
	return merged, nil
}

// Values merges two top-level values of any mergeable kind.
// A nil side is treated as absent and yields the other side.
func Values(left, right any) (any, error) {
	if left == nil {
		return right, nil
	}
	if right == nil {
		return left, nil
	}
	return value("", left, right)
}

// value merges two non-nil values found under key (empty for top level).
func value(key string, left, right any) (any, error) {
	lk, rk := kindOf(left), kindOf(right)
	if lk == kindInvalid {
		return nil, &UnsupportedTypeError{Key: key, Type: fmt.Sprintf("%T", left)}
	}
	if rk == kindInvalid {
		return nil, &UnsupportedTypeError{Key: key, Type: fmt.Sprintf("%T", right)}
	}
	if lk != rk {
		return nil, &TypeMismatchError{
			Key:       key,
			LeftType:  fmt.Sprintf("%T", left),
			RightType: fmt.Sprintf("%T", right),
		}
	}
	switch lk {
	case kindString:
		// Repeated streamed deltas of the same literal still concatenate.
		return left.(string) + right.(string), nil
	case kindMap:
		return Dicts(left.(map[string]any), right.(map[string]any))
	case kindList:
		return Lists(left.([]any), right.([]any))
	case kindNumber:
		if asFloat(left) == asFloat(right) {
			return left, nil
		}
		return nil, &ValueConflictError{Key: key}
	case kindBool:
		if left.(bool) == right.(bool) {
			return left, nil
		}
		return nil, &ValueConflictError{Key: key}
	}
	return left, nil
}

package record

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/crmarques/reason/faults"
)

// Record attributes arrive from the API and the cache as JSON and from local
// files as JSON or YAML. The decoders disagree on Go types for the same
// document, so attributes are folded into one shape before they are stored or
// compared:
//
//	whole numbers within int64  -> int64
//	any other finite number     -> float64
//	objects                     -> map[string]any
//	arrays                      -> []any
//
// Whole numbers beyond int64 are kept as float64 rather than rejected, so an
// unusual attribute on one record never blocks the rest of its kind.

// int64 bounds as float64; 2^63 itself is not representable as int64.
const (
	minWholeInt64 = -9223372036854775808.0
	maxWholeInt64 = 9223372036854775808.0
)

// Normalize folds a decoded value into the attribute shape described above.
func Normalize(value any) (any, error) {
	return foldAttribute(value)
}

// NormalizeFields folds every value of an open field map.
func NormalizeFields(values map[string]any) (Fields, error) {
	if values == nil {
		return Fields{}, nil
	}
	folded, err := foldObject(values)
	if err != nil {
		return nil, err
	}
	return Fields(folded), nil
}

func foldAttribute(value any) (any, error) {
	switch typed := value.(type) {
	case nil, bool, string, int64:
		return typed, nil
	case int:
		return int64(typed), nil
	case float64:
		return foldFloat(typed)
	case json.Number:
		return foldNumberText(typed)
	case []any:
		return foldList(typed)
	case map[string]any:
		return foldObject(typed)
	case Fields:
		return foldObject(typed)
	}
	return foldReflected(reflect.ValueOf(value))
}

func foldFloat(value float64) (any, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, attributeError("record attribute holds a non-finite number", nil)
	}
	if value == math.Trunc(value) && value >= minWholeInt64 && value < maxWholeInt64 {
		return int64(value), nil
	}
	return value, nil
}

func foldNumberText(value json.Number) (any, error) {
	if whole, err := value.Int64(); err == nil {
		return whole, nil
	}
	asFloat, err := value.Float64()
	if err != nil {
		return nil, attributeError(fmt.Sprintf("record attribute holds unreadable number %q", value.String()), err)
	}
	return foldFloat(asFloat)
}

func foldList(values []any) ([]any, error) {
	folded := make([]any, len(values))
	for idx, item := range values {
		value, err := foldAttribute(item)
		if err != nil {
			return nil, err
		}
		folded[idx] = value
	}
	return folded, nil
}

func foldObject(values map[string]any) (map[string]any, error) {
	folded := make(map[string]any, len(values))
	for key, item := range values {
		value, err := foldAttribute(item)
		if err != nil {
			return nil, err
		}
		folded[key] = value
	}
	return folded, nil
}

// foldReflected covers sized numeric types and typed maps or slices, which
// appear when records are built in Go rather than decoded.
func foldReflected(value reflect.Value) (any, error) {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		unsigned := value.Uint()
		if unsigned > math.MaxInt64 {
			return float64(unsigned), nil
		}
		return int64(unsigned), nil
	case reflect.Float32, reflect.Float64:
		return foldFloat(value.Float())
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, attributeError("record attribute objects need string keys", nil)
		}
		folded := make(map[string]any, value.Len())
		iter := value.MapRange()
		for iter.Next() {
			item, err := foldAttribute(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			folded[iter.Key().String()] = item
		}
		return folded, nil
	case reflect.Slice, reflect.Array:
		folded := make([]any, value.Len())
		for idx := range value.Len() {
			item, err := foldAttribute(value.Index(idx).Interface())
			if err != nil {
				return nil, err
			}
			folded[idx] = item
		}
		return folded, nil
	case reflect.Invalid:
		return nil, nil
	default:
		return nil, attributeError(fmt.Sprintf("record attribute has unsupported type %s", value.Type()), nil)
	}
}

func attributeError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

package query

import (
	"fmt"
)

// Strings decodes a query result as an array of strings.
func Strings(v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of strings, got %s", describe(v))
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("element %d: expected a string, got %s", i, describe(e))
		}
		out[i] = s
	}
	return out, nil
}

// OptionalStrings decodes a query result as an array of strings where null
// elements stand for "absent".
func OptionalStrings(v any) ([]*string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of strings, got %s", describe(v))
	}
	out := make([]*string, len(arr))
	for i, e := range arr {
		switch e := e.(type) {
		case nil:
		case string:
			out[i] = &e
		default:
			return nil, fmt.Errorf("element %d: expected a string or null, got %s", i, describe(e))
		}
	}
	return out, nil
}

func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return fmt.Sprintf("string %q", v)
	case []any:
		return fmt.Sprintf("array of length %d", len(v))
	case map[string]any:
		return "object"
	case int, int64, float64:
		return fmt.Sprintf("number %v", v)
	}
	return fmt.Sprintf("%T", v)
}

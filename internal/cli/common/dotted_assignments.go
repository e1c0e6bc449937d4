package common

import (
	"strconv"
	"strings"
)

// ParseDottedAssignments turns repeated or comma separated key=value items
// into a nested object. Dotted keys create nested objects; values are typed
// as bool, integer, float or null when they parse as such. Wrap a value in
// double quotes to keep it a string.
func ParseDottedAssignments(items []string) (map[string]any, error) {
	output := map[string]any{}
	for _, raw := range items {
		if err := ApplyDottedAssignments(output, raw); err != nil {
			return nil, err
		}
	}
	return output, nil
}

func ApplyDottedAssignments(target map[string]any, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ValidationError("invalid assignment list: expected key=value", nil)
	}

	for _, item := range strings.Split(trimmed, ",") {
		part := strings.TrimSpace(item)
		if part == "" {
			return ValidationError("invalid assignment list: empty item", nil)
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return ValidationError("invalid assignment list: expected key=value", nil)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return ValidationError("invalid assignment list: key must not be empty", nil)
		}

		if err := setDottedAssignmentValue(target, key, parseAssignmentValue(strings.TrimSpace(value))); err != nil {
			return err
		}
	}

	return nil
}

func parseAssignmentValue(value string) any {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if asInt, err := strconv.ParseInt(value, 10, 64); err == nil {
		return asInt
	}
	if asFloat, err := strconv.ParseFloat(value, 64); err == nil && !strings.ContainsAny(value, "xXnN") {
		return asFloat
	}
	return value
}

func setDottedAssignmentValue(target map[string]any, dottedKey string, value any) error {
	segments := strings.Split(strings.TrimSpace(dottedKey), ".")
	current := target
	for idx, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return ValidationError("invalid assignment key: empty path segment", nil)
		}
		if idx == len(segments)-1 {
			current[segment] = value
			return nil
		}

		next, exists := current[segment]
		if !exists {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return ValidationError("invalid assignment list: key path conflicts with scalar value", nil)
		}
		current = child
	}

	return nil
}

// Package docfields reads optional, loosely typed fields out of store
// documents. Every "missing field means default value" rule for a document
// shape goes through these helpers instead of ad-hoc map access.
package docfields

// String returns the string at key, or "" when absent or mistyped
func String(fields map[string]interface{}, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// OptString returns the string at key, or nil when absent
func OptString(fields map[string]interface{}, key string) *string {
	if fields == nil {
		return nil
	}
	if s, ok := fields[key].(string); ok {
		return &s
	}
	return nil
}

// Float returns the number at key, or 0 when absent. Numbers arrive as
// float64 from JSON decoding and as concrete integer types from the
// attributevalue unmarshaler, so both paths are handled.
func Float(fields map[string]interface{}, key string) float64 {
	if fields == nil {
		return 0
	}
	switch v := fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the number at key truncated to int, or 0 when absent
func Int(fields map[string]interface{}, key string) int {
	return int(Float(fields, key))
}

// OptInt returns the number at key, or nil when absent
func OptInt(fields map[string]interface{}, key string) *int {
	if fields == nil {
		return nil
	}
	switch fields[key].(type) {
	case float64, float32, int, int64:
		v := Int(fields, key)
		return &v
	}
	return nil
}

// Map returns the nested document at key, or nil when absent
func Map(fields map[string]interface{}, key string) map[string]interface{} {
	if fields == nil {
		return nil
	}
	if m, ok := fields[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// StringSlice returns the string list at key, or nil when absent
func StringSlice(fields map[string]interface{}, key string) []string {
	if fields == nil {
		return nil
	}
	switch raw := fields[key].(type) {
	case []string:
		return raw
	case []interface{}:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

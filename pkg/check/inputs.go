package check

import (
	"maps"
	"math"
)

// Inputs are the runtime parameters bound to one unit, usually decoded from a
// catalog entry. Getters report ok=false when the key is absent or has the
// wrong type.
type Inputs map[string]any

// Clone returns a shallow copy.
func (in Inputs) Clone() Inputs {
	if in == nil {
		return Inputs{}
	}
	return maps.Clone(in)
}

// Has reports whether key is present with a non-zero value.
func (in Inputs) Has(key string) bool {
	v, ok := in[key]
	return ok && !isZero(v)
}

// Int returns an integer input. Whole floats are accepted so that JSON
// decoded catalogs behave like YAML ones.
func (in Inputs) Int(key string) (int, bool) {
	switch v := in[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

// String returns a non-empty string input.
func (in Inputs) String(key string) (string, bool) {
	s, ok := in[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StringDefault returns a string input or def.
func (in Inputs) StringDefault(key, def string) string {
	if s, ok := in.String(key); ok {
		return s
	}
	return def
}

// Strings returns a list of strings.
func (in Inputs) Strings(key string) ([]string, bool) {
	switch v := in[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// List returns a list of mappings, such as the hosts of a reachability check.
func (in Inputs) List(key string) ([]map[string]any, bool) {
	switch v := in[key].(type) {
	case []map[string]any:
		return v, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case uint64:
		return x == 0
	case float64:
		return x == 0
	case bool:
		return !x
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case []map[string]any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

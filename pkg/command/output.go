package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnexpectedOutput is wrapped by every ShapeError.
var ErrUnexpectedOutput = errors.New("unexpected output shape")

// ShapeError reports output that does not have the shape a check expects.
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrUnexpectedOutput
}

// Node is a position in a decoded JSON document. Every accessor checks the
// shape it expects and returns a *ShapeError naming the path otherwise.
type Node struct {
	path  []string
	value any
}

// NewNode wraps a decoded JSON value as a root node.
func NewNode(v any) Node {
	return Node{value: v}
}

// Path returns the dotted path from the root ("$" for the root itself).
func (n Node) Path() string {
	if len(n.path) == 0 {
		return "$"
	}
	return strings.Join(n.path, ".")
}

// Value returns the underlying decoded value.
func (n Node) Value() any {
	return n.value
}

func (n Node) shapeErr(format string, args ...any) *ShapeError {
	return &ShapeError{Path: n.Path(), Reason: fmt.Sprintf(format, args...)}
}

func (n Node) child(key string, v any) Node {
	path := make([]string, len(n.path), len(n.path)+1)
	copy(path, n.path)
	return Node{path: append(path, key), value: v}
}

func (n Node) object() (map[string]any, error) {
	m, ok := n.value.(map[string]any)
	if !ok {
		return nil, n.shapeErr("expected object, got %s", typeName(n.value))
	}
	return m, nil
}

// Key returns the named member of an object.
func (n Node) Key(name string) (Node, error) {
	m, err := n.object()
	if err != nil {
		return Node{}, err
	}
	v, ok := m[name]
	if !ok {
		return Node{}, n.shapeErr("missing key %q", name)
	}
	return n.child(name, v), nil
}

// Lookup follows a sequence of object keys.
func (n Node) Lookup(keys ...string) (Node, error) {
	cur := n
	for _, k := range keys {
		next, err := cur.Key(k)
		if err != nil {
			return Node{}, err
		}
		cur = next
	}
	return cur, nil
}

// Has reports whether n is an object containing name.
func (n Node) Has(name string) bool {
	m, ok := n.value.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[name]
	return ok
}

// Keys returns the sorted member names of an object.
func (n Node) Keys() ([]string, error) {
	m, err := n.object()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of members of an object or elements of an array.
func (n Node) Len() (int, error) {
	switch v := n.value.(type) {
	case map[string]any:
		return len(v), nil
	case []any:
		return len(v), nil
	default:
		return 0, n.shapeErr("expected object or array, got %s", typeName(n.value))
	}
}

// Items returns the elements of an array.
func (n Node) Items() ([]Node, error) {
	arr, ok := n.value.([]any)
	if !ok {
		return nil, n.shapeErr("expected array, got %s", typeName(n.value))
	}
	items := make([]Node, len(arr))
	for i, v := range arr {
		items[i] = n.child(fmt.Sprintf("[%d]", i), v)
	}
	return items, nil
}

// Str returns a string value.
func (n Node) Str() (string, error) {
	s, ok := n.value.(string)
	if !ok {
		return "", n.shapeErr("expected string, got %s", typeName(n.value))
	}
	return s, nil
}

// Int returns an integral number value.
func (n Node) Int() (int64, error) {
	switch v := n.value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, n.shapeErr("expected integer, got %v", v)
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, n.shapeErr("expected integer, got %s", v)
		}
		return i, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, n.shapeErr("expected number, got %s", typeName(n.value))
	}
}

// Bool returns a boolean value.
func (n Node) Bool() (bool, error) {
	b, ok := n.value.(bool)
	if !ok {
		return false, n.shapeErr("expected bool, got %s", typeName(n.value))
	}
	return b, nil
}

// Snapshot copies the named members of an object, for diagnostics.
// Every field must be present.
func (n Node) Snapshot(fields ...string) (map[string]any, error) {
	m, err := n.object()
	if err != nil {
		return nil, err
	}
	snap := make(map[string]any, len(fields))
	for _, f := range fields {
		v, ok := m[f]
		if !ok {
			return nil, n.shapeErr("missing key %q", f)
		}
		snap[f] = v
	}
	return snap, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, json.Number, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

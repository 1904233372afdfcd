// Package values implements path utilities and the ordered override-layer
// merge for release values trees.
//
// A values tree is the deeply nested map a chart release declares: string
// keys mapping to scalars, lists, or further maps. Layers (chart inline
// values, referenced secrets and config maps, CLI --set strings) are merged
// in declaration order with last-write-wins semantics per leaf key: maps
// merge recursively, lists and scalars replace wholesale.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// DeepCopy creates a deep copy of a values tree. It handles nested maps,
// slices, and primitive values.
func DeepCopy(src interface{}) interface{} {
	switch v := src.(type) {
	case map[string]interface{}:
		dst := make(map[string]interface{}, len(v))
		for key, value := range v {
			dst[key] = DeepCopy(value)
		}
		return dst
	case []interface{}:
		dst := make([]interface{}, len(v))
		for i, value := range v {
			dst[i] = DeepCopy(value)
		}
		return dst
	default:
		// Scalars are immutable as far as the tree is concerned.
		return v
	}
}

// ParsePath splits a dot-notation path into segments.
// Example: "gitlab.webservice.resources" -> ["gitlab", "webservice", "resources"].
func ParsePath(path string) []string {
	return strings.Split(path, ".")
}

// JoinPath is the inverse of ParsePath.
func JoinPath(path []string) string {
	return strings.Join(path, ".")
}

// parseArrayPath extracts the key and index from a path segment that may
// carry an array index. Example: "hosts[0]" -> "hosts", 0, true.
func parseArrayPath(part string) (key string, index int, hasIndex bool) {
	start := strings.Index(part, "[")
	end := strings.Index(part, "]")
	if start != -1 && end != -1 && start < end {
		indexStr := part[start+1 : end]
		if index, err := strconv.Atoi(indexStr); err == nil && index >= 0 {
			return part[:start], index, true
		}
	}
	return part, 0, false
}

// SetValueAtPath sets a value in a values tree at the given path, creating
// intermediate maps as needed. Array access uses the "key[index]" form.
func SetValueAtPath(data map[string]interface{}, path []string, value interface{}) error {
	if data == nil {
		return ErrNilDataMap
	}
	if len(path) == 0 {
		return ErrEmptyPath
	}

	current := data
	for i, part := range path {
		isLast := i == len(path)-1
		key, index, hasIndex := parseArrayPath(part)

		if hasIndex {
			if _, exists := current[key]; !exists {
				arr := make([]interface{}, index+1)
				for j := range arr {
					arr[j] = make(map[string]interface{})
				}
				current[key] = arr
			}
			arr, ok := current[key].([]interface{})
			if !ok {
				return fmt.Errorf("%w: %s", ErrNotAnArray, key)
			}
			for len(arr) <= index {
				arr = append(arr, make(map[string]interface{}))
			}
			current[key] = arr

			if isLast {
				arr[index] = value
				return nil
			}
			nextMap, ok := arr[index].(map[string]interface{})
			if !ok {
				return fmt.Errorf("%w: %s[%d]", ErrNonMapTraversal, key, index)
			}
			current = nextMap
			continue
		}

		if isLast {
			current[key] = value
			return nil
		}
		if _, exists := current[key]; !exists {
			current[key] = make(map[string]interface{})
		}
		nextMap, ok := current[key].(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: %s", ErrNonMapTraversal, key)
		}
		current = nextMap
	}
	return nil
}

// GetValueAtPath looks up a value in a values tree. Array access uses the
// "key[index]" form. Returns ErrPathNotFound when any segment is absent.
func GetValueAtPath(data map[string]interface{}, path []string) (interface{}, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}

	var current interface{} = data
	for _, part := range path {
		key, index, hasIndex := parseArrayPath(part)

		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: at %q", ErrNonMapTraversal, part)
		}
		next, exists := m[key]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, key)
		}

		if hasIndex {
			arr, ok := next.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNotAnArray, key)
			}
			if index >= len(arr) {
				return nil, fmt.Errorf("%w: %s[%d]", ErrPathNotFound, key, index)
			}
			next = arr[index]
		}
		current = next
	}
	return current, nil
}

// WalkMaps visits every map node of a values tree depth-first, including map
// elements of lists, passing the visitor the node's path segments. List
// elements appear in the path as "key[index]" segments.
func WalkMaps(tree map[string]interface{}, visit func(path []string, m map[string]interface{})) {
	walkMaps(tree, nil, visit)
}

func walkMaps(tree map[string]interface{}, path []string, visit func(path []string, m map[string]interface{})) {
	visit(path, tree)
	for key, val := range tree {
		childPath := append(append([]string{}, path...), key)
		switch typed := val.(type) {
		case map[string]interface{}:
			walkMaps(typed, childPath, visit)
		case []interface{}:
			for i, elem := range typed {
				if m, ok := elem.(map[string]interface{}); ok {
					indexed := append(append([]string{}, childPath[:len(childPath)-1]...),
						fmt.Sprintf("%s[%d]", key, i))
					walkMaps(m, indexed, visit)
				}
			}
		}
	}
}

package values

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopy(t *testing.T) {
	original := map[string]interface{}{
		"global": map[string]interface{}{
			"nodeSelector": map[string]interface{}{"workload": "web"},
			"hosts":        []interface{}{"gitlab.example.com"},
		},
		"replicas": 2,
	}

	copied, ok := DeepCopy(original).(map[string]interface{})
	require.True(t, ok)
	if diff := cmp.Diff(original, copied); diff != "" {
		t.Errorf("DeepCopy() mismatch (-want +got):\n%s", diff)
	}

	// Mutating the copy must not affect the original.
	copied["global"].(map[string]interface{})["nodeSelector"].(map[string]interface{})["workload"] = "db"
	assert.Equal(t, "web", original["global"].(map[string]interface{})["nodeSelector"].(map[string]interface{})["workload"])
}

func TestSetValueAtPath(t *testing.T) {
	tests := []struct {
		name     string
		initial  map[string]interface{}
		path     []string
		value    interface{}
		expected map[string]interface{}
		wantErr  error
	}{
		{
			name:    "simple leaf",
			initial: map[string]interface{}{},
			path:    []string{"replicas"},
			value:   3,
			expected: map[string]interface{}{
				"replicas": 3,
			},
		},
		{
			name:    "nested creation",
			initial: map[string]interface{}{},
			path:    []string{"gitlab", "webservice", "minReplicas"},
			value:   2,
			expected: map[string]interface{}{
				"gitlab": map[string]interface{}{
					"webservice": map[string]interface{}{
						"minReplicas": 2,
					},
				},
			},
		},
		{
			name:    "array index",
			initial: map[string]interface{}{},
			path:    []string{"ingress", "hosts[1]"},
			value:   "registry.example.com",
			expected: map[string]interface{}{
				"ingress": map[string]interface{}{
					"hosts": []interface{}{
						map[string]interface{}{},
						"registry.example.com",
					},
				},
			},
		},
		{
			name:    "overwrite existing leaf",
			initial: map[string]interface{}{"replicas": 1},
			path:    []string{"replicas"},
			value:   5,
			expected: map[string]interface{}{
				"replicas": 5,
			},
		},
		{
			name:    "empty path",
			initial: map[string]interface{}{},
			path:    nil,
			wantErr: ErrEmptyPath,
		},
		{
			name:    "traversal through scalar",
			initial: map[string]interface{}{"replicas": 1},
			path:    []string{"replicas", "min"},
			value:   1,
			wantErr: ErrNonMapTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetValueAtPath(tt.initial, tt.path, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, tt.initial); diff != "" {
				t.Errorf("SetValueAtPath() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetValueAtPathNilMap(t *testing.T) {
	err := SetValueAtPath(nil, []string{"a"}, 1)
	assert.ErrorIs(t, err, ErrNilDataMap)
}

func TestGetValueAtPath(t *testing.T) {
	tree := map[string]interface{}{
		"global": map[string]interface{}{
			"nodeSelector": map[string]interface{}{"workload": "web"},
			"hosts":        []interface{}{"gitlab.example.com", "registry.example.com"},
		},
	}

	v, err := GetValueAtPath(tree, ParsePath("global.nodeSelector.workload"))
	require.NoError(t, err)
	assert.Equal(t, "web", v)

	v, err = GetValueAtPath(tree, ParsePath("global.hosts[1]"))
	require.NoError(t, err)
	assert.Equal(t, "registry.example.com", v)

	_, err = GetValueAtPath(tree, ParsePath("global.missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = GetValueAtPath(tree, ParsePath("global.hosts[9]"))
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = GetValueAtPath(tree, ParsePath("global.nodeSelector.workload.x"))
	assert.ErrorIs(t, err, ErrNonMapTraversal)
}

func TestParseJoinPathRoundTrip(t *testing.T) {
	path := "gitlab.webservice.resources"
	assert.Equal(t, path, JoinPath(ParsePath(path)))
}

func TestWalkMaps(t *testing.T) {
	tree := map[string]interface{}{
		"global": map[string]interface{}{
			"nodeSelector": map[string]interface{}{"workload": "web"},
		},
		"extraDeployments": []interface{}{
			map[string]interface{}{
				"nodeSelector": map[string]interface{}{"workload": "batch"},
			},
		},
	}

	var visited []string
	WalkMaps(tree, func(path []string, m map[string]interface{}) {
		if len(path) > 0 && path[len(path)-1] == "nodeSelector" {
			visited = append(visited, JoinPath(path))
		}
	})

	sort.Strings(visited)
	assert.Equal(t, []string{
		"extraDeployments[0].nodeSelector",
		"global.nodeSelector",
	}, visited)
}

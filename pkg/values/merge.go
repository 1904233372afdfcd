package values

import (
	"fmt"

	"helm.sh/helm/v3/pkg/strvals"

	"github.com/lucas-albers-lz4/relint/pkg/log"
)

// Layer is one typed source of override values. Layers are applied in order;
// a later layer wins per leaf key.
type Layer struct {
	// Name identifies the layer in logs and findings, e.g.
	// "Secret/gitlab-secrets" or "inline values".
	Name string
	// Values is the layer's tree. A nil tree is a valid empty layer.
	Values map[string]interface{}
}

// MergeLayers merges the given layers in order with last-write-wins
// semantics per leaf key. Maps merge recursively; lists and scalars from a
// later layer replace earlier values wholesale. The inputs are never
// mutated.
func MergeLayers(layers []Layer) map[string]interface{} {
	result := make(map[string]interface{})
	for _, layer := range layers {
		if len(layer.Values) == 0 {
			log.Debugf("Skipping empty values layer %q", layer.Name)
			continue
		}
		next, ok := DeepCopy(layer.Values).(map[string]interface{})
		if !ok {
			continue
		}
		result = mergeMaps(result, next)
		log.Debug("Applied values layer", "layer", layer.Name, "top_level_keys", len(layer.Values))
	}
	return result
}

// mergeMaps merges src over dst. dst is modified and returned.
func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}
		dstMap, dstIsMap := dstVal.(map[string]interface{})
		srcMap, srcIsMap := srcVal.(map[string]interface{})
		if dstIsMap && srcIsMap {
			dst[key] = mergeMaps(dstMap, srcMap)
			continue
		}
		// Leaf-level conflict: the later layer wins.
		dst[key] = srcVal
	}
	return dst
}

// ParseSetStrings parses Helm-style --set strings into a single layer tree,
// using Helm's own strvals syntax (nested keys, list indices, type coercion).
func ParseSetStrings(setStrings []string) (map[string]interface{}, error) {
	tree := make(map[string]interface{})
	for _, s := range setStrings {
		if err := strvals.ParseInto(s, tree); err != nil {
			return nil, fmt.Errorf("failed to parse --set value %q: %w", s, err)
		}
	}
	return tree, nil
}

// ScalarLayer builds a layer holding a single scalar at the given
// dot-notation target path. Used when a value source declares a targetPath
// instead of supplying a whole subtree.
func ScalarLayer(name, targetPath string, value interface{}) (Layer, error) {
	tree := make(map[string]interface{})
	if err := SetValueAtPath(tree, ParsePath(targetPath), value); err != nil {
		return Layer{}, fmt.Errorf("failed to place value at target path %q: %w", targetPath, err)
	}
	return Layer{Name: name, Values: tree}, nil
}

// Package render computes the effective values document of a release by
// replaying the controller's ordered merge locally: referenced value sources
// in declaration order, inline values last among the document layers, and
// CLI --set strings on top. Local files stand in for the externally managed
// Secret and ConfigMap contents.
package render

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"helm.sh/helm/v3/pkg/chartutil"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/relint/pkg/log"
	"github.com/lucas-albers-lz4/relint/pkg/manifest"
	"github.com/lucas-albers-lz4/relint/pkg/values"
)

// ErrMissingRequiredSource is returned when a non-optional value source has
// no local stand-in file.
var ErrMissingRequiredSource = errors.New("required value source has no local stand-in")

// Renderer merges a release's value layers into the effective values tree.
type Renderer struct {
	// Fs is the filesystem stand-in files are read from.
	Fs afero.Fs

	// Sources maps a referenced source name (e.g. "gitlab-secrets") to a
	// local file path standing in for its content.
	Sources map[string]string

	// SetStrings are Helm-style --set overrides applied above all
	// document layers.
	SetStrings []string
}

// NewRenderer creates a Renderer over the given filesystem.
func NewRenderer(fs afero.Fs) *Renderer {
	return &Renderer{
		Fs:      fs,
		Sources: make(map[string]string),
	}
}

// Render produces the effective values for a release. A referenced source
// without a stand-in is fatal when required and skipped when optional.
func (r *Renderer) Render(release *manifest.HelmRelease) (map[string]interface{}, error) {
	var layers []values.Layer

	for i, ref := range release.Spec.ValuesFrom {
		layerName := ref.Kind + "/" + ref.Name
		path, ok := r.Sources[ref.Name]
		if !ok {
			if ref.Required() {
				return nil, errors.Wrapf(ErrMissingRequiredSource,
					"spec.valuesFrom[%d] (%s)", i, layerName)
			}
			log.Info("Skipping optional value source without stand-in", "source", layerName)
			continue
		}

		layer, err := r.loadSourceLayer(layerName, path, ref)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}

	// Inline values are the last document layer; the controller merges
	// them above every referenced source.
	layers = append(layers, values.Layer{Name: "inline values", Values: release.Spec.Values})

	if len(r.SetStrings) > 0 {
		setTree, err := values.ParseSetStrings(r.SetStrings)
		if err != nil {
			return nil, err
		}
		layers = append(layers, values.Layer{Name: "--set overrides", Values: setTree})
	}

	merged := values.MergeLayers(layers)
	log.Debug("Rendered effective values", "release", release.Metadata.NamespacedName(), "layers", len(layers))
	return merged, nil
}

// loadSourceLayer reads one stand-in file and shapes it into a layer. With a
// targetPath the file content is treated as a single scalar placed at that
// path; otherwise it is parsed as a YAML values subtree.
func (r *Renderer) loadSourceLayer(layerName, path string, ref manifest.ValuesReference) (values.Layer, error) {
	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return values.Layer{}, errors.Wrapf(err, "failed to read stand-in for %s", layerName)
	}

	if ref.TargetPath != "" {
		scalar := strings.TrimRight(string(data), "\n")
		return values.ScalarLayer(layerName, ref.TargetPath, scalar)
	}

	tree, err := chartutil.ReadValues(data)
	if err != nil {
		return values.Layer{}, errors.Wrapf(err, "stand-in for %s (key %s) is not valid YAML", layerName, ref.EffectiveValuesKey())
	}
	return values.Layer{Name: layerName, Values: tree.AsMap()}, nil
}

// ToYAML serializes an effective values tree with stable (sorted) key order
// so repeated renders of identical inputs are byte-identical.
func ToYAML(tree map[string]interface{}) ([]byte, error) {
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal effective values: %w", err)
	}
	return out, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
	"github.com/lucas-albers-lz4/relint/pkg/manifest"
	"github.com/lucas-albers-lz4/relint/pkg/values"
)

// releaseSummary is the inspect command's view of a single release.
type releaseSummary struct {
	Name            string            `json:"name"`
	Namespace       string            `json:"namespace"`
	TargetNamespace string            `json:"targetNamespace,omitempty"`
	Chart           string            `json:"chart"`
	Version         string            `json:"version,omitempty"`
	Interval        string            `json:"interval"`
	Repository      repositorySummary `json:"repository"`
	ValueSources    []sourceSummary   `json:"valueSources"`
	InlineValueKeys []string          `json:"inlineValueKeys,omitempty"`

	// NodeSelectors maps each nodeSelector block in the inline values to
	// its labels, keyed by dot-notation path.
	NodeSelectors map[string]map[string]string `json:"nodeSelectors,omitempty"`

	// Resources maps each resources block declaring requests or limits to
	// its quantities, keyed by dot-notation path.
	Resources map[string]resourceBlock `json:"resources,omitempty"`
}

// resourceBlock is the declared requests/limits of one resources stanza.
type resourceBlock struct {
	Requests map[string]string `json:"requests,omitempty"`
	Limits   map[string]string `json:"limits,omitempty"`
}

// repositorySummary describes the chart's sourceRef and, when the repository
// document is part of the loaded set, its resolved URL.
type repositorySummary struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Resolved bool   `json:"resolved"`
}

// sourceSummary is one entry of the release's ordered value layer list.
type sourceSummary struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	ValuesKey  string `json:"valuesKey"`
	TargetPath string `json:"targetPath,omitempty"`
	Optional   bool   `json:"optional"`
}

// newInspectCmd creates a new inspect command
func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a release and its configuration sources",
		Long: `Summarize what a HelmRelease deploys: chart, version, resolved repository
URL, and the ordered list of value sources the controller would merge.

The value source list shows the merge order: referenced Secrets and ConfigMaps
in declaration order, with inline values applied last.`,
		Args: cobra.NoArgs,
		RunE: runInspect,
	}

	cmd.Flags().StringSliceP("filename", "f", []string{}, "Manifest files to inspect (can be specified multiple times)")
	cmd.Flags().String("release", "", "Name of the release to inspect (required when manifests contain several)")
	cmd.Flags().String("namespace", "", "Namespace of the release to inspect")
	cmd.Flags().StringP("output-format", "o", OutputFormatYAML, "Output format: yaml or json")
	cmd.Flags().String("output-file", "", "Write the summary to a file instead of stdout")

	return cmd
}

// runInspect implements the inspect command logic
func runInspect(cmd *cobra.Command, _ []string) error {
	files, err := cmd.Flags().GetStringSlice("filename")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get filename flag: %w", err),
		}
	}
	releaseName, err := cmd.Flags().GetString("release")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get release flag: %w", err),
		}
	}
	namespace, err := cmd.Flags().GetString("namespace")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get namespace flag: %w", err),
		}
	}
	format, err := cmd.Flags().GetString("output-format")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get output-format flag: %w", err),
		}
	}
	outputFile, err := cmd.Flags().GetString("output-file")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get output-file flag: %w", err),
		}
	}

	set, err := loadDocumentSet(files)
	if err != nil {
		return err
	}

	release, err := selectRelease(set, releaseName, namespace)
	if err != nil {
		return err
	}

	summary := summarizeRelease(set, release)

	var out []byte
	switch format {
	case OutputFormatJSON:
		out, err = json.MarshalIndent(summary, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case OutputFormatYAML:
		out, err = yaml.Marshal(summary)
	default:
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("unsupported output format %q (expected yaml or json)", format),
		}
	}
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInternalError,
			Err:  fmt.Errorf("failed to marshal release summary: %w", err),
		}
	}

	if outputFile != "" {
		return writeOutputFile(outputFile, out, "Release summary written to %s")
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), string(out)); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to write release summary: %w", err),
		}
	}
	return nil
}

// summarizeRelease builds the inspect view of a release, resolving its
// sourceRef against the loaded set.
func summarizeRelease(set *manifest.DocumentSet, release *manifest.HelmRelease) releaseSummary {
	summary := releaseSummary{
		Name:            release.Metadata.Name,
		Namespace:       release.Metadata.Namespace,
		TargetNamespace: release.Spec.TargetNamespace,
		Chart:           release.Spec.Chart.Spec.Chart,
		Version:         release.Spec.Chart.Spec.Version,
		Interval:        release.Spec.Interval,
		Repository: repositorySummary{
			Name: release.Spec.Chart.Spec.SourceRef.Name,
		},
	}

	if repo := set.ResolveSource(release); repo != nil {
		summary.Repository.URL = repo.Spec.URL
		summary.Repository.Resolved = true
	}

	for _, ref := range release.Spec.ValuesFrom {
		summary.ValueSources = append(summary.ValueSources, sourceSummary{
			Kind:       ref.Kind,
			Name:       ref.Name,
			ValuesKey:  ref.EffectiveValuesKey(),
			TargetPath: ref.TargetPath,
			Optional:   ref.Optional,
		})
	}

	for key := range release.Spec.Values {
		summary.InlineValueKeys = append(summary.InlineValueKeys, key)
	}
	sort.Strings(summary.InlineValueKeys)

	summary.NodeSelectors, summary.Resources = collectPlacement(release.Spec.Values)

	return summary
}

// collectPlacement extracts every nodeSelector and resources block from the
// inline values tree, keyed by dot-notation path.
func collectPlacement(tree map[string]interface{}) (map[string]map[string]string, map[string]resourceBlock) {
	nodeSelectors := make(map[string]map[string]string)
	resources := make(map[string]resourceBlock)

	values.WalkMaps(tree, func(path []string, m map[string]interface{}) {
		if len(path) == 0 {
			return
		}
		switch path[len(path)-1] {
		case "nodeSelector":
			labels := make(map[string]string, len(m))
			for label, v := range m {
				labels[label] = fmt.Sprintf("%v", v)
			}
			if len(labels) > 0 {
				nodeSelectors[values.JoinPath(path)] = labels
			}
		case "resources":
			block := resourceBlock{
				Requests: quantityStrings(m["requests"]),
				Limits:   quantityStrings(m["limits"]),
			}
			if len(block.Requests) > 0 || len(block.Limits) > 0 {
				resources[values.JoinPath(path)] = block
			}
		}
	})

	if len(nodeSelectors) == 0 {
		nodeSelectors = nil
	}
	if len(resources) == 0 {
		resources = nil
	}
	return nodeSelectors, resources
}

// quantityStrings flattens a requests or limits stanza to printable values.
func quantityStrings(v interface{}) map[string]string {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for name, qty := range m {
		out[name] = fmt.Sprintf("%v", qty)
	}
	return out
}

package lint

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/lucas-albers-lz4/relint/pkg/manifest"
	"github.com/lucas-albers-lz4/relint/pkg/values"
)

// Rule priorities. Structural checks run before semantic ones so their
// findings lead the report.
const (
	priorityDuplicate      = 100
	priorityMetadata       = 90
	priorityInterval       = 80
	priorityRepositoryURL  = 70
	priorityChartSpec      = 60
	prioritySourceRef      = 50
	priorityValuesFrom     = 40
	priorityNodeSelector   = 30
	priorityResourceBounds = 20
)

// --- DuplicateDocumentRule ---

// DuplicateDocumentRule reports documents that repeat a kind/namespace/name
// identity already declared earlier in the set.
type DuplicateDocumentRule struct {
	BaseRule
}

// NewDuplicateDocumentRule creates the duplicate-document rule.
func NewDuplicateDocumentRule() *DuplicateDocumentRule {
	return &DuplicateDocumentRule{
		BaseRule: NewBaseRule(
			"duplicate-document",
			"Documents must not repeat a kind/namespace/name identity within the loaded set",
			priorityDuplicate,
		),
	}
}

// Check reports a finding on the later of two documents sharing an identity.
func (r *DuplicateDocumentRule) Check(doc *manifest.Document, set *manifest.DocumentSet) []Finding {
	for i := range set.Documents {
		other := &set.Documents[i]
		if other == doc {
			// Only documents loaded before this one count.
			break
		}
		if other.ID() == doc.ID() {
			return []Finding{r.finding(SeverityError, doc, "",
				fmt.Sprintf("duplicate of document %d in %s", other.Index, other.Source))}
		}
	}
	return nil
}

// --- MetadataRule ---

// MetadataRule checks the identity fields every document must declare.
type MetadataRule struct {
	BaseRule
}

// NewMetadataRule creates the metadata rule.
func NewMetadataRule() *MetadataRule {
	return &MetadataRule{
		BaseRule: NewBaseRule(
			"metadata",
			"Documents must declare a valid metadata.name",
			priorityMetadata,
		),
	}
}

// Check validates metadata.name presence and DNS-1123 shape.
func (r *MetadataRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	meta := doc.Meta()
	if meta.Name == "" {
		return []Finding{r.finding(SeverityError, doc, "metadata.name", "metadata.name is required")}
	}
	if msgs := validation.IsDNS1123Subdomain(meta.Name); len(msgs) > 0 {
		return []Finding{r.finding(SeverityError, doc, "metadata.name",
			fmt.Sprintf("%q is not a valid DNS subdomain name: %s", meta.Name, msgs[0]))}
	}
	return nil
}

// --- IntervalRule ---

// IntervalRule enforces that every declared refresh interval is a positive
// duration.
type IntervalRule struct {
	BaseRule
}

// NewIntervalRule creates the interval rule.
func NewIntervalRule() *IntervalRule {
	return &IntervalRule{
		BaseRule: NewBaseRule(
			"interval",
			"Declared refresh intervals must be positive durations",
			priorityInterval,
		),
	}
}

// Check validates the interval fields on both document kinds.
func (r *IntervalRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	var findings []Finding

	check := func(path, interval string, required bool) {
		if interval == "" && !required {
			return
		}
		if _, err := manifest.ParseInterval(interval); err != nil {
			findings = append(findings, r.finding(SeverityError, doc, path, err.Error()))
		}
	}

	switch {
	case doc.Repository != nil:
		check("spec.interval", doc.Repository.Spec.Interval, true)
	case doc.Release != nil:
		check("spec.interval", doc.Release.Spec.Interval, true)
		check("spec.chart.spec.interval", doc.Release.Spec.Chart.Spec.Interval, false)
	}
	return findings
}

// --- RepositoryURLRule ---

// RepositoryURLRule checks that a chart source declares a usable repository
// endpoint.
type RepositoryURLRule struct {
	BaseRule
}

// NewRepositoryURLRule creates the repository URL rule.
func NewRepositoryURLRule() *RepositoryURLRule {
	return &RepositoryURLRule{
		BaseRule: NewBaseRule(
			"repository-url",
			"HelmRepository documents must declare a valid http(s) or oci endpoint",
			priorityRepositoryURL,
		),
	}
}

// AppliesTo restricts the rule to HelmRepository documents.
func (r *RepositoryURLRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Repository != nil
}

// Check validates spec.url.
func (r *RepositoryURLRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	rawURL := doc.Repository.Spec.URL
	if rawURL == "" {
		return []Finding{r.finding(SeverityError, doc, "spec.url", "spec.url is required")}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return []Finding{r.finding(SeverityError, doc, "spec.url",
			fmt.Sprintf("invalid repository URL %q: %v", rawURL, err))}
	}
	switch parsed.Scheme {
	case "http", "https", "oci":
	default:
		return []Finding{r.finding(SeverityError, doc, "spec.url",
			fmt.Sprintf("unsupported repository URL scheme %q (want http, https, or oci)", parsed.Scheme))}
	}
	if parsed.Host == "" {
		return []Finding{r.finding(SeverityError, doc, "spec.url",
			fmt.Sprintf("repository URL %q has no host", rawURL))}
	}
	return nil
}

// --- ChartSpecRule ---

// ChartSpecRule checks the chart name and version pin of a release.
type ChartSpecRule struct {
	BaseRule
}

// NewChartSpecRule creates the chart spec rule.
func NewChartSpecRule() *ChartSpecRule {
	return &ChartSpecRule{
		BaseRule: NewBaseRule(
			"chart-spec",
			"Releases must name a chart and should pin an exact version",
			priorityChartSpec,
		),
	}
}

// AppliesTo restricts the rule to HelmRelease documents.
func (r *ChartSpecRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Release != nil
}

// Check validates spec.chart.spec.chart and the version pin.
func (r *ChartSpecRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	spec := doc.Release.Spec.Chart.Spec

	var findings []Finding
	if spec.Chart == "" {
		findings = append(findings, r.finding(SeverityError, doc, "spec.chart.spec.chart",
			"spec.chart.spec.chart is required"))
	}

	switch {
	case spec.Version == "":
		findings = append(findings, r.finding(SeverityWarning, doc, "spec.chart.spec.version",
			"chart version is not pinned; the latest matching chart will be installed"))
	default:
		if _, err := semver.StrictNewVersion(strings.TrimPrefix(spec.Version, "v")); err != nil {
			// Ranges and wildcards are valid to the controller but defeat
			// reproducible deployments.
			findings = append(findings, r.finding(SeverityWarning, doc, "spec.chart.spec.version",
				fmt.Sprintf("chart version %q is not an exact semver pin", spec.Version)))
		}
	}
	return findings
}

// --- SourceRefRule ---

// SourceRefRule checks that the chart sourceRef is well formed and resolves
// within the loaded document set.
type SourceRefRule struct {
	BaseRule
}

// NewSourceRefRule creates the sourceRef rule.
func NewSourceRefRule() *SourceRefRule {
	return &SourceRefRule{
		BaseRule: NewBaseRule(
			"source-ref",
			"Release sourceRef must point at a HelmRepository, preferably one in the loaded set",
			prioritySourceRef,
		),
	}
}

// AppliesTo restricts the rule to HelmRelease documents.
func (r *SourceRefRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Release != nil
}

// Check validates spec.chart.spec.sourceRef.
func (r *SourceRefRule) Check(doc *manifest.Document, set *manifest.DocumentSet) []Finding {
	ref := doc.Release.Spec.Chart.Spec.SourceRef

	var findings []Finding
	if ref.Kind != manifest.KindHelmRepository {
		findings = append(findings, r.finding(SeverityError, doc, "spec.chart.spec.sourceRef.kind",
			fmt.Sprintf("sourceRef kind %q is not supported (want %s)", ref.Kind, manifest.KindHelmRepository)))
	}
	if ref.Name == "" {
		findings = append(findings, r.finding(SeverityError, doc, "spec.chart.spec.sourceRef.name",
			"sourceRef.name is required"))
		return findings
	}

	if ref.Kind == manifest.KindHelmRepository && set.ResolveSource(doc.Release) == nil {
		namespace := ref.Namespace
		if namespace == "" {
			namespace = doc.Release.Metadata.Namespace
		}
		// The repository may be declared elsewhere in the cluster, so this
		// is not fatal on its own.
		findings = append(findings, r.finding(SeverityWarning, doc, "spec.chart.spec.sourceRef",
			fmt.Sprintf("HelmRepository %s/%s not found in the loaded documents", namespace, ref.Name)))
	}
	return findings
}

// --- ValuesFromRule ---

// ValuesFromRule checks the ordered list of external value sources.
type ValuesFromRule struct {
	BaseRule
}

// NewValuesFromRule creates the valuesFrom rule.
func NewValuesFromRule() *ValuesFromRule {
	return &ValuesFromRule{
		BaseRule: NewBaseRule(
			"values-from",
			"Value sources must reference Secrets or ConfigMaps with consistent required/optional flags",
			priorityValuesFrom,
		),
	}
}

// AppliesTo restricts the rule to HelmRelease documents.
func (r *ValuesFromRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Release != nil
}

// Check validates every spec.valuesFrom entry.
func (r *ValuesFromRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	var findings []Finding
	seen := make(map[string]int)

	for i, ref := range doc.Release.Spec.ValuesFrom {
		path := fmt.Sprintf("spec.valuesFrom[%d]", i)

		if ref.Kind != manifest.KindSecret && ref.Kind != manifest.KindConfigMap {
			findings = append(findings, r.finding(SeverityError, doc, path+".kind",
				fmt.Sprintf("value source kind %q is not supported (want %s or %s)",
					ref.Kind, manifest.KindSecret, manifest.KindConfigMap)))
		}
		if ref.Name == "" {
			findings = append(findings, r.finding(SeverityError, doc, path+".name",
				"value source name is required"))
			continue
		}

		key := ref.Kind + "/" + ref.Name + "/" + ref.EffectiveValuesKey()
		if first, dup := seen[key]; dup {
			findings = append(findings, r.finding(SeverityWarning, doc, path,
				fmt.Sprintf("duplicate value source %s/%s (first declared at spec.valuesFrom[%d])", ref.Kind, ref.Name, first)))
		} else {
			seen[key] = i
		}

		if ref.Kind == manifest.KindSecret && ref.Optional {
			// A secret that silently goes missing changes deployed
			// credentials without failing reconciliation.
			findings = append(findings, r.finding(SeverityWarning, doc, path+".optional",
				fmt.Sprintf("Secret source %q is marked optional; a missing secret will not block reconciliation", ref.Name)))
		}
	}
	return findings
}

// --- NodeSelectorRule ---

// NodeSelectorRule checks that every nodeSelector block in the values tree
// agrees on shared label key/value pairs, so all components of the release
// land on the same node pool.
type NodeSelectorRule struct {
	BaseRule
}

// NewNodeSelectorRule creates the nodeSelector consistency rule.
func NewNodeSelectorRule() *NodeSelectorRule {
	return &NodeSelectorRule{
		BaseRule: NewBaseRule(
			"node-selector",
			"nodeSelector blocks in the values tree must agree on shared label values",
			priorityNodeSelector,
		),
	}
}

// AppliesTo restricts the rule to HelmRelease documents with inline values.
func (r *NodeSelectorRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Release != nil && len(doc.Release.Spec.Values) > 0
}

// Check collects every nodeSelector occurrence and reports conflicting label
// values.
func (r *NodeSelectorRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	type occurrence struct {
		path  string
		value string
	}
	// label key -> declared value -> paths declaring it
	declared := make(map[string][]occurrence)

	values.WalkMaps(doc.Release.Spec.Values, func(path []string, m map[string]interface{}) {
		if len(path) == 0 || path[len(path)-1] != "nodeSelector" {
			return
		}
		for label, v := range m {
			declared[label] = append(declared[label], occurrence{
				path:  values.JoinPath(append(path, label)),
				value: fmt.Sprintf("%v", v),
			})
		}
	})

	var findings []Finding
	for label, occurrences := range declared {
		distinct := make(map[string][]string)
		for _, occ := range occurrences {
			distinct[occ.value] = append(distinct[occ.value], occ.path)
		}
		if len(distinct) <= 1 {
			continue
		}
		var details []string
		for value, paths := range distinct {
			details = append(details, fmt.Sprintf("%q at %s", value, strings.Join(paths, ", ")))
		}
		sort.Strings(details)
		findings = append(findings, r.finding(SeverityError, doc, "spec.values",
			fmt.Sprintf("nodeSelector label %q has conflicting values: %s", label, strings.Join(details, "; "))))
	}
	return findings
}

// --- ResourceBoundsRule ---

// ResourceBoundsRule checks that resource requests never exceed their
// corresponding limits anywhere in the values tree.
type ResourceBoundsRule struct {
	BaseRule
}

// NewResourceBoundsRule creates the resource bounds rule.
func NewResourceBoundsRule() *ResourceBoundsRule {
	return &ResourceBoundsRule{
		BaseRule: NewBaseRule(
			"resource-bounds",
			"Resource requests must not exceed their corresponding limits",
			priorityResourceBounds,
		),
	}
}

// AppliesTo restricts the rule to HelmRelease documents with inline values.
func (r *ResourceBoundsRule) AppliesTo(doc *manifest.Document) bool {
	return doc.Release != nil && len(doc.Release.Spec.Values) > 0
}

// Check finds every resources block declaring both requests and limits and
// compares the quantities.
func (r *ResourceBoundsRule) Check(doc *manifest.Document, _ *manifest.DocumentSet) []Finding {
	var findings []Finding

	values.WalkMaps(doc.Release.Spec.Values, func(path []string, m map[string]interface{}) {
		if len(path) == 0 || path[len(path)-1] != "resources" {
			return
		}
		requests, okReq := m["requests"].(map[string]interface{})
		limits, okLim := m["limits"].(map[string]interface{})
		if !okReq || !okLim {
			return
		}

		for name, reqVal := range requests {
			limVal, declared := limits[name]
			if !declared {
				continue
			}
			blockPath := values.JoinPath(path)

			request, err := parseQuantity(reqVal)
			if err != nil {
				findings = append(findings, r.finding(SeverityWarning, doc, blockPath+".requests."+name,
					fmt.Sprintf("unparseable resource quantity %v: %v", reqVal, err)))
				continue
			}
			limit, err := parseQuantity(limVal)
			if err != nil {
				findings = append(findings, r.finding(SeverityWarning, doc, blockPath+".limits."+name,
					fmt.Sprintf("unparseable resource quantity %v: %v", limVal, err)))
				continue
			}
			if request.Cmp(limit) > 0 {
				findings = append(findings, r.finding(SeverityError, doc, blockPath,
					fmt.Sprintf("%s request %s exceeds limit %s", name, request.String(), limit.String())))
			}
		}
	})
	return findings
}

// parseQuantity parses a values-tree scalar as a Kubernetes resource
// quantity. YAML decoding may deliver numbers rather than strings.
func parseQuantity(v interface{}) (resource.Quantity, error) {
	switch q := v.(type) {
	case string:
		return resource.ParseQuantity(q)
	case int, int32, int64, float64:
		return resource.ParseQuantity(fmt.Sprintf("%v", q))
	default:
		return resource.Quantity{}, fmt.Errorf("unsupported quantity type %T", v)
	}
}


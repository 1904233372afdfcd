// Package manifest defines the typed schema for GitOps Helm release documents
// and a loader that turns multi-document YAML streams into a DocumentSet.
//
// Two document kinds are supported: HelmRepository (a chart source: repository
// URL plus refresh interval) and HelmRelease (a chart name/version pinned to a
// source, an ordered list of external value sources, and an inline values
// tree). The documents are declarative input for an external reconciliation
// controller; this package only models and validates them.
package manifest

import (
	"fmt"
	"strings"
	"time"
)

// Supported API groups and kinds.
const (
	SourceAPIGroup = "source.toolkit.fluxcd.io"
	HelmAPIGroup   = "helm.toolkit.fluxcd.io"

	KindHelmRepository = "HelmRepository"
	KindHelmRelease    = "HelmRelease"

	KindSecret    = "Secret"
	KindConfigMap = "ConfigMap"

	// DefaultNamespace is applied when a document omits metadata.namespace.
	DefaultNamespace = "default"
)

// TypeMeta identifies the API schema of a document.
type TypeMeta struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// Group returns the API group portion of the apiVersion.
func (t TypeMeta) Group() string {
	if idx := strings.Index(t.APIVersion, "/"); idx >= 0 {
		return t.APIVersion[:idx]
	}
	return ""
}

// ObjectMeta carries the identity fields every document must declare.
type ObjectMeta struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// NamespacedName returns the "namespace/name" identity of the object.
func (m ObjectMeta) NamespacedName() string {
	return m.Namespace + "/" + m.Name
}

// HelmRepository declares where to fetch charts from and how often the
// external controller should refresh its index.
type HelmRepository struct {
	TypeMeta `json:",inline"`
	Metadata ObjectMeta         `json:"metadata"`
	Spec     HelmRepositorySpec `json:"spec"`
}

// HelmRepositorySpec is the spec block of a HelmRepository document.
type HelmRepositorySpec struct {
	URL      string `json:"url"`
	Interval string `json:"interval"`
	Type     string `json:"type,omitempty"`
}

// HelmRelease declares a chart release: which chart and version to install,
// which value sources to merge, and the inline values override tree.
type HelmRelease struct {
	TypeMeta `json:",inline"`
	Metadata ObjectMeta      `json:"metadata"`
	Spec     HelmReleaseSpec `json:"spec"`
}

// HelmReleaseSpec is the spec block of a HelmRelease document.
type HelmReleaseSpec struct {
	Interval        string                 `json:"interval"`
	ReleaseName     string                 `json:"releaseName,omitempty"`
	TargetNamespace string                 `json:"targetNamespace,omitempty"`
	Chart           ChartTemplate          `json:"chart"`
	ValuesFrom      []ValuesReference      `json:"valuesFrom,omitempty"`
	Values          map[string]interface{} `json:"values,omitempty"`
}

// ChartTemplate wraps the chart spec the way the release schema nests it.
type ChartTemplate struct {
	Spec ChartSpec `json:"spec"`
}

// ChartSpec pins a chart name and version to a source reference.
type ChartSpec struct {
	Chart     string                        `json:"chart"`
	Version   string                        `json:"version,omitempty"`
	SourceRef CrossNamespaceObjectReference `json:"sourceRef"`
	Interval  string                        `json:"interval,omitempty"`
}

// CrossNamespaceObjectReference locates the chart source document a release
// pulls from.
type CrossNamespaceObjectReference struct {
	APIVersion string `json:"apiVersion,omitempty"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace,omitempty"`
}

// ValuesReference points at an externally managed Secret or ConfigMap whose
// content is merged into the release values before templating. Only the
// reference and its required/optional status are declared here; the content
// lifecycle is owned outside the document.
type ValuesReference struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	ValuesKey  string `json:"valuesKey,omitempty"`
	TargetPath string `json:"targetPath,omitempty"`
	Optional   bool   `json:"optional,omitempty"`
}

// Required reports whether a missing source is fatal to reconciliation.
func (r ValuesReference) Required() bool {
	return !r.Optional
}

// EffectiveValuesKey returns the data key the controller reads values from,
// defaulting to "values.yaml" when unset.
func (r ValuesReference) EffectiveValuesKey() string {
	if r.ValuesKey != "" {
		return r.ValuesKey
	}
	return "values.yaml"
}

// ParseInterval parses a declared refresh interval and enforces that it is a
// positive duration.
func ParseInterval(interval string) (time.Duration, error) {
	if interval == "" {
		return 0, fmt.Errorf("%w: interval is empty", ErrInvalidInterval)
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q is not positive", ErrInvalidInterval, interval)
	}
	return d, nil
}

// Document is a single parsed manifest plus its provenance within the loaded
// stream. Exactly one of Repository or Release is set.
type Document struct {
	TypeMeta
	Repository *HelmRepository
	Release    *HelmRelease

	// Source is the file the document came from; Index is its position
	// within that file's document stream.
	Source string
	Index  int
}

// Meta returns the document's object metadata.
func (d *Document) Meta() ObjectMeta {
	switch {
	case d.Repository != nil:
		return d.Repository.Metadata
	case d.Release != nil:
		return d.Release.Metadata
	default:
		return ObjectMeta{}
	}
}

// ID returns a stable "kind namespace/name" identity for duplicate detection
// and finding attribution.
func (d *Document) ID() string {
	return d.Kind + " " + d.Meta().NamespacedName()
}

// DocumentSet is the ordered collection of documents loaded from one or more
// files. Cross-document checks (sourceRef resolution, duplicates) are scoped
// to the set.
type DocumentSet struct {
	Documents []Document
}

// Releases returns all HelmRelease documents in load order.
func (s *DocumentSet) Releases() []*HelmRelease {
	var releases []*HelmRelease
	for i := range s.Documents {
		if s.Documents[i].Release != nil {
			releases = append(releases, s.Documents[i].Release)
		}
	}
	return releases
}

// Repositories returns all HelmRepository documents in load order.
func (s *DocumentSet) Repositories() []*HelmRepository {
	var repos []*HelmRepository
	for i := range s.Documents {
		if s.Documents[i].Repository != nil {
			repos = append(repos, s.Documents[i].Repository)
		}
	}
	return repos
}

// FindRepository resolves a repository by name and namespace within the set.
// Returns nil when no match exists.
func (s *DocumentSet) FindRepository(name, namespace string) *HelmRepository {
	for i := range s.Documents {
		repo := s.Documents[i].Repository
		if repo == nil {
			continue
		}
		if repo.Metadata.Name == name && repo.Metadata.Namespace == namespace {
			return repo
		}
	}
	return nil
}

// ResolveSource resolves a release's chart sourceRef against the set,
// honoring the sourceRef namespace override.
func (s *DocumentSet) ResolveSource(release *HelmRelease) *HelmRepository {
	ref := release.Spec.Chart.Spec.SourceRef
	namespace := ref.Namespace
	if namespace == "" {
		namespace = release.Metadata.Namespace
	}
	return s.FindRepository(ref.Name, namespace)
}

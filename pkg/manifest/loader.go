package manifest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	goyaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/relint/pkg/log"
)

// Load reads a single YAML file and parses every document in it.
func Load(fs afero.Fs, path string) (*DocumentSet, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest file %s", path)
	}
	return Parse(data, path)
}

// LoadAll reads multiple YAML files into a single DocumentSet, preserving
// file and document order.
func LoadAll(fs afero.Fs, paths []string) (*DocumentSet, error) {
	set := &DocumentSet{}
	for _, path := range paths {
		fileSet, err := Load(fs, path)
		if err != nil {
			return nil, err
		}
		set.Documents = append(set.Documents, fileSet.Documents...)
	}
	return set, nil
}

// Parse splits a YAML stream into documents and decodes each into its typed
// form. Empty documents (blank or comment-only) are skipped; a stream with
// no effective documents is an error.
func Parse(data []byte, source string) (*DocumentSet, error) {
	set := &DocumentSet{}
	decoder := goyaml.NewDecoder(bytes.NewReader(data))

	for index := 0; ; index++ {
		var raw map[string]interface{}
		err := decoder.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Source: source, Index: index, Err: err}
		}
		if len(raw) == 0 {
			log.Debugf("Skipping empty document %d in %s", index, source)
			continue
		}

		doc, err := decodeDocument(raw, source, index)
		if err != nil {
			return nil, err
		}
		set.Documents = append(set.Documents, *doc)
	}

	if len(set.Documents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyStream, source)
	}
	log.Debug("Parsed manifest stream", "source", source, "documents", len(set.Documents))
	return set, nil
}

// decodeDocument dispatches a raw document to its typed schema based on kind.
func decodeDocument(raw map[string]interface{}, source string, index int) (*Document, error) {
	// Round-trip through YAML so the typed decode sees the original text.
	buf, err := goyaml.Marshal(raw)
	if err != nil {
		return nil, &ParseError{Source: source, Index: index, Err: err}
	}

	var meta TypeMeta
	if err := yaml.Unmarshal(buf, &meta); err != nil {
		return nil, &ParseError{Source: source, Index: index, Err: err}
	}
	if meta.Kind == "" {
		return nil, &ParseError{Source: source, Index: index, Err: ErrMissingKind}
	}
	if meta.APIVersion == "" {
		return nil, &ParseError{Source: source, Index: index, Err: ErrMissingAPIVersion}
	}

	doc := &Document{TypeMeta: meta, Source: source, Index: index}

	switch meta.Kind {
	case KindHelmRepository:
		var repo HelmRepository
		if err := yaml.Unmarshal(buf, &repo); err != nil {
			return nil, &ParseError{Source: source, Index: index, Err: err}
		}
		if repo.Metadata.Namespace == "" {
			repo.Metadata.Namespace = DefaultNamespace
		}
		doc.Repository = &repo
	case KindHelmRelease:
		var release HelmRelease
		if err := yaml.Unmarshal(buf, &release); err != nil {
			return nil, &ParseError{Source: source, Index: index, Err: err}
		}
		if release.Metadata.Namespace == "" {
			release.Metadata.Namespace = DefaultNamespace
		}
		doc.Release = &release
	default:
		return nil, &ParseError{
			Source: source,
			Index:  index,
			Err:    fmt.Errorf("%w: %s", ErrUnknownKind, meta.Kind),
		}
	}

	log.Debugf("Decoded %s %s from %s[%d]", meta.Kind, doc.Meta().NamespacedName(), source, index)
	return doc, nil
}

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
	"github.com/lucas-albers-lz4/relint/pkg/fileutil"
	log "github.com/lucas-albers-lz4/relint/pkg/log"
	"github.com/lucas-albers-lz4/relint/pkg/manifest"
)

// loadDocumentSet reads and parses the given manifest files, mapping failures
// onto the exit codes the commands share.
func loadDocumentSet(files []string) (*manifest.DocumentSet, error) {
	if len(files) == 0 {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitMissingRequiredFlag,
			Err:  errors.New("at least one manifest file must be provided with --filename"),
		}
	}

	for _, file := range files {
		if !fileutil.IsYAMLFile(file) {
			log.Warnf("Manifest file %s does not have a YAML extension", file)
		}
		exists, err := fileutil.FileExists(AppFs, file)
		if err != nil {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("failed to check manifest file %s: %w", file, err),
			}
		}
		if !exists {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitManifestNotFound,
				Err:  fmt.Errorf("manifest file not found: %s", file),
			}
		}
	}

	set, err := manifest.LoadAll(AppFs, files)
	if err != nil {
		code := exitcodes.ExitManifestParseError
		if errors.Is(err, manifest.ErrUnknownKind) {
			code = exitcodes.ExitUnknownKind
		}
		return nil, &exitcodes.ExitCodeError{Code: code, Err: err}
	}

	log.Debug("Loaded manifests", "files", len(files), "documents", len(set.Documents))
	return set, nil
}

// selectRelease picks the release a command operates on. With a name it must
// match exactly; without one the set must contain exactly one release.
func selectRelease(set *manifest.DocumentSet, name, namespace string) (*manifest.HelmRelease, error) {
	releases := set.Releases()
	if len(releases) == 0 {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  errors.New("no HelmRelease documents found in the provided manifests"),
		}
	}

	if name == "" {
		if len(releases) > 1 {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInputConfigurationError,
				Err:  fmt.Errorf("manifests contain %d releases, select one with --release", len(releases)),
			}
		}
		return releases[0], nil
	}

	for _, release := range releases {
		if release.Metadata.Name != name {
			continue
		}
		if namespace != "" && release.Metadata.Namespace != namespace {
			continue
		}
		return release, nil
	}

	return nil, &exitcodes.ExitCodeError{
		Code: exitcodes.ExitInputConfigurationError,
		Err:  fmt.Errorf("no HelmRelease named %q found in the provided manifests", name),
	}
}

// writeOutputFile handles writing content to a file with proper error handling and directory creation
func writeOutputFile(outputFile string, content []byte, successMessage string) error {
	// Refuse to clobber an existing file.
	exists, err := afero.Exists(AppFs, outputFile)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to check if output file exists: %w", err),
		}
	}
	if exists {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("output file '%s' already exists", outputFile),
		}
	}

	err = AppFs.MkdirAll(filepath.Dir(outputFile), fileutil.ReadWriteExecuteUserReadExecuteOthers)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitGeneralRuntimeError,
			Err:  fmt.Errorf("failed to create output directory: %w", err),
		}
	}

	err = afero.WriteFile(AppFs, outputFile, content, fileutil.ReadWriteUserReadOthers)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitGeneralRuntimeError,
			Err:  fmt.Errorf("failed to write output file: %w", err),
		}
	}

	if successMessage != "" {
		log.Infof(successMessage, outputFile)
	}

	return nil
}

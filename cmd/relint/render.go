package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/relint/pkg/debug"
	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
	"github.com/lucas-albers-lz4/relint/pkg/fileutil"
	log "github.com/lucas-albers-lz4/relint/pkg/log"
	"github.com/lucas-albers-lz4/relint/pkg/render"
)

// newRenderCmd creates a new render command
func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Merge a release's ordered value layers into the effective values",
		Long: `Merge a release's value layers the way the controller would: referenced
Secrets and ConfigMaps in declaration order, inline values last, and --set
overrides on top. Maps merge recursively; lists and scalars replace wholesale.

Referenced Secrets and ConfigMaps live outside the manifests, so each one is
supplied as a local stand-in file with --source NAME=PATH. A required source
without a stand-in fails the render; an optional one is skipped.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	cmd.Flags().StringSliceP("filename", "f", []string{}, "Manifest files to load (can be specified multiple times)")
	cmd.Flags().String("release", "", "Name of the release to render (required when manifests contain several)")
	cmd.Flags().String("namespace", "", "Namespace of the release to render")
	cmd.Flags().StringSlice("source", []string{}, "Stand-in file for a referenced source, as NAME=PATH (can be specified multiple times)")
	cmd.Flags().StringSlice("set", []string{}, "Set values on the command line (can be specified multiple times)")
	cmd.Flags().String("output-file", "", "Write the effective values to a file instead of stdout")

	return cmd
}

// parseSourceFlags turns --source NAME=PATH entries into a lookup map,
// checking that each stand-in file exists.
func parseSourceFlags(pairs []string) (map[string]string, error) {
	sources := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, path, found := strings.Cut(pair, "=")
		if !found || name == "" || path == "" {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInputConfigurationError,
				Err:  fmt.Errorf("invalid --source value %q (expected NAME=PATH)", pair),
			}
		}

		exists, err := fileutil.FileExists(AppFs, path)
		if err != nil {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("failed to check stand-in file %s: %w", path, err),
			}
		}
		if !exists {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitManifestNotFound,
				Err:  fmt.Errorf("stand-in file not found for source %s: %s", name, path),
			}
		}

		sources[name] = path
	}
	return sources, nil
}

// runRender implements the render command logic
func runRender(cmd *cobra.Command, _ []string) error {
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
	sourcePairs, err := cmd.Flags().GetStringSlice("source")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get source flag: %w", err),
		}
	}
	setStrings, err := cmd.Flags().GetStringSlice("set")
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get set flag: %w", err),
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

	sources, err := parseSourceFlags(sourcePairs)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(AppFs)
	renderer.Sources = sources
	renderer.SetStrings = setStrings

	merged, err := renderer.Render(release)
	if err != nil {
		code := exitcodes.ExitRenderFailed
		if errors.Is(err, render.ErrMissingRequiredSource) {
			code = exitcodes.ExitSourceNotProvided
		}
		return &exitcodes.ExitCodeError{Code: code, Err: err}
	}
	debug.DumpValue("Effective values", merged)

	out, err := render.ToYAML(merged)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInternalError,
			Err:  err,
		}
	}

	log.Debug("Render complete", "release", release.Metadata.NamespacedName(), "standins", len(sources))

	if outputFile != "" {
		return writeOutputFile(outputFile, out, "Effective values written to %s")
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), string(out)); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to write effective values: %w", err),
		}
	}
	return nil
}

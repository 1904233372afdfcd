package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
	"github.com/lucas-albers-lz4/relint/pkg/lint"
	log "github.com/lucas-albers-lz4/relint/pkg/log"
)

// newLintCmd creates a new lint command
func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check release manifests against the rule set",
		Long: `Check HelmRepository and HelmRelease manifests against the built-in rule set.

Rules cover document schema (names, intervals, repository URLs, chart specs),
cross-document consistency (duplicate documents, unresolved sourceRefs) and
values-level checks (conflicting nodeSelector labels, resource requests that
exceed limits). Error findings set a non-zero exit code; warnings do too when
--strict is given.`,
		Args: cobra.NoArgs,
		RunE: runLint,
	}

	cmd.Flags().StringSliceP("filename", "f", []string{}, "Manifest files to lint (can be specified multiple times)")
	cmd.Flags().Bool("strict", false, "Treat warnings as failures")
	cmd.Flags().StringP("output-format", "o", DefaultLintOutputFormat, "Output format: text, json, or yaml")
	cmd.Flags().String("output-file", "", "Write the report to a file instead of stdout")

	return cmd
}

// getLintFlags extracts and validates the lint command's flags.
func getLintFlags(cmd *cobra.Command) (files []string, strict bool, format, outputFile string, err error) {
	files, err = cmd.Flags().GetStringSlice("filename")
	if err != nil {
		return nil, false, "", "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get filename flag: %w", err),
		}
	}

	strict, err = cmd.Flags().GetBool("strict")
	if err != nil {
		return nil, false, "", "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get strict flag: %w", err),
		}
	}

	format, err = cmd.Flags().GetString("output-format")
	if err != nil {
		return nil, false, "", "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get output-format flag: %w", err),
		}
	}
	switch format {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return nil, false, "", "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("unsupported output format %q (expected text, json, or yaml)", format),
		}
	}

	outputFile, err = cmd.Flags().GetString("output-file")
	if err != nil {
		return nil, false, "", "", &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get output-file flag: %w", err),
		}
	}

	return files, strict, format, outputFile, nil
}

// runLint implements the lint command logic
func runLint(cmd *cobra.Command, _ []string) error {
	files, strict, format, outputFile, err := getLintFlags(cmd)
	if err != nil {
		return err
	}

	set, err := loadDocumentSet(files)
	if err != nil {
		return err
	}

	result := lint.DefaultRegistry.Run(set)

	report, err := formatLintResult(result, format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := writeOutputFile(outputFile, report, "Lint report written to %s"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprint(cmd.OutOrStdout(), string(report)); err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("failed to write lint report: %w", err),
			}
		}
	}

	errCount, warnCount, _ := result.Counts()
	if result.HasErrors() || (strict && result.HasWarnings()) {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitLintFindings,
			Err:  fmt.Errorf("lint found %d error(s) and %d warning(s)", errCount, warnCount),
		}
	}

	log.Debug("Lint completed", "documents", result.Documents, "warnings", warnCount)
	return nil
}

// formatLintResult serializes a lint result in the requested format.
func formatLintResult(result *lint.Result, format string) ([]byte, error) {
	switch format {
	case OutputFormatJSON:
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInternalError,
				Err:  fmt.Errorf("failed to marshal lint result: %w", err),
			}
		}
		return append(out, '\n'), nil
	case OutputFormatYAML:
		out, err := yaml.Marshal(result)
		if err != nil {
			return nil, &exitcodes.ExitCodeError{
				Code: exitcodes.ExitInternalError,
				Err:  fmt.Errorf("failed to marshal lint result: %w", err),
			}
		}
		return out, nil
	default:
		return formatLintText(result), nil
	}
}

// formatLintText renders findings one per line with a trailing summary.
func formatLintText(result *lint.Result) []byte {
	var sb strings.Builder
	for _, f := range result.Findings {
		sb.WriteString(string(f.Severity))
		sb.WriteString(": [")
		sb.WriteString(f.Rule)
		sb.WriteString("] ")
		sb.WriteString(f.Document)
		if f.Path != "" {
			sb.WriteString(" (")
			sb.WriteString(f.Path)
			sb.WriteString(")")
		}
		sb.WriteString(": ")
		sb.WriteString(f.Message)
		sb.WriteString("\n")
	}

	errCount, warnCount, infoCount := result.Counts()
	fmt.Fprintf(&sb, "%d document(s) checked: %d error(s), %d warning(s), %d info\n",
		result.Documents, errCount, warnCount, infoCount)
	return []byte(sb.String())
}

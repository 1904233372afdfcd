// Package main declares constants used across the relint command-line interface.
package main

// Output format constants
const (
	// OutputFormatText renders findings as human-readable lines
	OutputFormatText = "text"
	// OutputFormatJSON renders structured output as indented JSON
	OutputFormatJSON = "json"
	// OutputFormatYAML renders structured output as YAML
	OutputFormatYAML = "yaml"
)

// DefaultLintOutputFormat is used when --output-format is not given.
const DefaultLintOutputFormat = OutputFormatText

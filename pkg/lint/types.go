// Package lint provides a rule system for checking GitOps Helm release
// documents for schema and consistency problems before the external
// controller ever sees them.
package lint

// Severity classifies how serious a finding is.
type Severity string

const (
	// SeverityError findings make the document unusable or unsafe to apply.
	SeverityError Severity = "error"

	// SeverityWarning findings are suspicious but not fatal.
	SeverityWarning Severity = "warning"

	// SeverityInfo findings are advisory notes.
	SeverityInfo Severity = "info"
)

// Finding is a single problem reported by a rule against a document.
type Finding struct {
	// Rule is the name of the rule that produced the finding.
	Rule string `json:"rule" yaml:"rule"`

	// Severity classifies the finding.
	Severity Severity `json:"severity" yaml:"severity"`

	// Document identifies the offending document ("kind namespace/name").
	Document string `json:"document" yaml:"document"`

	// Path is the dot-notation location within the document, when known.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Message is the human-readable description of the problem.
	Message string `json:"message" yaml:"message"`
}

// Result aggregates the findings of a lint run over a document set.
type Result struct {
	Findings []Finding `json:"findings" yaml:"findings"`

	// Documents is the number of documents checked.
	Documents int `json:"documents" yaml:"documents"`
}

// Counts returns the number of findings per severity.
func (r *Result) Counts() (errors, warnings, infos int) {
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return errors, warnings, infos
}

// HasErrors reports whether any error-severity finding was produced.
func (r *Result) HasErrors() bool {
	errors, _, _ := r.Counts()
	return errors > 0
}

// HasWarnings reports whether any warning-severity finding was produced.
func (r *Result) HasWarnings() bool {
	_, warnings, _ := r.Counts()
	return warnings > 0
}

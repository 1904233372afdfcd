package lint

import (
	"github.com/lucas-albers-lz4/relint/pkg/manifest"
)

// Rule defines the interface for a single lint check.
type Rule interface {
	// Name returns the unique name of this rule.
	Name() string

	// Description returns a human-readable description of this rule.
	Description() string

	// AppliesTo determines if this rule applies to the given document.
	AppliesTo(doc *manifest.Document) bool

	// Check runs the rule against a document. The full set is supplied for
	// cross-document checks such as sourceRef resolution.
	Check(doc *manifest.Document, set *manifest.DocumentSet) []Finding

	// Priority returns the rule's priority (higher numbers run first).
	Priority() int
}

// BaseRule provides a base implementation that can be embedded in rules.
type BaseRule struct {
	name        string
	description string
	priority    int
}

// NewBaseRule creates a new BaseRule.
func NewBaseRule(name, description string, priority int) BaseRule {
	return BaseRule{
		name:        name,
		description: description,
		priority:    priority,
	}
}

// Name returns the rule name.
func (r BaseRule) Name() string {
	return r.name
}

// Description returns the rule description.
func (r BaseRule) Description() string {
	return r.description
}

// Priority returns the rule priority.
func (r BaseRule) Priority() int {
	return r.priority
}

// AppliesTo base implementation applies to every document. Rules scoped to a
// single kind override this.
func (r BaseRule) AppliesTo(_ *manifest.Document) bool {
	return true
}

// finding is a convenience constructor keeping rule code terse.
func (r BaseRule) finding(severity Severity, doc *manifest.Document, path, message string) Finding {
	return Finding{
		Rule:     r.name,
		Severity: severity,
		Document: doc.ID(),
		Path:     path,
		Message:  message,
	}
}

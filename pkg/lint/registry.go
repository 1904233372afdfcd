package lint

import (
	"sort"
	"sync"

	"github.com/lucas-albers-lz4/relint/pkg/log"
	"github.com/lucas-albers-lz4/relint/pkg/manifest"
)

// Registry manages the collection of rules and runs them over document sets.
type Registry struct {
	rules []Rule
	mu    sync.RWMutex
}

// NewRegistry creates a rule registry preloaded with the default rules.
func NewRegistry() *Registry {
	registry := &Registry{}

	registry.AddRule(NewDuplicateDocumentRule())
	registry.AddRule(NewMetadataRule())
	registry.AddRule(NewIntervalRule())
	registry.AddRule(NewRepositoryURLRule())
	registry.AddRule(NewChartSpecRule())
	registry.AddRule(NewSourceRefRule())
	registry.AddRule(NewValuesFromRule())
	registry.AddRule(NewNodeSelectorRule())
	registry.AddRule(NewResourceBoundsRule())

	log.Debug("Created lint registry", "rules", len(registry.rules))
	return registry
}

// AddRule adds a rule to the registry, keeping rules sorted by priority
// (higher first).
func (r *Registry) AddRule(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule)
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Priority() > r.rules[j].Priority()
	})
	log.Debugf("Added rule %q to registry", rule.Name())
}

// Rules returns a copy of all registered rules.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, len(r.rules))
	copy(result, r.rules)
	return result
}

// Run checks every document in the set against every applicable rule.
func (r *Registry) Run(set *manifest.DocumentSet) *Result {
	result := &Result{Documents: len(set.Documents)}

	for _, rule := range r.Rules() {
		for i := range set.Documents {
			doc := &set.Documents[i]
			if !rule.AppliesTo(doc) {
				continue
			}
			findings := rule.Check(doc, set)
			if len(findings) > 0 {
				log.Debug("Rule produced findings", "rule", rule.Name(), "document", doc.ID(), "count", len(findings))
			}
			result.Findings = append(result.Findings, findings...)
		}
	}
	return result
}

// DefaultRegistry is the global default rule registry.
var DefaultRegistry = NewRegistry()

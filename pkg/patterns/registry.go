// Package patterns provides the threat taxonomy registry used by the
// message classifier. All regex patterns are compiled once at registry
// construction and shared read-only across every analysis run.
//
// Design principles:
// - COMPILE ONCE: patterns are compiled at construction, not per-message
// - FAIL FAST: a malformed pattern aborts construction, never a scan
// - ORDERED: categories keep their declaration order for stable reports
// - IMMUTABLE: no mutation after construction, safe for concurrent readers
package patterns

import (
	"fmt"
	"regexp"
	"sort"
)

// Category names a class of suspicious content.
type Category string

// Categories of the default taxonomy.
const (
	CategoryGovernment    Category = "government_impersonation"
	CategoryFinancial     Category = "financial_threats"
	CategorySuspiciousURL Category = "suspicious_urls"
	CategoryInternational Category = "international_indicators"
)

// defaultOrder fixes the render order for the built-in categories.
var defaultOrder = []Category{
	CategoryGovernment,
	CategoryFinancial,
	CategorySuspiciousURL,
	CategoryInternational,
}

// CategoryDef declares one category and its raw pattern sources.
// Definitions are configuration data: built into DefaultTaxonomy or loaded
// from a YAML override file.
type CategoryDef struct {
	Name     Category `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Pattern holds a compiled matcher together with its source text.
type Pattern struct {
	Source string         // Raw pattern as declared in the taxonomy
	Regex  *regexp.Regexp // Compiled case-insensitive regex (never nil)
}

// Registry holds the compiled taxonomy, organized by category.
type Registry struct {
	order      []Category
	byCategory map[Category][]*Pattern
	total      int
}

// NewRegistry compiles a taxonomy into a registry. Every pattern source is
// compiled case-insensitively. Construction fails on an empty taxonomy, an
// unnamed or duplicate category, a category without patterns, or a pattern
// that does not compile; the error names the offending category and source.
func NewRegistry(defs []CategoryDef) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("patterns: empty taxonomy")
	}

	r := &Registry{
		order:      make([]Category, 0, len(defs)),
		byCategory: make(map[Category][]*Pattern, len(defs)),
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("patterns: category with empty name")
		}
		if _, dup := r.byCategory[def.Name]; dup {
			return nil, fmt.Errorf("patterns: duplicate category %q", def.Name)
		}
		if len(def.Patterns) == 0 {
			return nil, fmt.Errorf("patterns: category %q has no patterns", def.Name)
		}

		compiled := make([]*Pattern, 0, len(def.Patterns))
		for _, src := range def.Patterns {
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				return nil, fmt.Errorf("patterns: category %q pattern %q: %w", def.Name, src, err)
			}
			compiled = append(compiled, &Pattern{Source: src, Regex: re})
		}

		r.order = append(r.order, def.Name)
		r.byCategory[def.Name] = compiled
		r.total += len(compiled)
	}

	return r, nil
}

// Categories returns the category names in declaration order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.order))
	copy(out, r.order)
	return out
}

// Patterns returns the compiled patterns for a category.
// Returns an empty slice for an unknown category (never nil).
func (r *Registry) Patterns(cat Category) []*Pattern {
	if ps, ok := r.byCategory[cat]; ok {
		return ps
	}
	return []*Pattern{}
}

// Has reports whether the registry defines the category.
func (r *Registry) Has(cat Category) bool {
	_, ok := r.byCategory[cat]
	return ok
}

// TotalPatterns returns the total count of compiled patterns.
func (r *Registry) TotalPatterns() int {
	return r.total
}

// CategoryCount returns the number of patterns in a category.
func (r *Registry) CategoryCount(cat Category) int {
	return len(r.byCategory[cat])
}

// OrderedCategories returns the keys of counts in render order: built-in
// categories first in their declaration order, then any custom categories
// sorted by name. Keeps report output stable across runs.
func OrderedCategories(counts map[Category]int) []Category {
	seen := make(map[Category]bool, len(counts))
	out := make([]Category, 0, len(counts))
	for _, cat := range defaultOrder {
		if _, ok := counts[cat]; ok {
			out = append(out, cat)
			seen[cat] = true
		}
	}

	rest := make([]Category, 0, len(counts))
	for cat := range counts {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(out, rest...)
}

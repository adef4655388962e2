package analysis

import "github.com/overcastsec/smishscan/pkg/patterns"

// Classifier evaluates message text against a compiled taxonomy registry.
// It keeps no per-call state; one instance serves any number of goroutines.
type Classifier struct {
	registry *patterns.Registry
	order    []patterns.Category
}

// NewClassifier wraps a registry for classification.
func NewClassifier(r *patterns.Registry) *Classifier {
	return &Classifier{registry: r, order: r.Categories()}
}

// Classify returns the categories with at least one pattern matching the
// normalized text, in registry order. A category appears at most once no
// matter how many of its patterns fire; a text may match zero, one, or many
// categories independently.
func (c *Classifier) Classify(text string) []patterns.Category {
	normalized := Normalize(text)

	var matched []patterns.Category
	for _, cat := range c.order {
		for _, p := range c.registry.Patterns(cat) {
			if p.Regex.MatchString(normalized) {
				matched = append(matched, cat)
				break
			}
		}
	}
	return matched
}

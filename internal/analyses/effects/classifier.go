package effects

import (
	"fmt"
	"regexp"
)

// classRule pairs a callee-FQN pattern with the effect it contributes,
// the same regexp-rule shape taint.Rule uses for source/sink matching.
type classRule struct {
	pattern *regexp.Regexp
	effect  Effect
}

// Classifier assigns an intrinsic effect to a call by matching the
// callee's fully-qualified name against a table of known library calls
// (database drivers, HTTP clients, loggers). A callee matching no rule
// contributes ExternalCall if it resolves to code outside the analyzed
// call graph, or nothing if it resolves to another analyzed function (its
// own summary is propagated instead).
type Classifier struct {
	rules []classRule
}

// NewClassifier returns an empty Classifier; use Add to populate it, or
// DefaultClassifier for a reasonable starting table.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Add registers a callee-FQN pattern contributing effect whenever it
// matches.
func (c *Classifier) Add(pattern string, effect Effect) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("effects: compiling classifier pattern %q: %w", pattern, err)
	}

	c.rules = append(c.rules, classRule{pattern: re, effect: effect})

	return nil
}

// Classify returns the union of every rule matching fqn, or Pure (with ok
// false) if none match.
func (c *Classifier) Classify(fqn string) (Effect, bool) {
	var eff Effect

	matched := false

	for _, r := range c.rules {
		if r.pattern.MatchString(fqn) {
			eff = eff.Union(r.effect)
			matched = true
		}
	}

	return eff, matched
}

// DefaultClassifier recognizes a starter set of common standard-library
// and database/network call shapes.
func DefaultClassifier() *Classifier {
	c := NewClassifier()

	rules := []struct {
		pattern string
		effect  Effect
	}{
		{`^(fmt\.(Print|Fprint)|log\.|slog\.)`, Log},
		{`^(database/sql\.\(\*DB\)\.Query|.*\.Query(Context)?$|.*\.(Get|Select)$)`, DbRead},
		{`^(database/sql\.\(\*DB\)\.Exec|.*\.Exec(Context)?$|.*\.(Insert|Update|Delete)$)`, DbWrite},
		{`^(net/http\.|.*\.(Get|Post|Do)$)`, Network},
		{`^os\.(Open|ReadFile|WriteFile|Create|Remove)`, IO},
		{`^os\.(Getenv|Environ)`, ReadState},
		{`^os\.Setenv`, WriteState},
	}

	for _, r := range rules {
		_ = c.Add(r.pattern, r.effect)
	}

	return c
}

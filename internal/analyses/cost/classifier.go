package cost

import (
	"fmt"
	"regexp"
)

// callRule pairs a callee-FQN pattern with its known cost class.
type callRule struct {
	pattern *regexp.Regexp
	class   Class
}

// Classifier assigns a known cost class to a call by its callee's
// fully-qualified name, the same FQN-regexp shape
// internal/analyses/effects.Classifier and internal/ifds/taint.Rule use.
type Classifier struct {
	rules []callRule
}

// NewClassifier returns an empty Classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Add registers a callee-FQN pattern contributing class whenever it
// matches.
func (c *Classifier) Add(pattern string, class Class) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("cost: compiling classifier pattern %q: %w", pattern, err)
	}

	c.rules = append(c.rules, callRule{pattern: re, class: class})

	return nil
}

// Classify returns the first matching rule's class, or UnknownClass (with
// ok false) if fqn matches no rule.
func (c *Classifier) Classify(fqn string) (Class, bool) {
	for _, r := range c.rules {
		if r.pattern.MatchString(fqn) {
			return r.class, true
		}
	}

	return UnknownClass(), false
}

// DefaultClassifier recognizes a starter set of standard-library calls
// with well-known asymptotic cost.
func DefaultClassifier() *Classifier {
	c := NewClassifier()

	rules := []struct {
		pattern string
		class   Class
	}{
		{`sort\.(Slice|Sort|Strings|Ints)`, Linearithmic()},
		{`\.Search(Ints|Strings|Floats)?$`, Logarithmic()},
		{`(^|\.)(Len|Cap|Getenv)$`, Constant()},
		{`strings\.(Contains|Index|Split|Join|Replace)`, Linear()},
	}

	for _, r := range rules {
		_ = c.Add(r.pattern, r.class)
	}

	return c
}

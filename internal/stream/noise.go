package stream

import (
	"fmt"
	"regexp"
)

// DefaultNoisePatterns match backend diagnostics that leak into the content
// stream. The list is a heuristic and tracks whatever the backend prints.
var DefaultNoisePatterns = []string{
	`^\s*Function Call:`,
	`^\s*Function Response:`,
	`^\s*FunctionCall\{`,
	`^\s*FunctionResponse\{`,
	`id=Optional\[`,
	`args=Optional\[`,
}

// NoiseFilter decides whether text is internal diagnostic output.
type NoiseFilter struct {
	rules []*regexp.Regexp
}

// NewNoiseFilter compiles patterns in order. A nil or empty list yields a
// filter that matches nothing.
func NewNoiseFilter(patterns []string) (*NoiseFilter, error) {
	f := &NoiseFilter{rules: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid noise pattern %q: %w", p, err)
		}
		f.rules = append(f.rules, re)
	}
	return f, nil
}

// DefaultNoiseFilter returns a filter over DefaultNoisePatterns.
func DefaultNoiseFilter() *NoiseFilter {
	f, err := NewNoiseFilter(DefaultNoisePatterns)
	if err != nil {
		panic(err)
	}
	return f
}

// IsNoise reports whether text matches any rule.
func (f *NoiseFilter) IsNoise(text string) bool {
	if f == nil {
		return false
	}
	for _, re := range f.rules {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Len returns the number of rules.
func (f *NoiseFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rules)
}

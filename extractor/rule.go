package extractor

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/az-ai-labs/numrec/pattern"
)

// Rule pairs a compiled pattern with the tag attached to its matches.
type Rule struct {
	Name    string
	Pattern *pattern.Pattern
	Tag     Tag
}

// RuleSet is an ordered list of rules. Earlier rules win ties on equal spans.
type RuleSet []Rule

// Concat returns a new RuleSet holding rs followed by each of others.
// None of the inputs is modified.
func (rs RuleSet) Concat(others ...RuleSet) RuleSet {
	n := len(rs)
	for _, o := range others {
		n += len(o)
	}
	out := make(RuleSet, 0, n)
	out = append(out, rs...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// Tags returns the tag of every rule, in order.
func (rs RuleSet) Tags() []Tag {
	tags := make([]Tag, len(rs))
	for i, r := range rs {
		tags[i] = r.Tag
	}
	return tags
}

// Names returns the name of every rule, in order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// AmbiguityFilter vetoes a match whose text matches Trigger when Suppress
// matches the surrounding text at an overlapping position.
type AmbiguityFilter struct {
	Trigger  *pattern.Pattern
	Suppress *pattern.Pattern
}

// ConfigurationError reports a resource pattern that failed to compile.
type ConfigurationError struct {
	Name string // rule or filter name
	Expr string // source expression
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("extractor: rule %q: %v", e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Spec describes a rule before compilation.
type Spec struct {
	Name  string
	Expr  string
	Flags pattern.Flags
	Tag   Tag
}

// FilterSpec describes an ambiguity filter before compilation.
type FilterSpec struct {
	Name     string
	Trigger  string
	Suppress string
}

// filterFlags are the flags the resource tables use for both filter halves.
const filterFlags = pattern.DotAll

// CompileRules compiles specs in order. Every failure is reported, not just
// the first; the returned error combines one *ConfigurationError per bad spec.
func CompileRules(specs []Spec, opts ...pattern.Option) (RuleSet, error) {
	rules := make(RuleSet, 0, len(specs))
	var errs error
	for _, sp := range specs {
		if !sp.Tag.Valid() {
			errs = multierr.Append(errs, &ConfigurationError{
				Name: sp.Name, Expr: sp.Expr, Err: fmt.Errorf("unknown tag %q", clip(string(sp.Tag))),
			})
			continue
		}
		p, err := pattern.Compile(sp.Expr, sp.Flags, opts...)
		if err != nil {
			errs = multierr.Append(errs, &ConfigurationError{Name: sp.Name, Expr: sp.Expr, Err: err})
			continue
		}
		rules = append(rules, Rule{Name: sp.Name, Pattern: p, Tag: sp.Tag})
	}
	if errs != nil {
		return nil, errs
	}
	return slices.Clip(rules), nil
}

// CompileFilters compiles ambiguity filter specs in order.
func CompileFilters(specs []FilterSpec, opts ...pattern.Option) ([]AmbiguityFilter, error) {
	filters := make([]AmbiguityFilter, 0, len(specs))
	var errs error
	for _, sp := range specs {
		trig, err := pattern.Compile(sp.Trigger, filterFlags, opts...)
		if err != nil {
			errs = multierr.Append(errs, &ConfigurationError{Name: sp.Name + ".trigger", Expr: sp.Trigger, Err: err})
			continue
		}
		sup, err := pattern.Compile(sp.Suppress, filterFlags, opts...)
		if err != nil {
			errs = multierr.Append(errs, &ConfigurationError{Name: sp.Name + ".suppress", Expr: sp.Suppress, Err: err})
			continue
		}
		filters = append(filters, AmbiguityFilter{Trigger: trig, Suppress: sup})
	}
	if errs != nil {
		return nil, errs
	}
	return filters, nil
}

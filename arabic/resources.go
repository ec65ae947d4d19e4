package arabic

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/az-ai-labs/numrec/data"
	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/pattern"
)

// placeholderRef is left in expanded patterns for the builders to fill.
const placeholderRef = "{placeholder}"

// Keys of the flags table that do not name a pattern.
const (
	defaultFlagsKey       = "default"
	longFormatFlagsKey    = "long_format"
	negativeTermsFlagsKey = "negative_number_terms"
)

// maxExpandPasses bounds fragment substitution depth.
const maxExpandPasses = 8

// Placeholder selects the trailing context required after a bare numeral.
type Placeholder int

const (
	PlaceholderDefault    Placeholder = iota // any non-digit or end of text
	PlaceholderPureNumber                    // a word boundary
	PlaceholderCurrency                      // neither a letter nor a digit
)

var placeholderNames = [...]string{
	PlaceholderDefault:    "default",
	PlaceholderPureNumber: "pure_number",
	PlaceholderCurrency:   "currency",
}

// String returns the placeholder name.
func (p Placeholder) String() string {
	if p >= 0 && int(p) < len(placeholderNames) {
		return placeholderNames[p]
	}
	return fmt.Sprintf("Placeholder(%d)", int(p))
}

// placeholderFor maps a mode to the placeholder its cardinal rules use.
func placeholderFor(m extractor.Mode) Placeholder {
	switch m {
	case extractor.ModePureNumber:
		return PlaceholderPureNumber
	case extractor.ModeCurrency:
		return PlaceholderCurrency
	default:
		return PlaceholderDefault
	}
}

// Resources is the decoded locale table. Patterns have every fragment
// reference expanded; only {placeholder} remains.
type Resources struct {
	LangMarker       string // tags the logs of every extractor built from the table
	Placeholders     map[Placeholder]string
	NegativeTerms    string
	Patterns         map[string]string
	Flags            map[string]pattern.Flags // by pattern name, plus "default" and "long_format"
	AmbiguityFilters []extractor.FilterSpec
}

type rawResources struct {
	LangMarker   string `yaml:"lang_marker"`
	Placeholders struct {
		Default    string `yaml:"default"`
		PureNumber string `yaml:"pure_number"`
		Currency   string `yaml:"currency"`
	} `yaml:"placeholders"`
	NegativeTerms    string            `yaml:"negative_number_terms"`
	Words            map[string]string `yaml:"words"`
	Patterns         map[string]string `yaml:"patterns"`
	Flags            map[string]string `yaml:"flags"`
	AmbiguityFilters []struct {
		Name     string `yaml:"name"`
		Trigger  string `yaml:"trigger"`
		Suppress string `yaml:"suppress"`
	} `yaml:"ambiguity_filters"`
}

// ParseResources decodes a YAML resource table and expands its fragment
// references. It does not compile patterns; the builders do.
func ParseResources(b []byte) (*Resources, error) {
	var raw rawResources
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("arabic: parse resources: %w", err)
	}
	if len(raw.Patterns) == 0 {
		return nil, errors.New("arabic: parse resources: no patterns")
	}

	r := &Resources{
		LangMarker: raw.LangMarker,
		Placeholders: map[Placeholder]string{
			PlaceholderDefault:    raw.Placeholders.Default,
			PlaceholderPureNumber: raw.Placeholders.PureNumber,
			PlaceholderCurrency:   raw.Placeholders.Currency,
		},
		Patterns: make(map[string]string, len(raw.Patterns)),
		Flags:    make(map[string]pattern.Flags, len(raw.Flags)),
	}

	var errs error
	for p, expr := range r.Placeholders {
		if expr == "" {
			errs = multierr.Append(errs, fmt.Errorf("placeholder %s is empty", p))
		}
	}

	expand := fragmentExpander(raw.Words)
	var err error
	if r.NegativeTerms, err = expand(raw.NegativeTerms); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("negative_number_terms: %w", err))
	}
	for name, expr := range raw.Patterns {
		out, err := expand(expr)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pattern %s: %w", name, err))
			continue
		}
		r.Patterns[name] = out
	}
	for name, notation := range raw.Flags {
		_, isPattern := raw.Patterns[name]
		if !isPattern && name != defaultFlagsKey && name != longFormatFlagsKey && name != negativeTermsFlagsKey {
			errs = multierr.Append(errs, fmt.Errorf("flags for unknown pattern %s", name))
			continue
		}
		f, err := pattern.ParseFlags(notation)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("flags %s: %w", name, err))
			continue
		}
		r.Flags[name] = f
	}
	for _, f := range raw.AmbiguityFilters {
		trig, err1 := expand(f.Trigger)
		supp, err2 := expand(f.Suppress)
		if err := multierr.Combine(err1, err2); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("filter %s: %w", f.Name, err))
			continue
		}
		r.AmbiguityFilters = append(r.AmbiguityFilters, extractor.FilterSpec{
			Name:     f.Name,
			Trigger:  trig,
			Suppress: supp,
		})
	}
	if errs != nil {
		return nil, fmt.Errorf("arabic: parse resources: %w", errs)
	}
	return r, nil
}

// fragmentExpander returns a function replacing {name} with words[name],
// repeatedly, so fragments may reference each other.
func fragmentExpander(words map[string]string) func(string) (string, error) {
	pairs := make([]string, 0, 2*len(words))
	for name, frag := range words {
		pairs = append(pairs, "{"+name+"}", frag)
	}
	rep := strings.NewReplacer(pairs...)

	return func(s string) (string, error) {
		for range maxExpandPasses {
			next := rep.Replace(s)
			if next == s {
				if ref := unresolvedRef(s); ref != "" {
					return "", fmt.Errorf("unknown fragment %s", ref)
				}
				return s, nil
			}
			s = next
		}
		return "", errors.New("fragment references nest too deeply")
	}
}

// unresolvedRef returns the first {name} reference in s other than
// {placeholder}. Regex quantifiers such as {1,3} are not references.
func unresolvedRef(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == '_' || s[j] >= 'a' && s[j] <= 'z') {
			j++
		}
		if j == i+1 || j >= len(s) || s[j] != '}' {
			continue
		}
		if ref := s[i : j+1]; ref != placeholderRef {
			return ref
		}
	}
	return ""
}

// Pattern returns the expanded expression named name.
func (r *Resources) Pattern(name string) (string, bool) {
	expr, ok := r.Patterns[name]
	return expr, ok
}

// FlagsFor returns the regex flags for the named pattern, falling back to
// the table default.
func (r *Resources) FlagsFor(name string) pattern.Flags {
	if f, ok := r.Flags[name]; ok {
		return f
	}
	return r.Flags[defaultFlagsKey]
}

// Placeholder returns the expression for p.
func (r *Resources) Placeholder(p Placeholder) string {
	return r.Placeholders[p]
}

var defaultResources = sync.OnceValues(func() (*Resources, error) {
	return ParseResources(data.ArabicNumeric)
})

// DefaultResources returns the embedded Arabic resource table. It is parsed
// once and shared; callers must not modify it.
func DefaultResources() (*Resources, error) {
	return defaultResources()
}

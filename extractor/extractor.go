// Package extractor applies ordered, tagged pattern rules to text and
// resolves the candidate matches into non-overlapping results.
//
// An Extractor is built once from a RuleSet and an optional table of
// ambiguity filters. Extract then:
//
//  1. scans the text with every rule, collecting one candidate per match;
//  2. keeps the longest candidate at each position, preferring the
//     earliest rule on equal spans, and drops anything it overlaps;
//  3. removes candidates vetoed by an ambiguity filter;
//  4. optionally extends numbers over a preceding negative term.
//
// Results are sorted by Start, never overlap, and carry byte offsets with
// the invariant s[r.Start:r.End] == r.Text.
//
// Extractors are immutable after construction and safe for concurrent use
// by multiple goroutines.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/az-ai-labs/numrec/pattern"
)

// DefaultMaxInputBytes is the largest input Extract processes by default.
// Larger inputs yield no results.
const DefaultMaxInputBytes = 1 << 20 // 1 MiB

// maxNegativeWindow bounds how far back a negative term is searched for.
const maxNegativeWindow = 64

// maxResults caps the number of results returned per call.
const maxResults = 10000

// settings collects construction options shared by all extractor kinds.
type settings struct {
	logger   *zap.Logger
	maxInput int
	mode     Mode
	filters  []AmbiguityFilter
	negative *pattern.Pattern
}

// Option configures an extractor at construction time.
type Option func(*settings)

// WithLogger sets the logger used for construction and scan diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxInputBytes overrides DefaultMaxInputBytes. Non-positive n is ignored.
func WithMaxInputBytes(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxInput = n
		}
	}
}

// WithMode records the mode the rules were built for. In ModeUnit the
// extractor never applies ambiguity filters.
func WithMode(m Mode) Option {
	return func(s *settings) { s.mode = m }
}

// WithAmbiguityFilters installs the filter table applied after overlap
// resolution.
func WithAmbiguityFilters(filters []AmbiguityFilter) Option {
	return func(s *settings) { s.filters = filters }
}

// WithNegativeTerms sets a pattern matching negative words that may precede
// a number ("سالب 5"). It must be anchored at the end, e.g. `(سالب)\s*$`.
func WithNegativeTerms(p *pattern.Pattern) Option {
	return func(s *settings) { s.negative = p }
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop(), maxInput: DefaultMaxInputBytes}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Extractor recognizes numeric expressions of one Type.
type Extractor struct {
	typ      Type
	mode     Mode
	rules    RuleSet
	filters  []AmbiguityFilter
	negative *pattern.Pattern
	maxInput int
	logger   *zap.Logger
}

// New builds an Extractor that labels its results with typ.
// It fails only on structurally invalid configuration.
func New(typ Type, rules RuleSet, opts ...Option) (*Extractor, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("extractor: %s: empty rule set", typ)
	}
	for i, r := range rules {
		if r.Pattern == nil {
			return nil, &ConfigurationError{Name: r.Name, Err: fmt.Errorf("rule %d has no pattern", i)}
		}
	}
	s := newSettings(opts)

	filters := s.filters
	if s.mode == ModeUnit {
		filters = nil
	}
	for i, f := range filters {
		if f.Trigger == nil || f.Suppress == nil {
			return nil, &ConfigurationError{Name: fmt.Sprintf("filter[%d]", i), Err: errors.New("missing pattern")}
		}
	}

	e := &Extractor{
		typ:      typ,
		mode:     s.mode,
		rules:    rules.Concat(),
		filters:  append([]AmbiguityFilter(nil), filters...),
		negative: s.negative,
		maxInput: s.maxInput,
		logger:   s.logger.With(zap.Stringer("extractor", typ), zap.Stringer("mode", s.mode)),
	}
	e.logger.Debug("extractor built",
		zap.Int("rules", len(e.rules)),
		zap.Int("filters", len(e.filters)),
		zap.Bool("negative_terms", e.negative != nil))
	if e.logger.Core().Enabled(zap.DebugLevel) {
		for i, r := range e.rules {
			e.logger.Debug("rule loaded",
				zap.Int("order", i),
				zap.String("rule", r.Name),
				zap.String("tag", string(r.Tag)),
				zap.Stringer("flags", r.Pattern.Flags()))
		}
	}
	return e, nil
}

// Type returns the category attached to every result.
func (e *Extractor) Type() Type { return e.typ }

// Mode returns the mode the extractor was built for.
func (e *Extractor) Mode() Mode { return e.mode }

// Rules returns a copy of the rule set in precedence order.
func (e *Extractor) Rules() RuleSet { return e.rules.Concat() }

// Filters returns a copy of the ambiguity filter table.
func (e *Extractor) Filters() []AmbiguityFilter {
	return append([]AmbiguityFilter(nil), e.filters...)
}

// Extract returns all numeric expressions in s, sorted by Start.
// Empty, whitespace-only, and oversized input yield nil. A rule whose scan
// times out contributes the matches found before the timeout.
func (e *Extractor) Extract(s string) []Result {
	results, _ := e.extract(context.Background(), s, false)
	return results
}

// ExtractContext is like Extract but stops when ctx is done and reports
// pattern timeouts instead of absorbing them.
func (e *Extractor) ExtractContext(ctx context.Context, s string) ([]Result, error) {
	return e.extract(ctx, s, true)
}

// ExtractPartial returns what Extract returns, together with an error
// wrapping pattern.ErrTimeout for every rule whose scan was cut short.
// A non-nil error marks the results as possibly incomplete.
func (e *Extractor) ExtractPartial(s string) ([]Result, error) {
	return e.extract(context.Background(), s, false)
}

func (e *Extractor) extract(ctx context.Context, s string, strict bool) ([]Result, error) {
	if len(s) > e.maxInput || strings.TrimSpace(s) == "" {
		return nil, nil
	}

	sc := pattern.NewScanner(s)
	const minCap = 8
	cands := make([]candidate, 0, len(s)/50+minCap)

	var aborted error
	for i, r := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extractor: %w", err)
		}
		spans, err := sc.FindAll(r.Pattern)
		if err != nil {
			err = fmt.Errorf("extractor: rule %q: %w", r.Name, err)
			if strict {
				return nil, err
			}
			e.logger.Warn("rule scan aborted", zap.String("rule", r.Name), zap.Error(err))
			aborted = multierr.Append(aborted, err)
		}
		for _, sp := range spans {
			cands = append(cands, candidate{start: sp.Start, end: sp.End, tag: r.Tag, order: i})
		}
	}
	if len(cands) == 0 {
		return nil, aborted
	}

	kept := resolveOverlaps(cands)
	kept = e.filterAmbiguity(sc, kept)
	if len(kept) == 0 {
		return nil, aborted
	}

	results := make([]Result, 0, len(kept))
	prevEnd := 0
	for _, c := range kept {
		start := c.start
		if e.negative != nil {
			start = e.extendNegative(s, prevEnd, start)
		}
		results = append(results, Result{
			Text:  s[start:c.end],
			Start: start,
			End:   c.end,
			Type:  e.typ,
			Data:  c.tag,
		})
		prevEnd = c.end
	}
	return results, aborted
}

// extendNegative returns the start of a negative term that ends exactly at
// start, or start itself. The term must begin at or after floor, the end of
// the previous result, so extended spans cannot overlap. The text before the
// search window stays visible to the pattern: a window cut is not a word
// boundary.
func (e *Extractor) extendNegative(s string, floor, start int) int {
	lo := max(floor, start-maxNegativeWindow)
	if lo >= start {
		return start
	}
	ctx := max(0, lo-maxNegativeWindow)
	window := s[ctx:start]
	spans, err := e.negative.FindAllFrom(window, lo-ctx)
	if err != nil || len(spans) == 0 {
		return start
	}
	last := spans[len(spans)-1]
	if last.End != len(window) {
		return start
	}
	return ctx + last.Start
}

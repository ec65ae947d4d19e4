package extractor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/az-ai-labs/numrec/pattern"
)

// NumberToken replaces every number span before percentage rules run.
// Percentage rules are written against it, e.g. `(@builtin\.num)\s*%`.
const NumberToken = "@builtin.num"

// PercentageExtractor finds percentages by delegating number recognition
// to an owned number Extractor and matching its rules over a rewritten text
// in which each number is replaced by NumberToken.
type PercentageExtractor struct {
	number   *Extractor
	rules    RuleSet
	maxInput int
	logger   *zap.Logger
}

// NewPercentage builds a PercentageExtractor over number.
func NewPercentage(number *Extractor, rules RuleSet, opts ...Option) (*PercentageExtractor, error) {
	if number == nil {
		return nil, fmt.Errorf("extractor: percentage: nil number extractor")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("extractor: percentage: empty rule set")
	}
	for i, r := range rules {
		if r.Pattern == nil {
			return nil, &ConfigurationError{Name: r.Name, Err: fmt.Errorf("rule %d has no pattern", i)}
		}
	}
	s := newSettings(opts)
	p := &PercentageExtractor{
		number:   number,
		rules:    rules.Concat(),
		maxInput: s.maxInput,
		logger:   s.logger.With(zap.Stringer("extractor", Percentage)),
	}
	p.logger.Debug("extractor built", zap.Int("rules", len(p.rules)))
	return p, nil
}

// Type returns Percentage.
func (p *PercentageExtractor) Type() Type { return Percentage }

// Number returns the delegate number extractor.
func (p *PercentageExtractor) Number() *Extractor { return p.number }

// Rules returns a copy of the percentage rules.
func (p *PercentageExtractor) Rules() RuleSet { return p.rules.Concat() }

// Extract returns all percentages in s, sorted by Start. Each result's
// Parts holds the numbers it contains and Data the tag of the first one.
func (p *PercentageExtractor) Extract(s string) []Result {
	results, _ := p.extract(context.Background(), s, false)
	return results
}

// ExtractContext is like Extract but honours ctx and reports timeouts.
func (p *PercentageExtractor) ExtractContext(ctx context.Context, s string) ([]Result, error) {
	return p.extract(ctx, s, true)
}

// ExtractPartial is Extract plus an error for every number or percentage
// rule whose scan was cut short, as in Extractor.ExtractPartial.
func (p *PercentageExtractor) ExtractPartial(s string) ([]Result, error) {
	return p.extract(context.Background(), s, false)
}

func (p *PercentageExtractor) extract(ctx context.Context, s string, strict bool) ([]Result, error) {
	if len(s) > p.maxInput || strings.TrimSpace(s) == "" {
		return nil, nil
	}
	nums, aborted := p.number.extract(ctx, s, strict)
	if strict && aborted != nil {
		return nil, aborted
	}
	if len(nums) == 0 {
		return nil, aborted
	}

	rewritten, origAt := replaceNumbers(s, nums)
	sc := pattern.NewScanner(rewritten)

	var cands []candidate
	for i, r := range p.rules {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extractor: %w", err)
		}
		spans, err := sc.FindAll(r.Pattern)
		if err != nil {
			err = fmt.Errorf("extractor: rule %q: %w", r.Name, err)
			if strict {
				return nil, err
			}
			p.logger.Warn("rule scan aborted", zap.String("rule", r.Name), zap.Error(err))
			aborted = multierr.Append(aborted, err)
		}
		for _, sp := range spans {
			cands = append(cands, candidate{start: sp.Start, end: sp.End, order: i})
		}
	}
	if len(cands) == 0 {
		return nil, aborted
	}

	var results []Result
	for _, c := range resolveOverlaps(cands) {
		start, end := origAt[c.start], origAt[c.end]
		if end <= start {
			continue
		}
		parts := within(nums, start, end)
		if len(parts) == 0 {
			continue
		}
		results = append(results, Result{
			Text:  s[start:end],
			Start: start,
			End:   end,
			Type:  Percentage,
			Data:  parts[0].Data,
			Parts: parts,
		})
	}
	return results, aborted
}

// replaceNumbers substitutes NumberToken for every number span and returns
// the rewritten text with a table mapping each rewritten byte offset (and
// the end offset) back to the original text. Offsets inside a token map to
// the number's start; the offset just past a token maps to the number's end.
func replaceNumbers(s string, nums []Result) (string, []int) {
	var b strings.Builder
	b.Grow(len(s) + len(nums)*len(NumberToken))
	origAt := make([]int, 0, len(s)+len(nums)*len(NumberToken)+1)

	pos := 0
	for _, n := range nums {
		for i := pos; i < n.Start; i++ {
			origAt = append(origAt, i)
		}
		b.WriteString(s[pos:n.Start])
		for range len(NumberToken) {
			origAt = append(origAt, n.Start)
		}
		b.WriteString(NumberToken)
		pos = n.End
	}
	for i := pos; i < len(s); i++ {
		origAt = append(origAt, i)
	}
	b.WriteString(s[pos:])
	origAt = append(origAt, len(s))
	return b.String(), origAt
}

// within returns the results lying entirely inside [start, end).
func within(nums []Result, start, end int) []Result {
	var out []Result
	for _, n := range nums {
		if n.Start >= start && n.End <= end {
			out = append(out, n)
		}
	}
	return out
}

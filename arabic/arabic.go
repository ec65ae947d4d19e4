// Package arabic builds number, ordinal, and percentage extractors for
// Arabic text. Numerals may be written in Western digits, Arabic-Indic
// digits, or spelled out ("خمسة وعشرون"), and mixed within one text.
//
// Rule sets are assembled from the embedded resource table in a fixed
// precedence order; see NumberSpecs for how a Mode selects rules.
//
// Basic usage:
//
//	ex, err := arabic.NewNumberExtractor(extractor.ModeDefault)
//	if err != nil {
//		return err
//	}
//	for _, r := range ex.Extract("اشترى ٣ كتب و 2.5 كيلو") {
//		fmt.Println(r.Text, r.Data)
//	}
package arabic

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/pattern"
)

type options struct {
	res         *Resources
	logger      *zap.Logger
	timeout     time.Duration
	maxInput    int
	placeholder Placeholder
}

// Option configures an extractor constructor.
type Option func(*options)

// WithResources replaces the embedded resource table.
func WithResources(r *Resources) Option {
	return func(o *options) { o.res = r }
}

// WithLogger sets the logger handed to the built extractors.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTimeout bounds each pattern match attempt. Zero means unbounded.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxInputBytes overrides extractor.DefaultMaxInputBytes.
func WithMaxInputBytes(n int) Option {
	return func(o *options) { o.maxInput = n }
}

// WithPlaceholder selects the trailing context for the integer, double,
// and cardinal constructors. Number extractors derive it from their mode.
func WithPlaceholder(p Placeholder) Option {
	return func(o *options) { o.placeholder = p }
}

func newOptions(opts []Option) (options, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.res == nil {
		res, err := DefaultResources()
		if err != nil {
			return o, err
		}
		o.res = res
	}
	return o, nil
}

func (o options) patternOptions() []pattern.Option {
	return []pattern.Option{pattern.WithTimeout(o.timeout)}
}

func (o options) extractorOptions(extra ...extractor.Option) []extractor.Option {
	return append([]extractor.Option{
		extractor.WithLogger(o.logger.With(zap.String("lang", o.res.LangMarker))),
		extractor.WithMaxInputBytes(o.maxInput),
	}, extra...)
}

// build compiles specs and wraps them in an extractor of type typ.
func (o options) build(typ extractor.Type, specs []extractor.Spec, err error, extra ...extractor.Option) (*extractor.Extractor, error) {
	if err != nil {
		return nil, fmt.Errorf("arabic: %s rules: %w", typ, err)
	}
	rules, err := extractor.CompileRules(specs, o.patternOptions()...)
	if err != nil {
		return nil, fmt.Errorf("arabic: %s rules: %w", typ, err)
	}
	return extractor.New(typ, rules, o.extractorOptions(extra...)...)
}

// NewIntegerExtractor returns an extractor for whole numbers.
func NewIntegerExtractor(opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := IntegerSpecs(o.res, o.placeholder)
	return o.build(extractor.Integer, specs, err)
}

// NewDoubleExtractor returns an extractor for decimal and exponential
// numbers.
func NewDoubleExtractor(opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := DoubleSpecs(o.res, o.placeholder)
	return o.build(extractor.Double, specs, err)
}

// NewFractionExtractor returns an extractor for fractions in mode m.
func NewFractionExtractor(m extractor.Mode, opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := FractionSpecs(o.res, m)
	return o.build(extractor.Fraction, specs, err, extractor.WithMode(m))
}

// NewCardinalExtractor returns an extractor for integers and doubles.
func NewCardinalExtractor(opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := CardinalSpecs(o.res, o.placeholder)
	return o.build(extractor.Cardinal, specs, err)
}

// NewOrdinalExtractor returns an extractor for ordinals ("الثالث", "الـ5").
func NewOrdinalExtractor(opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := OrdinalSpecs(o.res)
	return o.build(extractor.Ordinal, specs, err)
}

// NewNumberExtractor returns the general number extractor for mode m:
// cardinals and fractions, ambiguity filters unless m is ModeUnit, and
// negative terms ("سالب 5") folded into the number they precede.
func NewNumberExtractor(m extractor.Mode, opts ...Option) (*extractor.Extractor, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := NumberSpecs(o.res, m)
	if err != nil {
		return nil, fmt.Errorf("arabic: %s rules: %w", extractor.Number, err)
	}

	filters, err := extractor.CompileFilters(FilterSpecs(o.res, m), o.patternOptions()...)
	if err != nil {
		return nil, fmt.Errorf("arabic: ambiguity filters: %w", err)
	}
	extra := []extractor.Option{
		extractor.WithMode(m),
		extractor.WithAmbiguityFilters(filters),
	}
	if o.res.NegativeTerms != "" {
		neg, err := pattern.Compile(o.res.NegativeTerms, o.res.FlagsFor(negativeTermsFlagsKey), o.patternOptions()...)
		if err != nil {
			return nil, fmt.Errorf("arabic: negative terms: %w",
				&extractor.ConfigurationError{Name: "negative_number_terms", Expr: o.res.NegativeTerms, Err: err})
		}
		extra = append(extra, extractor.WithNegativeTerms(neg))
	}
	return o.build(extractor.Number, specs, nil, extra...)
}

// NewPercentageExtractor returns a percentage extractor that owns a
// default-mode number extractor.
func NewPercentageExtractor(opts ...Option) (*extractor.PercentageExtractor, error) {
	number, err := NewNumberExtractor(extractor.ModeDefault, opts...)
	if err != nil {
		return nil, err
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	specs, err := PercentageSpecs(o.res)
	if err != nil {
		return nil, fmt.Errorf("arabic: %s rules: %w", extractor.Percentage, err)
	}
	rules, err := extractor.CompileRules(specs, o.patternOptions()...)
	if err != nil {
		return nil, fmt.Errorf("arabic: %s rules: %w", extractor.Percentage, err)
	}
	return extractor.NewPercentage(number, rules, o.extractorOptions()...)
}

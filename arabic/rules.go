package arabic

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/internal/longformat"
)

var errMissingPattern = errors.New("missing resource pattern")

// ruleList accumulates rule specs in precedence order, substituting the
// placeholder expression and recording every missing resource.
type ruleList struct {
	res         *Resources
	placeholder string
	specs       []extractor.Spec
	errs        error
}

func newRuleList(res *Resources, p Placeholder) *ruleList {
	return &ruleList{res: res, placeholder: res.Placeholder(p)}
}

func (l *ruleList) add(name string, tag extractor.Tag) {
	expr, ok := l.res.Pattern(name)
	if !ok {
		l.errs = multierr.Append(l.errs, &extractor.ConfigurationError{Name: name, Err: errMissingPattern})
		return
	}
	l.specs = append(l.specs, extractor.Spec{
		Name:  name,
		Expr:  strings.ReplaceAll(expr, placeholderRef, l.placeholder),
		Flags: l.res.FlagsFor(name),
		Tag:   tag,
	})
}

func (l *ruleList) addLongFormat(t longformat.Type, tag extractor.Tag) {
	l.specs = append(l.specs, extractor.Spec{
		Name:  t.Name,
		Expr:  longformat.Expr(t, l.placeholder),
		Flags: l.res.FlagsFor(longFormatFlagsKey),
		Tag:   tag,
	})
}

func (l *ruleList) result() ([]extractor.Spec, error) {
	if l.errs != nil {
		return nil, l.errs
	}
	return l.specs, nil
}

func (l *ruleList) integer() {
	l.add("numbers_with_placeholder", extractor.IntegerNum)
	l.add("numbers_with_suffix", extractor.IntegerNum)
	l.addLongFormat(longformat.IntegerNumComma, extractor.IntegerNum)
	l.addLongFormat(longformat.IntegerNumBlank, extractor.IntegerNum)
	l.addLongFormat(longformat.IntegerNumNoBreakSpace, extractor.IntegerNum)
	l.addLongFormat(longformat.IntegerNumArabic, extractor.IntegerNum)
	l.add("round_number_integer_with_locks", extractor.IntegerNum)
	l.add("numbers_with_dozen_suffix", extractor.IntegerNum)
	l.add("all_int_with_locks", extractor.IntegerEng)
	l.add("all_int_with_dozen_suffix_locks", extractor.IntegerEng)
}

func (l *ruleList) double() {
	l.add("double_decimal_point", extractor.DoubleNum)
	l.add("double_without_integral", extractor.DoubleNum)
	l.addLongFormat(longformat.DoubleNumCommaDot, extractor.DoubleNum)
	l.addLongFormat(longformat.DoubleNumNoBreakSpaceDot, extractor.DoubleNum)
	l.addLongFormat(longformat.DoubleNumArabic, extractor.DoubleNum)
	l.add("double_with_multiplier", extractor.DoubleNum)
	l.add("double_with_round_number", extractor.DoubleNum)
	l.add("double_all_float", extractor.DoubleEng)
	l.add("double_exponential_notation", extractor.DoublePow)
	l.add("double_caret_exponential_notation", extractor.DoublePow)
}

func (l *ruleList) fraction(m extractor.Mode) {
	l.add("fraction_notation_with_spaces", extractor.FracNum)
	l.add("fraction_notation", extractor.FracNum)
	l.add("fraction_noun", extractor.FracArb)
	l.add("fraction_noun_with_article", extractor.FracArb)
	if m != extractor.ModeUnit {
		l.add("fraction_preposition", extractor.FracEng)
	}
}

func (l *ruleList) ordinal() {
	l.add("ordinal_numeric", extractor.OrdinalArb)
	l.add("ordinal_arabic", extractor.OrdinalArb)
	l.add("ordinal_round_number", extractor.OrdinalArb)
}

// IntegerSpecs lists the integer rules in precedence order.
func IntegerSpecs(res *Resources, p Placeholder) ([]extractor.Spec, error) {
	l := newRuleList(res, p)
	l.integer()
	return l.result()
}

// DoubleSpecs lists the decimal and exponential rules in precedence order.
func DoubleSpecs(res *Resources, p Placeholder) ([]extractor.Spec, error) {
	l := newRuleList(res, p)
	l.double()
	return l.result()
}

// FractionSpecs lists the fraction rules. The prepositional form
// ("3 على 4") is left out in ModeUnit, where it would swallow
// measurements such as "5 كم على 2".
func FractionSpecs(res *Resources, m extractor.Mode) ([]extractor.Spec, error) {
	l := newRuleList(res, PlaceholderDefault)
	l.fraction(m)
	return l.result()
}

// OrdinalSpecs lists the ordinal rules in precedence order.
func OrdinalSpecs(res *Resources) ([]extractor.Spec, error) {
	l := newRuleList(res, PlaceholderDefault)
	l.ordinal()
	return l.result()
}

// CardinalSpecs is IntegerSpecs followed by DoubleSpecs.
func CardinalSpecs(res *Resources, p Placeholder) ([]extractor.Spec, error) {
	l := newRuleList(res, p)
	l.integer()
	l.double()
	return l.result()
}

// NumberSpecs is the single place where a mode becomes a rule list:
//
//	ModePureNumber  cardinal (pure-number placeholder), fraction
//	ModeCurrency    currency multiplier, cardinal (currency placeholder), fraction
//	ModeDefault     cardinal (default placeholder), fraction
//	ModeUnit        cardinal (default placeholder), fraction without prepositions
func NumberSpecs(res *Resources, m extractor.Mode) ([]extractor.Spec, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %s", extractor.ErrUnknownMode, m)
	}
	l := newRuleList(res, placeholderFor(m))
	if m == extractor.ModeCurrency {
		l.add("currency_integer", extractor.IntegerNum)
	}
	l.integer()
	l.double()
	l.fraction(m)
	return l.result()
}

// FilterSpecs returns the ambiguity filters a number extractor built for m
// applies. There are none in ModeUnit.
func FilterSpecs(res *Resources, m extractor.Mode) []extractor.FilterSpec {
	if m == extractor.ModeUnit {
		return nil
	}
	return res.AmbiguityFilters
}

// percentageRuleNames are matched against text with numbers replaced by
// extractor.NumberToken.
var percentageRuleNames = []string{
	"number_with_suffix_percentage",
	"number_with_prefix_percentage",
}

// PercentageSpecs lists the percentage rules. Their tags are unused; a
// percentage result takes the tag of the number it contains.
func PercentageSpecs(res *Resources) ([]extractor.Spec, error) {
	l := newRuleList(res, PlaceholderDefault)
	for _, name := range percentageRuleNames {
		l.add(name, extractor.IntegerNum)
	}
	return l.result()
}

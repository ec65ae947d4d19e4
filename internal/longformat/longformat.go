// Package longformat generates rule expressions for grouped-digit numerals
// such as "1,234,567" or "1 234.5", parameterized by the thousands and
// decimal marks and by the placeholder that must follow the numeral.
package longformat

import (
	"strings"

	"github.com/az-ai-labs/numrec/pattern"
)

// Type is a pair of grouping and decimal marks.
// A zero DecimalsMark means the format has no decimal part.
type Type struct {
	Name          string
	ThousandsMark rune
	DecimalsMark  rune
}

// IsDouble reports whether the format has a decimal part.
func (t Type) IsDouble() bool { return t.DecimalsMark != 0 }

var (
	IntegerNumComma          = Type{Name: "integer_num_comma", ThousandsMark: ','}
	IntegerNumBlank          = Type{Name: "integer_num_blank", ThousandsMark: ' '}
	IntegerNumNoBreakSpace   = Type{Name: "integer_num_no_break_space", ThousandsMark: '\u00a0'}
	IntegerNumArabic         = Type{Name: "integer_num_arabic", ThousandsMark: '٬'}
	DoubleNumCommaDot        = Type{Name: "double_num_comma_dot", ThousandsMark: ',', DecimalsMark: '.'}
	DoubleNumNoBreakSpaceDot = Type{Name: "double_num_no_break_space_dot", ThousandsMark: '\u00a0', DecimalsMark: '.'}
	DoubleNumArabic          = Type{Name: "double_num_arabic", ThousandsMark: '٬', DecimalsMark: '٫'}
)

// Template placeholders. Integer and double templates are filled with the
// escaped marks and the caller's placeholder expression.
const (
	keyPlaceholder = "{placeholder}"
	keyThousands   = "{thousands}"
	keyDecimals    = "{decimals}"
)

// integerTemplate and doubleTemplate are the default definitions: an
// optional leading minus that does not follow a digit, one to three digits,
// at least one group, and no further digit, mark-digit pair, or group after
// the numeral.
const (
	integerTemplate = `(?:(?<!\d\s*)-\s*)?(?<![\d\.,٫٬]|\d\s)\d{1,3}(?:{thousands}\d{3})+(?![\.,٫٬]?\d)(?={placeholder})`
	doubleTemplate  = `(?:(?<!\d\s*)-\s*)?(?<![\d\.,٫٬]|\d\s)\d{1,3}(?:{thousands}\d{3})+{decimals}\d+(?![\.,٫٬]?\d)(?={placeholder})`
)

// Expr returns the rule expression for t followed by placeholder.
func Expr(t Type, placeholder string) string {
	tmpl := integerTemplate
	if t.IsDouble() {
		tmpl = doubleTemplate
	}
	r := strings.NewReplacer(
		keyPlaceholder, placeholder,
		keyThousands, pattern.Escape(string(t.ThousandsMark)),
		keyDecimals, escapeMark(t.DecimalsMark),
	)
	return r.Replace(tmpl)
}

func escapeMark(r rune) string {
	if r == 0 {
		return ""
	}
	return pattern.Escape(string(r))
}

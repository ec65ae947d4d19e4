package longformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/az-ai-labs/numrec/pattern"
)

const defaultPlaceholder = `\D|$`

// Mark pairs the rule lists do not use; they show the templates are not
// tied to the built-in formats.
var (
	integerNumDot     = Type{Name: "integer_num_dot", ThousandsMark: '.'}
	doubleNumDotComma = Type{Name: "double_num_dot_comma", ThousandsMark: '.', DecimalsMark: ','}
	doubleNumBlankDot = Type{Name: "double_num_blank_dot", ThousandsMark: ' ', DecimalsMark: '.'}
)

func find(t *testing.T, typ Type, s string) []string {
	t.Helper()
	p, err := pattern.Compile(Expr(typ, defaultPlaceholder), pattern.IgnoreCase)
	require.NoError(t, err)
	spans, err := p.FindAll(s)
	require.NoError(t, err)
	var out []string
	for _, sp := range spans {
		out = append(out, s[sp.Start:sp.End])
	}
	return out
}

func TestExprMatchesWholeLiteral(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   string
		want []string
	}{
		{"comma", IntegerNumComma, "1,234,567", []string{"1,234,567"}},
		{"comma in text", IntegerNumComma, "بلغ 12,500 دينار", []string{"12,500"}},
		{"comma negative", IntegerNumComma, "رصيد -1,000", []string{"-1,000"}},
		{"blank", IntegerNumBlank, "1 234 567", []string{"1 234 567"}},
		{"no-break space", IntegerNumNoBreakSpace, "1\u00a0234\u00a0567", []string{"1\u00a0234\u00a0567"}},
		{"arabic separator", IntegerNumArabic, "١٬٢٣٤", []string{"١٬٢٣٤"}},
		{"dot", integerNumDot, "1.234.567", []string{"1.234.567"}},
		{"comma dot", DoubleNumCommaDot, "1,234.56", []string{"1,234.56"}},
		{"dot comma", doubleNumDotComma, "1.234,56", []string{"1.234,56"}},
		{"blank dot", doubleNumBlankDot, "12 345.5", []string{"12 345.5"}},
		{"no-break space dot", DoubleNumNoBreakSpaceDot, "12\u00a0345.5", []string{"12\u00a0345.5"}},
		{"arabic marks", DoubleNumArabic, "١٬٢٣٤٫٥", []string{"١٬٢٣٤٫٥"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, find(t, tt.typ, tt.in))
		})
	}
}

func TestExprRejectsMalformedGroups(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		in   string
	}{
		{"no group", IntegerNumComma, "1234"},
		{"four digit head", IntegerNumComma, "1234,567"},
		{"short group", IntegerNumComma, "1,23"},
		{"integer followed by decimals", IntegerNumComma, "1,234.5"},
		{"double without decimals", DoubleNumCommaDot, "1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, find(t, tt.typ, tt.in))
		})
	}
}

func TestExprSubstitutesPlaceholder(t *testing.T) {
	expr := Expr(IntegerNumComma, `\b`)
	assert.Contains(t, expr, `(?=\b)`)
	assert.NotContains(t, expr, keyPlaceholder)
	assert.NotContains(t, expr, keyThousands)
}

func TestExprEscapesMarks(t *testing.T) {
	expr := Expr(doubleNumBlankDot, "x")
	assert.Contains(t, expr, `(?:\ \d{3})+\.\d+`)
	assert.NotContains(t, expr, keyDecimals)

	expr = Expr(IntegerNumComma, "x")
	assert.Contains(t, expr, `(?:,\d{3})+(?!`)
}

func TestIsDouble(t *testing.T) {
	assert.False(t, IntegerNumComma.IsDouble())
	assert.True(t, DoubleNumCommaDot.IsDouble())
}

package arabic

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/az-ai-labs/numrec/extractor"
	"github.com/az-ai-labs/numrec/pattern"
)

func TestDefaultResources(t *testing.T) {
	res, err := DefaultResources()
	require.NoError(t, err)

	assert.Equal(t, "Ara", res.LangMarker)
	assert.Equal(t, `\D|$`, res.Placeholder(PlaceholderDefault))
	assert.Equal(t, `\b`, res.Placeholder(PlaceholderPureNumber))
	assert.NotEmpty(t, res.NegativeTerms)
	assert.Len(t, res.AmbiguityFilters, 3)

	for name, expr := range res.Patterns {
		assert.Empty(t, unresolvedRef(expr), "pattern %s", name)
	}

	assert.Equal(t, pattern.IgnoreCase|pattern.DotAll, res.FlagsFor("all_int_with_locks"))
	assert.Equal(t, pattern.IgnoreCase, res.FlagsFor("numbers_with_placeholder"))
	assert.Equal(t, pattern.DotAll, res.FlagsFor("numbers_with_suffix"))
	assert.Equal(t, pattern.IgnoreCase, res.FlagsFor(longFormatFlagsKey))
	assert.Equal(t, pattern.IgnoreCase|pattern.DotAll, res.FlagsFor(negativeTermsFlagsKey))

	again, err := DefaultResources()
	require.NoError(t, err)
	assert.Same(t, res, again)
}

func TestParseResourcesExpandsNestedFragments(t *testing.T) {
	src := `
placeholders: {default: 'a', pure_number: 'b', currency: 'c'}
words:
  digit: '\d'
  pair: '{digit}{digit}'
patterns:
  two: '{pair}(?={placeholder})'
  quantified: '\d{1,3}\p{L}'
`
	res, err := ParseResources([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, `\d\d(?={placeholder})`, res.Patterns["two"])
	assert.Equal(t, `\d{1,3}\p{L}`, res.Patterns["quantified"])
	assert.Zero(t, res.FlagsFor("two"))
}

func TestParseResourcesErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "not yaml",
			src:     "patterns: [",
			wantErr: "parse resources",
		},
		{
			name:    "no patterns",
			src:     "lang_marker: Ara",
			wantErr: "no patterns",
		},
		{
			name: "unknown fragment",
			src: `
placeholders: {default: 'a', pure_number: 'b', currency: 'c'}
patterns: {x: '{nope}'}`,
			wantErr: "unknown fragment {nope}",
		},
		{
			name: "cyclic fragment",
			src: `
placeholders: {default: 'a', pure_number: 'b', currency: 'c'}
words: {a: '{a}x'}
patterns: {x: '{a}'}`,
			wantErr: "nest too deeply",
		},
		{
			name: "empty placeholder",
			src: `
placeholders: {default: 'a', pure_number: 'b'}
patterns: {x: 'y'}`,
			wantErr: "placeholder currency is empty",
		},
		{
			name: "flags for unknown pattern",
			src: `
placeholders: {default: 'a', pure_number: 'b', currency: 'c'}
patterns: {x: 'y'}
flags: {z: gi}`,
			wantErr: "flags for unknown pattern z",
		},
		{
			name: "unknown flag letter",
			src: `
placeholders: {default: 'a', pure_number: 'b', currency: 'c'}
patterns: {x: 'y'}
flags: {x: gx}`,
			wantErr: "flags x: pattern: unknown flag 'x'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResources([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUnresolvedRef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`\d{1,3}`, ""},
		{`(?={placeholder})`, ""},
		{`\p{L}`, ""},
		{`{}`, ""},
		{`x{word_form}y`, "{word_form}"},
		{`{unterminated`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unresolvedRef(tt.in), tt.in)
	}
}

// cloneResources returns a copy of the embedded table whose maps can be
// modified freely.
func cloneResources(t *testing.T) *Resources {
	t.Helper()
	res, err := DefaultResources()
	require.NoError(t, err)
	c := *res
	c.Patterns = maps.Clone(res.Patterns)
	c.Placeholders = maps.Clone(res.Placeholders)
	return &c
}

func TestMissingPatternIsConfigurationError(t *testing.T) {
	res := cloneResources(t)
	delete(res.Patterns, "fraction_notation")

	_, err := NewNumberExtractor(extractor.ModeDefault, WithResources(res))
	require.Error(t, err)

	var cfgErr *extractor.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "fraction_notation", cfgErr.Name)
	assert.ErrorIs(t, err, errMissingPattern)
}

func TestMalformedPatternFailsConstruction(t *testing.T) {
	res := cloneResources(t)
	res.Patterns["numbers_with_suffix"] = `(\d+`
	res.Patterns["ordinal_numeric"] = `[`

	_, err := NewIntegerExtractor(WithResources(res))
	require.Error(t, err)
	var cfgErr *extractor.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "numbers_with_suffix", cfgErr.Name)

	_, err = NewOrdinalExtractor(WithResources(res))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ordinal_numeric"))
}

func TestMalformedFilterFailsConstruction(t *testing.T) {
	res := cloneResources(t)
	res.AmbiguityFilters = []extractor.FilterSpec{{Name: "bad", Trigger: "(", Suppress: "x"}}

	_, err := NewNumberExtractor(extractor.ModeDefault, WithResources(res))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.trigger")

	// Unit mode never compiles the filter table.
	_, err = NewNumberExtractor(extractor.ModeUnit, WithResources(res))
	require.NoError(t, err)
}

package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		in      string
		want    Flags
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "g", want: 0},
		{in: "gi", want: IgnoreCase},
		{in: "gis", want: IgnoreCase | DotAll},
		{in: "gsm", want: DotAll | Multiline},
		{in: "gx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlags(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "g", Flags(0).String())
	assert.Equal(t, "gis", (IgnoreCase | DotAll).String())
	assert.Equal(t, "gism", (IgnoreCase | DotAll | Multiline).String())
}

func TestCompileError(t *testing.T) {
	_, err := Compile(`(\d+`, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern: compile")
}

func mustCompile(t *testing.T, expr string, flags Flags, opts ...Option) *Pattern {
	t.Helper()
	p, err := Compile(expr, flags, opts...)
	require.NoError(t, err)
	return p
}

func TestFindAllByteOffsets(t *testing.T) {
	tests := []struct {
		name string
		expr string
		in   string
		want []Span
	}{
		{
			name: "ascii digits",
			expr: `\d+`,
			in:   "a 12 b 345",
			want: []Span{{2, 4}, {7, 10}},
		},
		{
			name: "arabic-indic digits after arabic letters",
			expr: `\d+`,
			// "في" is 4 bytes, space 1, then 3 two-byte digits
			in:   "في ١٢٣",
			want: []Span{{5, 11}},
		},
		{
			name: "lookbehind",
			expr: `(?<=\$)\d+`,
			in:   "$10 and 20",
			want: []Span{{1, 3}},
		},
		{
			name: "variable length lookbehind",
			expr: `(?<!\d\s*)-\d+`,
			in:   "-5 and 3 -4",
			want: []Span{{0, 2}},
		},
		{
			name: "empty matches skipped",
			expr: `\d*`,
			in:   "ab1",
			want: []Span{{2, 3}},
		},
		{
			name: "no match",
			expr: `\d+`,
			in:   "لا أرقام",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustCompile(t, tt.expr, 0)
			got, err := p.FindAll(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, sp := range got {
				assert.NotEmpty(t, tt.in[sp.Start:sp.End])
			}
		})
	}
}

func TestFindAllEmptyInput(t *testing.T) {
	got, err := mustCompile(t, `\d+`, 0).FindAll("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindAllMalformedUTF8(t *testing.T) {
	in := "\xff12\xfe٣"
	got, err := mustCompile(t, `\d+`, 0).FindAll(in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12", in[got[0].Start:got[0].End])
	assert.Equal(t, "٣", in[got[1].Start:got[1].End])
}

func TestIgnoreCase(t *testing.T) {
	p := mustCompile(t, `\d+e\d+`, IgnoreCase)
	got, err := p.FindAll("1E5")
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 3}}, got)
}

func TestMatchString(t *testing.T) {
	p := mustCompile(t, `^ألف$`, 0)
	assert.True(t, p.MatchString("ألف"))
	assert.False(t, p.MatchString("آلاف"))
}

func TestEscape(t *testing.T) {
	p := mustCompile(t, `\d`+Escape(".")+`\d`, 0)
	assert.True(t, p.MatchString("1.2"))
	assert.False(t, p.MatchString("1x2"))

	blank := mustCompile(t, `\d`+Escape(" ")+`\d`, 0)
	assert.True(t, blank.MatchString("1 2"))

	nbsp := mustCompile(t, `\d`+Escape("\u00a0")+`\d`, 0)
	assert.True(t, nbsp.MatchString("1\u00a02"))
	assert.False(t, nbsp.MatchString("1 2"))
}

func TestWithTimeout(t *testing.T) {
	p := mustCompile(t, `\d+`, 0, WithTimeout(time.Second))
	got, err := p.FindAll("1 2 3")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFindAllFromSeesPrecedingText(t *testing.T) {
	p := mustCompile(t, `\bناقص\s+$`, 0)

	tests := []struct {
		name string
		in   string
		from int
		want []Span
	}{
		{"term at offset", "ناقص ", 0, []Span{{0, 9}}},
		{"offset inside a word", "الناقص ", 4, nil},
		{"offset after a digit", "٣ناقص ", 2, nil},
		{"offset after a space", "٣ ناقص ", 3, []Span{{3, 12}}},
		{"offset inside a rune", "x ناقص ", 3, nil},
		{"offset before the term", "x ناقص ", 0, []Span{{2, 11}}},
		{"offset past the end", "ناقص ", 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.FindAllFrom(tt.in, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScannerSharesText(t *testing.T) {
	sc := NewScanner("٣ و 4")
	a, err := sc.FindAll(mustCompile(t, `\d`, 0))
	require.NoError(t, err)
	assert.Equal(t, []Span{{0, 2}, {6, 7}}, a)
	assert.Equal(t, "٣ و 4", sc.Text())
}

// Package pattern wraps the regexp2 engine with the scanning primitives the
// extractors need: repeated non-overlapping matching over a string, reported
// as byte offsets into that string.
//
// regexp2 is used instead of the standard library because locale resources
// rely on lookbehind, lookahead, and Unicode-aware \d and \b, none of which
// RE2 supports. regexp2 reports positions in runes; Pattern converts them so
// that for every Span sp, s[sp.Start:sp.End] is the matched text.
//
// A compiled Pattern is immutable and safe for concurrent use.
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Flags mirror the single-letter options used in resource definitions.
type Flags uint8

const (
	IgnoreCase Flags = 1 << iota // "i"
	DotAll                       // "s": dot matches newline
	Multiline                    // "m": ^ and $ match at line breaks
)

// ParseFlags converts a flag string such as "gis" into Flags.
// The "g" (global) letter is accepted and ignored: every scan is global.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, c := range s {
		switch c {
		case 'g':
		case 'i':
			f |= IgnoreCase
		case 's':
			f |= DotAll
		case 'm':
			f |= Multiline
		default:
			return 0, fmt.Errorf("pattern: unknown flag %q in %q", c, s)
		}
	}
	return f, nil
}

// String returns the flags in resource notation, always led by "g".
func (f Flags) String() string {
	var b strings.Builder
	b.WriteByte('g')
	if f&IgnoreCase != 0 {
		b.WriteByte('i')
	}
	if f&DotAll != 0 {
		b.WriteByte('s')
	}
	if f&Multiline != 0 {
		b.WriteByte('m')
	}
	return b.String()
}

func (f Flags) options() regexp2.RegexOptions {
	opt := regexp2.RegexOptions(regexp2.None)
	if f&IgnoreCase != 0 {
		opt |= regexp2.IgnoreCase
	}
	if f&DotAll != 0 {
		opt |= regexp2.Singleline
	}
	if f&Multiline != 0 {
		opt |= regexp2.Multiline
	}
	return opt
}

// ErrTimeout is returned when a single scan exceeds the pattern's timeout.
var ErrTimeout = errors.New("pattern: match timeout")

// Span is a match location in byte offsets (Start inclusive, End exclusive).
type Span struct {
	Start int
	End   int
}

// Pattern is a compiled regular expression with its source and flags.
type Pattern struct {
	re    *regexp2.Regexp
	expr  string
	flags Flags
}

// Option configures a Pattern at compile time.
type Option func(*regexp2.Regexp)

// WithTimeout bounds the wall-clock time of each individual match attempt.
// Zero or negative d leaves matching unbounded.
func WithTimeout(d time.Duration) Option {
	return func(re *regexp2.Regexp) {
		if d > 0 {
			re.MatchTimeout = d
		}
	}
}

// Compile compiles expr with the given flags.
func Compile(expr string, flags Flags, opts ...Option) (*Pattern, error) {
	re, err := regexp2.Compile(expr, flags.options())
	if err != nil {
		return nil, fmt.Errorf("pattern: compile %q: %w", truncate(expr), err)
	}
	for _, opt := range opts {
		opt(re)
	}
	return &Pattern{re: re, expr: expr, flags: flags}, nil
}

// Escape quotes every metacharacter in s.
func Escape(s string) string {
	return regexp2.Escape(s)
}

// String returns the source expression.
func (p *Pattern) String() string { return p.expr }

// Flags returns the flags the pattern was compiled with.
func (p *Pattern) Flags() Flags { return p.flags }

// FindAll returns every non-overlapping match of p in s, left to right.
// Empty matches are skipped. On timeout the matches found so far are
// returned together with ErrTimeout.
func (p *Pattern) FindAll(s string) ([]Span, error) {
	if s == "" {
		return nil, nil
	}
	return p.findAll(s, newOffsets(s))
}

// FindAllFrom is FindAll restricted to matches starting at or after byte
// offset from. Lookbehinds, anchors, and \b still see s[:from], so a match
// at from is judged by the real text before it. An offset inside a rune is
// moved forward to the next rune.
func (p *Pattern) FindAllFrom(s string, from int) ([]Span, error) {
	start := -1
	for i := range s {
		if i >= from {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil
	}
	m, err := p.re.FindStringMatchStartingAt(s, start)
	return p.collect(m, err, newOffsets(s))
}

// findAll scans s using a prebuilt rune-to-byte table, so callers running
// many patterns over the same text convert offsets only once.
func (p *Pattern) findAll(s string, off offsets) ([]Span, error) {
	m, err := p.re.FindStringMatch(s)
	return p.collect(m, err, off)
}

// collect gathers m and every following match.
func (p *Pattern) collect(m *regexp2.Match, err error, off offsets) ([]Span, error) {
	var spans []Span
	for m != nil && err == nil {
		if m.Length > 0 {
			spans = append(spans, Span{
				Start: off.byteAt(m.Index),
				End:   off.byteAt(m.Index + m.Length),
			})
		}
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		return spans, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return spans, nil
}

// MatchString reports whether s contains any match of p.
// A timed-out match counts as no match.
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// truncate shortens long expressions in error messages.
func truncate(s string) string {
	const maxErrLen = 80
	if len(s) > maxErrLen {
		return s[:maxErrLen] + "..."
	}
	return s
}

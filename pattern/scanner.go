package pattern

// offsets maps rune indexes, as reported by regexp2, to byte offsets.
// regexp2 decodes its input with []rune(s), which turns each invalid UTF-8
// byte into one U+FFFD rune; ranging over the string decodes the same way,
// so the table stays aligned on malformed input too.
type offsets []int

func newOffsets(s string) offsets {
	off := make(offsets, 0, len(s)+1)
	for i := range s {
		off = append(off, i)
	}
	return append(off, len(s))
}

func (o offsets) byteAt(runeIdx int) int {
	if runeIdx < 0 {
		return 0
	}
	if runeIdx >= len(o) {
		return o[len(o)-1]
	}
	return o[runeIdx]
}

// Scanner runs several patterns over one text, sharing the offset table.
// A Scanner is not safe for concurrent use; create one per text.
type Scanner struct {
	text string
	off  offsets
}

// NewScanner prepares s for scanning.
func NewScanner(s string) *Scanner {
	return &Scanner{text: s, off: newOffsets(s)}
}

// Text returns the text being scanned.
func (sc *Scanner) Text() string { return sc.text }

// FindAll is Pattern.FindAll over the scanner's text.
func (sc *Scanner) FindAll(p *Pattern) ([]Span, error) {
	if sc.text == "" {
		return nil, nil
	}
	return p.findAll(sc.text, sc.off)
}

package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tag names the lexical subtype of a matched numeral. The downstream value
// parser selects its conversion routine from the tag alone.
type Tag string

const (
	IntegerNum Tag = "IntegerNum" // digits, possibly grouped or suffixed
	IntegerEng Tag = "IntegerEng" // spelled-out integer words
	DoubleNum  Tag = "DoubleNum"  // digits with a decimal part
	DoubleEng  Tag = "DoubleEng"  // spelled-out decimal
	DoublePow  Tag = "DoublePow"  // exponential notation (1.5e3, 2^10)
	FracNum    Tag = "FracNum"    // 3/4, 1 3/4
	FracArb    Tag = "FracArb"    // fraction nouns (نصف, ثلاثة أرباع)
	FracEng    Tag = "FracEng"    // prepositional fraction (3 over 4)
	OrdinalArb Tag = "OrdinalArb" // ordinals, numeric or spelled out
)

var knownTags = map[Tag]struct{}{
	IntegerNum: {}, IntegerEng: {}, DoubleNum: {}, DoubleEng: {}, DoublePow: {},
	FracNum: {}, FracArb: {}, FracEng: {}, OrdinalArb: {},
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	_, ok := knownTags[t]
	return ok
}

// Type is the coarse category of an extractor and of its results.
type Type int

const (
	Number     Type = iota // builtin.num
	Cardinal               // builtin.num.cardinal
	Integer                // builtin.num.integer
	Double                 // builtin.num.double
	Fraction               // builtin.num.fraction
	Ordinal                // builtin.num.ordinal
	Percentage             // builtin.num.percentage
)

var typeNames = [...]string{
	Number:     "Number",
	Cardinal:   "Cardinal",
	Integer:    "Integer",
	Double:     "Double",
	Fraction:   "Fraction",
	Ordinal:    "Ordinal",
	Percentage: "Percentage",
}

var typeFromName = map[string]Type{
	"Number":     Number,
	"Cardinal":   Cardinal,
	"Integer":    Integer,
	"Double":     Double,
	"Fraction":   Fraction,
	"Ordinal":    Ordinal,
	"Percentage": Percentage,
}

// String returns the name of the type.
func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// MarshalJSON encodes the type as a JSON string (e.g. "Number").
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a JSON string (e.g. "Number") into a Type.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tt, ok := typeFromName[s]
	if !ok {
		return fmt.Errorf("extractor: unknown type: %q", clip(s))
	}
	*t = tt
	return nil
}

// Mode narrows which rules a number extractor includes and how strict the
// numeral boundary is. It is fixed when the extractor is built.
type Mode int

const (
	ModeDefault    Mode = iota
	ModePureNumber      // numerals must stand alone as words
	ModeCurrency        // adds currency multipliers (5m, 3k)
	ModeUnit            // no prepositional fractions, no ambiguity filters
)

var modeNames = [...]string{
	ModeDefault:    "default",
	ModePureNumber: "pure_number",
	ModeCurrency:   "currency",
	ModeUnit:       "unit",
}

var modeFromName = map[string]Mode{
	"default":     ModeDefault,
	"pure_number": ModePureNumber,
	"currency":    ModeCurrency,
	"unit":        ModeUnit,
}

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("extractor: unknown mode")

// ParseMode converts a mode name ("default", "pure_number", "currency",
// "unit") into a Mode. The empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeDefault, nil
	}
	m, ok := modeFromName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, clip(s))
	}
	return m, nil
}

// String returns the name of the mode.
func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m >= ModeDefault && m <= ModeUnit }

// MarshalText encodes the mode as its name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name. It lets config loaders and JSON
// decoders accept "unit" rather than 3.
func (m *Mode) UnmarshalText(data []byte) error {
	mm, err := ParseMode(string(data))
	if err != nil {
		return err
	}
	*m = mm
	return nil
}

// Result is one recognized numeric expression.
// Offsets are bytes into the input: s[r.Start:r.End] == r.Text.
type Result struct {
	Text  string   `json:"text"`            // The matched substring
	Start int      `json:"start"`           // Byte offset (inclusive)
	End   int      `json:"end"`             // Byte offset (exclusive)
	Type  Type     `json:"type"`            // Extractor category
	Data  Tag      `json:"data,omitempty"`  // Fine-grained subtype for the value parser
	Parts []Result `json:"parts,omitempty"` // Numbers inside a percentage
}

// String returns a debug representation, e.g. Number:IntegerNum("١٢٣")[0:6].
func (r Result) String() string {
	return fmt.Sprintf("%s:%s(%q)[%d:%d]", r.Type, r.Data, r.Text, r.Start, r.End)
}

func clip(s string) string {
	const maxErrLen = 50
	if len(s) > maxErrLen {
		return s[:maxErrLen] + "..."
	}
	return s
}

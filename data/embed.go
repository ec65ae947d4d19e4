// Package data embeds the locale resource tables.
package data

import _ "embed"

//go:embed arabic_numeric.yaml
var ArabicNumeric []byte

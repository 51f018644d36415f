package json

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// IndentWidth is the number of spaces per nesting level in pretty output.
const IndentWidth = 2

// NumberFormat selects how numbers are rendered.
type NumberFormat uint8

const (
	// NumberFixed renders every number in fixed point with six fractional
	// digits, integral values included (123 renders as 123.000000).
	NumberFixed NumberFormat = iota
	// NumberShortest renders the shortest text that round-trips to the same
	// float64, switching to exponent notation for very small or large
	// magnitudes.
	NumberShortest
)

func (f NumberFormat) String() string {
	switch f {
	case NumberFixed:
		return "fixed"
	case NumberShortest:
		return "shortest"
	}
	return fmt.Sprintf("NumberFormat(%d)", uint8(f))
}

// ParseNumberFormat is the inverse of NumberFormat.String.
func ParseNumberFormat(s string) (NumberFormat, error) {
	switch strings.ToLower(s) {
	case "", "fixed":
		return NumberFixed, nil
	case "shortest":
		return NumberShortest, nil
	}
	return 0, fmt.Errorf("unknown number format %q", s)
}

// RenderOptions tune the text produced by ToStringOptions. The zero value is
// the canonical pretty form.
type RenderOptions struct {
	// Compact drops indentation and newlines.
	Compact bool

	// SortKeys emits object members in byte-wise key order instead of hash
	// table order.
	SortKeys bool

	// RawStrings writes string content between quotes without escaping. The
	// output is not valid JSON if a string holds quotes or control
	// characters.
	RawStrings bool

	NumberFormat NumberFormat
}

var quoteConfig = jsoniter.Config{
	EscapeHTML: false,
}.Froze()

var indents [16]string

func init() {
	for i := range indents {
		indents[i] = strings.Repeat(" ", i*IndentWidth)
	}
}

func indentString(level int) string {
	if level < len(indents) {
		return indents[level]
	}
	return strings.Repeat(" ", level*IndentWidth)
}

// newIndent returns a fresh String holding the leading whitespace for the
// given nesting level.
func newIndent(o *RenderOptions, level int) *String {
	if o.Compact {
		return newString("")
	}
	return newString(indentString(level))
}

func (o *RenderOptions) newline() string {
	if o.Compact {
		return ""
	}
	return "\n"
}

func (o *RenderOptions) separator() string {
	if o.Compact {
		return ","
	}
	return ",\n"
}

func (o *RenderOptions) colon() string {
	if o.Compact {
		return ":"
	}
	return ": "
}

func appendQuoted(r *String, b []byte, raw bool) {
	if raw {
		r.AppendByte('"')
		appendText(r, b)
		r.AppendByte('"')
		return
	}

	q, err := quoteConfig.Marshal(string(b))
	if err != nil {
		// Marshalling a Go string does not fail.
		panic(err)
	}
	appendText(r, q)
}

func formatNumber(f float64, format NumberFormat) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}

	switch format {
	case NumberShortest:
		abs := math.Abs(f)
		if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
			s := strconv.FormatFloat(f, 'e', -1, 64)
			// 1e-07 -> 1e-7
			if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
				s = s[:n-2] + s[n-1:]
			}
			return s
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', 6, 64)
	}
}

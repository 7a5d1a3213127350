/*
Package dimen parses the small subset of SVG length grammar svg++ accepts:
an optional sign, digits, an optional fractional part, and an ignored unit
suffix. It is a direct descendant of a teacher package that parsed CSS-style
dimensions with a single regular expression; here the same shape is
generalized so every caller supplies its own default instead of the
caller getting back an implicit zero.

Deprecated: None vs sentinel lengths

The original parser returned "parsed value or default" by taking a default
argument and silently substituting it on any parse failure. That conflated
"wasn't supplied" with "failed to parse" at the call site. ParseLength keeps
the ergonomic one-call form (value or default) for the many call sites that
don't care about the distinction, and ParseLengthStrict below is offered for
the few that do.
*/
package dimen

import (
	"regexp"
	"strconv"
)

// lengthPattern captures a numeric prefix (with optional sign and fractional
// part) and discards everything after it, matching the corpus behavior that
// "12px" parses the same as "12" and "12bogus" is not a parse error.
var lengthPattern = regexp.MustCompile(`^\s*([+\-]?[0-9]*\.?[0-9]+)`)

// ParseLength parses the numeric prefix of s as a length in user units,
// ignoring any trailing unit suffix. If s has no parseable numeric prefix,
// def is returned instead.
func ParseLength(s string, def float64) float64 {
	v, ok := ParseLengthStrict(s)
	if !ok {
		return def
	}
	return v
}

// ParseLengthStrict parses the numeric prefix of s, returning ok=false if
// no numeric prefix is present at all (as opposed to ParseLength, which
// collapses that case into a caller-supplied default).
func ParseLengthStrict(s string) (float64, bool) {
	m := lengthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent parses a trailing "%" length (e.g. "80%") and reports the
// fraction (0.8) plus whether a percent sign was actually present. When no
// percent sign is present, ok is false and the numeric value (if any) should
// be treated as an absolute length by the caller instead.
func ParsePercent(s string) (fraction float64, ok bool) {
	trimmed := s
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == ' ' || trimmed[len(trimmed)-1] == '\t') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if len(trimmed) == 0 || trimmed[len(trimmed)-1] != '%' {
		return 0, false
	}
	v, valOK := ParseLengthStrict(trimmed[:len(trimmed)-1])
	if !valOK {
		return 0, false
	}
	return v / 100.0, true
}

// Max returns the greater of two lengths.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two lengths.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Clamp0 returns v if v is non-negative, else 0 — used for interior widths
// after padding subtraction (spec §4.4: "max(hint − 2·padding, 0)").
func Clamp0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
